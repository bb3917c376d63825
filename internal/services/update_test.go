package services

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func release(version string, builds ...types.ReleaseBuild) *types.Release {
	return &types.Release{
		Version: version,
		PubDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Notes:   datatypes.JSONMap{"en": "notes for " + version, "zh": "说明"},
		Builds:  builds,
	}
}

func darwinBuild() types.ReleaseBuild {
	return types.ReleaseBuild{Target: "darwin", Arch: "aarch64", URL: "https://dl/app.tar.gz", Signature: "sig"}
}

func TestBuildUpdateResponse_NewerVersionMatchingBuild(t *testing.T) {
	latest := release("0.2.0", darwinBuild())

	resp := buildUpdateResponse(latest, "0.1.0", "darwin", "aarch64", "en")

	if resp == nil {
		t.Fatal("expected an update")
	}
	if resp.Version != "0.2.0" || resp.URL != "https://dl/app.tar.gz" || resp.Signature != "sig" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Notes != "notes for 0.2.0" {
		t.Fatalf("expected en notes, got %q", resp.Notes)
	}
}

func TestBuildUpdateResponse_UpToDate(t *testing.T) {
	latest := release("0.2.0", darwinBuild())

	for _, current := range []string{"0.2.0", "0.3.0", "v0.2.0"} {
		if resp := buildUpdateResponse(latest, current, "darwin", "aarch64", "en"); resp != nil {
			t.Fatalf("current %s: expected no update, got %+v", current, resp)
		}
	}
}

func TestBuildUpdateResponse_NoMatchingPlatform(t *testing.T) {
	latest := release("0.2.0", darwinBuild())

	if resp := buildUpdateResponse(latest, "0.1.0", "windows", "x86_64", "en"); resp != nil {
		t.Fatalf("expected no update without a matching build, got %+v", resp)
	}
}

func TestBuildUpdateResponse_LocaleFallback(t *testing.T) {
	latest := release("0.2.0", darwinBuild())

	resp := buildUpdateResponse(latest, "0.1.0", "darwin", "aarch64", "fr")
	if resp == nil || resp.Notes != "notes for 0.2.0" {
		t.Fatalf("expected fallback to en notes, got %+v", resp)
	}
}

func TestSortReleasesDesc(t *testing.T) {
	releases := []*types.Release{
		release("0.9.0"),
		release("0.10.0"),
		release("1.0.0-beta"),
		release("0.2.1"),
	}

	SortReleasesDesc(releases)

	want := []string{"1.0.0-beta", "0.10.0", "0.9.0", "0.2.1"}
	for i, w := range want {
		if releases[i].Version != w {
			t.Fatalf("position %d: got %s, want %s", i, releases[i].Version, w)
		}
	}
}
