package services

import (
	"testing"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func v(version string, isCurrent bool, runCount int) *types.BenchmarkVersion {
	return &types.BenchmarkVersion{Version: version, IsCurrent: isCurrent, RunCount: runCount}
}

func TestSortVersionsDesc_NumericComponents(t *testing.T) {
	versions := []*types.BenchmarkVersion{
		v("1.9", false, 0),
		v("1.10", false, 0),
		v("2.0", false, 0),
		v("1.2", false, 0),
	}

	SortVersionsDesc(versions)

	want := []string{"2.0", "1.10", "1.9", "1.2"}
	for i, w := range want {
		if versions[i].Version != w {
			t.Fatalf("position %d: got %s, want %s", i, versions[i].Version, w)
		}
	}
}

func TestPickQuickRestore_PrefersRunVersion(t *testing.T) {
	// Sorted desc, as List returns them. 1.3 is newest non-current but never
	// ran; 1.2 ran, so it wins the quick-undo slot.
	versions := []*types.BenchmarkVersion{
		v("1.4", true, 0),
		v("1.3", false, 0),
		v("1.2", false, 2),
		v("1.1", false, 5),
	}

	got := PickQuickRestore(versions)
	if got == nil || got.Version != "1.2" {
		t.Fatalf("expected 1.2, got %+v", got)
	}
}

func TestPickQuickRestore_FallsBackToNewestNonCurrent(t *testing.T) {
	versions := []*types.BenchmarkVersion{
		v("1.2", true, 3),
		v("1.1", false, 0),
		v("1.0", false, 0),
	}

	got := PickQuickRestore(versions)
	if got == nil || got.Version != "1.1" {
		t.Fatalf("expected 1.1, got %+v", got)
	}
}

func TestPickQuickRestore_OnlyCurrentVersion(t *testing.T) {
	versions := []*types.BenchmarkVersion{v("1.0", true, 0)}
	if got := PickQuickRestore(versions); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
