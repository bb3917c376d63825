package types

import (
	"testing"

	"gorm.io/datatypes"
)

func TestReleaseNotesLocaleFallback(t *testing.T) {
	r := Release{Notes: datatypes.JSONMap{"en": "english", "zh": "中文"}}

	if got := r.NotesFor("zh"); got != "中文" {
		t.Fatalf("exact locale: got %q", got)
	}
	if got := r.NotesFor("fr"); got != "english" {
		t.Fatalf("missing locale must fall back to en: got %q", got)
	}

	noEnglish := Release{Notes: datatypes.JSONMap{"ja": "日本語"}}
	if got := noEnglish.NotesFor("fr"); got != "日本語" {
		t.Fatalf("missing en must fall back to any language: got %q", got)
	}

	empty := Release{}
	if got := empty.NotesFor("en"); got != "" {
		t.Fatalf("empty notes: got %q", got)
	}
}
