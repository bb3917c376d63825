package services

import (
	"testing"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
)

func TestValidateBugReport(t *testing.T) {
	valid := SubmitBugReportInput{
		Title:       "App crashes on launch",
		Description: "The window opens and immediately closes on macOS 14.",
	}

	cases := []struct {
		name    string
		mutate  func(in *SubmitBugReportInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *SubmitBugReportInput) {}},
		{
			name:    "title_too_short",
			mutate:  func(in *SubmitBugReportInput) { in.Title = "bug" },
			wantErr: true,
		},
		{
			name:    "title_whitespace_only",
			mutate:  func(in *SubmitBugReportInput) { in.Title = "        " },
			wantErr: true,
		},
		{
			name:    "description_too_short",
			mutate:  func(in *SubmitBugReportInput) { in.Description = "broken" },
			wantErr: true,
		},
		{
			name: "five_screenshots_ok",
			mutate: func(in *SubmitBugReportInput) {
				in.Screenshots = []string{"a", "b", "c", "d", "e"}
			},
		},
		{
			name: "too_many_screenshots",
			mutate: func(in *SubmitBugReportInput) {
				in.Screenshots = []string{"a", "b", "c", "d", "e", "f"}
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := ValidateBugReport(in)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !apperr.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
