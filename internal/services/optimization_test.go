package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func TestClassifyResult(t *testing.T) {
	cases := []struct {
		name       string
		result     *types.SimulationResult
		wantReason IssueReason
		wantIssue  bool
	}{
		{
			name:       "brand_missing",
			result:     &types.SimulationResult{BrandMentioned: false},
			wantReason: ReasonNotMentioned,
			wantIssue:  true,
		},
		{
			name:      "ranking_below_threshold_is_healthy",
			result:    &types.SimulationResult{BrandMentioned: true, Ranking: intPtr(2)},
			wantIssue: false,
		},
		{
			name:       "ranking_low",
			result:     &types.SimulationResult{BrandMentioned: true, Ranking: intPtr(5)},
			wantReason: ReasonRankingLow,
			wantIssue:  true,
		},
		{
			name:       "competitor_ahead",
			result:     &types.SimulationResult{BrandMentioned: true, CompetitorMentioned: true, Ranking: intPtr(2)},
			wantReason: ReasonCompetitorFavored,
			wantIssue:  true,
		},
		{
			// Both ranking_low and competitor_favored hold; competitor_favored
			// is the deterministic pick.
			name:       "competitor_favored_takes_precedence",
			result:     &types.SimulationResult{BrandMentioned: true, CompetitorMentioned: true, Ranking: intPtr(5)},
			wantReason: ReasonCompetitorFavored,
			wantIssue:  true,
		},
		{
			// Position unknown but a competitor showed up in the answer.
			name:       "competitor_present_without_ranking",
			result:     &types.SimulationResult{BrandMentioned: true, CompetitorMentioned: true},
			wantReason: ReasonCompetitorFavored,
			wantIssue:  true,
		},
		{
			name:      "first_place_with_competitors_is_healthy",
			result:    &types.SimulationResult{BrandMentioned: true, CompetitorMentioned: true, Ranking: intPtr(1)},
			wantIssue: false,
		},
		{
			name:      "no_ranking_no_competitors_is_healthy",
			result:    &types.SimulationResult{BrandMentioned: true},
			wantIssue: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason, ok := ClassifyResult(tc.result, DefaultRankingThreshold)
			if ok != tc.wantIssue {
				t.Fatalf("issue=%v, want %v", ok, tc.wantIssue)
			}
			if ok && reason != tc.wantReason {
				t.Fatalf("reason=%s, want %s", reason, tc.wantReason)
			}
		})
	}
}

func TestClassifyJourneys(t *testing.T) {
	awareQ := &types.Question{ID: uuid.New(), Text: "what is it", Intent: types.IntentAware, PersonaRole: "CTO"}
	competeQ := &types.Question{ID: uuid.New(), Text: "vs rival", Intent: types.IntentCompete}
	questions := map[uuid.UUID]*types.Question{awareQ.ID: awareQ, competeQ.ID: competeQ}

	results := []*types.SimulationResult{
		{ID: uuid.New(), QuestionID: awareQ.ID, Engine: "chatgpt", BrandMentioned: false},
		{ID: uuid.New(), QuestionID: competeQ.ID, Engine: "claude", BrandMentioned: true, Ranking: intPtr(1)},
		{ID: uuid.New(), QuestionID: competeQ.ID, Engine: "chatgpt", Failed: true},
		{ID: uuid.New(), QuestionID: uuid.New(), Engine: "claude", BrandMentioned: false}, // deleted question
	}

	journeys := ClassifyJourneys(results, questions, DefaultRankingThreshold)

	if len(journeys) != len(types.IntentStages) {
		t.Fatalf("expected all %d stages, got %d", len(types.IntentStages), len(journeys))
	}
	for _, j := range journeys {
		switch j.Journey {
		case types.IntentAware:
			if j.IssueCount != 1 {
				t.Fatalf("AWARE: expected 1 issue, got %d", j.IssueCount)
			}
			issue := j.Issues[0]
			if issue.Reason != ReasonNotMentioned || issue.QuestionText != "what is it" || issue.PersonaRole != "CTO" {
				t.Fatalf("AWARE issue wrong: %+v", issue)
			}
		default:
			if j.IssueCount != 0 {
				t.Fatalf("%s: expected clean stage, got %d issues", j.Journey, j.IssueCount)
			}
			if j.Issues == nil {
				t.Fatalf("%s: issues must be an empty list, not nil", j.Journey)
			}
		}
	}
}
