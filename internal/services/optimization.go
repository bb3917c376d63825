package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

const DefaultRankingThreshold = 3

type IssueReason string

const (
	ReasonNotMentioned      IssueReason = "not_mentioned"
	ReasonRankingLow        IssueReason = "ranking_low"
	ReasonCompetitorFavored IssueReason = "competitor_favored"
)

type OptimizationIssue struct {
	ResultID     uuid.UUID   `json:"result_id"`
	QuestionText string      `json:"question_text"`
	Reason       IssueReason `json:"reason"`
	Ranking      *int        `json:"ranking,omitempty"`
	PersonaRole  string      `json:"persona_role,omitempty"`
	PersonaName  string      `json:"persona_name,omitempty"`
	Engine       string      `json:"engine"`
}

type JourneyOptimization struct {
	Journey    types.Intent        `json:"journey"`
	IssueCount int                 `json:"issue_count"`
	Issues     []OptimizationIssue `json:"issues"`
}

// OptimizationService classifies weak results from the latest completed run
// into the six intent-stage journeys. It is a projection, recomputed on every
// read; nothing here is persisted.
type OptimizationService interface {
	List(ctx context.Context, projectID uuid.UUID) ([]JourneyOptimization, error)
	GetByJourney(ctx context.Context, projectID uuid.UUID, journey types.Intent) (*JourneyOptimization, error)
}

type optimizationService struct {
	db           *gorm.DB
	log          *logger.Logger
	runRepo      repos.RunRepo
	resultRepo   repos.SimulationResultRepo
	questionRepo repos.QuestionRepo
	threshold    int
}

func NewOptimizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.RunRepo,
	resultRepo repos.SimulationResultRepo,
	questionRepo repos.QuestionRepo,
	threshold int,
) OptimizationService {
	if threshold <= 0 {
		threshold = DefaultRankingThreshold
	}
	return &optimizationService{
		db:           db,
		log:          baseLog.With("service", "OptimizationService"),
		runRepo:      runRepo,
		resultRepo:   resultRepo,
		questionRepo: questionRepo,
		threshold:    threshold,
	}
}

func (s *optimizationService) List(ctx context.Context, projectID uuid.UUID) ([]JourneyOptimization, error) {
	return s.project(ctx, projectID)
}

func (s *optimizationService) GetByJourney(ctx context.Context, projectID uuid.UUID, journey types.Intent) (*JourneyOptimization, error) {
	if !journey.Valid() {
		return nil, apperr.Validation("unknown journey stage %q", journey)
	}
	journeys, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range journeys {
		if journeys[i].Journey == journey {
			return &journeys[i], nil
		}
	}
	return nil, apperr.NotFound("journey", string(journey))
}

func (s *optimizationService) project(ctx context.Context, projectID uuid.UUID) ([]JourneyOptimization, error) {
	run, err := s.runRepo.LatestCompletedByProject(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return emptyJourneys(), nil
	}
	results, err := s.resultRepo.ListByRunAll(ctx, nil, run.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(results))
	seen := map[uuid.UUID]bool{}
	for _, r := range results {
		if !seen[r.QuestionID] {
			seen[r.QuestionID] = true
			ids = append(ids, r.QuestionID)
		}
	}
	questions, err := s.questionRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	return ClassifyJourneys(results, byID, s.threshold), nil
}

// ClassifyJourneys buckets issues by the owning question's intent stage.
// When a result qualifies as both ranking_low and competitor_favored,
// competitor_favored wins. Failed results and results whose question has
// since been deleted are skipped.
func ClassifyJourneys(results []*types.SimulationResult, questions map[uuid.UUID]*types.Question, threshold int) []JourneyOptimization {
	buckets := map[types.Intent][]OptimizationIssue{}
	for _, r := range results {
		if r.Failed {
			continue
		}
		q, ok := questions[r.QuestionID]
		if !ok {
			continue
		}
		reason, ok := ClassifyResult(r, threshold)
		if !ok {
			continue
		}
		buckets[q.Intent] = append(buckets[q.Intent], OptimizationIssue{
			ResultID:     r.ID,
			QuestionText: q.Text,
			Reason:       reason,
			Ranking:      r.Ranking,
			PersonaRole:  q.PersonaRole,
			PersonaName:  q.PersonaName,
			Engine:       r.Engine,
		})
	}

	out := make([]JourneyOptimization, 0, len(types.IntentStages))
	for _, stage := range types.IntentStages {
		issues := buckets[stage]
		if issues == nil {
			issues = []OptimizationIssue{}
		}
		out = append(out, JourneyOptimization{
			Journey:    stage,
			IssueCount: len(issues),
			Issues:     issues,
		})
	}
	return out
}

// ClassifyResult returns the single reason code for a weak result, or false
// when the result is healthy. Ranking is the brand's position among all
// mentioned entities, so a brand ranked below first while competitors are
// mentioned means at least one competitor placed better. A nil ranking with
// both mention flags set still counts as favored: the position is unknown
// but a competitor is present in the answer.
func ClassifyResult(r *types.SimulationResult, threshold int) (IssueReason, bool) {
	if !r.BrandMentioned {
		return ReasonNotMentioned, true
	}
	if r.CompetitorMentioned && (r.Ranking == nil || *r.Ranking > 1) {
		return ReasonCompetitorFavored, true
	}
	if r.Ranking != nil && *r.Ranking > threshold {
		return ReasonRankingLow, true
	}
	return "", false
}

func emptyJourneys() []JourneyOptimization {
	out := make([]JourneyOptimization, 0, len(types.IntentStages))
	for _, stage := range types.IntentStages {
		out = append(out, JourneyOptimization{Journey: stage, Issues: []OptimizationIssue{}})
	}
	return out
}
