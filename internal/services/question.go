package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type CreateQuestionInput struct {
	Text        string `json:"text"`
	Intent      string `json:"intent"`
	PersonaRole string `json:"persona_role"`
	PersonaName string `json:"persona_name"`
	Keyword     string `json:"keyword"`
	Source      string `json:"source"`
}

type UpdateQuestionInput struct {
	Text        *string `json:"text,omitempty"`
	Intent      *string `json:"intent,omitempty"`
	PersonaRole *string `json:"persona_role,omitempty"`
	Keyword     *string `json:"keyword,omitempty"`
}

// QuestionService owns the live question set. Every structural mutation runs
// in one transaction with exactly one version snapshot of the matching change
// type, and total_questions is recomputed as part of the same write.
type QuestionService interface {
	Create(ctx context.Context, projectID, benchmarkID uuid.UUID, in CreateQuestionInput) (*types.Question, error)
	List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.Question, int64, error)
	Update(ctx context.Context, projectID, benchmarkID, id uuid.UUID, in UpdateQuestionInput) (*types.Question, error)
	Delete(ctx context.Context, projectID, benchmarkID, id uuid.UUID) error
	SetApproved(ctx context.Context, projectID, benchmarkID, id uuid.UUID, approved bool) (*types.Question, error)
	SetRelevance(ctx context.Context, projectID, benchmarkID, id uuid.UUID, relevant bool) (*types.Question, error)
}

type questionService struct {
	db            *gorm.DB
	log           *logger.Logger
	benchmarkRepo repos.BenchmarkRepo
	questionRepo  repos.QuestionRepo
	versionStore  VersionStoreService
}

func NewQuestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	benchmarkRepo repos.BenchmarkRepo,
	questionRepo repos.QuestionRepo,
	versionStore VersionStoreService,
) QuestionService {
	return &questionService{
		db:            db,
		log:           baseLog.With("service", "QuestionService"),
		benchmarkRepo: benchmarkRepo,
		questionRepo:  questionRepo,
		versionStore:  versionStore,
	}
}

func (s *questionService) Create(ctx context.Context, projectID, benchmarkID uuid.UUID, in CreateQuestionInput) (*types.Question, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, apperr.Validation("text is required")
	}
	intent := types.Intent(strings.ToUpper(strings.TrimSpace(in.Intent)))
	if !intent.Valid() {
		return nil, apperr.Validation("intent %q is not a funnel stage", in.Intent)
	}
	source := types.QuestionSource(in.Source)
	switch source {
	case types.QuestionSourceManual, types.QuestionSourceGenerated, types.QuestionSourceImported:
	case "":
		source = types.QuestionSourceManual
	default:
		return nil, apperr.Validation("source %q unknown", in.Source)
	}

	benchmark, err := s.requireBenchmark(ctx, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}

	question := &types.Question{
		ID:          uuid.New(),
		BenchmarkID: benchmarkID,
		Text:        strings.TrimSpace(in.Text),
		Intent:      intent,
		PersonaRole: in.PersonaRole,
		PersonaName: in.PersonaName,
		Keyword:     in.Keyword,
		Source:      source,
		IsRelevant:  true,
	}

	err = s.mutateAndSnapshot(ctx, benchmark, types.ChangeTypeQuestionAdded, "Question added", func(txx *gorm.DB) error {
		_, err := s.questionRepo.Create(ctx, txx, []*types.Question{question})
		return err
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.Question, int64, error) {
	if _, err := s.requireBenchmark(ctx, projectID, benchmarkID); err != nil {
		return nil, 0, err
	}
	questions, err := s.questionRepo.ListByBenchmark(ctx, nil, benchmarkID)
	if err != nil {
		return nil, 0, err
	}
	return questions, int64(len(questions)), nil
}

func (s *questionService) Update(ctx context.Context, projectID, benchmarkID, id uuid.UUID, in UpdateQuestionInput) (*types.Question, error) {
	benchmark, err := s.requireBenchmark(ctx, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}
	question, err := s.requireQuestion(ctx, benchmarkID, id)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, apperr.Validation("text cannot be empty")
		}
		question.Text = strings.TrimSpace(*in.Text)
	}
	if in.Intent != nil {
		intent := types.Intent(strings.ToUpper(strings.TrimSpace(*in.Intent)))
		if !intent.Valid() {
			return nil, apperr.Validation("intent %q is not a funnel stage", *in.Intent)
		}
		question.Intent = intent
	}
	if in.PersonaRole != nil {
		question.PersonaRole = *in.PersonaRole
	}
	if in.Keyword != nil {
		question.Keyword = *in.Keyword
	}

	err = s.mutateAndSnapshot(ctx, benchmark, types.ChangeTypeQuestionModified, "Question modified", func(txx *gorm.DB) error {
		return s.questionRepo.Update(ctx, txx, question)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, projectID, benchmarkID, id uuid.UUID) error {
	benchmark, err := s.requireBenchmark(ctx, projectID, benchmarkID)
	if err != nil {
		return err
	}
	if _, err := s.requireQuestion(ctx, benchmarkID, id); err != nil {
		return err
	}
	return s.mutateAndSnapshot(ctx, benchmark, types.ChangeTypeQuestionDeleted, "Question deleted", func(txx *gorm.DB) error {
		return s.questionRepo.Delete(ctx, txx, id)
	})
}

// SetApproved flips the review flag. Approval is not a structural change, so
// no snapshot is taken.
func (s *questionService) SetApproved(ctx context.Context, projectID, benchmarkID, id uuid.UUID, approved bool) (*types.Question, error) {
	if _, err := s.requireBenchmark(ctx, projectID, benchmarkID); err != nil {
		return nil, err
	}
	question, err := s.requireQuestion(ctx, benchmarkID, id)
	if err != nil {
		return nil, err
	}
	question.IsApproved = approved
	if err := s.questionRepo.Update(ctx, nil, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *questionService) SetRelevance(ctx context.Context, projectID, benchmarkID, id uuid.UUID, relevant bool) (*types.Question, error) {
	if _, err := s.requireBenchmark(ctx, projectID, benchmarkID); err != nil {
		return nil, err
	}
	question, err := s.requireQuestion(ctx, benchmarkID, id)
	if err != nil {
		return nil, err
	}
	question.IsRelevant = relevant
	if err := s.questionRepo.Update(ctx, nil, question); err != nil {
		return nil, err
	}
	return question, nil
}

// mutateAndSnapshot runs the mutation, recomputes total_questions and takes
// the snapshot, all in one transaction so the version history can never
// detach from the live set.
func (s *questionService) mutateAndSnapshot(
	ctx context.Context,
	benchmark *types.Benchmark,
	changeType types.ChangeType,
	summary string,
	mutate func(txx *gorm.DB) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := mutate(txx); err != nil {
			return fmt.Errorf("question mutation: %w", err)
		}
		questions, err := s.questionRepo.ListByBenchmark(ctx, txx, benchmark.ID)
		if err != nil {
			return err
		}
		if err := s.benchmarkRepo.UpdateFields(ctx, txx, benchmark.ID, map[string]interface{}{
			"total_questions": len(questions),
		}); err != nil {
			return fmt.Errorf("update total questions: %w", err)
		}
		benchmark.TotalQuestions = len(questions)
		_, err = s.versionStore.Snapshot(ctx, txx, benchmark, questions, changeType, summary)
		return err
	})
}

func (s *questionService) requireBenchmark(ctx context.Context, projectID, benchmarkID uuid.UUID) (*types.Benchmark, error) {
	benchmark, err := s.benchmarkRepo.GetByID(ctx, nil, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, apperr.NotFound("benchmark", benchmarkID)
	}
	return benchmark, nil
}

func (s *questionService) requireQuestion(ctx context.Context, benchmarkID, id uuid.UUID) (*types.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, nil, benchmarkID, id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apperr.NotFound("question", id)
	}
	return question, nil
}
