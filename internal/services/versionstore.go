package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
	"github.com/GEO-SCOPE/geoscope-backend/internal/version"
)

// VersionStoreService keeps the append-only history of benchmark snapshots.
// Snapshots are write-once; the is_current pointer only ever moves to a newly
// created version, including on restore.
type VersionStoreService interface {
	Snapshot(ctx context.Context, tx *gorm.DB, benchmark *types.Benchmark, questions []*types.Question, changeType types.ChangeType, summary string) (*types.BenchmarkVersion, error)
	List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.BenchmarkVersion, error)
	Get(ctx context.Context, projectID, benchmarkID, versionID uuid.UUID) (*types.BenchmarkVersion, error)
	Restore(ctx context.Context, projectID, benchmarkID, versionID uuid.UUID) (*types.BenchmarkVersion, error)
	QuickRestoreCandidate(ctx context.Context, projectID, benchmarkID uuid.UUID) (*types.BenchmarkVersion, error)
}

type versionStoreService struct {
	db            *gorm.DB
	log           *logger.Logger
	benchmarkRepo repos.BenchmarkRepo
	questionRepo  repos.QuestionRepo
	versionRepo   repos.BenchmarkVersionRepo
}

func NewVersionStoreService(
	db *gorm.DB,
	baseLog *logger.Logger,
	benchmarkRepo repos.BenchmarkRepo,
	questionRepo repos.QuestionRepo,
	versionRepo repos.BenchmarkVersionRepo,
) VersionStoreService {
	return &versionStoreService{
		db:            db,
		log:           baseLog.With("service", "VersionStoreService"),
		benchmarkRepo: benchmarkRepo,
		questionRepo:  questionRepo,
		versionRepo:   versionRepo,
	}
}

// Snapshot freezes the benchmark metadata and question set by value and
// advances the current-version pointer. It must run inside the same tx as the
// question mutation that triggered it.
func (s *versionStoreService) Snapshot(
	ctx context.Context,
	tx *gorm.DB,
	benchmark *types.Benchmark,
	questions []*types.Question,
	changeType types.ChangeType,
	summary string,
) (*types.BenchmarkVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	current, err := s.versionRepo.GetCurrent(ctx, transaction, benchmark.ID)
	if err != nil {
		return nil, fmt.Errorf("load current version: %w", err)
	}

	nextVersion := "1.0"
	if current != nil {
		nextVersion = version.NextMinor(current.Version)
	} else if changeType != types.ChangeTypeInitial && changeType != types.ChangeTypeRestored {
		// First snapshot for a benchmark that skipped explicit init.
		changeType = types.ChangeTypeInitial
	}

	raw, err := json.Marshal(buildSnapshot(benchmark, questions))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.versionRepo.ClearCurrent(ctx, transaction, benchmark.ID); err != nil {
		return nil, fmt.Errorf("clear current version: %w", err)
	}

	v := &types.BenchmarkVersion{
		ID:            uuid.New(),
		BenchmarkID:   benchmark.ID,
		Version:       nextVersion,
		ChangeType:    changeType,
		ChangeSummary: summary,
		IsCurrent:     true,
		Snapshot:      raw,
	}
	if _, err := s.versionRepo.Create(ctx, transaction, v); err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	if err := s.benchmarkRepo.UpdateFields(ctx, transaction, benchmark.ID, map[string]interface{}{
		"current_version": nextVersion,
	}); err != nil {
		return nil, fmt.Errorf("advance benchmark version: %w", err)
	}
	benchmark.CurrentVersion = nextVersion
	return v, nil
}

func (s *versionStoreService) List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.BenchmarkVersion, error) {
	if _, err := s.requireBenchmark(ctx, projectID, benchmarkID); err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByBenchmark(ctx, nil, benchmarkID)
	if err != nil {
		return nil, err
	}
	SortVersionsDesc(versions)
	return versions, nil
}

func (s *versionStoreService) Get(ctx context.Context, projectID, benchmarkID, versionID uuid.UUID) (*types.BenchmarkVersion, error) {
	if _, err := s.requireBenchmark(ctx, projectID, benchmarkID); err != nil {
		return nil, err
	}
	v, err := s.versionRepo.GetByID(ctx, nil, benchmarkID, versionID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apperr.NotFound("benchmark version", versionID)
	}
	return v, nil
}

// Restore materializes an old snapshot as the live question set and records
// the operation as a new forward version. The restored-from version itself is
// never touched, so restoring the same version twice yields two distinct
// forward versions with identical content.
func (s *versionStoreService) Restore(ctx context.Context, projectID, benchmarkID, versionID uuid.UUID) (*types.BenchmarkVersion, error) {
	benchmark, err := s.requireBenchmark(ctx, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}
	source, err := s.versionRepo.GetByID(ctx, nil, benchmarkID, versionID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperr.NotFound("benchmark version", versionID)
	}
	if source.IsCurrent {
		return nil, apperr.InvalidState("version %s is already current", source.Version)
	}

	var snapshot types.VersionSnapshot
	if err := json.Unmarshal(source.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	var restored *types.BenchmarkVersion
	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.questionRepo.DeleteByBenchmark(ctx, txx, benchmarkID); err != nil {
			return fmt.Errorf("clear question set: %w", err)
		}
		questions := materializeQuestions(benchmarkID, snapshot.Questions)
		if _, err := s.questionRepo.Create(ctx, txx, questions); err != nil {
			return fmt.Errorf("materialize questions: %w", err)
		}
		if err := s.benchmarkRepo.UpdateFields(ctx, txx, benchmarkID, map[string]interface{}{
			"total_questions": len(questions),
		}); err != nil {
			return fmt.Errorf("update total questions: %w", err)
		}
		benchmark.TotalQuestions = len(questions)

		summary := fmt.Sprintf("Restored from version %s", source.Version)
		v, err := s.Snapshot(ctx, txx, benchmark, questions, types.ChangeTypeRestored, summary)
		if err != nil {
			return err
		}
		restored = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// QuickRestoreCandidate backs the dashboard's one-click undo: the most recent
// non-current version that has been run at least once, else the most recent
// non-current version.
func (s *versionStoreService) QuickRestoreCandidate(ctx context.Context, projectID, benchmarkID uuid.UUID) (*types.BenchmarkVersion, error) {
	versions, err := s.List(ctx, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}
	candidate := PickQuickRestore(versions)
	if candidate == nil {
		return nil, apperr.NotFound("restorable version for benchmark", benchmarkID)
	}
	return candidate, nil
}

func (s *versionStoreService) requireBenchmark(ctx context.Context, projectID, benchmarkID uuid.UUID) (*types.Benchmark, error) {
	benchmark, err := s.benchmarkRepo.GetByID(ctx, nil, projectID, benchmarkID)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, apperr.NotFound("benchmark", benchmarkID)
	}
	return benchmark, nil
}

func buildSnapshot(benchmark *types.Benchmark, questions []*types.Question) types.VersionSnapshot {
	snap := types.VersionSnapshot{
		Benchmark: types.SnapshotBenchmark{
			Name:              benchmark.Name,
			Scenario:          benchmark.Scenario,
			TargetRoles:       append([]string(nil), benchmark.TargetRoles...),
			QuestionsPerStage: benchmark.QuestionsPerStage,
		},
		Questions: make([]types.SnapshotQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		snap.Questions = append(snap.Questions, types.SnapshotQuestion{
			ID:          q.ID,
			Text:        q.Text,
			Intent:      q.Intent,
			PersonaRole: q.PersonaRole,
			PersonaName: q.PersonaName,
			Keyword:     q.Keyword,
			Source:      string(q.Source),
			IsRelevant:  q.IsRelevant,
			IsApproved:  q.IsApproved,
		})
	}
	return snap
}

func materializeQuestions(benchmarkID uuid.UUID, snapshots []types.SnapshotQuestion) []*types.Question {
	out := make([]*types.Question, 0, len(snapshots))
	for _, sq := range snapshots {
		out = append(out, &types.Question{
			ID:          uuid.New(),
			BenchmarkID: benchmarkID,
			Text:        sq.Text,
			Intent:      sq.Intent,
			PersonaRole: sq.PersonaRole,
			PersonaName: sq.PersonaName,
			Keyword:     sq.Keyword,
			Source:      types.QuestionSource(sq.Source),
			IsRelevant:  sq.IsRelevant,
			IsApproved:  sq.IsApproved,
		})
	}
	return out
}

// SortVersionsDesc orders by numeric major then minor, descending, so "1.10"
// displays above "1.9".
func SortVersionsDesc(versions []*types.BenchmarkVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return version.CompareMajorMinor(versions[i].Version, versions[j].Version) > 0
	})
}

// PickQuickRestore expects versions sorted descending.
func PickQuickRestore(versions []*types.BenchmarkVersion) *types.BenchmarkVersion {
	var newestNonCurrent *types.BenchmarkVersion
	for _, v := range versions {
		if v.IsCurrent {
			continue
		}
		if v.RunCount > 0 {
			return v
		}
		if newestNonCurrent == nil {
			newestNonCurrent = v
		}
	}
	return newestNonCurrent
}
