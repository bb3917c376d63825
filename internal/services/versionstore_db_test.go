package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

// openVersionStoreDB builds a throwaway sqlite database with the three tables
// the version store touches. Function defaults from the postgres schema are
// replaced with constants; the code under test sets ids and timestamps itself.
func openVersionStoreDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := []string{
		`CREATE TABLE benchmark (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			scenario TEXT,
			target_roles TEXT,
			questions_per_stage INTEGER NOT NULL DEFAULT 3,
			total_questions INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			is_active NUMERIC NOT NULL DEFAULT 0,
			current_version TEXT NOT NULL DEFAULT '1.0',
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE question (
			id TEXT PRIMARY KEY,
			benchmark_id TEXT NOT NULL,
			text TEXT NOT NULL,
			intent TEXT NOT NULL,
			persona_role TEXT,
			persona_name TEXT,
			keyword TEXT,
			source TEXT NOT NULL DEFAULT 'Manual',
			is_relevant NUMERIC NOT NULL DEFAULT 1,
			is_approved NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE benchmark_version (
			id TEXT PRIMARY KEY,
			benchmark_id TEXT NOT NULL,
			version TEXT NOT NULL,
			change_type TEXT NOT NULL,
			change_summary TEXT,
			run_count INTEGER NOT NULL DEFAULT 0,
			is_current NUMERIC NOT NULL DEFAULT 0,
			snapshot TEXT,
			created_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

type versionStoreFixture struct {
	db            *gorm.DB
	benchmarkRepo repos.BenchmarkRepo
	questionRepo  repos.QuestionRepo
	store         VersionStoreService
	projectID     uuid.UUID
	benchmark     *types.Benchmark
}

func newVersionStoreFixture(t *testing.T) *versionStoreFixture {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	db := openVersionStoreDB(t)
	benchmarkRepo := repos.NewBenchmarkRepo(db, log)
	questionRepo := repos.NewQuestionRepo(db, log)
	versionRepo := repos.NewBenchmarkVersionRepo(db, log)

	projectID := uuid.New()
	benchmark := &types.Benchmark{
		ID:                uuid.New(),
		ProjectID:         projectID,
		Name:              "Launch coverage",
		Scenario:          "buying CRM software",
		TargetRoles:       types.StringList{"CTO"},
		QuestionsPerStage: 3,
		Status:            types.BenchmarkStatusReady,
		CurrentVersion:    "1.0",
	}
	if _, err := benchmarkRepo.Create(context.Background(), nil, benchmark); err != nil {
		t.Fatalf("create benchmark: %v", err)
	}

	return &versionStoreFixture{
		db:            db,
		benchmarkRepo: benchmarkRepo,
		questionRepo:  questionRepo,
		store:         NewVersionStoreService(db, log, benchmarkRepo, questionRepo, versionRepo),
		projectID:     projectID,
		benchmark:     benchmark,
	}
}

func (f *versionStoreFixture) addQuestions(t *testing.T, texts ...string) []*types.Question {
	t.Helper()
	questions := make([]*types.Question, 0, len(texts))
	for _, text := range texts {
		questions = append(questions, &types.Question{
			ID:          uuid.New(),
			BenchmarkID: f.benchmark.ID,
			Text:        text,
			Intent:      types.IntentAware,
			Source:      types.QuestionSourceManual,
			IsRelevant:  true,
		})
	}
	if _, err := f.questionRepo.Create(context.Background(), nil, questions); err != nil {
		t.Fatalf("create questions: %v", err)
	}
	return questions
}

func (f *versionStoreFixture) currentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	err := f.db.Model(&types.BenchmarkVersion{}).
		Where("benchmark_id = ? AND is_current = ?", f.benchmark.ID, true).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count current versions: %v", err)
	}
	return n
}

func snapshotTexts(t *testing.T, v *types.BenchmarkVersion) []string {
	t.Helper()
	var snap types.VersionSnapshot
	if err := json.Unmarshal(v.Snapshot, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	texts := make([]string, 0, len(snap.Questions))
	for _, q := range snap.Questions {
		texts = append(texts, q.Text)
	}
	return texts
}

func TestVersionStoreSnapshotRestoreLifecycle(t *testing.T) {
	f := newVersionStoreFixture(t)
	ctx := context.Background()

	questions := f.addQuestions(t, "what is it", "who makes it", "is it trusted")

	v1, err := f.store.Snapshot(ctx, nil, f.benchmark, questions, types.ChangeTypeInitial, "Initial question set")
	if err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if v1.Version != "1.0" || !v1.IsCurrent {
		t.Fatalf("initial version = %s current=%v, want 1.0 current", v1.Version, v1.IsCurrent)
	}

	// Structural change: drop a question, snapshot the smaller set.
	if err := f.questionRepo.Delete(ctx, nil, questions[2].ID); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	remaining, err := f.questionRepo.ListByBenchmark(ctx, nil, f.benchmark.ID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 live questions, got %d", len(remaining))
	}
	v2, err := f.store.Snapshot(ctx, nil, f.benchmark, remaining, types.ChangeTypeQuestionDeleted, "Deleted a question")
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if v2.Version != "1.1" {
		t.Fatalf("second version = %s, want 1.1", v2.Version)
	}
	if f.benchmark.CurrentVersion != "1.1" {
		t.Fatalf("benchmark current_version = %s, want 1.1", f.benchmark.CurrentVersion)
	}
	if n := f.currentCount(t); n != 1 {
		t.Fatalf("expected exactly one current version, got %d", n)
	}

	// Restore 1.0: new forward version, live set back to three questions.
	r1, err := f.store.Restore(ctx, f.projectID, f.benchmark.ID, v1.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if r1.Version != "1.2" || r1.ChangeType != types.ChangeTypeRestored || !r1.IsCurrent {
		t.Fatalf("restored version wrong: %+v", r1)
	}
	live, err := f.questionRepo.ListByBenchmark(ctx, nil, f.benchmark.ID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(live) != 3 {
		t.Fatalf("expected 3 live questions after restore, got %d", len(live))
	}
	if n := f.currentCount(t); n != 1 {
		t.Fatalf("expected exactly one current version after restore, got %d", n)
	}

	// Restoring the same source again yields a distinct forward version with
	// the same content; the source itself is never rewritten.
	r2, err := f.store.Restore(ctx, f.projectID, f.benchmark.ID, v1.ID)
	if err != nil {
		t.Fatalf("second restore: %v", err)
	}
	if r2.ID == r1.ID || r2.Version != "1.3" {
		t.Fatalf("second restore = %s (%s), want distinct 1.3", r2.Version, r2.ID)
	}
	t1, t2 := snapshotTexts(t, r1), snapshotTexts(t, r2)
	if len(t1) != len(t2) {
		t.Fatalf("restored snapshots differ in size: %d vs %d", len(t1), len(t2))
	}
	for i := range t1 {
		if t1[i] != t2[i] {
			t.Fatalf("restored snapshots differ at %d: %q vs %q", i, t1[i], t2[i])
		}
	}
	if n := f.currentCount(t); n != 1 {
		t.Fatalf("expected exactly one current version after second restore, got %d", n)
	}

	// The current version cannot be restored onto itself.
	if _, err := f.store.Restore(ctx, f.projectID, f.benchmark.ID, r2.ID); !apperr.IsInvalidState(err) {
		t.Fatalf("expected invalid state restoring current version, got %v", err)
	}

	versions, err := f.store.List(ctx, f.projectID, f.benchmark.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	got := make([]string, 0, len(versions))
	for _, v := range versions {
		got = append(got, v.Version)
	}
	want := []string{"1.3", "1.2", "1.1", "1.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("version order = %v, want %v", got, want)
		}
	}
}
