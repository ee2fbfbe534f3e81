package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskiq/internal/config"
	"taskiq/internal/db"
	"taskiq/internal/engine"
	"taskiq/internal/migrate"
	"taskiq/internal/repo"
)

type testEnv struct {
	Engine engine.Engine
	Ctx    context.Context
	UserID int64
}

var testToday = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	eng := engine.New(conn, config.Default())
	eng.Now = func() time.Time { return testToday }
	ctx := context.Background()
	u, err := eng.RegisterUser(ctx, "Tester", "tester@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return testEnv{Engine: eng, Ctx: ctx, UserID: u.ID}
}

func (env testEnv) mustCreateTask(t *testing.T, title string, deadline *time.Time, hours *int) int64 {
	t.Helper()
	task, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		UserID:        env.UserID,
		Title:         title,
		Deadline:      deadline,
		DurationHours: hours,
		ActorID:       "tester",
	})
	if err != nil {
		t.Fatalf("create task %q: %v", title, err)
	}
	return task.ID
}

func deadlineIn(days int) *time.Time {
	d := testToday.AddDate(0, 0, days)
	return &d
}

func intPtr(v int) *int     { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Engine.Authenticate(env.Ctx, "tester@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.ID != env.UserID {
		t.Fatalf("unexpected user id %d", u.ID)
	}
	if _, err := env.Engine.Authenticate(env.Ctx, "tester@example.com", "wrong-password"); !errors.Is(err, engine.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := env.Engine.RegisterUser(env.Ctx, "Dup", "tester@example.com", "hunter2hunter2"); err == nil {
		t.Fatalf("expected duplicate email error")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{UserID: env.UserID, Title: "  "}); err == nil {
		t.Fatalf("expected title error")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		UserID: env.UserID, Title: "neg", DurationHours: intPtr(-1),
	}); err == nil {
		t.Fatalf("expected negative duration error")
	}
	if _, err := env.Engine.CreateTask(env.Ctx, engine.TaskCreateOptions{
		UserID: env.UserID, Title: "bad status", Status: "archived",
	}); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "Original", deadlineIn(5), intPtr(4))
	status := "in_progress"
	task, err := env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{ID: id, Status: &status, ActorID: "tester"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if task.Status != "in_progress" || task.Title != "Original" {
		t.Fatalf("partial update clobbered fields: %+v", task)
	}
	task, err = env.Engine.UpdateTask(env.Ctx, engine.TaskUpdateOptions{ID: id, ClearDeadline: true, ActorID: "tester"})
	if err != nil {
		t.Fatalf("clear deadline: %v", err)
	}
	if task.Deadline != nil {
		t.Fatalf("deadline not cleared")
	}
}

func TestDependencyCycleRejected(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustCreateTask(t, "a", nil, nil)
	b := env.mustCreateTask(t, "b", nil, nil)
	c := env.mustCreateTask(t, "c", nil, nil)
	if _, err := env.Engine.AddDependency(env.Ctx, a, b, "tester"); err != nil {
		t.Fatalf("a->b: %v", err)
	}
	if _, err := env.Engine.AddDependency(env.Ctx, b, c, "tester"); err != nil {
		t.Fatalf("b->c: %v", err)
	}
	if _, err := env.Engine.AddDependency(env.Ctx, c, a, "tester"); err == nil {
		t.Fatalf("expected cycle error for c->a")
	}
	if _, err := env.Engine.AddDependency(env.Ctx, a, a, "tester"); err == nil {
		t.Fatalf("expected self-dependency error")
	}
	if _, err := env.Engine.AddDependency(env.Ctx, a, b, "tester"); err == nil {
		t.Fatalf("expected duplicate edge error")
	}
}

func TestRankTasksOrderAndScores(t *testing.T) {
	env := newTestEnv(t)
	results, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{Title: "far", Deadline: deadlineIn(15), DurationHours: intPtr(1)},
		{Title: "today", Deadline: deadlineIn(0), DurationHours: intPtr(4)},
		{Title: "bare"},
	}, false, env.UserID, "tester")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// input order preserved, not sorted by score
	if results[0].Score != 22 || results[1].Score != 88 || results[2].Score != 100 {
		t.Fatalf("unexpected scores: %+v", results)
	}
	for _, res := range results {
		if res.Score < 1 || res.Score > 100 {
			t.Fatalf("score %d out of range", res.Score)
		}
	}
}

func TestRankTasksRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{Title: "fine"},
		{Title: "bad", DurationHours: intPtr(-3)},
	}, false, env.UserID, "tester")
	if err == nil || !strings.Contains(err.Error(), "tasks[1]") {
		t.Fatalf("expected batch rejection naming item 1, got %v", err)
	}
	if _, err := env.Engine.RankTasks(env.Ctx, nil, false, env.UserID, "tester"); err == nil {
		t.Fatalf("expected empty batch error")
	}
}

func TestRankTasksPersistence(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "persist me", deadlineIn(2), intPtr(3))
	missing := int64Ptr(9999)
	results, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "persist me", Deadline: deadlineIn(2), DurationHours: intPtr(3)},
		{TaskID: missing, Title: "ghost"},
		{Title: "anonymous"},
	}, true, env.UserID, "tester")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if !results[0].Persisted {
		t.Fatalf("expected first item persisted: %+v", results[0])
	}
	if results[1].Persisted || !strings.Contains(results[1].PersistNote, "not found") {
		t.Fatalf("expected skip note for missing task: %+v", results[1])
	}
	if results[2].Persisted || results[2].PersistNote == "" {
		t.Fatalf("expected skip note for missing task_id: %+v", results[2])
	}
	stored, err := env.Engine.Repo.GetPriorityScore(env.Ctx, id)
	if err != nil {
		t.Fatalf("get stored score: %v", err)
	}
	if stored.Score != results[0].Score {
		t.Fatalf("stored %d, computed %d", stored.Score, results[0].Score)
	}
}

func TestRankTasksUpsertOverwrites(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "rescore", deadlineIn(1), intPtr(1))
	if _, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "rescore", Deadline: deadlineIn(1), DurationHours: intPtr(1)},
	}, true, env.UserID, "tester"); err != nil {
		t.Fatalf("first rank: %v", err)
	}
	if _, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "rescore", Deadline: deadlineIn(20), DurationHours: intPtr(10)},
	}, true, env.UserID, "tester"); err != nil {
		t.Fatalf("second rank: %v", err)
	}
	scores, err := env.Engine.Repo.ListPriorityScores(env.Ctx, env.UserID)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected single row after rescore, got %d", len(scores))
	}
	if scores[0].Score != 1 {
		t.Fatalf("expected second call's score 1, got %d", scores[0].Score)
	}
}

func TestEstimateSizePersistsAndUpserts(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "Implement OAuth integration", deadlineIn(5), intPtr(12))
	dep := env.mustCreateTask(t, "Provision identity provider", nil, nil)
	if _, err := env.Engine.AddDependency(env.Ctx, id, dep, "tester"); err != nil {
		t.Fatalf("add dep: %v", err)
	}

	res, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		TaskID:        &id,
		UserID:        env.UserID,
		Title:         "Implement OAuth integration",
		Description:   "Add OAuth 2.0 providers",
		DurationHours: intPtr(12),
		Deadline:      deadlineIn(5),
		ActorID:       "tester",
	}, true)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if res.Tier != "M" {
		t.Fatalf("tier = %s, want M (raw %d)", res.Tier, res.RawScore)
	}
	if !res.Persisted {
		t.Fatalf("expected persisted result: %+v", res)
	}
	// dependency signal came from the store, not the request
	if !strings.Contains(res.Rationale, "has dependencies") {
		t.Fatalf("rationale %q missing stored dependency signal", res.Rationale)
	}

	// second call overwrites the single row
	res2, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		TaskID:  &id,
		UserID:  env.UserID,
		Title:   "Tidy up",
		ActorID: "tester",
	}, true)
	if err != nil {
		t.Fatalf("second estimate: %v", err)
	}
	rows, err := env.Engine.Repo.ListComplexityScores(env.Ctx, env.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per task, got %d", len(rows))
	}
	if rows[0].Tier != string(res2.Tier) {
		t.Fatalf("stored tier %s does not reflect second call %s", rows[0].Tier, res2.Tier)
	}
}

func TestEstimateSizeMissingTaskStillComputes(t *testing.T) {
	env := newTestEnv(t)
	ghost := int64Ptr(4242)
	res, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		TaskID:        ghost,
		UserID:        env.UserID,
		Title:         "Refactor data migration",
		DurationHours: intPtr(30),
		ActorID:       "tester",
	}, true)
	if err != nil {
		t.Fatalf("estimate should not fail on persistence: %v", err)
	}
	if res.Tier == "" || res.Rationale == "" {
		t.Fatalf("computation missing: %+v", res)
	}
	if res.Persisted || !strings.Contains(res.PersistNote, "not found") {
		t.Fatalf("expected distinct not-found note: %+v", res)
	}
}

func TestEstimateSizeRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{Title: ""}, false); err == nil {
		t.Fatalf("expected title error")
	}
	if _, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		Title: "x", DurationHours: intPtr(-1),
	}, false); err == nil {
		t.Fatalf("expected negative duration error")
	}
}

func TestScoresScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "private work", deadlineIn(2), intPtr(3))
	dep := env.mustCreateTask(t, "prerequisite", nil, nil)
	if _, err := env.Engine.AddDependency(env.Ctx, id, dep, "tester"); err != nil {
		t.Fatalf("add dep: %v", err)
	}
	other, err := env.Engine.RegisterUser(env.Ctx, "Other", "other@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	results, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "private work", Deadline: deadlineIn(2), DurationHours: intPtr(3)},
	}, true, other.ID, "other")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if results[0].Persisted || !strings.Contains(results[0].PersistNote, "not found") {
		t.Fatalf("foreign task id should read as missing: %+v", results[0])
	}
	if _, err := env.Engine.Repo.GetPriorityScore(env.Ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("score row written across owners: %v", err)
	}

	res, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		TaskID: &id, UserID: other.ID, Title: "private work", ActorID: "other",
	}, true)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if res.Persisted || !strings.Contains(res.PersistNote, "not found") {
		t.Fatalf("foreign estimate should not persist: %+v", res)
	}
	// the owner's dependency edge must not leak into the rationale
	if strings.Contains(res.Rationale, "has dependencies") {
		t.Fatalf("foreign dependency state leaked: %s", res.Rationale)
	}
	if _, err := env.Engine.Repo.GetComplexityScore(env.Ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("estimate row written across owners: %v", err)
	}
}

func TestScoreRowsCascadeWithTask(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "short lived", deadlineIn(1), intPtr(2))
	if _, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "short lived", Deadline: deadlineIn(1), DurationHours: intPtr(2)},
	}, true, env.UserID, "tester"); err != nil {
		t.Fatalf("rank: %v", err)
	}
	if _, err := env.Engine.EstimateSize(env.Ctx, engine.SizeEstimateOptions{
		TaskID: &id, UserID: env.UserID, Title: "short lived", ActorID: "tester",
	}, true); err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if err := env.Engine.DeleteTask(env.Ctx, id, "tester"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.Engine.Repo.GetPriorityScore(env.Ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("priority row survived task delete: %v", err)
	}
	if _, err := env.Engine.Repo.GetComplexityScore(env.Ctx, id); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("complexity row survived task delete: %v", err)
	}
}

func TestEventsAppendedOnScoring(t *testing.T) {
	env := newTestEnv(t)
	id := env.mustCreateTask(t, "evented", deadlineIn(3), intPtr(2))
	if _, err := env.Engine.RankTasks(env.Ctx, []engine.RankItem{
		{TaskID: &id, Title: "evented", Deadline: deadlineIn(3), DurationHours: intPtr(2)},
	}, true, env.UserID, "tester"); err != nil {
		t.Fatalf("rank: %v", err)
	}
	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, "task.priority.scored", "", "")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evts) == 0 {
		t.Fatalf("expected task.priority.scored event")
	}
}
