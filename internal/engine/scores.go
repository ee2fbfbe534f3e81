package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskiq/internal/domain"
	"taskiq/internal/events"
	"taskiq/internal/repo"
	"taskiq/internal/scoring"
)

// RankItem is one element of a batch ranking request.
type RankItem struct {
	TaskID        *int64
	Title         string
	Deadline      *time.Time
	DurationHours *int
}

// RankResult is the per-item outcome, in input order. Persisted reports
// whether the score reached the store; PersistNote explains a skipped or
// failed write so the caller can distinguish it from a computation failure.
type RankResult struct {
	TaskID      *int64
	Score       int
	Persisted   bool
	PersistNote string
}

// RankTasks scores each item with the priority formula, preserving input
// order. With persist set, items carrying a resolvable task id get their
// score upserted; unresolvable ids skip persistence without failing the
// batch. A task id belonging to a different user is treated as missing.
// Invalid input anywhere rejects the whole batch.
func (e Engine) RankTasks(ctx context.Context, items []RankItem, persist bool, userID int64, actorID string) ([]RankResult, error) {
	if len(items) == 0 {
		return nil, errors.New("tasks list is required")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("tasks[%d]: title is required", i)
		}
		if item.DurationHours != nil && *item.DurationHours < 0 {
			return nil, fmt.Errorf("tasks[%d]: estimated_duration_hours must not be negative", i)
		}
	}
	today := e.now().UTC()
	results := make([]RankResult, 0, len(items))
	for _, item := range items {
		res := RankResult{
			TaskID: item.TaskID,
			Score:  scoring.PriorityScore(today, item.Deadline, item.DurationHours),
		}
		if persist {
			res.Persisted, res.PersistNote = e.persistPriorityScore(ctx, item.TaskID, res.Score, userID, actorID)
		}
		results = append(results, res)
	}
	return results, nil
}

// taskVisible reports whether the task belongs to userID. A zero userID
// disables the scoping check for internal callers.
func taskVisible(t domain.Task, userID int64) bool {
	return userID == 0 || t.UserID == userID
}

func (e Engine) persistPriorityScore(ctx context.Context, taskID *int64, score int, userID int64, actorID string) (bool, string) {
	if taskID == nil {
		return false, "no task_id supplied; score not persisted"
	}
	t, err := e.Repo.GetTask(ctx, *taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, fmt.Sprintf("task %d not found; score not persisted", *taskID)
		}
		return false, fmt.Sprintf("lookup task %d: %v", *taskID, err)
	}
	if !taskVisible(t, userID) {
		return false, fmt.Sprintf("task %d not found; score not persisted", *taskID)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Sprintf("persist score for task %d: %v", *taskID, err)
	}
	defer tx.Rollback()
	err = e.Repo.UpsertPriorityScore(ctx, tx, domain.PriorityScore{
		TaskID:    *taskID,
		Score:     score,
		UpdatedAt: e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Sprintf("persist score for task %d: %v", *taskID, err)
	}
	if err := e.Events.Append(ctx, tx, "task.priority.scored", "task", fmt.Sprint(*taskID), actorID, events.EventPayload{"score": score}); err != nil {
		return false, fmt.Sprintf("persist score for task %d: %v", *taskID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Sprintf("persist score for task %d: %v", *taskID, err)
	}
	return true, ""
}

// SizeEstimateOptions carries one task's attributes for size estimation.
// HasDependencies overrides the stored dependency signal when non-nil;
// otherwise a supplied task id is consulted for recorded dependencies.
// UserID scopes task lookups: another user's task id is treated as missing.
type SizeEstimateOptions struct {
	TaskID          *int64
	UserID          int64
	Title           string
	Description     string
	DurationHours   *int
	Deadline        *time.Time
	HasDependencies *bool
	ActorID         string
}

// SizeResult is the estimator's outcome plus the persistence report.
type SizeResult struct {
	TaskID      *int64
	Tier        scoring.Tier
	Rationale   string
	RawScore    int
	Persisted   bool
	PersistNote string
}

// EstimateSize computes the T-shirt size for one task. With persist set and
// a task id supplied, the tier and rationale are upserted as the task's
// single complexity row; persistence trouble is reported on the result and
// never discards the computation.
func (e Engine) EstimateSize(ctx context.Context, opts SizeEstimateOptions, persist bool) (SizeResult, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return SizeResult{}, errors.New("title is required")
	}
	if opts.DurationHours != nil && *opts.DurationHours < 0 {
		return SizeResult{}, errors.New("estimated_duration_hours must not be negative")
	}
	hasDeps := false
	switch {
	case opts.HasDependencies != nil:
		hasDeps = *opts.HasDependencies
	case opts.TaskID != nil:
		t, err := e.Repo.GetTask(ctx, *opts.TaskID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return SizeResult{}, err
		}
		if err == nil && taskVisible(t, opts.UserID) {
			recorded, err := e.Repo.HasDependencies(ctx, *opts.TaskID)
			if err != nil {
				return SizeResult{}, err
			}
			hasDeps = recorded
		}
	}
	est := scoring.EstimateSize(e.now().UTC(), scoring.SizeInput{
		Title:           opts.Title,
		Description:     opts.Description,
		DurationHours:   opts.DurationHours,
		Deadline:        opts.Deadline,
		HasDependencies: hasDeps,
	}, e.weights())
	res := SizeResult{
		TaskID:    opts.TaskID,
		Tier:      est.Tier,
		Rationale: est.Rationale,
		RawScore:  est.RawScore,
	}
	if persist {
		res.Persisted, res.PersistNote = e.persistComplexityScore(ctx, opts.TaskID, est, opts.UserID, opts.ActorID)
	}
	return res, nil
}

func (e Engine) persistComplexityScore(ctx context.Context, taskID *int64, est scoring.Estimate, userID int64, actorID string) (bool, string) {
	if taskID == nil {
		return false, "no task_id supplied; estimate not persisted"
	}
	t, err := e.Repo.GetTask(ctx, *taskID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, fmt.Sprintf("task %d not found; estimate not persisted", *taskID)
		}
		return false, fmt.Sprintf("lookup task %d: %v", *taskID, err)
	}
	if !taskVisible(t, userID) {
		return false, fmt.Sprintf("task %d not found; estimate not persisted", *taskID)
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Sprintf("persist estimate for task %d: %v", *taskID, err)
	}
	defer tx.Rollback()
	err = e.Repo.UpsertComplexityScore(ctx, tx, domain.ComplexityScore{
		TaskID:    *taskID,
		Tier:      string(est.Tier),
		Rationale: est.Rationale,
		UpdatedAt: e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Sprintf("persist estimate for task %d: %v", *taskID, err)
	}
	if err := e.Events.Append(ctx, tx, "task.size.estimated", "task", fmt.Sprint(*taskID), actorID, events.EventPayload{"tier": string(est.Tier), "raw_score": est.RawScore}); err != nil {
		return false, fmt.Sprintf("persist estimate for task %d: %v", *taskID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Sprintf("persist estimate for task %d: %v", *taskID, err)
	}
	return true, ""
}
