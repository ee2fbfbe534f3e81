// Package engine implements TaskIQ's application operations: user accounts,
// task CRUD, dependency edges, and the two scoring orchestrators (batch
// priority ranking and single-task size estimation).
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskiq/internal/config"
	"taskiq/internal/domain"
	"taskiq/internal/events"
	"taskiq/internal/repo"
	"taskiq/internal/scoring"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) weights() scoring.Weights {
	if e.Config != nil {
		return e.Config.Weights()
	}
	return scoring.DefaultWeights()
}

var taskStatuses = map[string]bool{
	"pending": true, "in_progress": true, "completed": true, "blocked": true,
}

// Users

func (e Engine) RegisterUser(ctx context.Context, name, email, password string) (domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return domain.User{}, errors.New("name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, errors.New("invalid email")
	}
	if len(password) < 8 {
		return domain.User{}, errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	u, err = e.Repo.InsertUser(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return u, err
	}
	defer tx.Rollback()
	if err := e.Events.Append(ctx, tx, "user.registered", "user", fmt.Sprint(u.ID), u.Email, events.EventPayload{"name": u.Name}); err != nil {
		return u, err
	}
	return u, tx.Commit()
}

var ErrInvalidCredentials = errors.New("invalid email or password")

func (e Engine) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	u, err := e.Repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !u.IsActive {
		return domain.User{}, errors.New("user is inactive")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (e Engine) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := e.Repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return errors.New("current password is incorrect")
	}
	if len(next) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return e.Repo.UpdateUserPassword(ctx, userID, string(hash))
}

// UpdateProfile changes name and/or email; empty fields keep their value.
func (e Engine) UpdateProfile(ctx context.Context, userID int64, name, email string) (domain.User, error) {
	u, err := e.Repo.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(name) != "" {
		u.Name = strings.TrimSpace(name)
	}
	if strings.TrimSpace(email) != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !strings.Contains(email, "@") {
			return domain.User{}, errors.New("invalid email")
		}
		u.Email = email
	}
	if err := e.Repo.UpdateUserProfile(ctx, userID, u.Name, u.Email); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Tasks

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	UserID        int64
	Title         string
	Description   string
	Deadline      *time.Time
	DurationHours *int
	Status        string
	ActorID       string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if opts.UserID == 0 {
		return domain.Task{}, errors.New("user is required")
	}
	if opts.DurationHours != nil && *opts.DurationHours < 0 {
		return domain.Task{}, errors.New("estimated_duration_hours must not be negative")
	}
	if opts.Status == "" {
		opts.Status = "pending"
	}
	if !taskStatuses[opts.Status] {
		return domain.Task{}, fmt.Errorf("invalid status %s", opts.Status)
	}
	if _, err := e.Repo.GetUser(ctx, opts.UserID); err != nil {
		return domain.Task{}, err
	}
	now := e.now().UTC().Format(time.RFC3339)
	t := domain.Task{
		UserID:            opts.UserID,
		Title:             strings.TrimSpace(opts.Title),
		Description:       opts.Description,
		Deadline:          formatDeadline(opts.Deadline),
		EstimatedDuration: opts.DurationHours,
		Status:            opts.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	t, err = e.Repo.InsertTask(ctx, tx, t)
	if err != nil {
		return domain.Task{}, err
	}
	if err := e.Events.Append(ctx, tx, "task.created", "task", fmt.Sprint(t.ID), opts.ActorID, events.EventPayload{"title": t.Title, "status": t.Status}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// TaskUpdateOptions encapsulates allowed updates; nil fields are untouched.
type TaskUpdateOptions struct {
	ID            int64
	Title         *string
	Description   *string
	Deadline      *time.Time
	ClearDeadline bool
	DurationHours *int
	Status        *string
	ActorID       string
}

func (e Engine) UpdateTask(ctx context.Context, opts TaskUpdateOptions) (domain.Task, error) {
	if opts.Title != nil && strings.TrimSpace(*opts.Title) == "" {
		return domain.Task{}, errors.New("title must not be empty")
	}
	if opts.DurationHours != nil && *opts.DurationHours < 0 {
		return domain.Task{}, errors.New("estimated_duration_hours must not be negative")
	}
	if opts.Status != nil && !taskStatuses[*opts.Status] {
		return domain.Task{}, fmt.Errorf("invalid status %s", *opts.Status)
	}
	if _, err := e.Repo.GetTask(ctx, opts.ID); err != nil {
		return domain.Task{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	upd := repo.TaskUpdate{
		Title:             opts.Title,
		Description:       opts.Description,
		ClearDeadline:     opts.ClearDeadline,
		EstimatedDuration: opts.DurationHours,
		Status:            opts.Status,
		UpdatedAt:         e.now().UTC().Format(time.RFC3339),
	}
	if opts.Deadline != nil {
		upd.Deadline = formatDeadline(opts.Deadline)
	}
	if err := e.Repo.UpdateTask(ctx, tx, opts.ID, upd); err != nil {
		return domain.Task{}, err
	}
	payload := events.EventPayload{}
	if opts.Status != nil {
		payload["status"] = *opts.Status
	}
	if err := e.Events.Append(ctx, tx, "task.updated", "task", fmt.Sprint(opts.ID), opts.ActorID, payload); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return e.Repo.GetTask(ctx, opts.ID)
}

func (e Engine) DeleteTask(ctx context.Context, id int64, actorID string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteTask(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "task.deleted", "task", fmt.Sprint(id), actorID, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// Dependencies

func (e Engine) AddDependency(ctx context.Context, taskID, dependsOnTaskID int64, actorID string) (domain.TaskDependency, error) {
	if _, err := e.Repo.GetTask(ctx, taskID); err != nil {
		return domain.TaskDependency{}, fmt.Errorf("task %d: %w", taskID, err)
	}
	if _, err := e.Repo.GetTask(ctx, dependsOnTaskID); err != nil {
		return domain.TaskDependency{}, fmt.Errorf("task %d: %w", dependsOnTaskID, err)
	}
	if exists, err := e.Repo.DependencyExists(ctx, taskID, dependsOnTaskID); err != nil {
		return domain.TaskDependency{}, err
	} else if exists {
		return domain.TaskDependency{}, fmt.Errorf("dependency %d -> %d already exists", taskID, dependsOnTaskID)
	}
	if err := e.ensureNoCycle(ctx, taskID, dependsOnTaskID); err != nil {
		return domain.TaskDependency{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.TaskDependency{}, err
	}
	defer tx.Rollback()
	dep, err := e.Repo.InsertDependency(ctx, tx, domain.TaskDependency{
		TaskID:          taskID,
		DependsOnTaskID: dependsOnTaskID,
		CreatedAt:       e.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return domain.TaskDependency{}, err
	}
	if err := e.Events.Append(ctx, tx, "dependency.added", "task", fmt.Sprint(taskID), actorID, events.EventPayload{"depends_on": dependsOnTaskID}); err != nil {
		return domain.TaskDependency{}, err
	}
	return dep, tx.Commit()
}

// ensureNoCycle walks the dependency edges from dependsOn back towards
// taskID; finding taskID means the new edge would close a loop.
func (e Engine) ensureNoCycle(ctx context.Context, taskID, dependsOn int64) error {
	seen := map[int64]bool{}
	frontier := []int64{dependsOn}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur == taskID {
			return errors.New("dependency cycle detected")
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		deps, err := e.Repo.ListDependencies(ctx, cur)
		if err != nil {
			return err
		}
		for _, d := range deps {
			frontier = append(frontier, d.DependsOnTaskID)
		}
	}
	return nil
}

func (e Engine) RemoveDependency(ctx context.Context, id int64, actorID string) error {
	dep, err := e.Repo.GetDependency(ctx, id)
	if err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.DeleteDependency(ctx, tx, id); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "dependency.removed", "task", fmt.Sprint(dep.TaskID), actorID, events.EventPayload{"depends_on": dep.DependsOnTaskID}); err != nil {
		return err
	}
	return tx.Commit()
}

func formatDeadline(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.UTC().Format(time.RFC3339)
	return &s
}
