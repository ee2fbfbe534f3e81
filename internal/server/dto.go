package server

import (
	"fmt"
	"time"

	"taskiq/internal/domain"
	"taskiq/internal/engine"
)

// Auth

type RegisterRequest struct {
	Name     string `json:"name" example:"Ada Lovelace"`
	Email    string `json:"email" format:"email"`
	Password string `json:"password" minLength:"8"`
}

type LoginRequest struct {
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int    `json:"expires_in" example:"1800"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" minLength:"8"`
}

// UpdateProfileRequest updates name and/or email; omitted fields keep their
// current value.
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type CreateAPIKeyRequest struct {
	Name string `json:"name,omitempty"`
}

// APIKeyResponse carries the plaintext key only on creation; reads return
// the hash-backed metadata without the key itself.
type APIKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Key       string `json:"key,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// Tasks

type CreateTaskRequest struct {
	Title                  string  `json:"title"`
	Description            *string `json:"description,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	Status                 *string `json:"status,omitempty" enum:"pending,in_progress,completed,blocked"`
}

type UpdateTaskRequest struct {
	Title                  *string `json:"title,omitempty"`
	Description            *string `json:"description,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	ClearDeadline          bool    `json:"clear_deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	Status                 *string `json:"status,omitempty" enum:"pending,in_progress,completed,blocked"`
}

// taskListItem decorates a task with its stored scores when present.
type taskListItem struct {
	domain.Task
	PriorityScore *int    `json:"priority_score,omitempty" minimum:"1" maximum:"100"`
	TshirtSize    *string `json:"tshirt_size,omitempty" enum:"XS,S,M,L,XL"`
}

type paginatedTasks struct {
	Items      []taskListItem `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Dependencies

type CreateDependencyRequest struct {
	DependsOnTaskID int64 `json:"depends_on_task_id"`
}

// Scoring

type RankTaskRequest struct {
	TaskID                 *int64  `json:"task_id,omitempty"`
	Title                  string  `json:"title"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
}

type RankRequest struct {
	Tasks   []RankTaskRequest `json:"tasks"`
	Persist bool              `json:"persist,omitempty"`
}

type RankResultResponse struct {
	TaskID      *int64 `json:"task_id,omitempty"`
	Title       string `json:"title"`
	Score       int    `json:"priority_score" minimum:"1" maximum:"100"`
	Persisted   bool   `json:"persisted"`
	PersistNote string `json:"persist_note,omitempty"`
}

type RankResponse struct {
	Results []RankResultResponse `json:"results"`
}

type SizeRequest struct {
	TaskID                 *int64  `json:"task_id,omitempty"`
	Title                  string  `json:"title"`
	Description            string  `json:"description,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours,omitempty"`
	HasDependencies        *bool   `json:"has_dependencies,omitempty"`
	Persist                *bool   `json:"persist,omitempty"`
}

type SizeResponse struct {
	TaskID      *int64 `json:"task_id,omitempty"`
	Tier        string `json:"tshirt_size" enum:"XS,S,M,L,XL"`
	Rationale   string `json:"rationale"`
	RawScore    int    `json:"raw_score"`
	Persisted   bool   `json:"persisted"`
	PersistNote string `json:"persist_note,omitempty"`
}

func rankResponse(items []RankTaskRequest, results []engine.RankResult) RankResponse {
	out := RankResponse{Results: make([]RankResultResponse, 0, len(results))}
	for i, res := range results {
		out.Results = append(out.Results, RankResultResponse{
			TaskID:      res.TaskID,
			Title:       items[i].Title,
			Score:       res.Score,
			Persisted:   res.Persisted,
			PersistNote: res.PersistNote,
		})
	}
	return out
}

func sizeResponse(res engine.SizeResult) SizeResponse {
	return SizeResponse{
		TaskID:      res.TaskID,
		Tier:        string(res.Tier),
		Rationale:   res.Rationale,
		RawScore:    res.RawScore,
		Persisted:   res.Persisted,
		PersistNote: res.PersistNote,
	}
}

// parseDeadline accepts RFC 3339 timestamps and bare dates.
func parseDeadline(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline %q: expected RFC 3339 or YYYY-MM-DD", *s)
	}
	return &t, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
