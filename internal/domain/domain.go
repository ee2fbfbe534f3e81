package domain

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}

type Task struct {
	ID                int64   `json:"id"`
	UserID            int64   `json:"user_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description,omitempty"`
	Deadline          *string `json:"deadline,omitempty" format:"date-time"`
	EstimatedDuration *int    `json:"estimated_duration_hours,omitempty"`
	Status            string  `json:"status" enum:"pending,in_progress,completed,blocked"`
	CreatedAt         string  `json:"created_at" format:"date-time"`
	UpdatedAt         string  `json:"updated_at" format:"date-time"`
}

type TaskDependency struct {
	ID              int64  `json:"id"`
	TaskID          int64  `json:"task_id"`
	DependsOnTaskID int64  `json:"depends_on_task_id"`
	CreatedAt       string `json:"created_at" format:"date-time"`
}

// PriorityScore is the optional 1:1 satellite row holding a task's
// priority score, overwritten on every persisted ranking.
type PriorityScore struct {
	TaskID    int64  `json:"task_id"`
	Score     int    `json:"score" minimum:"1" maximum:"100"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

// ComplexityScore is the optional 1:1 satellite row holding a task's
// T-shirt size estimate and the rationale that produced it.
type ComplexityScore struct {
	TaskID    int64  `json:"task_id"`
	Tier      string `json:"tier" enum:"XS,S,M,L,XL"`
	Rationale string `json:"rationale"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
