package repo

import (
	"context"
	"database/sql"

	"taskiq/internal/domain"
)

// UpsertPriorityScore writes the single priority score row for a task,
// overwriting any previous score (at most one row per task).
func (r Repo) UpsertPriorityScore(ctx context.Context, tx *sql.Tx, s domain.PriorityScore) error {
	exec := r.DB.ExecContext
	if tx != nil {
		exec = tx.ExecContext
	}
	_, err := exec(ctx, `INSERT INTO task_priority_scores(task_id,score,updated_at) VALUES (?,?,?)
ON CONFLICT(task_id) DO UPDATE SET score=excluded.score, updated_at=excluded.updated_at`,
		s.TaskID, s.Score, s.UpdatedAt)
	return err
}

func (r Repo) GetPriorityScore(ctx context.Context, taskID int64) (domain.PriorityScore, error) {
	var s domain.PriorityScore
	err := r.DB.QueryRowContext(ctx, `SELECT task_id,score,updated_at FROM task_priority_scores WHERE task_id=?`, taskID).
		Scan(&s.TaskID, &s.Score, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// ListPriorityScores returns stored scores, limited to one user's tasks when
// userID is non-zero.
func (r Repo) ListPriorityScores(ctx context.Context, userID int64) ([]domain.PriorityScore, error) {
	q := `SELECT task_id,score,updated_at FROM task_priority_scores ORDER BY task_id ASC`
	var args []any
	if userID != 0 {
		q = `SELECT s.task_id,s.score,s.updated_at FROM task_priority_scores s
JOIN tasks t ON t.id = s.task_id WHERE t.user_id=? ORDER BY s.task_id ASC`
		args = append(args, userID)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.PriorityScore
	for rows.Next() {
		var s domain.PriorityScore
		if err := rows.Scan(&s.TaskID, &s.Score, &s.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) DeletePriorityScore(ctx context.Context, taskID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM task_priority_scores WHERE task_id=?`, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertComplexityScore writes the single T-shirt size row for a task,
// overwriting any previous estimate.
func (r Repo) UpsertComplexityScore(ctx context.Context, tx *sql.Tx, s domain.ComplexityScore) error {
	exec := r.DB.ExecContext
	if tx != nil {
		exec = tx.ExecContext
	}
	_, err := exec(ctx, `INSERT INTO task_tshirt_scores(task_id,tier,rationale,updated_at) VALUES (?,?,?,?)
ON CONFLICT(task_id) DO UPDATE SET tier=excluded.tier, rationale=excluded.rationale, updated_at=excluded.updated_at`,
		s.TaskID, s.Tier, s.Rationale, s.UpdatedAt)
	return err
}

func (r Repo) GetComplexityScore(ctx context.Context, taskID int64) (domain.ComplexityScore, error) {
	var s domain.ComplexityScore
	err := r.DB.QueryRowContext(ctx, `SELECT task_id,tier,rationale,updated_at FROM task_tshirt_scores WHERE task_id=?`, taskID).
		Scan(&s.TaskID, &s.Tier, &s.Rationale, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// ListComplexityScores returns stored estimates, limited to one user's tasks
// when userID is non-zero.
func (r Repo) ListComplexityScores(ctx context.Context, userID int64) ([]domain.ComplexityScore, error) {
	q := `SELECT task_id,tier,rationale,updated_at FROM task_tshirt_scores ORDER BY task_id ASC`
	var args []any
	if userID != 0 {
		q = `SELECT s.task_id,s.tier,s.rationale,s.updated_at FROM task_tshirt_scores s
JOIN tasks t ON t.id = s.task_id WHERE t.user_id=? ORDER BY s.task_id ASC`
		args = append(args, userID)
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.ComplexityScore
	for rows.Next() {
		var s domain.ComplexityScore
		if err := rows.Scan(&s.TaskID, &s.Tier, &s.Rationale, &s.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r Repo) DeleteComplexityScore(ctx context.Context, taskID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM task_tshirt_scores WHERE task_id=?`, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
