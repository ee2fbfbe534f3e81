package repo

import (
	"context"
	"database/sql"
	"fmt"

	"taskiq/internal/domain"
)

func (r Repo) InsertDependency(ctx context.Context, tx *sql.Tx, dep domain.TaskDependency) (domain.TaskDependency, error) {
	if dep.TaskID == dep.DependsOnTaskID {
		return dep, fmt.Errorf("task %d cannot depend on itself", dep.TaskID)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO task_dependencies(task_id,depends_on_task_id,created_at) VALUES (?,?,?)`,
		dep.TaskID, dep.DependsOnTaskID, dep.CreatedAt)
	if err != nil {
		return dep, err
	}
	dep.ID, err = res.LastInsertId()
	return dep, err
}

func (r Repo) GetDependency(ctx context.Context, id int64) (domain.TaskDependency, error) {
	var dep domain.TaskDependency
	err := r.DB.QueryRowContext(ctx, `SELECT id,task_id,depends_on_task_id,created_at FROM task_dependencies WHERE id=?`, id).
		Scan(&dep.ID, &dep.TaskID, &dep.DependsOnTaskID, &dep.CreatedAt)
	if err == sql.ErrNoRows {
		return dep, ErrNotFound
	}
	return dep, err
}

func (r Repo) ListDependencies(ctx context.Context, taskID int64) ([]domain.TaskDependency, error) {
	query := `SELECT id,task_id,depends_on_task_id,created_at FROM task_dependencies`
	var args []any
	if taskID != 0 {
		query += ` WHERE task_id=?`
		args = append(args, taskID)
	}
	query += ` ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TaskDependency
	for rows.Next() {
		var dep domain.TaskDependency
		if err := rows.Scan(&dep.ID, &dep.TaskID, &dep.DependsOnTaskID, &dep.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, dep)
	}
	return res, rows.Err()
}

func (r Repo) DeleteDependency(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// HasDependencies reports whether the task has at least one dependency.
// The scoring engine only consumes this boolean; it never walks the graph.
func (r Repo) HasDependencies(ctx context.Context, taskID int64) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT 1 FROM task_dependencies WHERE task_id=? LIMIT 1`, taskID)
	var n int
	err := row.Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// DependencyExists reports whether the exact edge is already recorded.
func (r Repo) DependencyExists(ctx context.Context, taskID, dependsOnTaskID int64) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT 1 FROM task_dependencies WHERE task_id=? AND depends_on_task_id=? LIMIT 1`,
		taskID, dependsOnTaskID)
	var n int
	err := row.Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
