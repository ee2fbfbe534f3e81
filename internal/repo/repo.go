package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskiq/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// Users

func (r Repo) InsertUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO users(name,email,password_hash,is_active,created_at) VALUES (?,?,?,?,?)`,
		u.Name, u.Email, u.PasswordHash, boolToInt(u.IsActive), u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return u, fmt.Errorf("email %s already registered", u.Email)
		}
		return u, err
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

func (r Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT id,name,email,password_hash,is_active,created_at FROM users WHERE id=?`, id))
}

func (r Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT id,name,email,password_hash,is_active,created_at FROM users WHERE email=?`, email))
}

func (r Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,email,password_hash,is_active,created_at FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		var u domain.User
		var active int
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.IsActive = active != 0
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r Repo) UpdateUserProfile(ctx context.Context, id int64, name, email string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET name=?, email=? WHERE id=?`, name, email, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("email %s already registered", email)
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET password_hash=? WHERE id=?`, passwordHash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User
	var active int
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	u.IsActive = active != 0
	return u, err
}

// Tasks

const taskColumns = `id,user_id,title,COALESCE(description,'') AS description,deadline,estimated_duration,status,created_at,updated_at`

func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) (domain.Task, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO tasks(user_id,title,description,deadline,estimated_duration,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		t.UserID, t.Title, nullable(t.Description), nullableStringPtr(t.Deadline), nullableIntPtr(t.EstimatedDuration), t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.ID, err = res.LastInsertId()
	return t, err
}

func (r Repo) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id))
}

// TaskFilters narrows ListTasks; zero values mean "no filter".
type TaskFilters struct {
	UserID   int64
	Status   string
	Limit    int
	CursorID int64
}

func (r Repo) ListTasks(ctx context.Context, f TaskFilters) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	var args []any
	if f.UserID != 0 {
		clauses = append(clauses, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.CursorID != 0 {
		clauses = append(clauses, "id>?")
		args = append(args, f.CursorID)
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY id ASC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Task
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// TaskUpdate carries partial task updates; nil fields are left untouched.
type TaskUpdate struct {
	Title             *string
	Description       *string
	Deadline          *string
	ClearDeadline     bool
	EstimatedDuration *int
	Status            *string
	UpdatedAt         string
}

func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, id int64, upd TaskUpdate) error {
	fields := []string{"updated_at=?"}
	args := []any{upd.UpdatedAt}
	if upd.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		fields = append(fields, "description=?")
		args = append(args, nullable(*upd.Description))
	}
	if upd.ClearDeadline {
		fields = append(fields, "deadline=NULL")
	} else if upd.Deadline != nil {
		fields = append(fields, "deadline=?")
		args = append(args, *upd.Deadline)
	}
	if upd.EstimatedDuration != nil {
		fields = append(fields, "estimated_duration=?")
		args = append(args, *upd.EstimatedDuration)
	}
	if upd.Status != nil {
		fields = append(fields, "status=?")
		args = append(args, *upd.Status)
	}
	args = append(args, id)
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE tasks SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteTask(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) CountTasksByStatus(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks WHERE user_id=? GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row *sql.Row) (domain.Task, error) {
	t, err := scanTaskRows(row)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	return t, err
}

func scanTaskRows(row rowScanner) (domain.Task, error) {
	var t domain.Task
	var deadline sql.NullString
	var duration sql.NullInt64
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &deadline, &duration, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if deadline.Valid {
		t.Deadline = &deadline.String
	}
	if duration.Valid {
		v := int(duration.Int64)
		t.EstimatedDuration = &v
	}
	return t, nil
}

// helpers

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
