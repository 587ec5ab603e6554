package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, WAL-friendly

	"taskdeck/internal/domain"
	apperrors "taskdeck/internal/errors"
)

// SQLiteStore persists tasks and the catalog tables in a single SQLite
// database using WAL mode. A single connection is kept open for the life of
// the store; SQLite serializes writers anyway and one connection avoids
// SQLITE_BUSY churn from the UI's frequent small writes.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at dbPath and ensures the
// schema and default catalogs exist.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(dbPath)
	if trimmed == "" {
		return nil, apperrors.New(apperrors.CodeStoreOpenFailed, "database path is empty", nil)
	}
	db, err := sql.Open("sqlite", buildDSN(trimmed))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeStoreOpenFailed, fmt.Sprintf("open sqlite db %s", trimmed), err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.New(apperrors.CodeStoreOpenFailed, fmt.Sprintf("ping sqlite db %s", trimmed), err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, apperrors.New(apperrors.CodeStoreOpenFailed, "initialize schema", err)
	}
	return &SQLiteStore{dbPath: trimmed, db: db}, nil
}

// buildDSN creates a read-write WAL DSN for the given path.
func buildDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Set("mode", "rwc")
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "3000")
	q.Set("_foreign_keys", "on")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the filesystem path of the underlying database.
func (s *SQLiteStore) Path() string { return s.dbPath }

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTask inserts the task and its links/files, assigning it the next
// display_order within its sibling group. The new row id is returned.
func (s *SQLiteStore) CreateTask(ctx context.Context, t domain.Task) (int64, error) {
	if err := domain.ValidateTask(t); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeErr("begin create", err)
	}
	defer func() { _ = tx.Rollback() }()

	catID, err := ensureCategory(ctx, tx, t.Category)
	if err != nil {
		return 0, err
	}
	order, err := nextSiblingOrder(ctx, tx, t.ParentID, t.Priority, t.Status)
	if err != nil {
		return 0, err
	}
	var completedAt any
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date, category_id,
			parent_id, display_order, is_compact, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, catID,
		nullableID(t.ParentID), order, boolToInt(t.IsCompact), completedAt,
	)
	if err != nil {
		return 0, writeErr("insert task", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, writeErr("task id", err)
	}
	if err := replaceAttachments(ctx, tx, id, t.Links, t.Files); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, writeErr("commit create", err)
	}
	return id, nil
}

// UpdateTask applies the non-nil fields of upd to the task row.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, upd TaskUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 8)
	appendSet := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Title != nil {
		appendSet("title", *upd.Title)
	}
	if upd.Description != nil {
		appendSet("description", *upd.Description)
	}
	if upd.Status != nil {
		appendSet("status", *upd.Status)
	}
	if upd.Priority != nil {
		appendSet("priority", *upd.Priority)
	}
	if upd.DueDate != nil {
		appendSet("due_date", *upd.DueDate)
	}
	if upd.DisplayOrder != nil {
		appendSet("display_order", *upd.DisplayOrder)
	}
	if upd.IsCompact != nil {
		appendSet("is_compact", boolToInt(*upd.IsCompact))
	}
	if upd.SetParent {
		appendSet("parent_id", nullableID(upd.ParentID))
	}
	if upd.SetCompleted {
		if upd.CompletedAt != nil {
			appendSet("completed_at", *upd.CompletedAt)
		} else {
			appendSet("completed_at", nil)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin update", err)
	}
	defer func() { _ = tx.Rollback() }()

	if upd.Category != nil {
		catID, err := ensureCategory(ctx, tx, *upd.Category)
		if err != nil {
			return err
		}
		appendSet("category_id", catID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := tx.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return writeErr(fmt.Sprintf("update task %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not found", id), nil)
	}
	if err := tx.Commit(); err != nil {
		return writeErr("commit update", err)
	}
	return nil
}

// DeleteTaskCascade removes the task and all of its descendants in one
// transaction, then renumbers the remaining siblings of the deleted root.
// Returns the deleted ids root-first.
func (s *SQLiteStore) DeleteTaskCascade(ctx context.Context, id int64) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, writeErr("begin delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	var parentID *int64
	var priority, status string
	row := tx.QueryRowContext(ctx, "SELECT parent_id, priority, status FROM tasks WHERE id = ?", id)
	var parent sql.NullInt64
	if err := row.Scan(&parent, &priority, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not found", id), nil)
		}
		return nil, writeErr("lookup parent", err)
	}
	if parent.Valid {
		v := parent.Int64
		parentID = &v
	}

	deleted, err := collectSubtree(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	for _, did := range deleted {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", did); err != nil {
			return nil, writeErr(fmt.Sprintf("delete task %d", did), err)
		}
	}
	if err := renumberSiblings(ctx, tx, parentID, priority, status); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, writeErr("commit delete", err)
	}
	return deleted, nil
}

// collectSubtree returns id followed by all descendants, breadth-first.
func collectSubtree(ctx context.Context, tx *sql.Tx, id int64) ([]int64, error) {
	out := []int64{id}
	frontier := []int64{id}
	for len(frontier) > 0 {
		next := make([]int64, 0)
		for _, pid := range frontier {
			rows, err := tx.QueryContext(ctx,
				"SELECT id FROM tasks WHERE parent_id = ? ORDER BY display_order", pid)
			if err != nil {
				return nil, writeErr("list children", err)
			}
			for rows.Next() {
				var cid int64
				if err := rows.Scan(&cid); err != nil {
					rows.Close()
					return nil, writeErr("scan child", err)
				}
				next = append(next, cid)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, writeErr("iterate children", err)
			}
			rows.Close()
		}
		out = append(out, next...)
		frontier = next
	}
	return out, nil
}

// renumberSiblings rewrites display_order 1..n across one sibling group,
// preserving the current relative order. priority and status identify the
// group when parentID is nil.
func renumberSiblings(ctx context.Context, tx *sql.Tx, parentID *int64, priority, status string) error {
	clause, args := siblingGroupClause(parentID, priority, status)
	query := "SELECT id FROM tasks WHERE " + clause + " ORDER BY display_order, id"
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return writeErr("list siblings", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return writeErr("scan sibling", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return writeErr("iterate siblings", err)
	}
	rows.Close()
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"UPDATE tasks SET display_order = ? WHERE id = ?", i+1, id); err != nil {
			return writeErr("renumber sibling", err)
		}
	}
	return nil
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	COALESCE(c.name, ''), t.parent_id, t.display_order, t.is_compact, t.completed_at`

// ListTasksByView returns the tasks belonging to the given view with links
// and files populated. Current tasks come back parent-first in display
// order; completed tasks come back newest completion first.
func (s *SQLiteStore) ListTasksByView(ctx context.Context, view domain.View) ([]domain.Task, error) {
	var where, order string
	var args []any
	switch view {
	case domain.ViewBacklog:
		where = "t.status = ?"
		order = "t.display_order, t.id"
		args = append(args, domain.StatusBacklog)
	case domain.ViewCompleted:
		where = "t.status = ?"
		order = "t.completed_at DESC, t.id"
		args = append(args, domain.StatusCompleted)
	default:
		where = "t.status NOT IN (?, ?)"
		order = "t.parent_id IS NOT NULL, t.parent_id, t.display_order, t.id"
		args = append(args, domain.StatusBacklog, domain.StatusCompleted)
	}
	query := fmt.Sprintf(`
		SELECT %s FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE %s ORDER BY %s`, taskColumns, where, order)
	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadAttachments(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListChildren returns the direct children of parentID (top-level tasks when
// nil) in display order. Attachments are not loaded.
func (s *SQLiteStore) ListChildren(ctx context.Context, parentID *int64) ([]domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.parent_id IS NULL ORDER BY t.display_order, t.id`, taskColumns)
	args := []any{}
	if parentID != nil {
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			LEFT JOIN categories c ON c.id = t.category_id
			WHERE t.parent_id = ? ORDER BY t.display_order, t.id`, taskColumns)
		args = append(args, *parentID)
	}
	return s.queryTasks(ctx, query, args...)
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, writeErr("query tasks", err)
	}
	defer rows.Close()
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, writeErr("iterate tasks", err)
	}
	return tasks, nil
}

func scanTask(rows *sql.Rows) (domain.Task, error) {
	var t domain.Task
	var parent sql.NullInt64
	var compact int
	var completed sql.NullString
	err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.Category, &parent, &t.DisplayOrder, &compact, &completed)
	if err != nil {
		return domain.Task{}, writeErr("scan task", err)
	}
	if parent.Valid {
		v := parent.Int64
		t.ParentID = &v
	}
	t.IsCompact = compact != 0
	if completed.Valid && completed.String != "" {
		ts, err := time.Parse(time.RFC3339, completed.String)
		if err != nil {
			return domain.Task{}, apperrors.New(apperrors.CodeInvalidTaskData,
				fmt.Sprintf("task %d has malformed completed_at %q", t.ID, completed.String), err)
		}
		t.CompletedAt = &ts
	}
	return t, nil
}

// loadAttachments fills in Links and Files for every task in the slice.
func (s *SQLiteStore) loadAttachments(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Task, len(tasks))
	placeholders := make([]string, len(tasks))
	args := make([]any, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
		placeholders[i] = "?"
		args[i] = tasks[i].ID
	}
	in := strings.Join(placeholders, ", ")

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, task_id, url, label FROM task_links WHERE task_id IN ("+in+") ORDER BY display_order, id",
		args...)
	if err != nil {
		return writeErr("query links", err)
	}
	for rows.Next() {
		var l domain.Link
		var taskID int64
		if err := rows.Scan(&l.ID, &taskID, &l.URL, &l.Label); err != nil {
			rows.Close()
			return writeErr("scan link", err)
		}
		if t := byID[taskID]; t != nil {
			t.Links = append(t.Links, l)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return writeErr("iterate links", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx,
		"SELECT id, task_id, path, name FROM task_files WHERE task_id IN ("+in+") ORDER BY display_order, id",
		args...)
	if err != nil {
		return writeErr("query files", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f domain.FileRef
		var taskID int64
		if err := rows.Scan(&f.ID, &taskID, &f.Path, &f.Name); err != nil {
			return writeErr("scan file", err)
		}
		if t := byID[taskID]; t != nil {
			t.Files = append(t.Files, f)
		}
	}
	return rows.Err()
}

// ApplyStructure applies the given structural changes in a single
// transaction. Each change carries the full parent/priority/order triple so a
// reparent with its priority cascade and sibling renumber either lands
// entirely or not at all.
func (s *SQLiteStore) ApplyStructure(ctx context.Context, changes []StructChange) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin structure", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, ch := range changes {
		res, err := tx.ExecContext(ctx,
			"UPDATE tasks SET parent_id = ?, priority = ?, display_order = ? WHERE id = ?",
			nullableID(ch.ParentID), ch.Priority, ch.DisplayOrder, ch.ID)
		if err != nil {
			return writeErr(fmt.Sprintf("apply structure for task %d", ch.ID), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not found", ch.ID), nil)
		}
	}
	if err := tx.Commit(); err != nil {
		return writeErr("commit structure", err)
	}
	return nil
}

// SetCompact persists the compact flag for one task.
func (s *SQLiteStore) SetCompact(ctx context.Context, id int64, compact bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET is_compact = ? WHERE id = ?", boolToInt(compact), id)
	if err != nil {
		return writeErr(fmt.Sprintf("set compact for task %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not found", id), nil)
	}
	return nil
}

// Priorities returns the priority catalog, highest first.
func (s *SQLiteStore) Priorities(ctx context.Context) ([]domain.Priority, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color, display_order FROM priorities ORDER BY display_order, id")
	if err != nil {
		return nil, writeErr("query priorities", err)
	}
	defer rows.Close()
	var out []domain.Priority
	for rows.Next() {
		var p domain.Priority
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.DisplayOrder); err != nil {
			return nil, writeErr("scan priority", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Statuses returns the status catalog in display order.
func (s *SQLiteStore) Statuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color, display_order FROM statuses ORDER BY display_order, id")
	if err != nil {
		return nil, writeErr("query statuses", err)
	}
	defer rows.Close()
	var out []domain.Status
	for rows.Next() {
		var st domain.Status
		if err := rows.Scan(&st.ID, &st.Name, &st.Color, &st.DisplayOrder); err != nil {
			return nil, writeErr("scan status", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Categories returns the category catalog by name.
func (s *SQLiteStore) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, color FROM categories ORDER BY name")
	if err != nil {
		return nil, writeErr("query categories", err)
	}
	defer rows.Close()
	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, writeErr("scan category", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ensureCategory resolves a category name to its id, creating the row on
// first use. Empty names map to NULL.
func ensureCategory(ctx context.Context, tx *sql.Tx, name string) (any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var id int64
	row := tx.QueryRowContext(ctx, "SELECT id FROM categories WHERE name = ?", name)
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return nil, writeErr("lookup category", err)
	}
	res, err := tx.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return nil, writeErr("insert category", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return nil, writeErr("category id", err)
	}
	return id, nil
}

// siblingGroupClause builds the WHERE clause selecting one sibling group.
// Children of a parent form a group on their own; top-level tasks are
// grouped per priority within the same status partition, matching how the
// views section them.
func siblingGroupClause(parentID *int64, priority, status string) (string, []any) {
	if parentID != nil {
		return "parent_id = ?", []any{*parentID}
	}
	switch domain.ViewForStatus(status) {
	case domain.ViewBacklog:
		return "parent_id IS NULL AND status = ?", []any{domain.StatusBacklog}
	case domain.ViewCompleted:
		return "parent_id IS NULL AND status = ?", []any{domain.StatusCompleted}
	default:
		return "parent_id IS NULL AND priority = ? AND status NOT IN (?, ?)",
			[]any{priority, domain.StatusBacklog, domain.StatusCompleted}
	}
}

// nextSiblingOrder returns 1 + the highest display_order within the sibling
// group the new task lands in.
func nextSiblingOrder(ctx context.Context, tx *sql.Tx, parentID *int64, priority, status string) (int, error) {
	clause, args := siblingGroupClause(parentID, priority, status)
	var max int
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order), 0) FROM tasks WHERE "+clause, args...).Scan(&max)
	if err != nil {
		return 0, writeErr("next sibling order", err)
	}
	return max + 1, nil
}

// replaceAttachments rewrites the link and file rows for one task.
func replaceAttachments(ctx context.Context, tx *sql.Tx, taskID int64, links []domain.Link, files []domain.FileRef) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM task_links WHERE task_id = ?", taskID); err != nil {
		return writeErr("clear links", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM task_files WHERE task_id = ?", taskID); err != nil {
		return writeErr("clear files", err)
	}
	for i, l := range links {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_links (task_id, url, label, display_order) VALUES (?, ?, ?, ?)",
			taskID, l.URL, l.Label, i+1); err != nil {
			return writeErr("insert link", err)
		}
	}
	for i, f := range files {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_files (task_id, path, name, display_order) VALUES (?, ?, ?, ?)",
			taskID, f.Path, f.Name, i+1); err != nil {
			return writeErr("insert file", err)
		}
	}
	return nil
}

// SetAttachments rewrites the links and files for a task outside of a task
// row update.
func (s *SQLiteStore) SetAttachments(ctx context.Context, taskID int64, links []domain.Link, files []domain.FileRef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin attachments", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := replaceAttachments(ctx, tx, taskID, links, files); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return writeErr("commit attachments", err)
	}
	return nil
}

func writeErr(op string, err error) error {
	return apperrors.New(apperrors.CodeStoreWriteFailed, op, err)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
