package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planbot/internal/dateutil"
	"planbot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		// Calendar dates are stored as canonical YYYY-MM-DD keys so a local
		// day round-trips without timezone drift.
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			recurrence TEXT NOT NULL DEFAULT 'none',
			time TEXT DEFAULT '',
			color TEXT DEFAULT '',
			exceptions TEXT DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			done INTEGER DEFAULT 0,
			due_date TEXT,
			due_time TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_recurrence ON events(recurrence)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_todos_done ON todos(done)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for ALTER TABLE
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

// === Events ===

func (s *Storage) CreateEvent(e *domain.Event) error {
	exceptions, err := marshalExceptions(e.Exceptions)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO events (title, date, recurrence, time, color, exceptions) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Title, dateutil.Key(e.Date), string(e.Recurrence), e.Time, e.Color, exceptions,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetEvent(id int64) (*domain.Event, error) {
	row := s.db.QueryRow(
		`SELECT id, title, date, recurrence, time, color, exceptions, created_at FROM events WHERE id = ?`,
		id,
	)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// ListEvents returns all events in insertion order. The grid relies on this
// order being stable.
func (s *Storage) ListEvents() ([]*domain.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, title, date, recurrence, time, color, exceptions, created_at FROM events ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Storage) UpdateEvent(e *domain.Event) error {
	exceptions, err := marshalExceptions(e.Exceptions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE events SET title = ?, date = ?, recurrence = ?, time = ?, color = ?, exceptions = ? WHERE id = ?`,
		e.Title, dateutil.Key(e.Date), string(e.Recurrence), e.Time, e.Color, exceptions, e.ID,
	)
	return err
}

func (s *Storage) UpdateEventExceptions(id int64, exceptions []string) error {
	data, err := marshalExceptions(exceptions)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE events SET exceptions = ? WHERE id = ?`, data, id)
	return err
}

func (s *Storage) DeleteEvent(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var dateKey, recurrence, exceptions string
	if err := row.Scan(&e.ID, &e.Title, &dateKey, &recurrence, &e.Time, &e.Color, &exceptions, &e.CreatedAt); err != nil {
		return nil, err
	}
	date, err := dateutil.ParseKey(dateKey)
	if err != nil {
		return nil, fmt.Errorf("event %d: bad date %q: %w", e.ID, dateKey, err)
	}
	e.Date = date
	e.Recurrence = domain.Recurrence(recurrence)
	if err := json.Unmarshal([]byte(exceptions), &e.Exceptions); err != nil {
		return nil, fmt.Errorf("event %d: bad exceptions: %w", e.ID, err)
	}
	return e, nil
}

func marshalExceptions(exceptions []string) (string, error) {
	if exceptions == nil {
		exceptions = []string{}
	}
	data, err := json.Marshal(exceptions)
	if err != nil {
		return "", fmt.Errorf("marshal exceptions: %w", err)
	}
	return string(data), nil
}

// === Todos ===

func (s *Storage) CreateTodo(t *domain.Todo) error {
	res, err := s.db.Exec(
		`INSERT INTO todos (text, done, due_date, due_time) VALUES (?, ?, ?, ?)`,
		t.Text, t.Done, todoDueKey(t), t.DueTime,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	t.ID = id
	t.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetTodo(id int64) (*domain.Todo, error) {
	row := s.db.QueryRow(
		`SELECT id, text, done, due_date, due_time, created_at FROM todos WHERE id = ?`,
		id,
	)
	t, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// ListTodos returns all todos in insertion order.
func (s *Storage) ListTodos() ([]*domain.Todo, error) {
	rows, err := s.db.Query(
		`SELECT id, text, done, due_date, due_time, created_at FROM todos ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*domain.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *Storage) UpdateTodo(t *domain.Todo) error {
	_, err := s.db.Exec(
		`UPDATE todos SET text = ?, done = ?, due_date = ?, due_time = ? WHERE id = ?`,
		t.Text, t.Done, todoDueKey(t), t.DueTime, t.ID,
	)
	return err
}

func (s *Storage) DeleteTodo(id int64) error {
	_, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	return err
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	t := &domain.Todo{}
	var due sql.NullString
	if err := row.Scan(&t.ID, &t.Text, &t.Done, &due, &t.DueTime, &t.CreatedAt); err != nil {
		return nil, err
	}
	if due.Valid && due.String != "" {
		d, err := dateutil.ParseKey(due.String)
		if err != nil {
			return nil, fmt.Errorf("todo %d: bad due date %q: %w", t.ID, due.String, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

func todoDueKey(t *domain.Todo) any {
	if t.DueDate == nil {
		return nil
	}
	return dateutil.Key(*t.DueDate)
}

// Load returns both collections at session start. Absent data yields empty
// slices, never an error.
func (s *Storage) Load() ([]*domain.Event, []*domain.Todo, error) {
	events, err := s.ListEvents()
	if err != nil {
		return nil, nil, fmt.Errorf("load events: %w", err)
	}
	todos, err := s.ListTodos()
	if err != nil {
		return nil, nil, fmt.Errorf("load todos: %w", err)
	}
	return events, todos, nil
}
