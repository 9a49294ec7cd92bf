package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
	"planbot/internal/storage"
)

type TodoService struct {
	storage *storage.Storage
	clock   Clock
}

func NewTodoService(s *storage.Storage, clock Clock) *TodoService {
	if clock == nil {
		clock = SystemClock()
	}
	return &TodoService{storage: s, clock: clock}
}

// Create validates and stores a new todo. Todos start without a due date and
// stay off the calendar grid until one is assigned.
func (s *TodoService) Create(text string) (*domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("todo text cannot be empty")
	}

	todo := &domain.Todo{Text: text}
	if err := s.storage.CreateTodo(todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) Get(id int64) (*domain.Todo, error) {
	return s.storage.GetTodo(id)
}

func (s *TodoService) List() ([]*domain.Todo, error) {
	return s.storage.ListTodos()
}

// Rename changes the todo text. Unknown ids are a no-op.
func (s *TodoService) Rename(id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("todo text cannot be empty")
	}

	todo, err := s.storage.GetTodo(id)
	if err != nil {
		return fmt.Errorf("get todo: %w", err)
	}
	if todo == nil {
		return nil
	}

	todo.Text = text
	return s.storage.UpdateTodo(todo)
}

// SetDue assigns or clears the due date and time. Unknown ids are a no-op.
func (s *TodoService) SetDue(id int64, dueDate *time.Time, dueTime string) error {
	todo, err := s.storage.GetTodo(id)
	if err != nil {
		return fmt.Errorf("get todo: %w", err)
	}
	if todo == nil {
		return nil
	}

	if dueDate != nil {
		d := dateutil.Midnight(*dueDate)
		todo.DueDate = &d
	} else {
		todo.DueDate = nil
	}
	todo.DueTime = dueTime
	return s.storage.UpdateTodo(todo)
}

// SetDone toggles the completion flag; the record is kept either way.
func (s *TodoService) SetDone(id int64, done bool) error {
	todo, err := s.storage.GetTodo(id)
	if err != nil {
		return fmt.Errorf("get todo: %w", err)
	}
	if todo == nil {
		return nil
	}

	todo.Done = done
	return s.storage.UpdateTodo(todo)
}

// Delete removes the todo. Unknown ids are a no-op.
func (s *TodoService) Delete(id int64) error {
	return s.storage.DeleteTodo(id)
}

// CarryOverdue rolls the due date of every overdue, not-done todo forward to
// today and returns how many were moved. The overdue flag itself is never
// stored; the grid keeps deriving it from the clock.
func (s *TodoService) CarryOverdue() (int, error) {
	todos, err := s.storage.ListTodos()
	if err != nil {
		return 0, fmt.Errorf("list todos: %w", err)
	}

	now := s.clock.Now()
	today := dateutil.Midnight(now)
	moved := 0

	for _, t := range todos {
		if !t.Overdue(now) || dateutil.SameDay(*t.DueDate, today) {
			continue
		}
		due := today
		t.DueDate = &due
		if err := s.storage.UpdateTodo(t); err != nil {
			return moved, fmt.Errorf("update todo %d: %w", t.ID, err)
		}
		moved++
	}

	return moved, nil
}

// FormatTodoList formats the full todo list for the bot.
func (s *TodoService) FormatTodoList(todos []*domain.Todo) string {
	if len(todos) == 0 {
		return "No todos"
	}

	now := s.clock.Now()
	var sb strings.Builder
	for _, t := range todos {
		status := "⬜"
		if t.Done {
			status = "✅"
		}
		line := fmt.Sprintf("%s #%d %s", status, t.ID, t.Text)
		if t.DueDate != nil {
			line += " · " + dateutil.Key(*t.DueDate)
			if t.DueTime != "" {
				line += " " + t.DueTime
			}
		}
		if t.Overdue(now) {
			line += " ⏰ overdue"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
