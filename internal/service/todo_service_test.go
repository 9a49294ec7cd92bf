package service

import (
	"strings"
	"testing"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
	"planbot/internal/storage"
)

func newTestTodos(t *testing.T, clock Clock) (*TodoService, *storage.Storage) {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewTodoService(store, clock), store
}

func TestCreateTodoValidation(t *testing.T) {
	svc, store := newTestTodos(t, fixedClock{at("2024-01-10", "12:00:00")})

	if _, err := svc.Create("  "); err == nil {
		t.Error("expected error for blank text")
	}

	todo, err := svc.Create("  buy milk  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if todo.Text != "buy milk" {
		t.Errorf("text = %q, want trimmed", todo.Text)
	}
	if todo.DueDate != nil {
		t.Error("new todos start without a due date")
	}

	todos, _ := store.ListTodos()
	if len(todos) != 1 {
		t.Errorf("stored todos = %d, want 1", len(todos))
	}
}

func TestSetDoneKeepsRecord(t *testing.T) {
	svc, store := newTestTodos(t, fixedClock{at("2024-01-10", "12:00:00")})

	todo, _ := svc.Create("buy milk")
	if err := svc.SetDone(todo.ID, true); err != nil {
		t.Fatalf("set done: %v", err)
	}

	got, _ := store.GetTodo(todo.ID)
	if got == nil || !got.Done {
		t.Fatal("toggling done must keep the record and set the flag")
	}

	if err := svc.SetDone(todo.ID, false); err != nil {
		t.Fatalf("set undone: %v", err)
	}
	got, _ = store.GetTodo(todo.ID)
	if got.Done {
		t.Error("flag must toggle back")
	}
}

func TestTodoMutationsTolerateStaleIDs(t *testing.T) {
	svc, _ := newTestTodos(t, fixedClock{at("2024-01-10", "12:00:00")})

	due := day("2024-01-10")
	if err := svc.SetDue(999, &due, ""); err != nil {
		t.Errorf("SetDue unknown id: %v", err)
	}
	if err := svc.SetDone(999, true); err != nil {
		t.Errorf("SetDone unknown id: %v", err)
	}
	if err := svc.Rename(999, "x"); err != nil {
		t.Errorf("Rename unknown id: %v", err)
	}
	if err := svc.Delete(999); err != nil {
		t.Errorf("Delete unknown id: %v", err)
	}
}

func TestSetDueAndClear(t *testing.T) {
	svc, store := newTestTodos(t, fixedClock{at("2024-01-10", "12:00:00")})

	todo, _ := svc.Create("call bank")
	due := day("2024-01-12")
	if err := svc.SetDue(todo.ID, &due, "14:30"); err != nil {
		t.Fatalf("set due: %v", err)
	}

	got, _ := store.GetTodo(todo.ID)
	if got.DueDate == nil || dateutil.Key(*got.DueDate) != "2024-01-12" || got.DueTime != "14:30" {
		t.Errorf("got %+v", got)
	}

	if err := svc.SetDue(todo.ID, nil, ""); err != nil {
		t.Fatalf("clear due: %v", err)
	}
	got, _ = store.GetTodo(todo.ID)
	if got.DueDate != nil {
		t.Error("due date must clear")
	}
}

func TestCarryOverdue(t *testing.T) {
	clock := fixedClock{at("2024-01-10", "08:00:00")}
	svc, store := newTestTodos(t, clock)

	yesterday := day("2024-01-09")
	lastWeek := day("2024-01-03")
	today := day("2024-01-10")
	future := day("2024-01-20")

	todos := []*domain.Todo{
		{Text: "stale", DueDate: &yesterday},
		{Text: "very stale", DueDate: &lastWeek},
		{Text: "finished", DueDate: &yesterday, Done: true},
		{Text: "due today", DueDate: &today},
		{Text: "future", DueDate: &future},
		{Text: "unscheduled"},
	}
	for _, todo := range todos {
		if err := store.CreateTodo(todo); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	moved, err := svc.CarryOverdue()
	if err != nil {
		t.Fatalf("carry overdue: %v", err)
	}
	if moved != 2 {
		t.Errorf("moved = %d, want 2", moved)
	}

	all, _ := store.ListTodos()
	for _, todo := range all {
		switch todo.Text {
		case "stale", "very stale":
			if todo.DueDate == nil || dateutil.Key(*todo.DueDate) != "2024-01-10" {
				t.Errorf("%s due = %v, want today", todo.Text, todo.DueDate)
			}
		case "finished":
			if dateutil.Key(*todo.DueDate) != "2024-01-09" {
				t.Errorf("done todos must not move, due = %v", todo.DueDate)
			}
		case "future":
			if dateutil.Key(*todo.DueDate) != "2024-01-20" {
				t.Errorf("future todos must not move, due = %v", todo.DueDate)
			}
		case "unscheduled":
			if todo.DueDate != nil {
				t.Errorf("unscheduled todos must stay unscheduled")
			}
		}
	}

	// Running again right away moves nothing.
	moved, err = svc.CarryOverdue()
	if err != nil {
		t.Fatalf("second carry: %v", err)
	}
	if moved != 0 {
		t.Errorf("second run moved = %d, want 0", moved)
	}
}

func TestFormatTodoList(t *testing.T) {
	svc, store := newTestTodos(t, fixedClock{at("2024-01-10", "12:00:00")})

	if got := svc.FormatTodoList(nil); got != "No todos" {
		t.Errorf("empty list = %q", got)
	}

	due := day("2024-01-09")
	store.CreateTodo(&domain.Todo{Text: "stale", DueDate: &due})
	todos, _ := store.ListTodos()

	got := svc.FormatTodoList(todos)
	if !strings.Contains(got, "stale") || !strings.Contains(got, "2024-01-09") || !strings.Contains(got, "overdue") {
		t.Errorf("list = %q", got)
	}
}
