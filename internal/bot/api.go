package bot

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
)

// API response types
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type EventResponse struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Recurrence string   `json:"recurrence"`
	Time       string   `json:"time,omitempty"`
	Color      string   `json:"color"`
	Exceptions []string `json:"exceptions"`
}

type TodoResponse struct {
	ID      int64   `json:"id"`
	Text    string  `json:"text"`
	Done    bool    `json:"done"`
	DueDate *string `json:"due_date,omitempty"`
	DueTime string  `json:"due_time,omitempty"`
	Overdue bool    `json:"overdue"`
}

type DayResponse struct {
	Date   string          `json:"date"`
	Today  bool            `json:"today"`
	Events []EventResponse `json:"events"`
	Todos  []TodoResponse  `json:"todos"`
}

type WindowResponse struct {
	Title string        `json:"title"`
	Start string        `json:"start"`
	End   string        `json:"end"`
	Days  []DayResponse `json:"days"`
}

// SetupAPI registers API routes with Basic Auth
func (b *Bot) SetupAPI() {
	if b.cfg.APIUsername == "" || b.cfg.APIPassword == "" {
		return // API disabled if no credentials
	}

	http.HandleFunc("/api/events", b.basicAuth(b.apiEvents))
	http.HandleFunc("/api/event/", b.basicAuth(b.apiEvent))
	http.HandleFunc("/api/todos", b.basicAuth(b.apiTodos))
	http.HandleFunc("/api/todo/", b.basicAuth(b.apiTodo))
	http.HandleFunc("/api/window", b.basicAuth(b.apiWindow))
	http.HandleFunc("/api/export", b.basicAuth(b.apiExport))
}

func (b *Bot) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || username != b.cfg.APIUsername || password != b.cfg.APIPassword {
			w.Header().Set("WWW-Authenticate", `Basic realm="planbot API"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (b *Bot) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func (b *Bot) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(APIResponse{Success: false, Error: msg})
}

func (b *Bot) apiEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := b.calendarService.List()
		if err != nil {
			b.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b.jsonResponse(w, eventsToResponse(events))

	case http.MethodPost:
		var req struct {
			Title      string `json:"title"`
			Date       string `json:"date"`
			Recurrence string `json:"recurrence"`
			Time       string `json:"time"`
			Color      string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.jsonError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		date, err := dateutil.ParseKey(req.Date)
		if err != nil {
			b.jsonError(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}

		rec := domain.Recurrence(req.Recurrence)
		event, err := b.calendarService.CreateEvent(req.Title, date, rec, req.Time, req.Color)
		if err != nil {
			b.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.jsonResponse(w, eventToResponse(event))

	default:
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Bot) apiEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/event/"), 10, 64)
	if err != nil {
		b.jsonError(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		event, err := b.calendarService.Get(id)
		if err != nil {
			b.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if event == nil {
			b.jsonError(w, "Not found", http.StatusNotFound)
			return
		}
		b.jsonResponse(w, eventToResponse(event))

	case http.MethodPut:
		var req struct {
			Title      string `json:"title"`
			Date       string `json:"date"`
			Recurrence string `json:"recurrence"`
			Time       string `json:"time"`
			Color      string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.jsonError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		date, err := dateutil.ParseKey(req.Date)
		if err != nil {
			b.jsonError(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		if err := b.calendarService.UpdateEvent(id, req.Title, date, domain.Recurrence(req.Recurrence), req.Time, req.Color); err != nil {
			b.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.jsonResponse(w, map[string]int64{"id": id})

	case http.MethodDelete:
		// ?date=YYYY-MM-DD deletes a single occurrence, otherwise the series
		if key := r.URL.Query().Get("date"); key != "" {
			day, err := dateutil.ParseKey(key)
			if err != nil {
				b.jsonError(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
				return
			}
			if err := b.calendarService.DeleteOccurrence(id, day); err != nil {
				b.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}
		} else if err := b.calendarService.DeleteEvent(id); err != nil {
			b.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b.jsonResponse(w, map[string]int64{"id": id})

	default:
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Bot) apiTodos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		todos, err := b.todoService.List()
		if err != nil {
			b.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		now := b.now()
		resp := make([]TodoResponse, 0, len(todos))
		for _, t := range todos {
			resp = append(resp, todoToResponse(t, now))
		}
		b.jsonResponse(w, resp)

	case http.MethodPost:
		var req struct {
			Text    string `json:"text"`
			DueDate string `json:"due_date"`
			DueTime string `json:"due_time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.jsonError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		todo, err := b.todoService.Create(req.Text)
		if err != nil {
			b.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.DueDate != "" {
			date, err := dateutil.ParseKey(req.DueDate)
			if err != nil {
				b.jsonError(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
				return
			}
			if err := b.todoService.SetDue(todo.ID, &date, req.DueTime); err != nil {
				b.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}
			todo, _ = b.todoService.Get(todo.ID)
		}
		b.jsonResponse(w, todoToResponse(todo, b.now()))

	default:
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Bot) apiTodo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/todo/"), 10, 64)
	if err != nil {
		b.jsonError(w, "Invalid todo id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req struct {
			Text    *string `json:"text"`
			Done    *bool   `json:"done"`
			DueDate *string `json:"due_date"`
			DueTime string  `json:"due_time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.jsonError(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Text != nil {
			if err := b.todoService.Rename(id, *req.Text); err != nil {
				b.jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if req.Done != nil {
			if err := b.todoService.SetDone(id, *req.Done); err != nil {
				b.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if req.DueDate != nil {
			var date *time.Time
			if *req.DueDate != "" {
				d, err := dateutil.ParseKey(*req.DueDate)
				if err != nil {
					b.jsonError(w, "Invalid date format (use YYYY-MM-DD)", http.StatusBadRequest)
					return
				}
				date = &d
			}
			if err := b.todoService.SetDue(id, date, req.DueTime); err != nil {
				b.jsonError(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		b.jsonResponse(w, map[string]int64{"id": id})

	case http.MethodDelete:
		if err := b.todoService.Delete(id); err != nil {
			b.jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		b.jsonResponse(w, map[string]int64{"id": id})

	default:
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Bot) apiWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	anchor := b.now()
	if key := r.URL.Query().Get("anchor"); key != "" {
		a, err := dateutil.ParseKey(key)
		if err != nil {
			b.jsonError(w, "Invalid anchor date (use YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		anchor = a
	}

	window, err := b.calendarService.BuildWindow(anchor)
	if err != nil {
		b.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b.jsonResponse(w, windowToResponse(window, b.now()))
}

func (b *Bot) apiExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, err := b.exportService.Export()
	if err != nil {
		b.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", `attachment; filename="planbot.ics"`)
	w.Write(data)
}

func eventToResponse(e *domain.Event) EventResponse {
	exceptions := e.Exceptions
	if exceptions == nil {
		exceptions = []string{}
	}
	return EventResponse{
		ID:         e.ID,
		Title:      e.Title,
		Date:       dateutil.Key(e.Date),
		Recurrence: string(e.Recurrence),
		Time:       e.Time,
		Color:      e.DisplayColor(),
		Exceptions: exceptions,
	}
}

func eventsToResponse(events []*domain.Event) []EventResponse {
	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventToResponse(e))
	}
	return resp
}

func todoToResponse(t *domain.Todo, now time.Time) TodoResponse {
	resp := TodoResponse{
		ID:      t.ID,
		Text:    t.Text,
		Done:    t.Done,
		DueTime: t.DueTime,
		Overdue: t.Overdue(now),
	}
	if t.DueDate != nil {
		key := dateutil.Key(*t.DueDate)
		resp.DueDate = &key
	}
	return resp
}

func windowToResponse(window *domain.Window, now time.Time) WindowResponse {
	resp := WindowResponse{
		Title: window.Title(),
		Start: dateutil.Key(window.Start),
		End:   dateutil.Key(window.End),
	}
	for _, day := range window.Days {
		d := DayResponse{
			Date:   day.Key,
			Today:  day.Today,
			Events: eventsToResponse(day.Events),
			Todos:  make([]TodoResponse, 0, len(day.Todos)),
		}
		for _, item := range day.Todos {
			d.Todos = append(d.Todos, todoToResponse(item.Todo, now))
		}
		resp.Days = append(resp.Days, d)
	}
	return resp
}
