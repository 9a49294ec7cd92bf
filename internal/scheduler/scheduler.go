package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"planbot/config"
	"planbot/internal/service"
)

type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

type Scheduler struct {
	cron            *cron.Cron
	cfg             *config.Config
	calendarService *service.CalendarService
	todoService     *service.TodoService
	sender          MessageSender
}

func New(cfg *config.Config, calendarSvc *service.CalendarService, todoSvc *service.TodoService) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron:            c,
		cfg:             cfg,
		calendarService: calendarSvc,
		todoService:     todoSvc,
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

func (s *Scheduler) Start(ctx context.Context) error {
	agendaSpec, err := cronSpec(s.cfg.AgendaTime)
	if err != nil {
		return fmt.Errorf("agenda time: %w", err)
	}
	if _, err := s.cron.AddFunc(agendaSpec, s.morningAgenda); err != nil {
		return fmt.Errorf("add morning agenda: %w", err)
	}

	// Just after midnight: roll overdue todos forward onto today's cell.
	if _, err := s.cron.AddFunc("5 0 * * *", s.carryOverdue); err != nil {
		return fmt.Errorf("add overdue carry: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, agenda: %s)", s.cfg.Timezone, s.cfg.AgendaTime)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// cronSpec converts "HH:MM" into a daily cron expression.
func cronSpec(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("expected HH:MM, got %q", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

func (s *Scheduler) morningAgenda() {
	if s.sender == nil {
		return
	}

	today := time.Now().In(s.cfg.Timezone)
	events, todos, err := s.calendarService.OccurrencesFor(today)
	if err != nil {
		log.Printf("Error building agenda: %v", err)
		return
	}

	text := "☀️ <b>Good morning!</b>\n\n"
	if len(events) == 0 && len(todos) == 0 {
		text += "Nothing scheduled today. Enjoy!"
	} else {
		text += s.calendarService.FormatDay(today, events, todos)
	}

	if err := s.sender.SendMessage(s.cfg.OwnerChatID, text); err != nil {
		log.Printf("Error sending morning agenda: %v", err)
	}
}

func (s *Scheduler) carryOverdue() {
	moved, err := s.todoService.CarryOverdue()
	if err != nil {
		log.Printf("Error carrying overdue todos: %v", err)
		return
	}
	if moved > 0 {
		log.Printf("Carried %d overdue todos to today", moved)
	}
}
