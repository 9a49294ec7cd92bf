package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"planbot/internal/dateutil"
	"planbot/internal/domain"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch cmd {
	case "start":
		b.cmdStart(chatID)
	case "help":
		b.cmdHelp(chatID)
	case "grid":
		b.renderGrid(chatID, 0, b.now())
	case "today":
		b.cmdToday(chatID)
	case "addevent":
		b.cmdAddEvent(chatID, args)
	case "todos":
		b.cmdTodos(chatID)
	case "due":
		b.cmdDue(chatID, args)
	case "done":
		b.cmdDone(chatID, args)
	case "export":
		b.cmdExport(chatID)
	case "import":
		b.cmdImport(chatID)
	case "calendars":
		b.cmdCalendars(chatID)
	default:
		b.SendMessage(chatID, "Unknown command. /help for the list")
	}
}

func (b *Bot) cmdStart(chatID int64) {
	b.SendMessage(chatID, "👋 Hi! I keep your six-week calendar and todo list.\n\n/grid — calendar\n/help — all commands")
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>Commands:</b>

<b>Calendar</b>
/grid — six-week calendar grid
/today — today's agenda
/addevent YYYY-MM-DD [HH:MM] [daily|weekly|biweekly|monthly|yearly] Title

<b>Todos</b>
/todos — todo list
/due ID YYYY-MM-DD [HH:MM] — set a due date
/done ID — mark done

<b>Data</b>
/export — download events as .ics
/import — pull events from CalDAV
/calendars — list remote calendars

💡 Plain text becomes a todo`

	b.SendMessage(chatID, text)
}

func (b *Bot) cmdToday(chatID int64) {
	today := b.now()
	events, todos, err := b.calendarService.OccurrencesFor(today)
	if err != nil {
		b.SendMessage(chatID, "❌ Error: "+err.Error())
		return
	}
	b.SendMessage(chatID, b.calendarService.FormatDay(today, events, todos))
}

func (b *Bot) cmdAddEvent(chatID int64, args string) {
	if args == "" {
		b.SendMessage(chatID, "Format: /addevent 2024-01-07 17:30 weekly Swimming")
		return
	}

	date, timeOfDay, rec, title, err := b.calendarService.ParseAddArgs(args)
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	event, err := b.calendarService.CreateEvent(title, date, rec, timeOfDay, "")
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}

	text := fmt.Sprintf("✅ Event added\n\n<b>#%d</b> %s · %s", event.ID, event.CellText(), dateutil.Key(event.Date))
	if event.Recurring() {
		text += " · " + string(event.Recurrence)
	}
	b.SendMessage(chatID, text)
	b.renderGrid(chatID, 0, event.Date)
}

func (b *Bot) cmdTodos(chatID int64) {
	todos, err := b.todoService.List()
	if err != nil {
		b.SendMessage(chatID, "❌ Error: "+err.Error())
		return
	}

	text := "<b>📋 Todos</b>\n\n" + b.todoService.FormatTodoList(todos)
	if kb := todoListKeyboard(todos); kb != nil {
		b.SendMessageWithKeyboard(chatID, text, *kb)
		return
	}
	b.SendMessage(chatID, text)
}

func (b *Bot) cmdDue(chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		b.SendMessage(chatID, "Format: /due ID YYYY-MM-DD [HH:MM]")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.SendMessage(chatID, "❌ Invalid todo id")
		return
	}

	date, err := dateutil.ParseKey(parts[1])
	if err != nil {
		b.SendMessage(chatID, "❌ Invalid date (use YYYY-MM-DD)")
		return
	}

	dueTime := ""
	if len(parts) > 2 {
		if _, err := time.Parse("15:04", parts[2]); err != nil {
			b.SendMessage(chatID, "❌ Invalid time (use HH:MM)")
			return
		}
		dueTime = parts[2]
	}

	if err := b.todoService.SetDue(id, &date, dueTime); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Todo #%d due %s", id, parts[1]))
}

func (b *Bot) cmdDone(chatID int64, args string) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.SendMessage(chatID, "Format: /done ID")
		return
	}

	if err := b.todoService.SetDone(id, true); err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ Todo #%d done", id))
}

func (b *Bot) cmdExport(chatID int64) {
	data, err := b.exportService.Export()
	if err != nil {
		b.SendMessage(chatID, "❌ Export error: "+err.Error())
		return
	}
	if err := b.SendDocument(chatID, "planbot.ics", data); err != nil {
		b.SendMessage(chatID, "❌ Send error: "+err.Error())
	}
}

func (b *Bot) cmdImport(chatID int64) {
	if !b.caldavClient.IsConfigured() {
		b.SendMessage(chatID, "CalDAV is not configured (CALDAV_URL, CALDAV_USERNAME, CALDAV_PASSWORD)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// One-shot pull of the upcoming six weeks; imported entries become plain
	// one-off events in the local collection.
	from := dateutil.WeekStart(b.now())
	to := from.AddDate(0, 0, domain.WindowDays)
	remote, err := b.caldavClient.GetEvents(ctx, from, to)
	if err != nil {
		b.SendMessage(chatID, "❌ Import error: "+err.Error())
		return
	}

	imported := 0
	for _, r := range remote {
		timeOfDay := ""
		if !r.AllDay {
			timeOfDay = r.StartTime.Format("15:04")
		}
		if _, err := b.calendarService.CreateEvent(r.Summary, r.StartTime, domain.RecurrenceNone, timeOfDay, ""); err != nil {
			continue
		}
		imported++
	}

	b.SendMessage(chatID, fmt.Sprintf("✅ Imported %d events", imported))
	b.renderGrid(chatID, 0, b.now())
}

func (b *Bot) cmdCalendars(chatID int64) {
	if !b.caldavClient.IsConfigured() {
		b.SendMessage(chatID, "CalDAV is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cals, err := b.caldavClient.DiscoverCalendars(ctx)
	if err != nil {
		b.SendMessage(chatID, "❌ Error: "+err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>Remote calendars:</b>\n\n")
	for _, c := range cals {
		sb.WriteString(fmt.Sprintf("%s\n<code>%s</code>\n\n", c.DisplayName, c.Path))
	}
	b.SendMessage(chatID, sb.String())
}
