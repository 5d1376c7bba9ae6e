package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

func (h *Handler) schedule(req Request, resp Responder) error {
	switch req.Subcommand {
	case "weekly":
		return h.scheduleWeekly(req, resp)
	case "view":
		return h.scheduleView(req, resp)
	case "reminder":
		return h.scheduleReminder(req, resp)
	}
	return fmt.Errorf("unknown schedule subcommand %q", req.Subcommand)
}

// dayLines renders the non-empty days of a week, one per line.
func dayLines(days storage.WeekDays) []string {
	var lines []string
	for i, slot := range days.Slots() {
		if len(*slot) > 0 {
			lines = append(lines, fmt.Sprintf("**%s:** %s", templates.Title(aurelius.Weekdays[i]), strings.Join(*slot, ", ")))
		}
	}
	return lines
}

func (h *Handler) scheduleWeekly(req Request, resp Responder) error {
	byDay := make(map[string]string, len(aurelius.Weekdays))
	for _, d := range aurelius.Weekdays {
		byDay[d] = req.String(d)
	}
	days := aurelius.ParseWeekDays(byDay)

	sc, _, err := h.engine.SaveWeeklySchedule(req.UserID, req.GuildID, days)
	if err != nil {
		return h.fail(resp, "Schedule Update Failed", "updating your schedule", err)
	}

	e := h.embed("Weekly Schedule Updated",
		fmt.Sprintf("Your schedule for the week of %s has been updated successfully!", h.date(sc.WeekStart)), ColorSuccess)
	if lines := dayLines(days); len(lines) > 0 {
		addField(e, "Your Schedule", strings.Join(lines, "\n"), false)
	}
	return h.reply(resp, e)
}

func (h *Handler) scheduleView(req Request, resp Responder) error {
	offset, _ := req.Int("week_offset")
	sc, start, err := h.engine.ViewSchedule(req.UserID, int(offset))
	if err != nil {
		return h.fail(resp, "Schedule Retrieval Failed", "retrieving your schedule", err)
	}
	if sc == nil {
		return h.reply(resp, h.embed("No Schedule Found",
			fmt.Sprintf("You don't have a schedule for the week of %s.\n\nUse `/schedule weekly` to create one!", h.date(start)),
			ColorInfo))
	}

	e := h.embed("Weekly Schedule - "+h.date(start), "Here's your schedule for this week:", ColorPrimary)
	for i, slot := range sc.Days.Slots() {
		if len(*slot) == 0 {
			continue
		}
		items := make([]string, len(*slot))
		for j, a := range *slot {
			items[j] = SymbolBullet + " " + a
		}
		addField(e, templates.Title(aurelius.Weekdays[i]), strings.Join(items, "\n"), true)
	}
	if len(e.Fields) == 0 {
		e.Description = "No activities scheduled for this week."
	}
	addField(e, "Last Updated", h.date(sc.UpdatedAt), false)
	return h.reply(resp, e)
}

func (h *Handler) scheduleReminder(req Request, resp Responder) error {
	day, clock, message := req.String("day"), req.String("time"), req.String("message")
	if _, _, err := aurelius.ParseClock(clock); err != nil {
		return h.ephemeral(resp, h.embed("Invalid Time Format", "Please use HH:MM format (e.g., 09:30, 14:00)", ColorError))
	}

	r, err := h.engine.CreateWeeklyReminder(req.UserID, req.GuildID, day, clock, message)
	if errors.Is(err, storage.ErrInvalidValue) {
		return h.ephemeral(resp, h.embed("Invalid Day", fmt.Sprintf("%q is not a day of the week.", day), ColorError))
	}
	if err != nil {
		return h.fail(resp, "Reminder Setup Failed", "setting up your reminder", err)
	}

	return h.reply(resp, h.embed("Weekly Reminder Set",
		fmt.Sprintf("Your reminder has been set for every **%s at %s**.\n\n**Message:** %s\n**Next reminder:** %s",
			templates.Title(day), clock, message, h.dateTime(r.ScheduledFor)),
		ColorSuccess))
}
