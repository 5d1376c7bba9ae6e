package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

func (h *Handler) stream(ctx context.Context, req Request, resp Responder) error {
	switch req.Subcommand {
	case "create":
		return h.streamCreate(ctx, req, resp)
	case "complete":
		return h.streamComplete(req, resp)
	case "list":
		return h.streamList(req, resp)
	case "info":
		return h.streamInfo(req, resp)
	}
	return fmt.Errorf("unknown stream subcommand %q", req.Subcommand)
}

func (h *Handler) streamCreate(ctx context.Context, req Request, resp Responder) error {
	days, _ := req.Int("due_days")
	st, err := h.engine.CreateStream(aurelius.NewStream{
		UserID:      req.UserID,
		ServerID:    req.GuildID,
		ItemName:    req.String("item_name"),
		CreatorName: req.String("creator_name"),
		CreatorID:   req.String("creator_id"),
		AgencyName:  req.String("agency_name"),
		DueDays:     int(days),
		Priority:    req.String("priority"),
		StreamType:  req.String("stream_type"),
		Notes:       req.String("notes"),
	})
	if err != nil {
		return h.fail(resp, "Registration Failed", "registering your stream", err)
	}

	e := h.embed("Stream Registered Successfully",
		fmt.Sprintf("Your stream has been registered with ID: **%d**\n\n"+
			"**Item:** %s\n**Creator:** %s\n**Agency:** %s\n**Due Date:** %s\n**Priority:** %s\n**Type:** %s\n\n"+
			"%s I'll remind you when it's due!",
			st.ID, st.ItemName, st.CreatorName, orNotSpecified(st.AgencyName), h.date(st.DueDate),
			templates.Title(string(st.Priority)), templates.Title(string(st.StreamType)), Encouragement),
		ColorSuccess)
	if st.Notes != "" {
		addField(e, "Notes", st.Notes, false)
	}
	if err := h.reply(resp, e); err != nil {
		return err
	}

	h.dm(ctx, req.UserID, "Stream Registration Confirmed",
		fmt.Sprintf("Hello! I've registered your new stream:\n\n**%s** by **%s**\nDue: %s\n\n"+
			"I'll send you a reminder 1 day before the due date. Good luck with your stream!",
			st.ItemName, st.CreatorName, h.date(st.DueDate)))
	return nil
}

func (h *Handler) streamComplete(req Request, resp Responder) error {
	id, _ := req.Int("stream_id")
	st, err := h.engine.CompleteStream(req.UserID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return h.ephemeral(resp, h.embed("Stream Not Found", fmt.Sprintf("No stream found with ID: %d", id), ColorError))
	}
	if err != nil {
		return h.fail(resp, "Completion Failed", "marking your stream as complete", err)
	}

	return h.reply(resp, h.embed("Stream Completed Successfully",
		fmt.Sprintf("Congratulations! You've completed your stream for **%s** by **%s**.\n\n"+
			"**Completed on:** %s\n**Stream ID:** %d\n\n%s Great work on completing this stream!",
			st.ItemName, st.CreatorName, h.date(h.engine.Now()), st.ID, Encouragement),
		ColorSuccess))
}

func (h *Handler) streamList(req Request, resp Responder) error {
	streams, status, err := h.engine.ListStreams(req.UserID, req.GuildID, req.String("status"))
	if err != nil {
		return h.fail(resp, "List Failed", "retrieving your streams", err)
	}
	if len(streams) == 0 {
		return h.reply(resp, h.embed("No Streams Found",
			fmt.Sprintf("You don't have any %s streams at the moment. Use `/stream create` to register a new one!", status),
			ColorInfo))
	}

	e := h.embed(fmt.Sprintf("Your %s Streams", templates.Title(string(status))), "Here are your current streams:", ColorPrimary)
	now := h.engine.Now()
	for _, st := range streams {
		// Discord caps an embed at 25 fields.
		if len(e.Fields) == 25 {
			break
		}
		mark := aurelius.Urgency(aurelius.DaysLeft(st.DueDate, now))
		addField(e, fmt.Sprintf("%s ID: %d - %s", mark, st.ID, st.ItemName),
			fmt.Sprintf("**Creator:** %s\n**Due:** %s\n**Priority:** %s", st.CreatorName, h.date(st.DueDate), st.Priority),
			true)
	}
	return h.reply(resp, e)
}

func (h *Handler) streamInfo(req Request, resp Responder) error {
	id, _ := req.Int("stream_id")
	st, err := h.engine.StreamFor(req.UserID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return h.ephemeral(resp, h.embed("Stream Not Found", fmt.Sprintf("No stream found with ID: %d", id), ColorError))
	}
	if err != nil {
		return h.fail(resp, "Information Retrieval Failed", "retrieving stream information", err)
	}

	days := aurelius.DaysLeft(st.DueDate, h.engine.Now())
	e := h.embed(fmt.Sprintf("Stream Information - ID: %d", st.ID), "Detailed information about your stream:", ColorInfo)
	addField(e, "Item Name", st.ItemName, true)
	addField(e, "Creator", st.CreatorName, true)
	addField(e, "Agency", orNotSpecified(st.AgencyName), true)
	addField(e, "Due Date", h.date(st.DueDate), true)
	addField(e, "Days Left", fmt.Sprintf("%d days %s", days, aurelius.Urgency(days)), true)
	addField(e, "Priority", templates.Title(string(st.Priority)), true)
	addField(e, "Type", templates.Title(string(st.StreamType)), true)
	addField(e, "Status", templates.Title(string(st.Status)), true)
	addField(e, "Created", h.date(st.CreatedAt), true)
	if st.CompletedAt != nil {
		addField(e, "Completed", h.date(*st.CompletedAt), true)
	}
	if strings.TrimSpace(st.Notes) != "" {
		addField(e, "Notes", st.Notes, false)
	}
	return h.reply(resp, e)
}
