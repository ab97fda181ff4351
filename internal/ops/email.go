package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pk049/Email-agent/internal/mailbox"
)

// EmailOperations builds the full operation set over the mailbox connector.
// Every handler is a thin remote-API call; a withheld connection surfaces as
// an ordinary failure payload, never as a loop fault.
func EmailOperations(conn mailbox.Connector) []*Operation {
	e := emailOps{conn: conn}
	return []*Operation{
		{
			Name:        "send_email",
			Description: "Send an email to a recipient.",
			Parameters:  objectSchema(`"to":{"type":"string"},"subject":{"type":"string"},"body":{"type":"string"}`, "to", "subject", "body"),
			Run:         e.sendEmail,
		},
		{
			Name:        "get_recent_emails",
			Description: "Get the most recent emails.",
			Parameters:  objectSchema(`"max_results":{"type":"integer"},"include_spam_trash":{"type":"boolean"}`),
			Run:         e.recentEmails,
		},
		{
			Name:        "search_emails",
			Description: "Search emails using Gmail query syntax.",
			Parameters:  objectSchema(`"query":{"type":"string"},"max_results":{"type":"integer"}`, "query"),
			Run:         e.searchEmails,
		},
		{
			Name:        "count_emails",
			Description: "Count emails matching a query (fast, no details).",
			Parameters:  objectSchema(`"query":{"type":"string"}`),
			Run:         e.countEmails,
		},
		{
			Name:        "get_unread_emails",
			Description: "Get unread emails.",
			Parameters:  objectSchema(`"max_results":{"type":"integer"}`),
			Run:         e.unreadEmails,
		},
		{
			Name:        "get_emails_from_sender",
			Description: "Get emails from a specific sender.",
			Parameters:  objectSchema(`"sender_email":{"type":"string"},"max_results":{"type":"integer"}`, "sender_email"),
			Run:         e.emailsFromSender,
		},
		{
			Name:        "get_emails_by_date_range",
			Description: "Get emails within a date range (YYYY-MM-DD).",
			Parameters:  objectSchema(`"start_date":{"type":"string"},"end_date":{"type":"string"},"max_results":{"type":"integer"}`, "start_date", "end_date"),
			Run:         e.emailsByDateRange,
		},
		{
			Name:        "get_email_body",
			Description: "Get the full body content of a specific email.",
			Parameters:  objectSchema(`"message_id":{"type":"string"}`, "message_id"),
			Run:         e.emailBody,
		},
		{
			Name:        "reply_to_email",
			Description: "Reply to a specific email.",
			Parameters:  objectSchema(`"message_id":{"type":"string"},"reply_body":{"type":"string"}`, "message_id", "reply_body"),
			Run:         e.replyToEmail,
		},
		{
			Name:        "mark_as_read",
			Description: "Mark an email as read.",
			Parameters:  objectSchema(`"message_id":{"type":"string"}`, "message_id"),
			Run:         e.markAsRead,
		},
		{
			Name:        "mark_as_unread",
			Description: "Mark an email as unread.",
			Parameters:  objectSchema(`"message_id":{"type":"string"}`, "message_id"),
			Run:         e.markAsUnread,
		},
		{
			Name:        "delete_email",
			Description: "Move an email to trash.",
			Parameters:  objectSchema(`"message_id":{"type":"string"}`, "message_id"),
			Run:         e.deleteEmail,
		},
		{
			Name:        "get_inbox_stats",
			Description: "Get inbox statistics (total, unread, starred).",
			Parameters:  objectSchema(""),
			Run:         e.inboxStats,
		},
		{
			Name:        "add_label_to_email",
			Description: "Add a label to an email.",
			Parameters:  objectSchema(`"message_id":{"type":"string"},"label_id":{"type":"string"}`, "message_id", "label_id"),
			Run:         e.addLabel,
		},
		{
			Name:        "get_email_labels",
			Description: "Get all available mailbox labels.",
			Parameters:  objectSchema(""),
			Run:         e.labels,
		},
	}
}

type emailOps struct {
	conn mailbox.Connector
}

func (e emailOps) client(ctx context.Context) (mailbox.Client, error) {
	return e.conn.Client(ctx)
}

func (e emailOps) sendEmail(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	to, err := stringArg(args, "to")
	if err != nil {
		return nil, err
	}
	subject, err := stringArg(args, "subject")
	if err != nil {
		return nil, err
	}
	body, err := stringArg(args, "body")
	if err != nil {
		return nil, err
	}

	id, err := cl.Send(ctx, mailbox.Outgoing{To: to, Subject: subject, Body: body})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message_id": id,
		"message":    fmt.Sprintf("Email sent to %s", to),
	}, nil
}

func (e emailOps) recentEmails(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	query := "-in:spam -in:trash"
	if boolArg(args, "include_spam_trash") {
		query = ""
	}
	emails, err := cl.List(ctx, query, intArg(args, "max_results", 10))
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": len(emails), "emails": emails}, nil
}

func (e emailOps) searchEmails(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	return e.search(ctx, args, query)
}

func (e emailOps) search(ctx context.Context, args map[string]any, query string) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	emails, err := cl.List(ctx, query, intArg(args, "max_results", 20))
	if err != nil {
		return nil, err
	}
	return map[string]any{"query": query, "count": len(emails), "emails": emails}, nil
}

func (e emailOps) countEmails(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	query, _ := stringArg(args, "query")
	count, err := cl.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	label := query
	if label == "" {
		label = "all"
	}
	return map[string]any{"query": label, "count": count}, nil
}

func (e emailOps) unreadEmails(ctx context.Context, args map[string]any) (map[string]any, error) {
	return e.search(ctx, args, "is:unread")
}

func (e emailOps) emailsFromSender(ctx context.Context, args map[string]any) (map[string]any, error) {
	sender, err := stringArg(args, "sender_email")
	if err != nil {
		return nil, err
	}
	return e.search(ctx, args, "from:"+sender)
}

func (e emailOps) emailsByDateRange(ctx context.Context, args map[string]any) (map[string]any, error) {
	start, err := stringArg(args, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := stringArg(args, "end_date")
	if err != nil {
		return nil, err
	}
	// Gmail date operators want slash-separated dates.
	start = strings.ReplaceAll(start, "-", "/")
	end = strings.ReplaceAll(end, "-", "/")
	return e.search(ctx, args, fmt.Sprintf("after:%s before:%s", start, end))
}

func (e emailOps) emailBody(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "message_id")
	if err != nil {
		return nil, err
	}
	full, err := cl.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"message_id": id,
		"body":       full.Body,
		"metadata":   full.Summary,
	}, nil
}

func (e emailOps) replyToEmail(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "message_id")
	if err != nil {
		return nil, err
	}
	body, err := stringArg(args, "reply_body")
	if err != nil {
		return nil, err
	}

	original, err := cl.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	subject := original.Subject
	if !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}
	sentID, err := cl.Send(ctx, mailbox.Outgoing{
		To:        original.From,
		Subject:   subject,
		Body:      body,
		ThreadID:  original.ThreadID,
		InReplyTo: original.MessageIDHeader,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"message_id": sentID, "message": "Reply sent successfully"}, nil
}

func (e emailOps) markAsRead(ctx context.Context, args map[string]any) (map[string]any, error) {
	return e.modifyLabels(ctx, args, nil, []string{"UNREAD"}, "Marked as read")
}

func (e emailOps) markAsUnread(ctx context.Context, args map[string]any) (map[string]any, error) {
	return e.modifyLabels(ctx, args, []string{"UNREAD"}, nil, "Marked as unread")
}

func (e emailOps) modifyLabels(ctx context.Context, args map[string]any, add, remove []string, message string) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "message_id")
	if err != nil {
		return nil, err
	}
	if err := cl.Modify(ctx, id, add, remove); err != nil {
		return nil, err
	}
	return map[string]any{"message_id": id, "message": message}, nil
}

func (e emailOps) deleteEmail(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "message_id")
	if err != nil {
		return nil, err
	}
	if err := cl.Trash(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"message_id": id, "message": "Moved to trash"}, nil
}

func (e emailOps) inboxStats(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	total, err := cl.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	unread, err := cl.Count(ctx, "is:unread")
	if err != nil {
		return nil, err
	}
	starred, err := cl.Count(ctx, "is:starred")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"stats": map[string]any{"total": total, "unread": unread, "starred": starred},
	}, nil
}

func (e emailOps) addLabel(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "message_id")
	if err != nil {
		return nil, err
	}
	label, err := stringArg(args, "label_id")
	if err != nil {
		return nil, err
	}
	if err := cl.Modify(ctx, id, []string{label}, nil); err != nil {
		return nil, err
	}
	return map[string]any{"message": fmt.Sprintf("Label %s added", label)}, nil
}

func (e emailOps) labels(ctx context.Context, args map[string]any) (map[string]any, error) {
	cl, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := cl.Labels(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"labels": labels}, nil
}

// objectSchema builds a JSON schema for an object with the given property
// fragment and required names.
func objectSchema(props string, required ...string) json.RawMessage {
	schema := fmt.Sprintf(`{"type":"object","properties":{%s}`, props)
	if len(required) > 0 {
		names, _ := json.Marshal(required)
		schema += fmt.Sprintf(`,"required":%s`, names)
	}
	return json.RawMessage(schema + "}")
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", name)
	}
	return s, nil
}

func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
