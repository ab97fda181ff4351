package mailbox

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GmailClient is a thin adapter over the Gmail REST API (v1, users/me).
// It carries an already-issued bearer token and does no token refresh.
type GmailClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewGmailClient creates a Gmail adapter for the given API base URL and
// access token.
func NewGmailClient(baseURL, token string) *GmailClient {
	return &GmailClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type gmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type gmailBody struct {
	Data string `json:"data"`
}

type gmailPart struct {
	MimeType string        `json:"mimeType"`
	Headers  []gmailHeader `json:"headers"`
	Body     gmailBody     `json:"body"`
	Parts    []gmailPart   `json:"parts"`
}

type gmailMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId"`
	Snippet  string    `json:"snippet"`
	Payload  gmailPart `json:"payload"`
}

type gmailListResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
	ResultSizeEstimate int `json:"resultSizeEstimate"`
}

func (c *GmailClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/users/me" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling mailbox API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailbox API %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func headerValue(headers []gmailHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func (c *GmailClient) fetch(ctx context.Context, id, format string) (*gmailMessage, error) {
	q := url.Values{"format": {format}}
	var msg gmailMessage
	if err := c.do(ctx, http.MethodGet, "/messages/"+id, q, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *GmailClient) summary(m *gmailMessage) Summary {
	return Summary{
		ID:       m.ID,
		ThreadID: m.ThreadID,
		Subject:  headerValue(m.Payload.Headers, "Subject"),
		From:     headerValue(m.Payload.Headers, "From"),
		To:       headerValue(m.Payload.Headers, "To"),
		Date:     headerValue(m.Payload.Headers, "Date"),
		Snippet:  m.Snippet,
	}
}

// List searches messages and returns envelope metadata, newest first, as the
// backend orders them.
func (c *GmailClient) List(ctx context.Context, query string, max int) ([]Summary, error) {
	if max <= 0 || max > 50 {
		max = 50
	}
	q := url.Values{"maxResults": {strconv.Itoa(max)}}
	if query != "" {
		q.Set("q", query)
	}
	var list gmailListResponse
	if err := c.do(ctx, http.MethodGet, "/messages", q, nil, &list); err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.fetch(ctx, ref.ID, "metadata")
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, c.summary(msg))
	}
	return summaries, nil
}

// Count returns the backend's size estimate for a query without fetching
// message content.
func (c *GmailClient) Count(ctx context.Context, query string) (int, error) {
	q := url.Values{"maxResults": {"1"}}
	if query != "" {
		q.Set("q", query)
	}
	var list gmailListResponse
	if err := c.do(ctx, http.MethodGet, "/messages", q, nil, &list); err != nil {
		return 0, err
	}
	return list.ResultSizeEstimate, nil
}

// Get fetches one message with its decoded plain-text body.
func (c *GmailClient) Get(ctx context.Context, id string) (*Full, error) {
	msg, err := c.fetch(ctx, id, "full")
	if err != nil {
		return nil, err
	}
	return &Full{
		Summary:         c.summary(msg),
		Body:            decodeBody(&msg.Payload),
		MessageIDHeader: headerValue(msg.Payload.Headers, "Message-ID"),
	}, nil
}

// decodeBody walks the MIME tree for the first text/plain part.
func decodeBody(p *gmailPart) string {
	if p.Body.Data != "" && (p.MimeType == "text/plain" || p.MimeType == "") {
		if raw, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(p.Body.Data, "=")); err == nil {
			return string(raw)
		}
	}
	for i := range p.Parts {
		if body := decodeBody(&p.Parts[i]); body != "" {
			return body
		}
	}
	return ""
}

// Send delivers an outgoing message and returns the backend's message id.
func (c *GmailClient) Send(ctx context.Context, msg Outgoing) (string, error) {
	var mime strings.Builder
	fmt.Fprintf(&mime, "To: %s\r\n", msg.To)
	fmt.Fprintf(&mime, "Subject: %s\r\n", msg.Subject)
	if msg.InReplyTo != "" {
		fmt.Fprintf(&mime, "In-Reply-To: %s\r\n", msg.InReplyTo)
		fmt.Fprintf(&mime, "References: %s\r\n", msg.InReplyTo)
	}
	mime.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	mime.WriteString(msg.Body)

	body := map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(mime.String())),
	}
	if msg.ThreadID != "" {
		body["threadId"] = msg.ThreadID
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/messages/send", nil, body, &sent); err != nil {
		return "", err
	}
	return sent.ID, nil
}

// Modify adds and removes labels on a message.
func (c *GmailClient) Modify(ctx context.Context, id string, addLabels, removeLabels []string) error {
	body := map[string][]string{}
	if len(addLabels) > 0 {
		body["addLabelIds"] = addLabels
	}
	if len(removeLabels) > 0 {
		body["removeLabelIds"] = removeLabels
	}
	return c.do(ctx, http.MethodPost, "/messages/"+id+"/modify", nil, body, nil)
}

// Trash moves a message to the trash; nothing is permanently deleted here.
func (c *GmailClient) Trash(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/messages/"+id+"/trash", nil, map[string]string{}, nil)
}

// Labels lists the mailbox's labels.
func (c *GmailClient) Labels(ctx context.Context) ([]Label, error) {
	var resp struct {
		Labels []Label `json:"labels"`
	}
	if err := c.do(ctx, http.MethodGet, "/labels", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}
