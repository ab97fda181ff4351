package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func gmailTestServer(t *testing.T) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		json.NewEncoder(w).Encode(map[string]any{
			"messages":           []map[string]string{{"id": "m1", "threadId": "t1"}},
			"resultSizeEstimate": 5,
		})
	})
	mux.HandleFunc("GET /users/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		body := base64.URLEncoding.EncodeToString([]byte("hello plain text"))
		json.NewEncoder(w).Encode(map[string]any{
			"id":       "m1",
			"threadId": "t1",
			"snippet":  "hello…",
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"headers": []map[string]string{
					{"name": "Subject", "value": "Hi"},
					{"name": "From", "value": "alice@x.com"},
					{"name": "To", "value": "me@x.com"},
					{"name": "Date", "value": "Thu, 27 Aug 2026 10:00:00 +0000"},
					{"name": "Message-ID", "value": "<abc@mail>"},
				},
				"parts": []map[string]any{
					{"mimeType": "text/html", "body": map[string]string{"data": base64.URLEncoding.EncodeToString([]byte("<p>html</p>"))}},
					{"mimeType": "text/plain", "body": map[string]string{"data": body}},
				},
			},
		})
	})
	mux.HandleFunc("POST /users/me/messages/send", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		raw, err := base64.URLEncoding.DecodeString(req["raw"])
		require.NoError(t, err)
		require.Contains(t, string(raw), "To: bob@x.com")
		require.Contains(t, string(raw), "Subject: hi")
		json.NewEncoder(w).Encode(map[string]string{"id": "sent-9"})
	})
	mux.HandleFunc("POST /users/me/messages/m1/modify", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		w.Write([]byte("{}"))
	})
	mux.HandleFunc("GET /users/me/labels", func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r)
		json.NewEncoder(w).Encode(map[string]any{
			"labels": []map[string]string{{"id": "INBOX", "name": "INBOX"}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestGmailClient_ListAndCount(t *testing.T) {
	srv, seen := gmailTestServer(t)
	c := NewGmailClient(srv.URL, "tok")

	summaries, err := c.List(context.Background(), "is:unread", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "m1", summaries[0].ID)
	require.Equal(t, "Hi", summaries[0].Subject)
	require.Equal(t, "alice@x.com", summaries[0].From)

	// List then per-message metadata fetch.
	require.Len(t, *seen, 2)
	first := (*seen)[0]
	require.Equal(t, "is:unread", first.URL.Query().Get("q"))
	require.Equal(t, "Bearer tok", first.Header.Get("Authorization"))

	count, err := c.Count(context.Background(), "is:unread")
	require.NoError(t, err)
	require.Equal(t, 5, count)
	require.Equal(t, "1", (*seen)[2].URL.Query().Get("maxResults"))
}

func TestGmailClient_GetDecodesPlainTextPart(t *testing.T) {
	srv, _ := gmailTestServer(t)
	c := NewGmailClient(srv.URL, "tok")

	full, err := c.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, "hello plain text", full.Body)
	require.Equal(t, "<abc@mail>", full.MessageIDHeader)
	require.Equal(t, "Hi", full.Subject)
}

func TestGmailClient_Send(t *testing.T) {
	srv, _ := gmailTestServer(t)
	c := NewGmailClient(srv.URL, "tok")

	id, err := c.Send(context.Background(), Outgoing{To: "bob@x.com", Subject: "hi", Body: "hello"})
	require.NoError(t, err)
	require.Equal(t, "sent-9", id)
}

func TestGmailClient_ModifyAndLabels(t *testing.T) {
	srv, seen := gmailTestServer(t)
	c := NewGmailClient(srv.URL, "tok")

	require.NoError(t, c.Modify(context.Background(), "m1", nil, []string{"UNREAD"}))
	labels, err := c.Labels(context.Background())
	require.NoError(t, err)
	require.Len(t, labels, 1)
	require.Equal(t, "INBOX", labels[0].ID)
	require.Len(t, *seen, 2)
}

func TestGmailClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewGmailClient(srv.URL, "bad")
	_, err := c.Count(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestConnectors(t *testing.T) {
	cl := NewGmailClient("http://example.invalid", "tok")

	got, err := NewStaticConnector(cl).Client(context.Background())
	require.NoError(t, err)
	require.Equal(t, cl, got)

	_, err = NewDisconnected().Client(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
}
