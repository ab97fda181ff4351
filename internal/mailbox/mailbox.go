// Package mailbox abstracts the remote email backend. The agent core only
// ever sees the Client contract; which account (if any) is connected is the
// connector's business.
package mailbox

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by a connector that has no live authenticated
// handle. Operations fold it into an ordinary failure payload.
var ErrNotConnected = errors.New("not logged in")

// Summary is envelope-level metadata for one message.
type Summary struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	From     string `json:"from"`
	To       string `json:"to"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

// Full is a message with its decoded plain-text body.
type Full struct {
	Summary
	Body string `json:"body"`
	// MessageIDHeader is the RFC 5322 Message-ID, needed to thread replies.
	MessageIDHeader string `json:"-"`
}

// Outgoing describes a message to send. ThreadID and InReplyTo are set only
// for replies.
type Outgoing struct {
	To        string
	Subject   string
	Body      string
	ThreadID  string
	InReplyTo string
}

// Label is a mailbox label/folder.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is the provided email-API capability. Queries use the backend's
// native search syntax (e.g. "is:unread", "from:bob@x.com").
type Client interface {
	List(ctx context.Context, query string, max int) ([]Summary, error)
	Count(ctx context.Context, query string) (int, error)
	Get(ctx context.Context, id string) (*Full, error)
	Send(ctx context.Context, msg Outgoing) (string, error)
	Modify(ctx context.Context, id string, addLabels, removeLabels []string) error
	Trash(ctx context.Context, id string) error
	Labels(ctx context.Context) ([]Label, error)
}

// Connector supplies the live authenticated client, or withholds it. The
// identity flow that produces the handle lives outside this process.
type Connector interface {
	Client(ctx context.Context) (Client, error)
}

type staticConnector struct{ client Client }

// NewStaticConnector returns a connector that always hands out the given
// client.
func NewStaticConnector(c Client) Connector {
	return staticConnector{client: c}
}

func (s staticConnector) Client(ctx context.Context) (Client, error) {
	return s.client, nil
}

type disconnected struct{}

// NewDisconnected returns a connector with no live handle; every request
// fails with ErrNotConnected.
func NewDisconnected() Connector {
	return disconnected{}
}

func (disconnected) Client(ctx context.Context) (Client, error) {
	return nil, ErrNotConnected
}
