// Package notify delivers direct messages to users.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level selects the accent of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
)

// Message is one direct message.
type Message struct {
	Title string
	Body  string
	Level Level
}

// Notifier sends a message to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg Message) error
}

// ConsoleNotifier writes notifications to a writer instead of delivering
// them. It backs one-shot CLI sweeps run without a chat connection.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier writes to out, or stdout when out is nil.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) Notify(_ context.Context, userID string, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	rule := strings.Repeat("═", 72)
	fmt.Fprintln(n.out, "╔"+rule)
	fmt.Fprintf(n.out, "║ 🔔 %s → %s\n", msg.Title, userID)
	fmt.Fprintln(n.out, "╠"+rule)
	fmt.Fprintln(n.out, msg.Body)
	fmt.Fprintln(n.out, "╚"+rule)
	return nil
}

// Recorder keeps every message it is given. Tests and dry runs use it.
type Recorder struct {
	mu   sync.Mutex
	Sent []Sent
	// Fail, when set, is consulted before recording; a non-nil result is
	// returned as the delivery error.
	Fail func(userID string) error
}

// Sent is one recorded delivery attempt.
type Sent struct {
	UserID  string
	Message Message
}

func (r *Recorder) Notify(_ context.Context, userID string, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, Sent{UserID: userID, Message: msg})
	if r.Fail != nil {
		return r.Fail(userID)
	}
	return nil
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.Sent...)
}
