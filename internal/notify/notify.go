// Package notify announces exchange lifecycle events to chat channels.
// Delivery is best-effort: callers publish after their transaction has
// committed, and a failed delivery never fails the operation.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zulandar/swapmeet/internal/config"
	"github.com/zulandar/swapmeet/internal/models"
)

// Event kinds.
const (
	EventCreated   = "created"
	EventAccepted  = "accepted"
	EventRefused   = "refused"
	EventCancelled = "cancelled"
	EventReviewed  = "reviewed"
	EventCompleted = "completed"
)

// Event is one lifecycle change of an exchange request.
type Event struct {
	Kind        string
	RequestID   string
	ActorID     string
	RequesterID string
	OwnerID     string
	Target      models.Target
	Rating      int // reviews only
}

// NewEvent builds an event of kind for r performed by actorID.
func NewEvent(kind string, r *models.ExchangeRequest, actorID string) Event {
	return Event{
		Kind:        kind,
		RequestID:   r.ID,
		ActorID:     actorID,
		RequesterID: r.RequesterID,
		OwnerID:     r.OwnerID,
		Target:      r.Target(),
	}
}

// Notifier delivers events somewhere.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Log writes events to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, evt Event) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "exchange event",
		"kind", evt.Kind,
		"request", evt.RequestID,
		"actor", evt.ActorID,
		"target", evt.Target.String(),
	)
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish delivers evt and logs a failure instead of returning it.
func Publish(ctx context.Context, n Notifier, logger *slog.Logger, evt Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, evt); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "notify: delivery failed",
			"kind", evt.Kind, "request", evt.RequestID, "error", err)
	}
}

// Formatted is an event rendered for a chat message.
type Formatted struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Field is a key-value pair shown under a formatted event.
type Field struct {
	Name  string
	Value string
	Short bool
}

const (
	colorInfo    = "#439fe0"
	colorSuccess = "#36a64f"
	colorWarning = "#daa038"
	colorMuted   = "#9e9e9e"
)

// Format renders evt for chat platforms.
func Format(evt Event) Formatted {
	f := Formatted{
		Fields: []Field{
			{Name: "Request", Value: evt.RequestID, Short: true},
			{Name: "Target", Value: evt.Target.String(), Short: true},
		},
	}
	switch evt.Kind {
	case EventCreated:
		f.Title = "New exchange request"
		f.Body = fmt.Sprintf("%s asked %s for %s.", evt.RequesterID, evt.OwnerID, evt.Target)
		f.Color = colorInfo
	case EventAccepted:
		f.Title = "Exchange accepted"
		f.Body = fmt.Sprintf("%s accepted the request from %s. Messaging is open.", evt.OwnerID, evt.RequesterID)
		f.Color = colorSuccess
	case EventRefused:
		f.Title = "Exchange refused"
		f.Body = fmt.Sprintf("%s refused the request from %s.", evt.OwnerID, evt.RequesterID)
		f.Color = colorWarning
	case EventCancelled:
		f.Title = "Exchange cancelled"
		f.Body = fmt.Sprintf("%s withdrew the request to %s.", evt.RequesterID, evt.OwnerID)
		f.Color = colorMuted
	case EventReviewed:
		f.Title = "Review submitted"
		f.Body = fmt.Sprintf("%s left a %d-star review.", evt.ActorID, evt.Rating)
		f.Color = colorInfo
	case EventCompleted:
		f.Title = "Exchange completed"
		f.Body = fmt.Sprintf("%s and %s have reviewed each other.", evt.RequesterID, evt.OwnerID)
		f.Color = colorSuccess
	default:
		f.Title = "Exchange " + evt.Kind
		f.Color = colorMuted
	}
	return f
}

// FromConfig builds the notifier set for cfg: a Log notifier always, plus
// Slack and Discord when their bot tokens are configured.
func FromConfig(cfg config.NotifyConfig, logger *slog.Logger) (Notifier, error) {
	m := Multi{Log{Logger: logger}}
	if cfg.Slack.Enabled() {
		s, err := NewSlack(SlackOpts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		m = append(m, s)
	}
	if cfg.Discord.Enabled() {
		d, err := NewDiscord(DiscordOpts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		m = append(m, d)
	}
	return m, nil
}
