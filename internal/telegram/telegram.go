// Package telegram mirrors new entries to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sweep_radar/internal/model"
)

// Telegram allows roughly 20 messages per second to one chat.
const sendInterval = 50 * time.Millisecond

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends one plain text message per entry.
type Notifier struct {
	api    telegramAPI
	chatID int64
	loc    *time.Location
	log    *slog.Logger
	pause  time.Duration
}

// New creates a Notifier for the given bot token and chat.
func New(token string, chatID int64, loc *time.Location, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Notifier{api: api, chatID: chatID, loc: loc, log: log, pause: sendInterval}, nil
}

// Notify sends entries in order and returns how many were delivered.
// Failures are logged and do not stop the remaining messages.
func (n *Notifier) Notify(ctx context.Context, siteName string, entries []model.Entry) int {
	sent := 0
	for i, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && !n.wait(ctx) {
			break
		}
		msg := tgbotapi.NewMessage(n.chatID, FormatEntry(siteName, e, n.loc))
		msg.DisableWebPagePreview = true
		if _, err := n.api.Send(msg); err != nil {
			n.log.Error("send message", "chat_id", n.chatID, "entry_id", e.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// wait holds off between messages and reports false when ctx ends first.
func (n *Notifier) wait(ctx context.Context) bool {
	if n.pause <= 0 {
		return true
	}
	t := time.NewTimer(n.pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// FormatEntry formats an entry as a Telegram message.
func FormatEntry(siteName string, e model.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", siteName)
	b.WriteString(e.Title)
	if e.PrizeSummary != "" {
		b.WriteString("\n\n")
		b.WriteString(e.PrizeSummary)
	}
	if e.EndDate != nil {
		fmt.Fprintf(&b, "\n\nEnds: %s", e.EndDate.In(loc).Format("Jan 02, 2006 03:04 PM MST"))
	}
	b.WriteString("\n\n")
	b.WriteString(e.Source)
	if e.EntryLink != "" {
		b.WriteString("\nEnter: ")
		b.WriteString(e.EntryLink)
	}
	return b.String()
}
