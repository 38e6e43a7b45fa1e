package telegram

import (
	"context"
	"fmt"
	"html"
	"log/slog"
)

// Notifier posts pipeline failures to an operator chat. A nil Notifier
// or an empty chat id degrades to logging only, so callers never need
// to guard their calls.
type Notifier struct {
	client *Client
	chatID string
}

func NewNotifier(client *Client, chatID string) *Notifier {
	if client == nil || chatID == "" {
		return nil
	}
	return &Notifier{client: client, chatID: chatID}
}

// ReportError logs the error and forwards it to the operator chat.
func (n *Notifier) ReportError(ctx context.Context, subject string, err error) {
	slog.Error("Pipeline error", "subject", subject, "error", err)

	if n == nil {
		return
	}

	text := fmt.Sprintf("⚠️ <b>%s</b>\n%s",
		html.EscapeString(subject), html.EscapeString(err.Error()))
	if sendErr := n.client.SendMessage(ctx, n.chatID, text); sendErr != nil {
		slog.Error("Failed to deliver operator report", "error", sendErr)
	}
}
