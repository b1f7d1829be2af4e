package broker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// TelegramBroker publishes notifications via the Telegram bot API. The
// channel identifier is the chat ID to deliver to; the bot URL is shared
// broker configuration.
type TelegramBroker struct {
	*HTTPBroker
	botURL string
}

// NewTelegramBroker creates a new Telegram broker
func NewTelegramBroker(botURL string, logger *logrus.Entry) *TelegramBroker {
	return NewTelegramBrokerWithClient(botURL, nil, logger)
}

// NewTelegramBrokerWithClient creates a new Telegram broker with a custom HTTP client
func NewTelegramBrokerWithClient(botURL string, httpClient *http.Client, logger *logrus.Entry) *TelegramBroker {
	return &TelegramBroker{
		HTTPBroker: NewHTTPBroker(httpClient, logger),
		botURL:     botURL,
	}
}

// Publish sends a notification to a Telegram chat (implements Broker interface)
func (b *TelegramBroker) Publish(ctx context.Context, channel, subject, body string) error {
	// Combine subject and body for Telegram
	text := body
	if subject != "" {
		text = fmt.Sprintf("*%s*\n\n%s", subject, body)
	}

	payload := map[string]string{
		"chat_id":    channel,
		"text":       text,
		"parse_mode": "Markdown",
	}

	b.logger.WithField("chat_id", channel).Debug("Sending Telegram notification")

	if err := b.PostJSON(ctx, b.botURL, payload); err != nil {
		return err
	}

	b.logger.WithField("chat_id", channel).Info("Successfully published Telegram notification")
	return nil
}
