package broker

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// slackPayload represents the JSON payload for Slack incoming webhooks
type slackPayload struct {
	Text string `json:"text"`
}

// SlackBroker publishes notifications via Slack incoming webhooks. The
// channel identifier is the incoming-webhook URL itself, so a single broker
// serves any number of configured channels.
type SlackBroker struct {
	*HTTPBroker
}

// NewSlackBroker creates a new Slack broker with an optional HTTP client
func NewSlackBroker(logger *logrus.Entry) *SlackBroker {
	return NewSlackBrokerWithClient(nil, logger)
}

// NewSlackBrokerWithClient creates a new Slack broker with a custom HTTP client
func NewSlackBrokerWithClient(httpClient *http.Client, logger *logrus.Entry) *SlackBroker {
	return &SlackBroker{
		HTTPBroker: NewHTTPBroker(httpClient, logger),
	}
}

// Publish sends a notification to a Slack webhook URL (implements Broker interface)
func (b *SlackBroker) Publish(ctx context.Context, channel, subject, body string) error {
	// Combine subject and body for Slack with markdown formatting
	text := body
	if subject != "" {
		text = fmt.Sprintf("*%s*\n\n%s", subject, body)
	}

	payload := slackPayload{
		Text: text,
	}

	if err := b.PostJSON(ctx, channel, payload); err != nil {
		return err
	}

	b.logger.Info("Successfully published Slack notification")
	return nil
}
