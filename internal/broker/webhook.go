package broker

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// webhookPayload represents the JSON payload for generic webhooks. The
// channel travels in the payload as the topic the receiver should route on.
type webhookPayload struct {
	Channel string `json:"channel"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WebhookBroker publishes notifications to a single generic webhook endpoint
type WebhookBroker struct {
	*HTTPBroker
	endpointURL string
}

// NewWebhookBroker creates a new generic webhook broker
func NewWebhookBroker(endpointURL string, logger *logrus.Entry) *WebhookBroker {
	return NewWebhookBrokerWithClient(endpointURL, nil, logger)
}

// NewWebhookBrokerWithClient creates a new generic webhook broker with a custom HTTP client
func NewWebhookBrokerWithClient(endpointURL string, httpClient *http.Client, logger *logrus.Entry) *WebhookBroker {
	return &WebhookBroker{
		HTTPBroker:  NewHTTPBroker(httpClient, logger),
		endpointURL: endpointURL,
	}
}

// Publish sends a notification to the webhook endpoint (implements Broker interface)
func (b *WebhookBroker) Publish(ctx context.Context, channel, subject, body string) error {
	payload := webhookPayload{
		Channel: channel,
		Subject: subject,
		Body:    body,
	}

	if err := b.PostJSON(ctx, b.endpointURL, payload); err != nil {
		return err
	}

	b.logger.WithField("channel", channel).Info("Successfully published webhook notification")
	return nil
}
