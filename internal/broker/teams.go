package broker

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// teamsMessageCard represents the JSON payload for Microsoft Teams webhooks
type teamsMessageCard struct {
	Type       string `json:"@type"`
	Context    string `json:"@context"`
	Summary    string `json:"summary"`
	ThemeColor string `json:"themeColor"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}

// TeamsBroker publishes notifications via Microsoft Teams webhooks. The
// channel identifier is the Teams webhook URL.
type TeamsBroker struct {
	*HTTPBroker
}

// NewTeamsBroker creates a new Microsoft Teams broker
func NewTeamsBroker(logger *logrus.Entry) *TeamsBroker {
	return NewTeamsBrokerWithClient(nil, logger)
}

// NewTeamsBrokerWithClient creates a new Microsoft Teams broker with a custom HTTP client
func NewTeamsBrokerWithClient(httpClient *http.Client, logger *logrus.Entry) *TeamsBroker {
	return &TeamsBroker{
		HTTPBroker: NewHTTPBroker(httpClient, logger),
	}
}

// Publish sends a notification to a Teams webhook URL (implements Broker interface)
func (b *TeamsBroker) Publish(ctx context.Context, channel, subject, body string) error {
	// MessageCard format for better compatibility with older connectors
	payload := teamsMessageCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		Summary:    subject,
		ThemeColor: "0078D7",
		Title:      subject,
		Text:       body,
	}

	if err := b.PostJSON(ctx, channel, payload); err != nil {
		return err
	}

	b.logger.Info("Successfully published Microsoft Teams notification")
	return nil
}
