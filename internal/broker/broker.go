package broker

import "context"

// Broker is a generic interface for publishing a notification to a channel.
// The channel identifier is opaque at this level; each implementation
// interprets it as its native destination (webhook URL, chat ID, recipient
// list, ...).
type Broker interface {
	Publish(ctx context.Context, channel, subject, body string) error
}
