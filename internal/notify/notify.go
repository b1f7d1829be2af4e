// Package notify builds operator-facing notifications (subject + body) from
// structured context and delivers them best-effort to the configured
// operations and developer channels.
//
// Delivery failures are logged and swallowed: a notification must never
// break the caller's own control flow. Callers therefore get no error back
// from any notify operation.
package notify

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"klaxon/internal/broker"
)

// maxSubjectLength is the broker-side subject cap; longer subjects are
// truncated before publishing.
const maxSubjectLength = 100

// legacyNullChannel is how the original configuration mechanism stringified
// an absent SNS topic. Still honored as "channel disabled" so migrated
// environments keep working.
const legacyNullChannel = "arn:aws:sns:null"

// defaultErrorSubject is the subject used when only an error is reported
const defaultErrorSubject = "unexpected exception"

// ProfileSource supplies the active deployment profile string
type ProfileSource interface {
	ActiveProfiles() string
}

// InstanceSource supplies identifying attributes of the running instance
type InstanceSource interface {
	InstanceID() string
	Detail() string
}

// Notifier publishes formatted notifications to the operations and
// developer channels. It holds no mutable state after construction and is
// safe for concurrent use.
type Notifier struct {
	appCode    string
	stack      string
	opsChannel string
	devChannel string

	broker   broker.Broker
	profiles ProfileSource
	instance InstanceSource
	logger   *logrus.Entry
}

// New creates a Notifier and logs the resolved channel identifiers
func New(appCode, stack, opsChannel, devChannel string, b broker.Broker, profiles ProfileSource, inst InstanceSource, logger *logrus.Entry) *Notifier {
	logger.WithField("ops_channel", opsChannel).Info("Resolved operations channel")
	logger.WithField("dev_channel", devChannel).Info("Resolved developer channel")

	return &Notifier{
		appCode:    appCode,
		stack:      stack,
		opsChannel: opsChannel,
		devChannel: devChannel,
		broker:     b,
		profiles:   profiles,
		instance:   inst,
		logger:     logger,
	}
}

// NotifyOps sends a plain-text message to the operations channel
func (n *Notifier) NotifyOps(ctx context.Context, subject, message string) {
	n.publish(ctx, n.opsChannel, subject, message)
}

// NotifyDev sends a message to the developer channel
func (n *Notifier) NotifyDev(ctx context.Context, subject, message string) {
	n.NotifyDevError(ctx, subject, message, nil)
}

// NotifyDevError sends a message plus error detail to the developer channel
func (n *Notifier) NotifyDevError(ctx context.Context, subject, message string, err error) {
	n.NotifyDevFields(ctx, subject, Fields{{Key: "message", Value: message}}, err)
}

// NotifyUnexpected reports an unexpected error to the developer channel
func (n *Notifier) NotifyUnexpected(ctx context.Context, err error) {
	n.NotifyDevFields(ctx, defaultErrorSubject, nil, err)
}

// NotifyUnexpectedMessage reports an unexpected error with an explanatory
// message to the developer channel
func (n *Notifier) NotifyUnexpectedMessage(ctx context.Context, message string, err error) {
	n.NotifyDevFields(ctx, defaultErrorSubject, Fields{{Key: "message", Value: message}}, err)
}

// NotifyDevFields is the general developer-notify form: the caller's fields
// are enriched with diagnostic context (profiles, instance id, instance
// detail, and the error's stack trace if err is non-nil) and delivered to
// the developer channel. The caller's slice is copied, never mutated.
func (n *Notifier) NotifyDevFields(ctx context.Context, subject string, fields Fields, err error) {
	enriched := make(Fields, 0, len(fields)+4)
	enriched = append(enriched, fields...)
	enriched = enriched.Add("profiles", n.profiles.ActiveProfiles())
	enriched = enriched.Add("instance id", n.instance.InstanceID())
	enriched = enriched.Add("instance detail", n.instance.Detail())
	if err != nil {
		enriched = enriched.Add("stackTrace", formatStackTrace(err))
	}

	n.publish(ctx, n.devChannel, subject, enriched.Render())
}

// publish applies the subject convention, honors disabled channels, and
// delivers exactly one publish attempt. Broker errors are logged and
// discarded here; they never reach the caller.
func (n *Notifier) publish(ctx context.Context, channel, subject, body string) {
	subject = fmt.Sprintf("[%s:%s] %s (%s)", n.appCode, n.stack, subject, n.profiles.ActiveProfiles())
	if r := []rune(subject); len(r) > maxSubjectLength {
		n.logger.WithField("subject", subject).Warn("Notification subject is truncated")
		subject = string(r[:maxSubjectLength])
	}

	n.logger.WithFields(logrus.Fields{
		"channel": channel,
		"subject": subject,
		"body":    body,
	}).Debug("Publishing notification")

	if channel == "" || channel == legacyNullChannel {
		n.logger.Debug("Notification channel is disabled, skipping")
		return
	}

	if err := n.broker.Publish(ctx, channel, subject, body); err != nil {
		n.logger.WithFields(logrus.Fields{
			"channel": channel,
			"subject": subject,
			"body":    body,
		}).WithError(err).Error("Notification publish failed")
	}
}

// formatStackTrace renders the error text followed by the goroutine stack
// captured at notify time. Go errors carry no throwable stack of their own,
// so the call-site stack is the closest diagnostic equivalent.
func formatStackTrace(err error) string {
	return fmt.Sprintf("%s\n%s", err.Error(), debug.Stack())
}
