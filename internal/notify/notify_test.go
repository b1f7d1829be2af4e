package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBroker captures publish calls for assertions
type recordingBroker struct {
	calls []publishCall
	err   error
}

type publishCall struct {
	channel string
	subject string
	body    string
}

func (b *recordingBroker) Publish(ctx context.Context, channel, subject, body string) error {
	b.calls = append(b.calls, publishCall{channel: channel, subject: subject, body: body})
	return b.err
}

type fakeProfiles struct {
	profiles string
}

func (f fakeProfiles) ActiveProfiles() string { return f.profiles }

type fakeInstance struct {
	id     string
	detail string
}

func (f fakeInstance) InstanceID() string { return f.id }
func (f fakeInstance) Detail() string     { return f.detail }

func newTestNotifier(opsChannel, devChannel string, b *recordingBroker) *Notifier {
	return newTestNotifierWithLogger(opsChannel, devChannel, b, logrus.NewEntry(logrus.New()))
}

func newTestNotifierWithLogger(opsChannel, devChannel string, b *recordingBroker, logger *logrus.Entry) *Notifier {
	return New("myapp", "prod", opsChannel, devChannel, b,
		fakeProfiles{profiles: "prod,aws"},
		fakeInstance{id: "i-0123456789", detail: "host=web-1 pid=4242"},
		logger,
	)
}

// lastEntryAtLevel returns the most recent captured log entry at the level
func lastEntryAtLevel(hook *test.Hook, level logrus.Level) *logrus.Entry {
	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			entry = e
		}
	}
	return entry
}

func TestNotifyOps(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("arn:pubsub:ops", "arn:pubsub:dev", b)

	n.NotifyOps(context.Background(), "Disk full", "Volume /data at 98%")

	require.Len(t, b.calls, 1)
	assert.Equal(t, "arn:pubsub:ops", b.calls[0].channel)
	assert.Equal(t, "[myapp:prod] Disk full (prod,aws)", b.calls[0].subject)
	assert.Equal(t, "Volume /data at 98%", b.calls[0].body)
}

func TestNotifyOps_SubjectTruncation(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("arn:pubsub:ops", "", b)

	longSubject := strings.Repeat("x", 150)
	n.NotifyOps(context.Background(), longSubject, "body")

	require.Len(t, b.calls, 1)
	full := fmt.Sprintf("[myapp:prod] %s (prod,aws)", longSubject)
	assert.Equal(t, full[:100], b.calls[0].subject)
	assert.Len(t, b.calls[0].subject, 100)
}

func TestNotifyOps_TruncationWarningCarriesFullSubject(t *testing.T) {
	b := &recordingBroker{}
	logger, hook := test.NewNullLogger()
	n := newTestNotifierWithLogger("arn:pubsub:ops", "", b, logrus.NewEntry(logger))

	longSubject := strings.Repeat("x", 150)
	n.NotifyOps(context.Background(), longSubject, "body")

	warn := lastEntryAtLevel(hook, logrus.WarnLevel)
	require.NotNil(t, warn)
	assert.Equal(t, "Notification subject is truncated", warn.Message)
	assert.Equal(t, fmt.Sprintf("[myapp:prod] %s (prod,aws)", longSubject), warn.Data["subject"])
}

func TestNotifyOps_NoTruncationNoWarning(t *testing.T) {
	b := &recordingBroker{}
	logger, hook := test.NewNullLogger()
	n := newTestNotifierWithLogger("arn:pubsub:ops", "", b, logrus.NewEntry(logger))

	n.NotifyOps(context.Background(), "Disk full", "body")

	assert.Nil(t, lastEntryAtLevel(hook, logrus.WarnLevel))
}

func TestNotify_DisabledChannels(t *testing.T) {
	tests := []struct {
		name    string
		channel string
	}{
		{name: "empty channel", channel: ""},
		{name: "legacy null sentinel", channel: "arn:aws:sns:null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &recordingBroker{}
			n := newTestNotifier(tt.channel, tt.channel, b)

			n.NotifyOps(context.Background(), "subject", "message")
			n.NotifyUnexpected(context.Background(), errors.New("boom"))

			assert.Empty(t, b.calls)
		})
	}
}

func TestNotify_PublishFailureSwallowed(t *testing.T) {
	b := &recordingBroker{err: errors.New("broker unavailable")}
	n := newTestNotifier("arn:pubsub:ops", "arn:pubsub:dev", b)

	// Must not panic and must not propagate the broker error
	assert.NotPanics(t, func() {
		n.NotifyOps(context.Background(), "subject", "message")
		n.NotifyDev(context.Background(), "subject", "message")
	})
	assert.Len(t, b.calls, 2)
}

func TestNotify_PublishFailureErrorLog(t *testing.T) {
	b := &recordingBroker{err: errors.New("broker unavailable")}
	logger, hook := test.NewNullLogger()
	n := newTestNotifierWithLogger("arn:pubsub:ops", "", b, logrus.NewEntry(logger))

	n.NotifyOps(context.Background(), "Disk full", "Volume /data at 98%")

	entry := lastEntryAtLevel(hook, logrus.ErrorLevel)
	require.NotNil(t, entry)
	assert.Equal(t, "Notification publish failed", entry.Message)
	assert.Equal(t, "arn:pubsub:ops", entry.Data["channel"])
	assert.Equal(t, "[myapp:prod] Disk full (prod,aws)", entry.Data["subject"])
	assert.Equal(t, "Volume /data at 98%", entry.Data["body"])
	logErr, ok := entry.Data[logrus.ErrorKey].(error)
	require.True(t, ok)
	assert.EqualError(t, logErr, "broker unavailable")
}

func TestNotifyDev_BodyFields(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("", "arn:pubsub:dev", b)

	n.NotifyDev(context.Background(), "Deploy finished", "all green")

	require.Len(t, b.calls, 1)
	lines := strings.Split(strings.TrimRight(b.calls[0].body, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "message: all green", lines[0])
	assert.Equal(t, "profiles: prod,aws", lines[1])
	assert.Equal(t, "instance id: i-0123456789", lines[2])
	assert.Equal(t, "instance detail: host=web-1 pid=4242", lines[3])
}

func TestNotifyDevFields_OrderAndEnrichment(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("", "arn:pubsub:dev", b)

	fields := Fields{
		{Key: "job", Value: "nightly-import"},
		{Key: "rows", Value: "31337"},
	}
	n.NotifyDevFields(context.Background(), "Import failed", fields, errors.New("pq: connection reset"))

	require.Len(t, b.calls, 1)
	body := b.calls[0].body
	lines := strings.Split(body, "\n")
	assert.Equal(t, "job: nightly-import", lines[0])
	assert.Equal(t, "rows: 31337", lines[1])
	assert.Equal(t, "profiles: prod,aws", lines[2])
	assert.Equal(t, "instance id: i-0123456789", lines[3])
	assert.Equal(t, "instance detail: host=web-1 pid=4242", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "stackTrace: pq: connection reset"))
	assert.Contains(t, body, "goroutine")

	// Caller's slice stays untouched
	require.Len(t, fields, 2)
	assert.Equal(t, "job", fields[0].Key)
	assert.Equal(t, "rows", fields[1].Key)
}

func TestNotifyDevFields_NoErrorNoStackTrace(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("", "arn:pubsub:dev", b)

	n.NotifyDevFields(context.Background(), "heads up", nil, nil)

	require.Len(t, b.calls, 1)
	assert.NotContains(t, b.calls[0].body, "stackTrace")
}

func TestNotifyUnexpected(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("", "arn:pubsub:dev", b)

	n.NotifyUnexpected(context.Background(), errors.New("nil pointer dereference"))

	require.Len(t, b.calls, 1)
	assert.Equal(t, "[myapp:prod] unexpected exception (prod,aws)", b.calls[0].subject)
	assert.Contains(t, b.calls[0].body, "stackTrace: nil pointer dereference")
	// No caller fields: body starts with the diagnostic context
	assert.True(t, strings.HasPrefix(b.calls[0].body, "profiles: "))
}

func TestNotifyUnexpectedMessage(t *testing.T) {
	b := &recordingBroker{}
	n := newTestNotifier("", "arn:pubsub:dev", b)

	n.NotifyUnexpectedMessage(context.Background(), "import worker crashed", errors.New("boom"))

	require.Len(t, b.calls, 1)
	assert.Equal(t, "[myapp:prod] unexpected exception (prod,aws)", b.calls[0].subject)
	assert.True(t, strings.HasPrefix(b.calls[0].body, "message: import worker crashed\n"))
}

func TestFieldsRender(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		expected string
	}{
		{
			name:     "empty",
			fields:   nil,
			expected: "",
		},
		{
			name:     "single field",
			fields:   Fields{{Key: "message", Value: "hello"}},
			expected: "message: hello\n",
		},
		{
			name: "insertion order preserved",
			fields: Fields{
				{Key: "z", Value: "1"},
				{Key: "a", Value: "2"},
				{Key: "m", Value: "3"},
			},
			expected: "z: 1\na: 2\nm: 3\n",
		},
		{
			name:     "embedded newline is not escaped",
			fields:   Fields{{Key: "message", Value: "line1\nline2"}},
			expected: "message: line1\nline2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fields.Render())
		})
	}
}
