package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackBroker_Publish_Success(t *testing.T) {
	receivedText := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			receivedText = payload["text"]
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := logrus.NewEntry(logrus.New())
	b := NewSlackBroker(logger)

	// The channel identifier is the webhook URL itself
	err := b.Publish(context.Background(), server.URL, "Disk full", "Volume /data at 98%")
	require.NoError(t, err)
	assert.Contains(t, receivedText, "*Disk full*")
	assert.Contains(t, receivedText, "Volume /data at 98%")
}

func TestSlackBroker_Publish_EmptySubject(t *testing.T) {
	receivedText := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			receivedText = payload["text"]
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := logrus.NewEntry(logrus.New())
	b := NewSlackBroker(logger)

	err := b.Publish(context.Background(), server.URL, "", "body only")
	require.NoError(t, err)
	assert.Equal(t, "body only", receivedText)
}

func TestSlackBroker_Publish_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	logger := logrus.NewEntry(logrus.New())
	b := NewSlackBroker(logger)

	err := b.Publish(context.Background(), server.URL, "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
