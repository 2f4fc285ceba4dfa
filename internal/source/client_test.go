package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/copafer/chat-viewer/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestFetch_EnvelopedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":1,"session_id":"A","message":{"type":"human","content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, testLogger(t))
	msgs, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "A", msgs[0].SessionID)
}

func TestFetch_EmptyArrayIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	msgs, err := New(srv.URL, time.Second, testLogger(t)).Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, testLogger(t)).Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, KindBadStatus, KindOf(err))
}

func TestFetch_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"foo":"bar"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, testLogger(t)).Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, KindMalformed, KindOf(err))
}

func TestFetch_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	_, err := New(srv.URL, 50*time.Millisecond, testLogger(t)).Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, KindTimeout, KindOf(err))
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL, time.Second, testLogger(t)).Fetch(context.Background())
	require.Error(t, err)
	require.Equal(t, KindTransport, KindOf(err))
}

func TestSample(t *testing.T) {
	msgs, err := Sample()
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	for _, msg := range msgs {
		require.NotEmpty(t, msg.SessionID)
		require.NotEmpty(t, msg.Message.Content)
	}
}
