package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rulewise/chat-core/core/chat"
)

type recordingTokenSource struct {
	token       string
	invalidated atomic.Int32
}

func (s *recordingTokenSource) Token(context.Context) (string, error) { return s.token, nil }

func (s *recordingTokenSource) Invalidate(context.Context) { s.invalidated.Add(1) }

func collectStream(t *testing.T, client *Client, ctx context.Context) ([]string, error) {
	t.Helper()

	var payloads []string
	for payload, err := range client.StreamTurn(ctx, []chat.Message{{Role: chat.MessageRoleUser, Content: "hello"}}) {
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

func TestStreamTurnYieldsRecordsUntilSentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer credential, got %q", got)
		}

		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, line := range []string{
			`data: {"type":"text-delta","id":"m1","text":"Hel"}`,
			`data: {"type":"text-delta","id":"m1","text":"lo"}`,
			"",
			"data: [DONE]",
			`data: {"type":"text-delta","id":"m1","text":"never seen"}`,
		} {
			w.Write([]byte(line + "\n"))
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, &recordingTokenSource{token: "test-token"})

	payloads, err := collectStream(t, client, context.Background())
	if err != nil {
		t.Fatalf("expected stream to end cleanly, got %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("expected two records before the sentinel, got %v", payloads)
	}
	if payloads[0] != `{"type":"text-delta","id":"m1","text":"Hel"}` {
		t.Fatalf("unexpected first record: %q", payloads[0])
	}
}

func TestStreamTurnFlushesTailOnBareEOF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("data: {\"type\":\"text-delta\",\"text\":\"a\"}\ndata: {\"type\":\"finish\"}"))
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("test-token"))

	payloads, err := collectStream(t, client, context.Background())
	if err != nil {
		t.Fatalf("expected bare EOF to end the stream cleanly, got %v", err)
	}
	if len(payloads) != 2 || payloads[1] != `{"type":"finish"}` {
		t.Fatalf("expected the unterminated tail record to be flushed, got %v", payloads)
	}
}

func TestStreamTurnMapsServerErrorDetail(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "nested message", body: `{"error":{"message":"model overloaded"}}`, expected: "model overloaded"},
		{name: "detail field", body: `{"detail":"conversation not found"}`, expected: "conversation not found"},
		{name: "flat error string", body: `{"error":"bad request"}`, expected: "bad request"},
		{name: "unparseable body", body: `<html>boom</html>`, expected: "the assistant could not process the request"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(testCase.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, StaticToken("test-token"))

			_, err := collectStream(t, client, context.Background())
			var serverErr *ServerError
			if !errors.As(err, &serverErr) {
				t.Fatalf("expected a ServerError, got %v", err)
			}
			if serverErr.StatusCode != http.StatusServiceUnavailable {
				t.Fatalf("expected status 503, got %d", serverErr.StatusCode)
			}
			if serverErr.Detail != testCase.expected {
				t.Fatalf("expected detail %q, got %q", testCase.expected, serverErr.Detail)
			}
		})
	}
}

func TestStreamTurnInvalidatesCredentialsOnUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"token expired"}}`))
	}))
	defer server.Close()

	tokens := &recordingTokenSource{token: "stale-token"}
	client := NewClient(server.URL, tokens)

	_, err := collectStream(t, client, context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := tokens.invalidated.Load(); got != 1 {
		t.Fatalf("expected one credential invalidation, got %d", got)
	}
}

func TestStreamTurnConnectTimeout(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, StaticToken("test-token"), WithConnectTimeout(50*time.Millisecond))

	_, err := collectStream(t, client, context.Background())
	if !errors.Is(err, ErrConnectTimeout) {
		t.Fatalf("expected ErrConnectTimeout, got %v", err)
	}
}

func TestStreamTurnStallTimeout(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("data: {\"type\":\"text-delta\",\"text\":\"a\"}\n"))
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, StaticToken("test-token"), WithStallTimeout(50*time.Millisecond))

	payloads, err := collectStream(t, client, context.Background())
	if !errors.Is(err, ErrStreamStalled) {
		t.Fatalf("expected ErrStreamStalled, got %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected the pre-stall record to be delivered, got %v", payloads)
	}
}

func TestStreamTurnCancellationIsNotATimeout(t *testing.T) {
	firstRecord := make(chan struct{}, 1)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("data: {\"type\":\"text-delta\",\"text\":\"a\"}\n"))
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, StaticToken("test-token"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-firstRecord
		cancel()
	}()

	var received []string
	var streamErr error
	for payload, err := range client.StreamTurn(ctx, []chat.Message{{Role: chat.MessageRoleUser, Content: "hi"}}) {
		if err != nil {
			streamErr = err
			break
		}
		received = append(received, payload)
		select {
		case firstRecord <- struct{}{}:
		default:
		}
	}

	if !errors.Is(streamErr, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", streamErr)
	}
	if errors.Is(streamErr, ErrStreamStalled) || errors.Is(streamErr, ErrConnectTimeout) {
		t.Fatalf("expected cancellation not to be reported as a timeout, got %v", streamErr)
	}
	if len(received) != 1 {
		t.Fatalf("expected one record before cancellation, got %v", received)
	}
}
