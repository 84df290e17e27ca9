package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/rulewise/chat-core/core/chat"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// StreamTurn opens a streaming request for the next assistant turn and yields
// raw record payloads in arrival order. The sequence is lazy, finite and
// non-restartable; it ends without error on the terminal sentinel or when the
// server closes the stream. Cancelling ctx stops consumption and yields
// context.Canceled, never a timeout error.
func (c *Client) StreamTurn(ctx context.Context, messages []chat.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, span := tracer.Start(ctx, "stream turn")
		defer span.End()
		span.SetAttributes(attribute.Int("request.messages", len(messages)))

		ctx, cancel := context.WithCancelCause(ctx)
		defer cancel(nil)

		resp, err := c.openStream(ctx, cancel, messages)
		if err != nil {
			err = classifyRequestError(ctx, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield("", err)
			return
		}
		defer resp.Body.Close()
		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))

		if err := c.checkResponse(ctx, resp); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield("", err)
			return
		}

		// The stall timer restarts after every received chunk; when it fires
		// the in-flight read is unblocked by cancelling the request context
		// with ErrStreamStalled as the cause.
		stallTimer := time.AfterFunc(c.stallTimeout, func() { cancel(ErrStreamStalled) })
		defer stallTimer.Stop()

		framer := recordFramer{}
		buf := make([]byte, 4096)
		records := 0
		defer func() { span.SetAttributes(attribute.Int("response.records", records)) }()

		for {
			n, readErr := resp.Body.Read(buf)
			stallTimer.Reset(c.stallTimeout)

			if n > 0 {
				for _, line := range framer.feed(buf[:n]) {
					payload := payloadFromLine(line)
					if len(payload) == 0 {
						continue
					}
					if payload == endMessage {
						return
					}
					records++
					if !yield(payload, nil) {
						return
					}
				}
			}

			if readErr == io.EOF {
				// Stream closed without the sentinel. A carried tail line is
				// still a complete record from the server's point of view.
				if line, ok := framer.flush(); ok {
					if payload := payloadFromLine(line); len(payload) > 0 && payload != endMessage {
						records++
						yield(payload, nil)
					}
				}
				return
			}
			if readErr != nil {
				err := classifyRequestError(ctx, readErr)
				if !errors.Is(err, context.Canceled) {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
				yield("", err)
				return
			}
		}
	}
}

func (c *Client) openStream(ctx context.Context, cancel context.CancelCauseFunc, messages []chat.Message) (*http.Response, error) {
	body, err := json.Marshal(requestBody{Messages: toWireMessages(messages), Stream: true})
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	// The connect timer covers everything up to the first response byte and
	// is disarmed as soon as headers arrive.
	connectTimer := time.AfterFunc(c.connectTimeout, func() { cancel(ErrConnectTimeout) })
	resp, err := c.httpClient.Do(req)
	connectTimer.Stop()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// checkResponse maps a non-success status onto the error taxonomy before any
// streaming starts.
func (c *Client) checkResponse(ctx context.Context, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	detail := parseErrorDetail(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate(ctx)
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
		}
		return ErrUnauthorized
	}

	if detail == "" {
		detail = "the assistant could not process the request"
	}
	return &ServerError{StatusCode: resp.StatusCode, Detail: detail}
}

// parseErrorDetail extracts a structured error message from an error body,
// trying the shapes the backend is known to produce.
func parseErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 1<<16))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var structured struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		if structured.Error.Message != "" {
			return structured.Error.Message
		}
		if structured.Detail != "" {
			return structured.Detail
		}
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Error != "" {
		return flat.Error
	}
	return ""
}

// classifyRequestError maps a request or read failure onto the error
// taxonomy, using the cancellation cause to tell deliberate cancellation
// apart from timer-driven aborts.
func classifyRequestError(ctx context.Context, err error) error {
	switch cause := context.Cause(ctx); {
	case errors.Is(cause, ErrConnectTimeout):
		return ErrConnectTimeout
	case errors.Is(cause, ErrStreamStalled):
		return ErrStreamStalled
	case errors.Is(cause, context.Canceled):
		return context.Canceled
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return &TransportError{Err: err}
}
