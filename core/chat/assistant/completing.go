package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rulewise/chat-core/core/chat"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CompleteTurn requests one complete answer instead of a stream. Citations
// arrive already attached and already deduplicated by the server; they are
// passed through verbatim.
func (c *Client) CompleteTurn(ctx context.Context, messages []chat.Message) (*chat.Answer, error) {
	ctx, span := tracer.Start(ctx, "complete turn")
	defer span.End()
	span.SetAttributes(attribute.Int("request.messages", len(messages)))

	answer, err := c.completeTurn(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("response.citations", len(answer.Citations)))
	span.SetAttributes(attribute.Float64("response.confidence", answer.Confidence))
	return answer, nil
}

func (c *Client) completeTurn(ctx context.Context, messages []chat.Message) (*chat.Answer, error) {
	body, err := json.Marshal(requestBody{Messages: toWireMessages(messages), Stream: false})
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.connectTimeout+c.stallTimeout)
	defer cancel()

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

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(ctx, resp); err != nil {
		return nil, err
	}

	var responseBody struct {
		Content    string         `json:"content"`
		Citations  []wireCitation `json:"citations"`
		Confidence float64        `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("error unmarshalling response body: %w", err)
	}

	return &chat.Answer{
		Content:    responseBody.Content,
		Citations:  toCitations(responseBody.Citations),
		Confidence: responseBody.Confidence,
	}, nil
}
