package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/bookworm/pkg/conversation"
)

// DefaultPath is the fixed chat endpoint path on the browse service.
const DefaultPath = "/api/browse/chat"

// Response is the unwrapped chat payload. NeedsVectorSearch distinguishes
// "answered from general knowledge" (IDs irrelevant) from "a content search
// ran" (IDs are the authoritative result set, possibly empty). IDs is never
// nil.
type Response struct {
	Reply             string
	IDs               []string
	NeedsVectorSearch bool
}

// TransportError covers every way a chat call can fail: network errors,
// non-2xx statuses and malformed bodies. StatusCode is zero when the
// request never got a response.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return "chat transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues chat requests against the browse service. It is stateless
// and safe to call repeatedly; preventing overlapping calls is the
// caller's job.
type Client struct {
	baseURL string
	path    string
	hc      *http.Client
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		path:    DefaultPath,
		hc:      http.DefaultClient,
		logger:  log.With().Str("component", "chatclient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Message string `json:"message"`
	History string `json:"history"`
}

type bookRef struct {
	ID string `json:"ID"`
}

type chatPayload struct {
	Reply             string    `json:"reply"`
	IDs               []string  `json:"ids"`
	Books             []bookRef `json:"books"`
	NeedsVectorSearch bool      `json:"needsVectorSearch"`
}

// SendChat issues a single chat request with the full transcript attached.
// The transcript travels as an opaque JSON string inside the body. No
// retries; any failure is reported as a *TransportError.
func (c *Client) SendChat(ctx context.Context, message string, history []conversation.Turn) (Response, error) {
	if history == nil {
		history = []conversation.Turn{}
	}
	serialized, err := json.Marshal(history)
	if err != nil {
		return Response{}, &TransportError{Err: errors.Wrap(err, "serialize history")}
	}
	body, err := json.Marshal(chatRequest{Message: message, History: string(serialized)})
	if err != nil {
		return Response{}, &TransportError{Err: errors.Wrap(err, "encode request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.path, bytes.NewReader(body))
	if err != nil {
		return Response{}, &TransportError{Err: errors.Wrap(err, "build request")}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Int("history_turns", len(history)).Msg("sending chat request")
	res, err := c.hc.Do(req)
	if err != nil {
		return Response{}, &TransportError{Err: errors.Wrap(err, "post chat")}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return Response{}, &TransportError{
			StatusCode: res.StatusCode,
			Err:        errors.Errorf("chat endpoint returned status %d", res.StatusCode),
		}
	}

	// The body is either the payload directly or wrapped under "value";
	// both shapes are in the wild and both must be accepted.
	var envelope struct {
		chatPayload
		Value *chatPayload `json:"value"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return Response{}, &TransportError{StatusCode: res.StatusCode, Err: errors.Wrap(err, "decode response")}
	}
	payload := envelope.chatPayload
	if envelope.Value != nil {
		payload = *envelope.Value
	}

	ids := []string{}
	switch {
	case payload.IDs != nil:
		ids = append(ids, payload.IDs...)
	case payload.Books != nil:
		// Legacy shape: older service revisions returned full book records
		// instead of a bare identifier list.
		for _, b := range payload.Books {
			if b.ID != "" {
				ids = append(ids, b.ID)
			}
		}
	}

	resp := Response{
		Reply:             payload.Reply,
		IDs:               ids,
		NeedsVectorSearch: payload.NeedsVectorSearch,
	}
	c.logger.Debug().
		Int("ids", len(resp.IDs)).
		Bool("needs_vector_search", resp.NeedsVectorSearch).
		Msg("chat response received")
	return resp, nil
}
