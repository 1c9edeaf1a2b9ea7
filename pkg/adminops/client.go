package adminops

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBasePath is the admin OData service root.
const DefaultBasePath = "/odata/v4/admin"

// Client wraps the two admin-side operations the catalog maintainers use:
// uploading a book's full text and triggering an embedding rebuild. Both
// are plain request/response wrappers with no state.
type Client struct {
	baseURL  string
	basePath string
	hc       *http.Client
	logger   zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithBasePath(path string) Option {
	return func(c *Client) { c.basePath = path }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		basePath: DefaultBasePath,
		hc:       http.DefaultClient,
		logger:   log.With().Str("component", "adminops").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadFullText replaces the book's fullText property. The text should
// already be validated and normalized (see ReadFullText).
func (c *Client) UploadFullText(ctx context.Context, bookID string, text string) error {
	if bookID == "" {
		return errors.New("book ID is required")
	}
	body, err := json.Marshal(map[string]string{"fullText": text})
	if err != nil {
		return errors.Wrap(err, "encode fullText")
	}
	url := c.baseURL + c.basePath + "/Books(" + bookID + ")"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("book_id", bookID).Int("bytes", len(text)).Msg("uploading full text")
	res, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload full text")
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.Errorf("upload failed with status %d", res.StatusCode)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// RebuildEmbeddings invokes the unbound rebuildEmbeddings action. The
// confirm callback stands in for the confirmation dialog; when it returns
// false the action is not invoked and no error is reported. A nil confirm
// skips confirmation.
func (c *Client) RebuildEmbeddings(ctx context.Context, confirm func(prompt string) bool) error {
	if confirm != nil && !confirm("This will rebuild embeddings for all books. Continue?") {
		c.logger.Debug().Msg("rebuild cancelled")
		return nil
	}

	url := c.baseURL + c.basePath + "/rebuildEmbeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info().Msg("rebuilding embeddings")
	res, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "invoke rebuildEmbeddings")
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		// OData error bodies carry a message worth surfacing verbatim.
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(res.Body).Decode(&payload); decodeErr == nil && payload.Error.Message != "" {
			return errors.New(payload.Error.Message)
		}
		return errors.Errorf("failed to rebuild embeddings (status %d)", res.StatusCode)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
