// Package httpstore is a docstore client for the ghost store HTTP API.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/pkg/logger"
	"github.com/okian/flappyghost/pkg/metrics"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultStreamBuffer = 64
	maxErrorBody        = 4 << 10
)

var (
	_ docstore.Store      = (*Client)(nil)
	_ docstore.Subscriber = (*Client)(nil)
)

// Client talks to a ghost store server.
type Client struct {
	base       *url.URL
	http       *http.Client
	dialer     *websocket.Dialer
	bufferSize int
	log        logger.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("store url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("store url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: defaultTimeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: defaultTimeout},
		bufferSize: defaultStreamBuffer,
		log:        logger.Component("httpstore"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(collection, action string) string {
	return c.base.String() + "/v1/collections/" + url.PathEscape(collection) + "/" + action
}

// remoteError describes a non-2xx reply.
type remoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *remoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, e.Message)
}

func (e *remoteError) Unwrap() error { return docstore.ErrRemote }

// StatusCode extracts the HTTP status from an error returned by Client.
func StatusCode(err error) (int, bool) {
	var re *remoteError
	if errors.As(err, &re) {
		return re.Status, true
	}
	return 0, false
}

func (c *Client) do(ctx context.Context, endpoint string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &remoteError{Status: resp.StatusCode}
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&e) == nil {
			re.Code, re.Message = e.Code, e.Message
		}
		return resp.StatusCode, re
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Query runs q on the server.
func (c *Client) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	var docs []docstore.Document
	if _, err := c.do(ctx, c.endpoint(q.Collection, "query"), q, &docs); err != nil {
		metrics.RecordErrorByComponent("httpstore", "query")
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	metrics.RecordStoreQuery(q.Collection, "remote", float64(time.Since(start).Microseconds())/1000)
	return docs, nil
}

type insertResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Insert writes doc. A retried insert the server already holds is reported
// as ErrDuplicateID alongside its id.
func (c *Client) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("insert: %w: empty collection", docstore.ErrInvalidQuery)
	}
	if doc == nil {
		doc = docstore.Document{}
	}
	var ack insertResponse
	if _, err := c.do(ctx, c.endpoint(collection, "documents"), doc, &ack); err != nil {
		metrics.RecordStoreInsert(collection, "remote_error")
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	if ack.Duplicate {
		metrics.RecordStoreInsert(collection, "duplicate")
		return ack.ID, fmt.Errorf("insert %s/%s: %w", collection, ack.ID, docstore.ErrDuplicateID)
	}
	metrics.RecordStoreInsert(collection, "ok")
	return ack.ID, nil
}

// Subscribe opens a stream of documents inserted into collection. The
// channel closes when ctx ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context, collection string) (<-chan docstore.Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("subscribe: %w: empty collection", docstore.ErrInvalidQuery)
	}
	wsURL := *c.base
	if wsURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	} else {
		wsURL.Scheme = "ws"
	}
	target := wsURL.String() + "/v1/collections/" + url.PathEscape(collection) + "/stream"

	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("subscribe %s: %w", collection, &remoteError{Status: resp.StatusCode})
		}
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	out := make(chan docstore.Document, c.bufferSize)
	ended := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-ended:
		}
	}()
	go func() {
		defer close(out)
		defer close(ended)
		defer conn.Close()
		for {
			var doc docstore.Document
			if err := conn.ReadJSON(&doc); err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.log.Warn(ctx, "stream ended", logger.String("collection", collection), logger.Error(err))
				}
				return
			}
			select {
			case out <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
