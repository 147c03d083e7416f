package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zhouzirui/life-coach/backend/internal/config"
	"github.com/zhouzirui/life-coach/backend/internal/model/chat"
)

// ErrUpstreamUnavailable reports a failed connection or handshake with the
// completion provider. No deltas were produced.
var ErrUpstreamUnavailable = errors.New("upstream completion service unavailable")

// TokenStream is a lazy, single-pass sequence of content deltas. Recv returns
// io.EOF once the provider's sentinel frame arrives; concatenating every delta
// in order yields the full reply text.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Client issues streaming chat-completion requests to the configured provider.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

// NewClient 创建上游补全客户端，请求超时由配置决定。
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type completionRequest struct {
	Model       string                `json:"model"`
	Messages    []chat.ContextMessage `json:"messages"`
	Temperature float64               `json:"temperature"`
	Stream      bool                  `json:"stream"`
}

// StreamCompletion opens one streaming completion request for the given
// context window. The caller owns the returned stream and must Close it.
func (c *Client) StreamCompletion(ctx context.Context, messages []chat.ContextMessage) (TokenStream, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := readErrorDetail(resp.Body)
		resp.Body.Close()
		if detail != "" {
			return nil, fmt.Errorf("%w: status %s: %s", ErrUpstreamUnavailable, resp.Status, detail)
		}
		return nil, fmt.Errorf("%w: status %s", ErrUpstreamUnavailable, resp.Status)
	}

	return &httpStream{body: resp.Body, decoder: newFrameDecoder(resp.Body)}, nil
}

// httpStream wires the frame decoder to a live response body.
type httpStream struct {
	body    io.ReadCloser
	decoder *frameDecoder
}

func (s *httpStream) Recv() (string, error) { return s.decoder.Next() }

func (s *httpStream) Close() error { return s.body.Close() }

func readErrorDetail(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
