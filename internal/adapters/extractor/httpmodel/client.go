package httpmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
)

const (
	descriptorsPath = "/v1/descriptors"
	healthPath      = "/healthz"

	maxErrorBody = 512
)

// ErrUnexpectedStatus は抽出サービスが 2xx 以外を返した場合のエラーです。
var ErrUnexpectedStatus = errors.New("httpmodel: unexpected status")

// Client は顔埋め込みサイドカーに HTTP で問い合わせる face.Extractor 実装です。
type Client struct {
	endpoint   string
	httpClient *http.Client
	dimensions int
}

// Option は Client の任意設定です。
type Option func(*Client)

// WithHTTPClient は利用する http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDimensions は応答記述子に期待する次元数を指定します。0 以下で検査しません。
func WithDimensions(n int) Option {
	return func(c *Client) {
		c.dimensions = n
	}
}

// New は Client を生成します。スキームのない endpoint には http:// を補います。
func New(endpoint string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if trimmed == "" {
		return nil, errors.New("httpmodel: endpoint is required")
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}

	c := &Client{
		endpoint:   trimmed,
		httpClient: &http.Client{Timeout: timeout},
		dimensions: face.DefaultDimensions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type descriptorResponse struct {
	Found      bool      `json:"found"`
	Descriptor []float32 `json:"descriptor"`
}

// Extract は画像を送信して顔記述子を受け取ります。顔が見つからない場合は face.ErrNoFace を返します。
func (c *Client) Extract(ctx context.Context, image []byte) (face.Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+descriptorsPath, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract descriptor: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body descriptorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode descriptor response: %w", err)
	}
	if !body.Found {
		return nil, face.ErrNoFace
	}

	desc := face.Descriptor(body.Descriptor)
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if c.dimensions > 0 && len(desc) != c.dimensions {
		return nil, fmt.Errorf("got %d want %d: %w", len(desc), c.dimensions, face.ErrDimensionMismatch)
	}
	return desc, nil
}

// Warmup はサイドカーのヘルスチェックを呼び出し、モデルの読み込みを済ませます。
func (c *Client) Warmup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+healthPath, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("warm up extractor: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, msg)
}

var (
	_ face.Extractor = (*Client)(nil)
	_ face.Warmer    = (*Client)(nil)
)
