package tally

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultURL is where Tally's XML server listens out of the box
	DefaultURL = "http://localhost:9000"
	// DefaultExportTimeout bounds one export request
	DefaultExportTimeout = 30 * time.Second
	// DefaultPingTimeout bounds the connectivity test
	DefaultPingTimeout = 10 * time.Second

	contentTypeXML = "application/xml"
)

// PingResult describes a successful connectivity test
type PingResult struct {
	Status     int `json:"status"`
	DataLength int `json:"dataLength"`
}

// Fetcher obtains raw export documents from Tally
type Fetcher interface {
	// FetchExport returns the raw export for kind. Failures are *TransportError.
	FetchExport(ctx context.Context, kind Kind) ([]byte, error)
	// Ping checks that Tally answers for the configured company
	Ping(ctx context.Context) (*PingResult, error)
}

// DirectClient posts export requests straight to Tally
type DirectClient struct {
	url           string
	company       string
	httpClient    *http.Client
	exportTimeout time.Duration
	pingTimeout   time.Duration
	logger        *zap.Logger
}

// ClientOption configures a DirectClient
type ClientOption func(*DirectClient)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) ClientOption {
	return func(d *DirectClient) {
		d.httpClient = c
	}
}

// WithTimeouts overrides the export and ping timeouts; zero keeps the default
func WithTimeouts(export, ping time.Duration) ClientOption {
	return func(d *DirectClient) {
		if export > 0 {
			d.exportTimeout = export
		}
		if ping > 0 {
			d.pingTimeout = ping
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(d *DirectClient) {
		d.logger = logger
	}
}

// NewDirectClient creates a client for the Tally XML server at url
func NewDirectClient(url, company string, opts ...ClientOption) *DirectClient {
	if url == "" {
		url = DefaultURL
	}
	c := &DirectClient{
		url:           url,
		company:       company,
		httpClient:    &http.Client{},
		exportTimeout: DefaultExportTimeout,
		pingTimeout:   DefaultPingTimeout,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Company returns the company exports are requested for
func (c *DirectClient) Company() string {
	return c.company
}

// FetchExport implements Fetcher
func (c *DirectClient) FetchExport(ctx context.Context, kind Kind) ([]byte, error) {
	body, err := ExportRequest(kind, c.company)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Sending export request to Tally",
		zap.String("kind", string(kind)),
		zap.String("company", c.company),
		zap.String("url", c.url),
	)
	status, data, err := c.post(ctx, body, c.exportTimeout)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &TransportError{Cause: CauseEmptyResponse, StatusCode: status, Err: ErrEmptyResponse}
	}

	c.logger.Info("Received response from Tally",
		zap.String("kind", string(kind)),
		zap.Int("status", status),
		zap.Int("content_length", len(data)),
	)
	return data, nil
}

// Ping implements Fetcher using the Company report
func (c *DirectClient) Ping(ctx context.Context) (*PingResult, error) {
	body, err := CompanyRequest(c.company)
	if err != nil {
		return nil, err
	}
	status, data, err := c.post(ctx, body, c.pingTimeout)
	if err != nil {
		return nil, err
	}
	return &PingResult{Status: status, DataLength: len(data)}, nil
}

// Relay posts a prepared request to Tally and returns the raw answer.
// The bridge server uses it to forward exports unchanged.
func (c *DirectClient) Relay(ctx context.Context, kind Kind) ([]byte, error) {
	body, err := ExportRequest(kind, c.company)
	if err != nil {
		return nil, err
	}
	_, data, err := c.post(ctx, body, c.exportTimeout)
	return data, err
}

func (c *DirectClient) post(ctx context.Context, body []byte, timeout time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, &TransportError{Cause: CauseTransport, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeXML)

	return doRequest(c.httpClient, req)
}

func doRequest(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, ClassifyError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, ClassifyError(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, data, NewStatusError(resp.StatusCode)
	}
	return resp.StatusCode, data, nil
}

// BridgeClient fetches exports through a bridge server that sits next to
// Tally and relays its XML over HTTP.
type BridgeClient struct {
	baseURL       string
	apiKey        string
	company       string
	httpClient    *http.Client
	exportTimeout time.Duration
	pingTimeout   time.Duration
	logger        *zap.Logger
}

// NewBridgeClient creates a client for the bridge at baseURL
func NewBridgeClient(baseURL, apiKey, company string, opts ...ClientOption) *BridgeClient {
	// reuse the DirectClient options for shared settings
	d := NewDirectClient(baseURL, company, opts...)
	return &BridgeClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		company:       company,
		httpClient:    d.httpClient,
		exportTimeout: d.exportTimeout,
		pingTimeout:   d.pingTimeout,
		logger:        d.logger,
	}
}

// FetchExport implements Fetcher
func (b *BridgeClient) FetchExport(ctx context.Context, kind Kind) ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}
	ctx, cancel := context.WithTimeout(ctx, b.exportTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/tally/"+string(kind), nil)
	if err != nil {
		return nil, &TransportError{Cause: CauseTransport, Err: err}
	}
	req.Header.Set("X-API-Key", b.apiKey)
	req.Header.Set("Accept", contentTypeXML)

	b.logger.Info("Fetching export through bridge", zap.String("kind", string(kind)), zap.String("bridge", b.baseURL))
	status, data, err := doRequest(b.httpClient, req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &TransportError{Cause: CauseEmptyResponse, StatusCode: status, Err: ErrEmptyResponse}
	}
	return data, nil
}

// Ping implements Fetcher through the bridge's /test-tally endpoint
func (b *BridgeClient) Ping(ctx context.Context) (*PingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/test-tally", nil)
	if err != nil {
		return nil, &TransportError{Cause: CauseTransport, Err: err}
	}
	req.Header.Set("X-API-Key", b.apiKey)

	_, data, err := doRequest(b.httpClient, req)
	if err != nil {
		return nil, err
	}
	var result PingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Cause: CauseTransport, Err: fmt.Errorf("decode bridge ping: %w", err)}
	}
	return &result, nil
}

var (
	_ Fetcher = (*DirectClient)(nil)
	_ Fetcher = (*BridgeClient)(nil)
)
