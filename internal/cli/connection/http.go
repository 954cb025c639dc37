package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/trainly-go/internal/core/domain"
	"github.com/yndnr/trainly-go/internal/infra/buildinfo"
	"github.com/yndnr/trainly-go/internal/telemetry/logger"
	"github.com/yndnr/trainly-go/internal/telemetry/metric"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPClient provides JSON communication with the identity service.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	metrics   *metric.Registry
	logger    logger.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithRateLimit limits outgoing requests to rps with the given burst.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithTLSConfig sets the TLS config of the client's transport. A nil
// config keeps the default transport.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *HTTPClient) {
		if cfg == nil {
			return
		}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.client.Transport = tr
	}
}

// WithClientMetrics records request counts and latency in m.
func WithClientMetrics(m *metric.Registry) ClientOption {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// WithClientLogger sets the request logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewHTTPClient creates a client for server. A server without a scheme
// is assumed to be plain http.
func NewHTTPClient(server string, opts ...ClientOption) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: buildinfo.UserAgent(),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// NewRequest builds a request for path. A non-empty bearer is sent as
// "Authorization: Bearer <bearer>"; a non-nil body is sent as JSON.
func (c *HTTPClient) NewRequest(ctx context.Context, method, path, bearer string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	requestID := ulid.Make().String()
	ctx = logger.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

// Send executes req and decodes a 2xx JSON body into target (which may be
// nil). Failures are reported as domain errors:
//
//   - transport failures: domain.ErrIdentityUnavailable
//   - non-2xx: *domain.APIError
//   - undecodable 2xx body: domain.ErrIdentityResponse
func (c *HTTPClient) Send(req *http.Request, target any) error {
	ctx := req.Context()
	log := c.logger.WithContext(ctx).With("method", req.Method, "path", req.URL.Path)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveIdentityRequest(req.URL.Path, "error", elapsed.Seconds())
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return ctxErr
		}
		log.Debug("identity request failed", "error", err, "elapsed", elapsed)
		return domain.ErrIdentityUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveIdentityRequest(req.URL.Path, strconv.Itoa(resp.StatusCode), elapsed.Seconds())
	log.Debug("identity request", "status", resp.StatusCode, "elapsed", elapsed)

	return ParseResponse(resp, target)
}

// Do is NewRequest followed by Send.
func (c *HTTPClient) Do(ctx context.Context, method, path, bearer string, body, target any) error {
	req, err := c.NewRequest(ctx, method, path, bearer, body)
	if err != nil {
		return err
	}
	return c.Send(req, target)
}

// ParseResponse decodes resp into target, or into a *domain.APIError for
// status >= 400. It does not close the body.
func ParseResponse(resp *http.Response, target any) error {
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return domain.ErrIdentityResponse.WithCause(err)
	}
	return nil
}

// decodeAPIError reads a {"detail": ...} body. detail is either a string
// or a list of validation problems, of which the first "msg" is used.
func decodeAPIError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var problems []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &problems); err == nil && len(problems) > 0 {
		apiErr.Detail = problems[0].Msg
	}
	return apiErr
}
