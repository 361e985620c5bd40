// Package backend talks to the orchestration service over its JSON API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"teamplanner/internal/apierr"
	"teamplanner/internal/buildinfo"
	"teamplanner/internal/metrics"
	"teamplanner/internal/model"
)

// Client is the backend contract the dispatcher depends on.
type Client interface {
	Schedule(ctx context.Context, req model.OrchestrationRequest) (*model.OrchestrationResult, error)
	Coverage(ctx context.Context, p model.CoverageParams) (*model.CoverageAnalysis, error)
	Availability(ctx context.Context, p model.AvailabilityParams) (*model.AvailabilityResponse, error)
	Health(ctx context.Context) (*model.SystemHealth, error)
	Metrics(ctx context.Context) (*model.SystemMetrics, error)
}

// PermissionsFetcher looks up the signed-in user's permissions.
type PermissionsFetcher interface {
	Permissions(ctx context.Context) (*model.UserPermissions, error)
}

const (
	pathSchedule     = "/orchestrator/schedule"
	pathCoverage     = "/orchestrator/coverage"
	pathAvailability = "/orchestrator/availability"
	pathHealth       = "/orchestrator-status/health"
	pathMetrics      = "/orchestrator-status/metrics"
	pathPermissions  = "/users/me/permissions"

	maxErrorBody = 64 << 10
)

// Options configures an HTTPClient.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
	HTTP      *http.Client
	Logger    zerolog.Logger
}

// HTTPClient implements Client and PermissionsFetcher over HTTP.
type HTTPClient struct {
	base    string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func NewHTTPClient(opts Options) *HTTPClient {
	hc := opts.HTTP
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	var lim *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return &HTTPClient{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    hc,
		limiter: lim,
		logger:  opts.Logger.With().Str("component", "backend").Logger(),
	}
}

func (c *HTTPClient) Schedule(ctx context.Context, req model.OrchestrationRequest) (*model.OrchestrationResult, error) {
	var out model.OrchestrationResult
	if err := c.do(ctx, "schedule", http.MethodPost, pathSchedule, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Coverage(ctx context.Context, p model.CoverageParams) (*model.CoverageAnalysis, error) {
	q := url.Values{}
	q.Set("start_date", p.StartDate)
	q.Set("end_date", p.EndDate)
	if p.DepartmentID != "" {
		q.Set("department_id", p.DepartmentID)
	}
	var out model.CoverageAnalysis
	if err := c.do(ctx, "coverage", http.MethodGet, pathCoverage, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Availability(ctx context.Context, p model.AvailabilityParams) (*model.AvailabilityResponse, error) {
	q := url.Values{}
	q.Set("start_date", p.StartDate)
	q.Set("end_date", p.EndDate)
	if p.ShiftType != "" {
		q.Set("shift_type", p.ShiftType)
	}
	if p.DepartmentID != "" {
		q.Set("department_id", p.DepartmentID)
	}
	var out model.AvailabilityResponse
	if err := c.do(ctx, "availability", http.MethodGet, pathAvailability, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*model.SystemHealth, error) {
	var out model.SystemHealth
	if err := c.do(ctx, "health", http.MethodGet, pathHealth, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Metrics(ctx context.Context) (*model.SystemMetrics, error) {
	var out model.SystemMetrics
	if err := c.do(ctx, "metrics", http.MethodGet, pathMetrics, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Permissions(ctx context.Context) (*model.UserPermissions, error) {
	var out model.UserPermissions
	if err := c.do(ctx, "permissions", http.MethodGet, pathPermissions, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, q url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &apierr.NetworkError{Op: op, Err: err}
		}
	}
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	reqID := uuid.New().String()
	req.Header.Set("X-Request-Id", reqID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	metrics.BackendLatency.WithLabelValues(op).Observe(float64(latency.Milliseconds()))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(op, "network_error").Inc()
		c.logger.Debug().Err(err).Str("op", op).Str("request_id", reqID).Msg("backend unreachable")
		return &apierr.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.BackendRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug().Str("op", op).Str("request_id", reqID).Int("status", resp.StatusCode).Dur("latency", latency).Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty response body", op)
		}
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorBody covers both the service's {"message": ...} / {"detail": ...}
// shapes and RFC 7807 problem documents.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Title   string          `json:"title"`
}

func decodeError(resp *http.Response) error {
	he := &apierr.HTTPError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var eb errorBody
	if len(data) == 0 || json.Unmarshal(data, &eb) != nil {
		return he
	}
	he.Message = strings.TrimSpace(eb.Message)
	he.Detail = detailText(eb.Detail)
	if he.Detail == "" {
		he.Detail = strings.TrimSpace(eb.Title)
	}
	return he
}

// detailText accepts "detail" as a string or as a list of {"msg": ...}
// validation entries.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				parts = append(parts, it.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}
