package panelapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

// Source yields respondents, either from a live panel API or from the mock
// generator.
type Source interface {
	FetchRespondents(ctx context.Context, filter store.RespondentFilter) ([]model.Respondent, error)
}

// ClientOptions configures the live panel client.
type ClientOptions struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	RatePerSecond float64
}

// Client fetches respondents from a live panel provider over HTTP.
type Client struct {
	http    *http.Client
	opts    ClientOptions
	limiter *rate.Limiter
}

// NewClient creates a Client with the given options.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	return &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), int(opts.RatePerSecond)),
	}
}

// FetchRespondents pulls the respondent list matching the filter.
func (c *Client) FetchRespondents(ctx context.Context, filter store.RespondentFilter) ([]model.Respondent, error) {
	u, err := url.Parse(c.opts.BaseURL + "/respondents")
	if err != nil {
		return nil, eris.Wrap(err, "panelapi: parse base url")
	}
	u.RawQuery = filterQuery(filter).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "panelapi: build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, eris.Errorf("panelapi: http %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Respondents []model.Respondent `json:"respondents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, eris.Wrap(err, "panelapi: decode respondents")
	}
	return payload.Respondents, nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "panelapi: rate limiter wait")
		}

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			zap.L().Warn("panel request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("panelapi: http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("panel server error, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "panelapi: retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	delay := time.Duration(1<<attempt) * 500 * time.Millisecond
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func filterQuery(filter store.RespondentFilter) url.Values {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("jobTitle", filter.JobTitle)
	set("industry", filter.Industry)
	set("companySize", filter.CompanySize)
	set("jobFunction", filter.JobFunction)
	set("employmentStatus", filter.EmploymentStatus)
	if filter.Verified != nil {
		q.Set("verified", strconv.FormatBool(*filter.Verified))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	return q
}

// MockSource adapts the Generator to the Source interface, applying the
// filter in memory the way the live API would server-side.
type MockSource struct {
	gen         *Generator
	count       int
	anchorEvery int
}

// NewMockSource creates a MockSource producing count respondents with an
// anchor every anchorEvery entries.
func NewMockSource(gen *Generator, count, anchorEvery int) *MockSource {
	return &MockSource{gen: gen, count: count, anchorEvery: anchorEvery}
}

func (m *MockSource) FetchRespondents(_ context.Context, filter store.RespondentFilter) ([]model.Respondent, error) {
	all := m.gen.Generate(m.count, m.anchorEvery)
	matched := make([]model.Respondent, 0, len(all))
	for _, r := range all {
		if matches(r, filter) {
			matched = append(matched, r)
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func matches(r model.Respondent, f store.RespondentFilter) bool {
	if f.JobTitle != "" && r.JobTitle != f.JobTitle {
		return false
	}
	if f.Industry != "" && r.Industry != f.Industry {
		return false
	}
	if f.CompanySize != "" && r.CompanySize != f.CompanySize {
		return false
	}
	if f.JobFunction != "" && r.JobFunction != f.JobFunction {
		return false
	}
	if f.EmploymentStatus != "" && r.EmploymentStatus != f.EmploymentStatus {
		return false
	}
	if f.Verified != nil && r.Verified != *f.Verified {
		return false
	}
	return true
}
