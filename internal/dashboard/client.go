// Package dashboard is a typed consumer of the expense API: an HTTP client,
// explicit view state, and a report builder that assembles the pivoted
// summary shown to users.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client calls the expense API on behalf of one account.
type Client struct {
	baseURL *url.URL
	account core.Account
	http    *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client, which has a 15s timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, account core.Account, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	if _, err := core.ParseAccount(account.String()); err != nil {
		return nil, err
	}
	c := &Client{baseURL: u, account: account, http: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Account() core.Account { return c.account }

func (c *Client) Create(ctx context.Context, req core.NewExpense) (core.Expense, error) {
	var out core.Expense
	err := c.do(ctx, http.MethodPost, "/expenses/", nil, req, &out)
	return out, err
}

func (c *Client) Get(ctx context.Context, id string) (core.Expense, error) {
	var out core.Expense
	err := c.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) List(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	err := c.do(ctx, http.MethodGet, "/expenses/", nil, nil, &out)
	return out, err
}

func (c *Client) ListByMonthYear(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	var out []core.Expense
	err := c.do(ctx, http.MethodGet, "/expenses/ls_month_year/", filterQuery(f), nil, &out)
	return out, err
}

func (c *Client) Summary(ctx context.Context, f core.Filter) ([]core.AggregationRow, error) {
	var out []core.AggregationRow
	err := c.do(ctx, http.MethodGet, "/expenses/summary/", filterQuery(f), nil, &out)
	return out, err
}

func (c *Client) MonthYears(ctx context.Context) ([]core.MonthYear, error) {
	var out []core.MonthYear
	err := c.do(ctx, http.MethodGet, "/month_year/", nil, nil, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, p core.Patch) (core.Expense, error) {
	var out core.Expense
	err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), nil, p, &out)
	return out, err
}

// Delete returns the confirmation message from the server.
func (c *Client) Delete(ctx context.Context, id string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil, nil, &out)
	return out.Message, err
}

func filterQuery(f core.Filter) url.Values {
	q := url.Values{}
	if f.Month != nil {
		q.Set("month", strconv.Itoa(*f.Month))
	}
	if f.Year != nil {
		q.Set("year", strconv.Itoa(*f.Year))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("collection_name", c.account.String())

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(payload, &eb) == nil && eb.Message != "" {
			apiErr.Kind, apiErr.Message = eb.Error, eb.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(payload))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
