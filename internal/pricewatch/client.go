package pricewatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Options configure a Client.
type Options struct {
	BaseURL   string
	Pages     int
	Timeout   time.Duration
	Tokens    TokenSource
	Logger    zerolog.Logger
	UserAgent string
}

// Client talks to the price tracker HTTP API.
type Client struct {
	baseURL *url.URL
	http    *resty.Client
	pages   int
	log     zerolog.Logger
}

const (
	defaultBaseURL   = "http://127.0.0.1:8000"
	defaultUserAgent = "pricewatch/0.1"
	defaultPages     = 3
	requestTimeout   = 10 * time.Second
	apiPrefix        = "/api/v1"

	requestIDHeader = "X-Request-ID"
)

const (
	opTriggerSearch = "trigger search"
	opFetchProducts = "fetch products"
	opLogin         = "login"
)

// NewClient builds a Client for the API rooted at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = defaultPages
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		baseURL: base,
		pages:   pages,
		log:     opts.Logger,
	}
	c.http = resty.New().
		SetBaseURL(base.String()+apiPrefix).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{log: c.log})

	tokens := opts.Tokens
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(requestIDHeader, uuid.NewString())
		if tokens == nil {
			return nil
		}
		if token := strings.TrimSpace(tokens.Token()); token != "" {
			req.SetAuthToken(token)
		}
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.log.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("duration", resp.Time()).
			Str("request_id", resp.Request.Header.Get(requestIDHeader)).
			Msg("api request")
		return nil
	})
	return c, nil
}

// BaseURL returns the normalised API origin.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// TriggerSearch starts a backend scrape job for query. The query is sent
// as-is; callers are expected to reject blank input before calling.
func (c *Client) TriggerSearch(ctx context.Context, query string) (SearchJob, error) {
	if c == nil {
		return SearchJob{}, fmt.Errorf("client is nil")
	}
	var job SearchJob
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetQueryParam("pages", strconv.Itoa(c.pages)).
		SetResult(&job)
	if err := c.execute(req, opTriggerSearch, http.MethodPost, "/products/search"); err != nil {
		return SearchJob{}, err
	}
	return job, nil
}

// FetchProducts retrieves the full product collection. Each entry is
// decoded on its own; entries that fail to decode or validate are dropped
// and logged. A 2xx response whose body is not a JSON array is an error.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req := c.http.R().SetContext(ctx)
	resp, err := c.executeResponse(req, opFetchProducts, http.MethodGet, "/products/all")
	if err != nil {
		return nil, err
	}
	return c.decodeProducts(resp)
}

func (c *Client) decodeProducts(resp *resty.Response) ([]Product, error) {
	body := bytes.TrimSpace(resp.Body())
	if bytes.Equal(body, []byte("null")) {
		return []Product{}, nil
	}
	if len(body) == 0 || body[0] != '[' {
		return nil, fmt.Errorf("%s: unexpected response body (status %d, content type %q)",
			opFetchProducts, resp.StatusCode(), resp.Header().Get("Content-Type"))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", opFetchProducts, err)
	}

	products := make([]Product, 0, len(raw))
	for i, entry := range raw {
		var p Product
		if err := json.Unmarshal(entry, &p); err != nil {
			c.log.Warn().
				Err(err).
				Int("index", i).
				Msg("dropping undecodable product")
			continue
		}
		products = append(products, p)
	}
	return validateProducts(products, c.log), nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (Token, error) {
	if c == nil {
		return Token{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(email) == "" {
		return Token{}, fmt.Errorf("email required")
	}
	var token Token
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": email, "password": password}).
		SetResult(&token)
	if err := c.execute(req, opLogin, http.MethodPost, "/auth/login"); err != nil {
		return Token{}, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return Token{}, fmt.Errorf("%s: response carried no access token", opLogin)
	}
	return token, nil
}

func (c *Client) execute(req *resty.Request, op, method, path string) error {
	_, err := c.executeResponse(req, op, method, path)
	return err
}

func (c *Client) executeResponse(req *resty.Request, op, method, path string) (*resty.Response, error) {
	req.SetError(&errorBody{})
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s: execute request: %w", op, err)
	}
	if resp.IsError() {
		apiErr := &APIError{
			Op:     op,
			Method: method,
			Path:   apiPrefix + path,
			Status: resp.StatusCode(),
		}
		if body, ok := resp.Error().(*errorBody); ok {
			apiErr.Message = body.text()
		}
		return nil, apiErr
	}
	return resp, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
