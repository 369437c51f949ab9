package fetch

import (
	"context"
	"time"

	xhttp "RegimePulse/pkg/http"

	"golang.org/x/time/rate"
)

const (
	// UserAgent identifies the engine to third-party APIs.
	UserAgent = "RegimePulse/1.0 (market regime engine)"

	// CallTimeout is the hard per-call budget.
	CallTimeout = 5 * time.Second

	// courtesyInterval spaces calls out to respect third-party rate limits.
	courtesyInterval = 500 * time.Millisecond
)

// Client is an HTTP wrapper for third-party indicator APIs: fixed
// user-agent, hard timeout, and a token-bucket courtesy limiter applied
// before each call so failed calls do not burn extra wall time.
type Client struct {
	http    *xhttp.Client
	limiter *rate.Limiter
}

// NewClient creates a rate-limited API client.
func NewClient() *Client {
	return &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(CallTimeout)),
		limiter: rate.NewLimiter(rate.Every(courtesyInterval), 1),
	}
}

// Get performs a GET and returns the raw response body.
func (c *Client) Get(ctx context.Context, url string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	var query map[string][]string
	if len(params) > 0 {
		query = make(map[string][]string, len(params))
		for k, v := range params {
			query[k] = []string{v}
		}
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		Headers:     map[string]string{"User-Agent": UserAgent},
		QueryParams: query,
	}, &body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return body, nil
}

// Post performs a JSON POST and returns the raw response body.
func (c *Client) Post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"User-Agent":   UserAgent,
			"Content-Type": "application/json",
		},
		Body: payload,
	}, &body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	return body, nil
}
