package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the monitor consumes.
// *resty.Response satisfies it directly.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client issues outbound HTTP requests with a bounded timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a resty-backed Client with the given per-request
// timeout.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &restyClient{client: c}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *restyClient) Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
