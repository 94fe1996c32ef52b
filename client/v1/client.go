package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/request"
	"github.com/whitekid/goxp/retry"
)

func New(endpoint string) *Client { return WithClient(endpoint, &http.Client{}) }
func WithClient(endpoint string, client *http.Client) *Client {
	return &Client{
		endpoint: endpoint,
		client:   request.NewSession(client),
	}
}

type Client struct {
	endpoint string
	client   request.Interface

	retryLimit   int
	retryBackoff time.Duration
}

// WithRetry resend requests failed by transport errors or 5xx responses
func (c *Client) WithRetry(limit int, backoff time.Duration) *Client {
	c.retryLimit = limit
	c.retryBackoff = backoff
	return c
}

// sendRequest newReq is called for every attempt because a request body is consumed when sent
func (c *Client) sendRequest(ctx context.Context, newReq func() *request.Request) (*request.Response, error) {
	if c.retryLimit <= 0 {
		return c.send(ctx, newReq())
	}

	var resp *request.Response
	var lastErr error
	err := retry.New().Backoff(c.retryBackoff, 1.0).Limit(c.retryLimit).Do(ctx, func() error {
		r, err := c.send(ctx, newReq())
		if err != nil {
			var he *HttpError
			if errors.As(err, &he) && !he.Temporary() {
				resp, lastErr = r, err
				return nil
			}
			return err
		}

		resp, lastErr = r, nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, lastErr
}

func (c *Client) send(ctx context.Context, req *request.Request) (*request.Response, error) {
	log.Debugf("send request: %s", req.URL)

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	if !resp.Success() {
		defer resp.Body.Close()

		var he struct {
			Message string `json:"message"`
		}
		if err := resp.JSON(&he); err != nil || he.Message == "" {
			return resp, NewHTTPError(resp.StatusCode, "failed with status %d", resp.StatusCode)
		}
		return resp, NewHTTPError(resp.StatusCode, "%s", he.Message)
	}

	return resp, nil
}

// Ingest submit one batch; the batch is applied entirely or not at all
func (c *Client) Ingest(ctx context.Context, batch *Batch) (*IngestResponse, error) {
	resp, err := c.sendRequest(ctx, func() *request.Request { return c.client.Post("%s/ingest", c.endpoint).JSON(batch) })
	if err != nil {
		return nil, errors.Wrap(err, "fail to ingest")
	}

	defer resp.Body.Close()
	var result IngestResponse
	if err := resp.JSON(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) ListKeys(ctx context.Context) (*KeyList, error) {
	resp, err := c.sendRequest(ctx, func() *request.Request { return c.client.Get("%s/keys", c.endpoint) })
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	var list KeyList
	if err := resp.JSON(&list); err != nil {
		return nil, err
	}

	return &list, nil
}

func (c *Client) ListCertificates(ctx context.Context) (*CertificateList, error) {
	resp, err := c.sendRequest(ctx, func() *request.Request { return c.client.Get("%s/certificates", c.endpoint) })
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	var list CertificateList
	if err := resp.JSON(&list); err != nil {
		return nil, err
	}

	return &list, nil
}

// Classify classify the inventory with the given overrides; req may be nil
func (c *Client) Classify(ctx context.Context, req *ClassifyRequest) (*Report, error) {
	if req == nil {
		req = &ClassifyRequest{}
	}

	resp, err := c.sendRequest(ctx, func() *request.Request { return c.client.Post("%s/classify", c.endpoint).JSON(req) })
	if err != nil {
		return nil, errors.Wrap(err, "fail to classify")
	}

	defer resp.Body.Close()
	var report Report
	if err := resp.JSON(&report); err != nil {
		return nil, err
	}

	return &report, nil
}

// Report classification with the server's configuration
func (c *Client) Report(ctx context.Context) (*Report, error) {
	resp, err := c.sendRequest(ctx, func() *request.Request { return c.client.Get("%s/report", c.endpoint) })
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	var report Report
	if err := resp.JSON(&report); err != nil {
		return nil, err
	}

	return &report, nil
}
