package client

import (
	"net/http"

	v1 "cryptohub/client/v1"
)

func New(endpoint string) *Client { return WithClient(endpoint, &http.Client{}) }
func WithClient(endpoint string, client *http.Client) *Client {
	return &Client{
		endpoint: endpoint,
		client:   client,
		v1:       v1.WithClient(endpoint+"/v1", client),
	}
}

type Client struct {
	endpoint string
	client   *http.Client

	v1 *v1.Client
}

func (c *Client) V1() *v1.Client { return c.v1 }
