package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Connection performs a GET for a path and query, the host is owned by the implementation
type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client *http.Client
	scheme string
	host   string
}

type Client struct {
	Connection Connection
	ApiKey     string
}

func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	endpoint.Scheme = conn.scheme
	endpoint.Host = conn.host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", endpoint.Path, err)
	}
	return conn.client.Do(req)
}

func ClientFactory(host string, apiKey string, timeout time.Duration) *Client {
	return NewClient(&ClientHost{
		client: &http.Client{Timeout: timeout},
		scheme: "https",
		host:   host,
	}, apiKey)
}

func NewClient(conn Connection, apiKey string) *Client {
	return &Client{
		Connection: conn,
		ApiKey:     apiKey,
	}
}
