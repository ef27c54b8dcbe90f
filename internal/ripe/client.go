// Package ripe queries the RIPE Database REST search API.
package ripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/ttani03/inetnums/internal/models"
)

const DefaultSearchURL = "https://rest.db.ripe.net/search"

type Options struct {
	SearchURL string
	Source    string
	// Timeout bounds each request. Zero waits indefinitely.
	Timeout time.Duration
	// SOCKS5Proxy is a host:port, optionally with user:password@ in front.
	SOCKS5Proxy string
}

type Client struct {
	http      *http.Client
	searchURL *url.URL
	source    string
}

func NewClient(opts Options) (*Client, error) {
	if opts.SearchURL == "" {
		opts.SearchURL = DefaultSearchURL
	}
	if opts.Source == "" {
		opts.Source = "ripe"
	}
	searchURL, err := url.Parse(opts.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search url %q: %w", opts.SearchURL, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.SOCKS5Proxy != "" {
		dial, err := socksDialer(opts.SOCKS5Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dial
	}

	return &Client{
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		searchURL: searchURL,
		source:    opts.Source,
	}, nil
}

func socksDialer(addr string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse("socks5://" + addr)
	if err != nil {
		return nil, fmt.Errorf("invalid socks5 proxy %q: %w", addr, err)
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to create socks5 dialer: %w", err)
	}
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}, nil
}

// QueryURL builds the inverse organisation lookup for one object type,
// keeping any parameters already present on the search URL.
func (c *Client) QueryURL(org string, family models.Family) string {
	u := *c.searchURL
	q := u.Query()
	q.Set("inverse-attribute", "org")
	q.Set("flags", "no-referenced")
	q.Set("source", c.source)
	q.Set("type-filter", family.ObjectType())
	q.Set("query-string", org)
	u.RawQuery = q.Encode()
	return u.String()
}

// Search fetches the inetnum or inet6num objects referencing org. The body
// is decoded whatever the HTTP status, since the registry reports failures
// such as "no entries found" as a JSON payload with a 4xx code.
func (c *Client) Search(ctx context.Context, org string, family models.Family) (*models.SearchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(org, family), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s query for %s failed: %w", family.ObjectType(), org, err)
	}
	defer resp.Body.Close()

	var result models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("unable to decode %s response for %s (HTTP %d): %w", family.ObjectType(), org, resp.StatusCode, err)
	}
	return &result, nil
}
