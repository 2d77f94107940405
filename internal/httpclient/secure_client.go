// Package httpclient makes outbound calls to third-party APIs such as geocoding.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// ErrBlockedAddress is returned when the target resolves to a private range.
var ErrBlockedAddress = errors.New("blocked private address")

const maxBody = 1 << 20

// Doer is satisfied by *http.Client and *SecureClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SecureClient wraps http.Client with SSRF protections (no private IPs) and timeouts.
type SecureClient struct {
	Client   *http.Client
	Timeout  time.Duration
	Resolver *net.Resolver
	Blocked  []*net.IPNet
}

// New returns a SecureClient disallowing private and loopback ranges.
func New(timeout time.Duration) *SecureClient {
	return &SecureClient{
		Client:  &http.Client{},
		Timeout: timeout,
		Blocked: mustCIDRs([]string{
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"127.0.0.0/8",
			"169.254.0.0/16",
			"::1/128",
			"fc00::/7",
			"fe80::/10",
		}),
	}
}

// Do issues the request after checking host resolution.
func (c *SecureClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.checkHost(req.Context(), req.URL.Hostname()); err != nil {
		return nil, err
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	if c.Timeout <= 0 {
		return client.Do(req)
	}
	ctx, cancel := context.WithTimeout(req.Context(), c.Timeout)
	resp, err := client.Do(req.Clone(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// GetJSON fetches url and decodes a 2xx JSON body into dst.
func GetJSON(ctx context.Context, d Doer, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := d.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *SecureClient) checkHost(ctx context.Context, host string) error {
	var addrs []net.IP
	if ip := net.ParseIP(host); ip != nil {
		addrs = []net.IP{ip}
	} else {
		r := c.Resolver
		if r == nil {
			r = net.DefaultResolver
		}
		var err error
		if addrs, err = r.LookupIP(ctx, "ip", host); err != nil {
			return err
		}
	}
	for _, ip := range addrs {
		for _, cidr := range c.Blocked {
			if cidr.Contains(ip) {
				return ErrBlockedAddress
			}
		}
	}
	return nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func mustCIDRs(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}
