// Package geoip resolves a client IP to a coarse human-readable location for
// notification messages. Lookups go to ip-api.com and are cached in Redis;
// every failure path degrades to a placeholder string, never an error, since
// location is cosmetic.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://ip-api.com"

	locationUnknown = "Unknown"
	locationPrivate = "Local/Private Network"
)

type Resolver interface {
	// Lookup never fails; it returns a location string or a placeholder.
	Lookup(ctx context.Context, ip string) string
}

type Client struct {
	http     *http.Client
	baseURL  string
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache stores resolved locations in Redis under geoip:<ip> for ttl.
func WithCache(cli *redis.Client, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cli
		c.cacheTTL = ttl
	}
}

func New(log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 3 * time.Second},
		baseURL: defaultBaseURL,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Lookup(ctx context.Context, ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return locationUnknown
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() {
		return locationPrivate
	}

	if c.cache != nil {
		if loc, err := c.cache.Get(ctx, cacheKey(ip)).Result(); err == nil && loc != "" {
			return loc
		}
	}

	loc := c.query(ctx, ip)

	if c.cache != nil && loc != locationUnknown {
		if err := c.cache.Set(ctx, cacheKey(ip), loc, c.cacheTTL).Err(); err != nil {
			c.log.Warn("geoip cache write failed", zap.Error(err))
		}
	}
	return loc
}

func (c *Client) query(ctx context.Context, ip string) string {
	url := fmt.Sprintf("%s/json/%s", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return locationUnknown
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("geoip lookup failed", zap.String("ip", ip), zap.Error(err))
		return locationUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return locationUnknown
	}

	var body struct {
		Status     string `json:"status"`
		Country    string `json:"country"`
		City       string `json:"city"`
		RegionName string `json:"regionName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "success" {
		return locationUnknown
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{body.City, body.RegionName, body.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return locationUnknown
	}
	return strings.Join(parts, ", ")
}

func cacheKey(ip string) string { return "geoip:" + ip }
