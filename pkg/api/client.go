// Package api talks to the remote aggregation endpoint. Every call is a POST of
// a JSON body whose "route" field selects the operation.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/grovetools/idler/config"
	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/version"
)

// Route names understood by the endpoint.
const (
	RouteUserGamesList  = "user-games-list"
	RouteDrops          = "drops"
	RouteGamesWithDrops = "games-with-drops"
	RouteStatistics     = "statistics"
)

const maxResponseBytes = 8 << 20

// Client is a rate-limited client for the aggregation endpoint. Failure
// statuses are reported to callers as "no data", never as errors, except by
// Statistics whose callers only log.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *logrus.Entry
}

// NewClient builds a client from the api config section.
func NewClient(cfg config.APIConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logging.NewLogger("api"),
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Credentials are the session cookies the drops routes need.
type Credentials struct {
	SID string
	SLS string
}

// DropGame is one entry of the games-with-drops response. Fields the endpoint
// omits decode as zero.
type DropGame struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

type request struct {
	Route   string `json:"route"`
	SteamID string `json:"steamId,omitempty"`
	AppID   int    `json:"appId,omitempty"`
	SID     string `json:"sid,omitempty"`
	SLS     string `json:"sls,omitempty"`
	Type    string `json:"type,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// post sends body and returns the response payload for a 2xx status.
func (c *Client) post(ctx context.Context, body request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.TransportFailed(body.Route, 0, fmt.Errorf("rate limiter: %w", err))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.TransportFailed(body.Route, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.TransportFailed(body.Route, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.TransportFailed(body.Route, resp.StatusCode, err)
	}

	c.logger.WithFields(logrus.Fields{
		"route":    body.Route,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("Endpoint request complete")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.TransportFailed(body.Route, resp.StatusCode, nil)
	}
	return data, nil
}

func (c *Client) noData(route string, err error) {
	c.logger.WithError(err).WithField("route", route).Warn("No data from endpoint")
}

// UserGamesList fetches the owned games of steamID in endpoint order. ok is
// false on any failure, which callers treat as a private or empty profile.
func (c *Client) UserGamesList(ctx context.Context, steamID string) (items []library.Item, ok bool) {
	data, err := c.post(ctx, request{Route: RouteUserGamesList, SteamID: steamID})
	if err != nil {
		c.noData(RouteUserGamesList, err)
		return nil, false
	}
	if err := json.Unmarshal(data, &items); err != nil {
		c.noData(RouteUserGamesList, errors.TransportFailed(RouteUserGamesList, http.StatusOK, err))
		return nil, false
	}
	return items, true
}

// Drops returns the remaining card drops for one game, or 0 when unknown.
func (c *Client) Drops(ctx context.Context, steamID string, appID int, creds Credentials) int {
	data, err := c.post(ctx, request{
		Route:   RouteDrops,
		SteamID: steamID,
		AppID:   appID,
		SID:     creds.SID,
		SLS:     creds.SLS,
	})
	if err != nil {
		c.noData(RouteDrops, err)
		return 0
	}

	var resp struct {
		Remaining int `json:"remaining"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.noData(RouteDrops, errors.TransportFailed(RouteDrops, http.StatusOK, err))
		return 0
	}
	return resp.Remaining
}

// GamesWithDrops lists every game that still has card drops. Failures yield
// an empty list.
func (c *Client) GamesWithDrops(ctx context.Context, steamID string, creds Credentials) []DropGame {
	data, err := c.post(ctx, request{
		Route:   RouteGamesWithDrops,
		SteamID: steamID,
		SID:     creds.SID,
		SLS:     creds.SLS,
	})
	if err != nil {
		c.noData(RouteGamesWithDrops, err)
		return nil
	}

	var resp struct {
		Games []DropGame `json:"games"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		c.noData(RouteGamesWithDrops, errors.TransportFailed(RouteGamesWithDrops, http.StatusOK, err))
		return nil
	}
	return resp.Games
}

// Statistics reports count events of eventType. The response body is ignored.
func (c *Client) Statistics(ctx context.Context, eventType string, count int) error {
	_, err := c.post(ctx, request{Route: RouteStatistics, Type: eventType, Count: &count})
	return err
}
