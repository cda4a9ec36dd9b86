package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/idler/config"
	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/testutil"
)

// newTestServer answers every request with handler after decoding the body.
func newTestServer(t *testing.T, handler func(body map[string]interface{}) (int, string)) (*Client, *httptest.Server) {
	t.Helper()
	testutil.TempHome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(data, &body))

		status, resp := handler(body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	return NewClient(config.APIConfig{Endpoint: srv.URL, Timeout: 5 * time.Second}), srv
}

func TestUserGamesList(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		assert.Equal(t, RouteUserGamesList, body["route"])
		assert.Equal(t, "76561198000000000", body["steamId"])
		return http.StatusOK, `[
			{"game":{"id":570,"name":"Dota 2"},"minutes":600,"lastPlayedTimestamp":1700000000},
			{"game":{"id":440,"name":"Team Fortress 2"},"minutes":0,"lastPlayedTimestamp":0}
		]`
	})

	items, ok := c.UserGamesList(context.Background(), "76561198000000000")
	require.True(t, ok)
	assert.Equal(t, []library.Item{
		{AppID: 570, Name: "Dota 2", Minutes: 600, LastPlayed: 1700000000},
		{AppID: 440, Name: "Team Fortress 2"},
	}, items)
}

func TestFailureStatusMeansNoData(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		return http.StatusInternalServerError, `{"error":"boom"}`
	})
	ctx := context.Background()

	items, ok := c.UserGamesList(ctx, "1")
	assert.False(t, ok)
	assert.Nil(t, items)

	assert.Zero(t, c.Drops(ctx, "1", 570, Credentials{SID: "a", SLS: "b"}))
	assert.Empty(t, c.GamesWithDrops(ctx, "1", Credentials{}))

	err := c.Statistics(ctx, "idle", 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTransportFailed))
}

func TestDrops(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		assert.Equal(t, RouteDrops, body["route"])
		assert.Equal(t, float64(570), body["appId"], "appId is sent as a JSON number")
		assert.Equal(t, "sid-cookie", body["sid"])
		assert.Equal(t, "sls-cookie", body["sls"])
		return http.StatusOK, `{"remaining":3}`
	})

	got := c.Drops(context.Background(), "1", 570, Credentials{SID: "sid-cookie", SLS: "sls-cookie"})
	assert.Equal(t, 3, got)
}

func TestDropsMissingRemaining(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		return http.StatusOK, `{}`
	})
	assert.Zero(t, c.Drops(context.Background(), "1", 570, Credentials{}))
}

func TestGamesWithDrops(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		assert.Equal(t, RouteGamesWithDrops, body["route"])
		return http.StatusOK, `{"games":[{"id":730,"name":"Counter-Strike 2","remaining":2}]}`
	})

	games := c.GamesWithDrops(context.Background(), "1", Credentials{})
	assert.Equal(t, []DropGame{{ID: 730, Name: "Counter-Strike 2", Remaining: 2}}, games)
}

func TestStatisticsBody(t *testing.T) {
	var calls int32
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, RouteStatistics, body["route"])
		assert.Equal(t, "achievement", body["type"])
		assert.EqualValues(t, 4, body["count"])
		return http.StatusOK, `ignored`
	})

	require.NoError(t, c.Statistics(context.Background(), "achievement", 4))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestMalformedResponse(t *testing.T) {
	c, _ := newTestServer(t, func(body map[string]interface{}) (int, string) {
		return http.StatusOK, `not json`
	})
	_, ok := c.UserGamesList(context.Background(), "1")
	assert.False(t, ok)
}

func TestNewClientDefaults(t *testing.T) {
	testutil.TempHome(t)
	c := NewClient(config.APIConfig{})
	assert.Equal(t, config.DefaultEndpoint, c.Endpoint())
	assert.Equal(t, config.DefaultTimeout, c.client.Timeout)
}
