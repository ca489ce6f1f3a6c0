package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ulascansenturk/weather-glasses/internal/api/v1/handlers"
	"ulascansenturk/weather-glasses/internal/host"
	"ulascansenturk/weather-glasses/internal/inmemorycache"
	"ulascansenturk/weather-glasses/internal/providers"
	"ulascansenturk/weather-glasses/internal/service"
)

const hostAPIKey = "integration-key"

func init() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

type fakeOpenWeather struct {
	server      *httptest.Server
	weatherHits atomic.Int32
	geoHits     atomic.Int32
}

func newFakeOpenWeather(t *testing.T) *fakeOpenWeather {
	f := &fakeOpenWeather{}

	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		f.weatherHits.Add(1)
		if r.URL.Query().Get("appid") != "ow-key" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"cod": 401, "message": "Invalid API key"})
			return
		}

		name := r.URL.Query().Get("q")
		if r.URL.Query().Get("lat") != "" {
			name = "Oakland"
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":    name,
			"main":    map[string]interface{}{"temp": 72.5, "feels_like": 71.4},
			"weather": []map[string]interface{}{{"description": "clear sky"}},
		})
	})
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		f.geoHits.Add(1)
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "Oakland", "lat": 37.8044, "lon": -122.2712, "country": "US", "state": "California"},
		})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

type testSetup struct {
	server   *httptest.Server
	upstream *fakeOpenWeather
	registry *host.Registry
}

func setupTest(t *testing.T, locationTimeout time.Duration) *testSetup {
	upstream := newFakeOpenWeather(t)

	client, err := providers.NewOpenWeatherClient("ow-key",
		providers.WithBaseURL(upstream.server.URL+"/data/2.5"),
		providers.WithGeocodingURL(upstream.server.URL+"/geo/1.0"),
		providers.WithTimeout(2*time.Second),
	)
	require.NoError(t, err)

	cache := inmemorycache.NewInMemoryCacheProvider(time.Minute)
	t.Cleanup(cache.Close)

	ctx, cancel := context.WithCancel(context.Background())
	registry := host.NewRegistry(log.Logger)
	t.Cleanup(func() {
		stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		registry.StopAll(stopCtx)
		cancel()
	})

	search := service.NewLocationSearch(client, cache, time.Minute, log.Logger)
	orchestrator := service.NewOrchestrator(client, "Berkeley", locationTimeout, log.Logger)

	router := handlers.NewRouter(
		handlers.NewLocationsHandler(search, 5*time.Second),
		handlers.NewSessionsHandler(ctx, orchestrator, registry, hostAPIKey, time.Second, log.Logger),
		registry,
		log.Logger,
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testSetup{server: server, upstream: upstream, registry: registry}
}

func (ts *testSetup) post(t *testing.T, path, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, ts.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+hostAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testSetup) card(t *testing.T, id string) (handlers.CardResponse, bool) {
	req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/sessions/"+id+"/card", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+hostAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return handlers.CardResponse{}, false
	}
	var card handlers.CardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	return card, true
}

func TestWeatherGlasses(t *testing.T) {
	t.Run("session without location shows default city", func(t *testing.T) {
		ts := setupTest(t, time.Second)

		resp := ts.post(t, "/webhook", `{"type":"session_request","sessionId":"s1","userId":"u1"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var card handlers.CardResponse
		require.Eventually(t, func() bool {
			var ok bool
			card, ok = ts.card(t, "s1")
			return ok && card.Card.Title == "Berkeley"
		}, 3*time.Second, 20*time.Millisecond)

		assert.Equal(t, "73°F\nFeels like 71°F\nclear sky", card.Card.Body)
		assert.Equal(t, int32(1), ts.upstream.weatherHits.Load())
	})

	t.Run("location timeout falls back to default city", func(t *testing.T) {
		ts := setupTest(t, 50*time.Millisecond)

		resp := ts.post(t, "/webhook", `{"type":"session_request","sessionId":"s2","userId":"u1","hasLocation":true}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.Eventually(t, func() bool {
			card, ok := ts.card(t, "s2")
			return ok && card.Card.Title == "Berkeley"
		}, 3*time.Second, 20*time.Millisecond)
	})

	t.Run("voice refresh and stop", func(t *testing.T) {
		ts := setupTest(t, time.Second)

		ts.post(t, "/webhook", `{"type":"session_request","sessionId":"s3","userId":"u1"}`)
		require.Eventually(t, func() bool {
			return ts.upstream.weatherHits.Load() == 1
		}, 3*time.Second, 20*time.Millisecond)

		resp := ts.post(t, "/sessions/s3/transcription", `{"text":"update please","isFinal":true}`)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		require.Eventually(t, func() bool {
			return ts.upstream.weatherHits.Load() == 2
		}, 3*time.Second, 20*time.Millisecond)

		resp = ts.post(t, "/webhook", `{"type":"stop_request","sessionId":"s3","reason":"user_closed"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 0, ts.registry.Len())

		resp = ts.post(t, "/sessions/s3/transcription", `{"text":"refresh","isFinal":true}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("location search is cached", func(t *testing.T) {
		ts := setupTest(t, time.Second)

		for _, q := range []string{"Oakland", "oakland", "  OAKLAND  "} {
			resp, err := http.Get(ts.server.URL + "/api/v1/locations?q=" + strings.ReplaceAll(q, " ", "%20"))
			require.NoError(t, err)

			var body handlers.LocationsResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Len(t, body.Locations, 1)
			assert.Equal(t, "California", body.Locations[0].State)
		}

		assert.Equal(t, int32(1), ts.upstream.geoHits.Load())
	})
}
