package f1api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentDrivers = `{"MRData":{"DriverTable":{"Drivers":[
{"driverId":"max_verstappen","code":"VER","givenName":"Max","familyName":"Verstappen","nationality":"Dutch"},
{"driverId":"antonelli","code":"ANT","givenName":"Andrea Kimi","familyName":"Antonelli","nationality":"Italian"},
{"driverId":"hamilton","code":"HAM","givenName":"Lewis","familyName":"Hamilton","nationality":"British"},
{"driverId":"hamilton","code":"HAM","givenName":"Lewis","familyName":"Hamilton","nationality":"British"}
]}}}`

const verstappenTotal = `{"MRData":{"total":"230","RaceTable":{"Races":[]}}}`

const verstappenPage = `{"MRData":{"total":"230","RaceTable":{"Races":[
{"season":"2024","round":"7","raceName":"Emilia Romagna Grand Prix","date":"2024-05-19","Circuit":{"circuitName":"Autodromo Enzo e Dino Ferrari","Location":{"locality":"Imola","country":"Italy"}}},
{"season":"2024","round":"8","raceName":"Monaco Grand Prix","date":"2024-05-26","Circuit":{"circuitName":"Circuit de Monaco","Location":{"locality":"Monte-Carlo","country":"Monaco"}}},
{"season":"2023","round":"22","raceName":"Abu Dhabi Grand Prix","date":"2023-11-26","Circuit":{"circuitName":"Yas Marina Circuit","Location":{"locality":"Abu Dhabi","country":"UAE"}}}
]}}}`

// newRouteServer answers each request path with the body registered for it, or 404.
func newRouteServer(t *testing.T, routes map[string]func(r *http.Request) (int, string), hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		route, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		status, body := route(r)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func reply(status int, body string) func(*http.Request) (int, string) {
	return func(*http.Request) (int, string) { return status, body }
}

func fixedClock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, 12, 1, 0, 0, 0, 0, time.UTC) }
}

func TestDriversFromAPI(t *testing.T) {
	srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
		"/current/drivers.json": func(r *http.Request) (int, string) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			return http.StatusOK, currentDrivers
		},
		"/2021/drivers.json": reply(http.StatusOK, currentDrivers),
	}, nil)
	c := NewClient(srv.URL, time.Second)

	list := c.Drivers(context.Background(), 0)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Andrea Kimi Antonelli", "Lewis Hamilton", "Max Verstappen"},
		[]string{list[0].FullName, list[1].FullName, list[2].FullName})
	assert.Equal(t, "Unknown", list[0].Team)
	assert.Equal(t, "Mercedes", list[1].Team)
	assert.Equal(t, "max_verstappen", list[2].ID)
	for _, d := range list {
		assert.Equal(t, SourceAPI, d.Source)
	}

	assert.Len(t, c.Drivers(context.Background(), 2021), 3)
}

func TestDriversFallsBackToRoster(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"bad json", http.StatusOK, "{"},
		{"no drivers", http.StatusOK, `{"MRData":{"DriverTable":{"Drivers":[]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
				"/current/drivers.json": reply(tt.status, tt.body),
			}, nil)
			c := NewClient(srv.URL, time.Second)
			assert.Equal(t, Drivers(), c.Drivers(context.Background(), 0))
		})
	}
}

func TestSeasonsFromAPI(t *testing.T) {
	srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
		"/seasons.json": reply(http.StatusOK, `{"MRData":{"SeasonTable":{"Seasons":[{"season":"2022"},{"season":"2024"},{"season":"2023"}]}}}`),
	}, nil)
	c := NewClient(srv.URL, time.Second)
	assert.Equal(t, []int{2024, 2023, 2022}, c.Seasons(context.Background()))
}

func TestSeasonsFallback(t *testing.T) {
	srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
		"/seasons.json": reply(http.StatusServiceUnavailable, ""),
	}, nil)
	c := NewClient(srv.URL, time.Second)
	c.now = fixedClock(2024)

	years := c.Seasons(context.Background())
	require.Len(t, years, 25)
	assert.Equal(t, 2024, years[0])
	assert.Equal(t, FirstFallbackSeason, years[len(years)-1])
}

func TestDriverRacesFromAPI(t *testing.T) {
	srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
		"/current/drivers.json": reply(http.StatusOK, currentDrivers),
		"/drivers/max_verstappen/results.json": func(r *http.Request) (int, string) {
			q := r.URL.Query()
			if q.Get("limit") == "1" {
				return http.StatusOK, verstappenTotal
			}
			assert.Equal(t, "100", q.Get("limit"))
			assert.Equal(t, "130", q.Get("offset"))
			return http.StatusOK, verstappenPage
		},
	}, nil)
	c := NewClient(srv.URL, time.Second)

	races := c.DriverRaces(context.Background(), "max verstappen")
	require.Len(t, races, 3)
	assert.Equal(t, "Monaco Grand Prix", races[0].Name)
	assert.Equal(t, 8, races[0].Round)
	assert.Equal(t, "2024-05-26", races[0].Date)
	assert.Equal(t, "Monte-Carlo", races[0].Location)
	assert.Equal(t, "Monaco Grand Prix 2024 (2024-05-26)", races[0].DisplayName)
	assert.Equal(t, SourceAPI, races[0].Source)
	assert.Equal(t, 2023, races[2].Year)
}

func TestDriverRacesFallbacks(t *testing.T) {
	t.Run("api down uses roster id then calendar", func(t *testing.T) {
		var hits int32
		srv := newRouteServer(t, map[string]func(*http.Request) (int, string){}, &hits)
		c := NewClient(srv.URL, time.Second)
		c.now = fixedClock(2024)

		assert.Equal(t, FallbackRaces(c.now()), c.DriverRaces(context.Background(), "Lewis Hamilton"))
		assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
	})

	t.Run("no results uses calendar", func(t *testing.T) {
		srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
			"/current/drivers.json":           reply(http.StatusOK, currentDrivers),
			"/drivers/antonelli/results.json": reply(http.StatusOK, `{"MRData":{"total":"0","RaceTable":{"Races":[]}}}`),
		}, nil)
		c := NewClient(srv.URL, time.Second)
		c.now = fixedClock(2024)
		assert.Equal(t, FallbackRaces(c.now()), c.DriverRaces(context.Background(), "ANT"))
	})

	t.Run("unknown driver", func(t *testing.T) {
		srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
			"/current/drivers.json": reply(http.StatusOK, currentDrivers),
		}, nil)
		c := NewClient(srv.URL, time.Second)
		races := c.DriverRaces(context.Background(), "Jane Doe")
		assert.NotNil(t, races)
		assert.Empty(t, races)
	})
}

func TestFallbackRaces(t *testing.T) {
	races := FallbackRaces(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, races, 5*12)
	assert.Equal(t, Race{
		Year: 2024, Round: 12, Name: "Singapore Grand Prix", Date: "2024-08-22",
		Circuit: "Marina Bay Street Circuit", Location: "Marina Bay", Country: "Singapore",
		DisplayName: "Singapore Grand Prix 2024 (2024-08-22)", Source: SourceDefault,
	}, races[0])
	last := races[len(races)-1]
	assert.Equal(t, 2020, last.Year)
	assert.Equal(t, "2020-03-15", last.Date)

	// Later years keep a five-season window.
	later := FallbackRaces(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2026, later[len(later)-1].Year)
}

func TestBreakerIsSharedAcrossCalls(t *testing.T) {
	var hits int32
	srv := newRouteServer(t, map[string]func(*http.Request) (int, string){
		"/seasons.json": reply(http.StatusBadGateway, ""),
	}, &hits)
	c := NewClient(srv.URL, time.Second)

	for i := 0; i < 5; i++ {
		c.Seasons(context.Background())
	}
	info := c.LookupDriver(context.Background(), "Lando Norris", 2024)
	assert.Equal(t, SourceDefault, info.Source)
	assert.Equal(t, Drivers(), c.Drivers(context.Background(), 0))
	assert.EqualValues(t, 5, atomic.LoadInt32(&hits))
}
