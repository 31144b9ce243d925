// Package f1api looks up driver metadata from an Ergast-compatible REST API.
package f1api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apextelemetry/apextelemetry/logger"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultTimeout = 5 * time.Second
	maxBodySize    = 4 << 20
	pageLimit      = 100
)

var (
	errNoMatch     = errors.New("driver not found")
	errBadResponse = errors.New("unexpected response from driver API")
	errEmpty       = errors.New("empty result from driver API")
)

type standingsResponse struct {
	MRData struct {
		StandingsTable struct {
			Season         string `json:"season"`
			StandingsLists []struct {
				DriverStandings []struct {
					Position     string       `json:"position"`
					Driver       driverRecord `json:"Driver"`
					Constructors []struct {
						Name string `json:"name"`
					} `json:"Constructors"`
				} `json:"DriverStandings"`
			} `json:"StandingsLists"`
		} `json:"StandingsTable"`
	} `json:"MRData"`
}

type driverRecord struct {
	DriverID    string `json:"driverId"`
	Code        string `json:"code"`
	GivenName   string `json:"givenName"`
	FamilyName  string `json:"familyName"`
	Nationality string `json:"nationality"`
}

func (d driverRecord) fullName() string {
	return strings.TrimSpace(d.GivenName + " " + d.FamilyName)
}

type driversResponse struct {
	MRData struct {
		DriverTable struct {
			Drivers []driverRecord `json:"Drivers"`
		} `json:"DriverTable"`
	} `json:"MRData"`
}

type seasonsResponse struct {
	MRData struct {
		SeasonTable struct {
			Seasons []struct {
				Season string `json:"season"`
			} `json:"Seasons"`
		} `json:"SeasonTable"`
	} `json:"MRData"`
}

type resultsResponse struct {
	MRData struct {
		Total     string `json:"total"`
		RaceTable struct {
			Races []struct {
				Season   string `json:"season"`
				Round    string `json:"round"`
				RaceName string `json:"raceName"`
				Date     string `json:"date"`
				Circuit  struct {
					CircuitName string `json:"circuitName"`
					Location    struct {
						Locality string `json:"locality"`
						Country  string `json:"country"`
					} `json:"Location"`
				} `json:"Circuit"`
			} `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

// Client talks to the driver API. Its methods never fail: any error yields built-in
// defaults and is logged. All requests share one circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
	now        func() time.Time
}

// NewClient builds a client for baseURL. timeout <= 0 selects the default of 5s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "driver-api",
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infof("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
		now:        time.Now,
	}
}

// LookupDriver fetches the season's driver standings and returns the entry matching name.
// On any failure the default record for name is returned and the failure is logged.
func (c *Client) LookupDriver(ctx context.Context, name string, season int) DriverInfo {
	info, err := c.lookup(ctx, name, season)
	if err != nil {
		if errors.Is(err, errNoMatch) {
			logger.Debugf("driver %q not in %d standings, using defaults", name, season)
		} else {
			logger.Warningf("driver lookup for %q failed, using defaults: %v", name, err)
		}
		return DefaultDriver(name)
	}
	return info
}

// Drivers lists the drivers of a season, sorted by name. season <= 0 selects the current
// season. The built-in roster is returned when the API fails or knows no drivers.
func (c *Client) Drivers(ctx context.Context, season int) []DriverInfo {
	list, err := c.drivers(ctx, season)
	if err != nil {
		logger.Warningf("driver list for %s failed, using built-in roster: %v", seasonPath(season), err)
		return Drivers()
	}
	return list
}

// Seasons lists the championship years, newest first. When the API is unavailable it
// falls back to every year from FirstFallbackSeason to the current one.
func (c *Client) Seasons(ctx context.Context) []int {
	years, err := c.seasons(ctx)
	if err != nil {
		logger.Warningf("season list failed, using %d-%d: %v", FirstFallbackSeason, c.now().Year(), err)
		return FallbackSeasons(c.now())
	}
	return years
}

// DriverRaces returns the most recent races the driver started, newest first. A name the
// API and the roster both miss yields an empty list; any other failure yields the
// built-in calendar so every driver can still be compared on the same dates.
func (c *Client) DriverRaces(ctx context.Context, name string) []Race {
	id := c.resolveID(ctx, name)
	if id == "" {
		logger.Warningf("driver %q not found, no race history", name)
		return []Race{}
	}
	races, err := c.driverRaces(ctx, id)
	if err != nil {
		logger.Warningf("race history for %q failed, using built-in calendar: %v", name, err)
		return FallbackRaces(c.now())
	}
	return races
}

func (c *Client) lookup(ctx context.Context, name string, season int) (DriverInfo, error) {
	var data standingsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%d/driverStandings.json", season), nil, &data); err != nil {
		return DriverInfo{}, err
	}
	for _, list := range data.MRData.StandingsTable.StandingsLists {
		for _, st := range list.DriverStandings {
			d := st.Driver
			fullName := d.fullName()
			if !matches(fullName, d.Code, d.DriverID, name) {
				continue
			}
			info := DriverInfo{
				ID:          d.DriverID,
				FullName:    fullName,
				Code:        d.Code,
				Nationality: d.Nationality,
				Team:        unknown,
				Source:      SourceAPI,
			}
			if len(st.Constructors) > 0 {
				info.Team = st.Constructors[len(st.Constructors)-1].Name
			}
			if pos, err := strconv.Atoi(st.Position); err == nil {
				info.StandingPosition = pos
			}
			return info, nil
		}
	}
	return DriverInfo{}, errNoMatch
}

func (c *Client) drivers(ctx context.Context, season int) ([]DriverInfo, error) {
	var data driversResponse
	if err := c.getJSON(ctx, seasonPath(season)+"/drivers.json", limitQuery(pageLimit, 0), &data); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	list := make([]DriverInfo, 0, len(data.MRData.DriverTable.Drivers))
	for _, d := range data.MRData.DriverTable.Drivers {
		if d.DriverID == "" || seen[d.DriverID] {
			continue
		}
		seen[d.DriverID] = true
		info := DriverInfo{
			ID:          d.DriverID,
			FullName:    d.fullName(),
			Code:        d.Code,
			Nationality: d.Nationality,
			Team:        unknown,
			Source:      SourceAPI,
		}
		if known := DefaultDriver(info.FullName); known.ID != "" {
			info.Team = known.Team
		}
		list = append(list, info)
	}
	if len(list) == 0 {
		return nil, errEmpty
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FullName < list[j].FullName })
	return list, nil
}

func (c *Client) seasons(ctx context.Context) ([]int, error) {
	var data seasonsResponse
	if err := c.getJSON(ctx, "seasons.json", limitQuery(pageLimit, 0), &data); err != nil {
		return nil, err
	}
	years := make([]int, 0, len(data.MRData.SeasonTable.Seasons))
	for _, s := range data.MRData.SeasonTable.Seasons {
		if y, err := strconv.Atoi(s.Season); err == nil {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return nil, errEmpty
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// resolveID finds the API id for name among the current drivers, then the roster.
func (c *Client) resolveID(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if list, err := c.drivers(ctx, 0); err == nil {
		for _, d := range list {
			if matches(d.FullName, d.Code, d.ID, name) {
				return d.ID
			}
		}
	}
	if d := DefaultDriver(name); d.ID != "" {
		return d.ID
	}
	return ""
}

// driverRaces reads the last page of the driver's results: one request learns the total,
// a second fetches the newest pageLimit races.
func (c *Client) driverRaces(ctx context.Context, id string) ([]Race, error) {
	path := "drivers/" + url.PathEscape(id) + "/results.json"
	var head resultsResponse
	if err := c.getJSON(ctx, path, limitQuery(1, 0), &head); err != nil {
		return nil, err
	}
	total, err := strconv.Atoi(head.MRData.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: total %q", errBadResponse, head.MRData.Total)
	}
	if total == 0 {
		return nil, errEmpty
	}

	var data resultsResponse
	if err := c.getJSON(ctx, path, limitQuery(pageLimit, max(total-pageLimit, 0)), &data); err != nil {
		return nil, err
	}
	races := make([]Race, 0, len(data.MRData.RaceTable.Races))
	for _, r := range data.MRData.RaceTable.Races {
		year, _ := strconv.Atoi(r.Season)
		round, _ := strconv.Atoi(r.Round)
		races = append(races, newRace(year, round, r.RaceName, r.Date, r.Circuit.CircuitName,
			r.Circuit.Location.Locality, r.Circuit.Location.Country, SourceAPI))
	}
	if len(races) == 0 {
		return nil, errEmpty
	}
	sortRaces(races)
	return races, nil
}

// getJSON GETs {base}/{path} and decodes the body into out. Transport errors, non-200
// replies and undecodable bodies count against the breaker.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	_, err := c.cb.Execute(func() ([]byte, error) {
		body, err := c.fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("%w: %v", errBadResponse, err)
		}
		return body, nil
	})
	return err
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errBadResponse, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func seasonPath(season int) string {
	if season <= 0 {
		return "current"
	}
	return strconv.Itoa(season)
}

func limitQuery(limit, offset int) url.Values {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
