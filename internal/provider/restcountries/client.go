package restcountries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"atlas/internal/metrics"
	"atlas/internal/model"
	"atlas/internal/util"

	"go.uber.org/zap"
)

const providerName = "restcountries"

// ErrNotFound is returned when the API knows no country or region by that name
var ErrNotFound = errors.New("not found in rest countries")

// Client talks to the REST Countries v3.1 API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type countryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

type nameOnly struct {
	Name countryName `json:"name"`
}

type pngLink struct {
	PNG string `json:"png"`
}

type countryResponse struct {
	Name        countryName       `json:"name"`
	CCA2        string            `json:"cca2"`
	CCA3        string            `json:"cca3"`
	Flags       pngLink           `json:"flags"`
	CoatOfArms  pngLink           `json:"coatOfArms"`
	Population  int64             `json:"population"`
	Area        float64           `json:"area"`
	Capital     []string          `json:"capital"`
	Car         carInfo           `json:"car"`
	Continents  []string          `json:"continents"`
	Timezones   []string          `json:"timezones"`
	Independent bool              `json:"independent"`
	StartOfWeek string            `json:"startOfWeek"`
	Languages   map[string]string `json:"languages"`
	Borders     []string          `json:"borders"`
	FIFA        string            `json:"fifa"`
}

type carInfo struct {
	Side string `json:"side"`
}

func (r *countryResponse) toDetails() *model.CountryDetails {
	return &model.CountryDetails{
		CommonName:      r.Name.Common,
		OfficialName:    r.Name.Official,
		CCA2:            r.CCA2,
		CCA3:            r.CCA3,
		FlagPNG:         r.Flags.PNG,
		CoatOfArmsPNG:   r.CoatOfArms.PNG,
		Population:      r.Population,
		PopulationLabel: util.FormatPopulation(r.Population),
		Area:            r.Area,
		Capital:         r.Capital,
		CarSide:         r.Car.Side,
		Continents:      r.Continents,
		Timezones:       r.Timezones,
		Independent:     r.Independent,
		StartOfWeek:     r.StartOfWeek,
		Languages:       r.Languages,
		BorderCodes:     r.Borders,
		Borders:         []string{},
		FIFA:            r.FIFA,
	}
}

// CountryDetails looks a country up by its full name and resolves its border
// codes to common names. A failed border lookup leaves Borders empty.
func (c *Client) CountryDetails(ctx context.Context, name string) (*model.CountryDetails, error) {
	endpoint := fmt.Sprintf("%s/name/%s?fullText=true", c.baseURL, url.PathEscape(name))

	var countries []countryResponse
	if err := c.getJSON(ctx, endpoint, &countries); err != nil {
		return nil, fmt.Errorf("country %q: %w", name, err)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("country %q: %w", name, ErrNotFound)
	}

	details := countries[0].toDetails()
	if len(details.BorderCodes) > 0 {
		borders, err := c.BorderNames(ctx, details.BorderCodes)
		if err != nil {
			c.logger.Warn("failed to resolve border names",
				zap.String("country", name),
				zap.Strings("codes", details.BorderCodes),
				zap.Error(err),
			)
		} else {
			details.Borders = borders
		}
	}
	return details, nil
}

// BorderNames maps alpha codes to common country names
func (c *Client) BorderNames(ctx context.Context, codes []string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/alpha?codes=%s&fields=name", c.baseURL, url.QueryEscape(strings.Join(codes, ",")))

	var resp []nameOnly
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return commonNames(resp), nil
}

// RegionMembers lists the common names of every country in a region
func (c *Client) RegionMembers(ctx context.Context, region string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/region/%s?fields=name", c.baseURL, url.PathEscape(region))

	var resp []nameOnly
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("region %q: %w", region, err)
	}
	return commonNames(resp), nil
}

// AllNames lists the common name of every country, sorted
func (c *Client) AllNames(ctx context.Context) ([]string, error) {
	var resp []nameOnly
	if err := c.getJSON(ctx, c.baseURL+"/all?fields=name", &resp); err != nil {
		return nil, err
	}
	names := commonNames(resp)
	sort.Strings(names)
	return names, nil
}

func commonNames(items []nameOnly) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name.Common != "" {
			names = append(names, it.Name.Common)
		}
	}
	return names
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	start := time.Now()
	err := c.doGet(ctx, endpoint, dst)
	metrics.ProviderDurationMs.WithLabelValues(providerName).Observe(float64(time.Since(start).Milliseconds()))

	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(providerName, result).Inc()
	return err
}

func (c *Client) doGet(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
