// Package radiobrowser клиент публичного каталога станций radio-browser.info.
package radiobrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/restaurant-radio/internal/models"
)

// DefaultBaseURL зеркало каталога, обращение идёт к нему напрямую, минуя сервис обнаружения.
const DefaultBaseURL = "https://de1.api.radio-browser.info/json"

// Client HTTP-клиент каталога.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient создаёт клиент. Пустой baseURL заменяется на DefaultBaseURL.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchParams параметры поиска станций.
type SearchParams struct {
	Tag         string
	CountryCode string
	Name        string
	Limit       int
	HideBroken  bool
	Order       string
	Reverse     bool
}

func (p SearchParams) values() url.Values {
	v := url.Values{}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.HideBroken {
		v.Set("hidebroken", "true")
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Reverse {
		v.Set("reverse", "true")
	}
	if p.Tag != "" {
		v.Set("tag", p.Tag)
	}
	if p.CountryCode != "" {
		v.Set("countrycode", p.CountryCode)
	}
	if p.Name != "" {
		v.Set("name", p.Name)
	}
	return v
}

// Countries возвращает все страны каталога.
func (c *Client) Countries(ctx context.Context) ([]models.Country, error) {
	const op = "radiobrowser.Countries"
	var out []models.Country
	if err := c.get(ctx, "/countries", nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// SearchStations ищет станции.
func (c *Client) SearchStations(ctx context.Context, p SearchParams) ([]models.Station, error) {
	const op = "radiobrowser.SearchStations"
	var out []models.Station
	if err := c.get(ctx, "/stations/search", p.values(), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// StationsByTag возвращает станции с точным совпадением тега.
func (c *Client) StationsByTag(ctx context.Context, tag string, limit int) ([]models.Station, error) {
	const op = "radiobrowser.StationsByTag"
	p := SearchParams{Limit: limit, Order: "votes", Reverse: true}
	var out []models.Station
	if err := c.get(ctx, "/stations/bytag/"+url.PathEscape(tag), p.values(), &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
