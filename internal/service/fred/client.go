package fred

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"GoldLens/internal/domain/models"
	pkghttp "GoldLens/pkg/http"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/shopspring/decimal"
)

// Client fetches daily series observations from the FRED REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *pkghttp.Client
	l       *applogger.Logger
}

func New(baseURL, apiKey string, timeout time.Duration, l *applogger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		l:       l,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// LatestObservation returns the most recent published value for seriesID, or
// nil when the newest entry carries the "." missing-value marker.
func (c *Client) LatestObservation(ctx context.Context, seriesID string) (*models.Observation, error) {
	var out observationsResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/fred/series/observations",
		QueryParams: map[string][]string{
			"series_id":  {seriesID},
			"api_key":    {c.apiKey},
			"file_type":  {"json"},
			"sort_order": {"desc"},
			"limit":      {"1"},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("fred latest observation %s: %w", seriesID, err)
	}
	if len(out.Observations) == 0 {
		if c.l != nil {
			c.l.Warn("fred returned no observations", applogger.String("series", seriesID))
		}
		return nil, nil
	}
	row := out.Observations[0]
	if row.Value == "." || strings.TrimSpace(row.Value) == "" {
		if c.l != nil {
			c.l.Warn("fred latest value missing",
				applogger.String("series", seriesID),
				applogger.String("date", row.Date),
			)
		}
		return nil, nil
	}
	v, err := decimal.NewFromString(row.Value)
	if err != nil {
		return nil, fmt.Errorf("fred latest value %s: %w", seriesID, err)
	}
	d, err := util.ParseDate(row.Date)
	if err != nil {
		return nil, fmt.Errorf("fred latest date %s: %w", seriesID, err)
	}
	return &models.Observation{Value: v, Date: d, Source: "FRED"}, nil
}

// Observations returns up to limit daily values for seriesID starting at
// from, oldest first. Missing upstream values are published as "." and are
// skipped; a malformed row is logged and skipped rather than failing the
// whole fetch.
func (c *Client) Observations(ctx context.Context, seriesID string, from time.Time, limit int) ([]models.Observation, error) {
	var out observationsResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/fred/series/observations",
		QueryParams: map[string][]string{
			"series_id":         {seriesID},
			"api_key":           {c.apiKey},
			"file_type":         {"json"},
			"observation_start": {from.UTC().Format(util.DateLayout)},
			"sort_order":        {"asc"},
			"limit":             {strconv.Itoa(limit)},
		},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("fred observations %s: %w", seriesID, err)
	}

	obs := make([]models.Observation, 0, len(out.Observations))
	for _, row := range out.Observations {
		if row.Value == "." {
			// upstream marker for a day with no published value
			continue
		}
		v, err := decimal.NewFromString(row.Value)
		if err != nil {
			if c.l != nil {
				c.l.Warn("fred observation skipped",
					applogger.String("series", seriesID),
					applogger.String("date", row.Date),
					applogger.String("value", row.Value),
					applogger.Error(err),
				)
			}
			continue
		}
		d, err := util.ParseDate(row.Date)
		if err != nil {
			if c.l != nil {
				c.l.Warn("fred observation skipped",
					applogger.String("series", seriesID),
					applogger.String("date", row.Date),
					applogger.Error(err),
				)
			}
			continue
		}
		obs = append(obs, models.Observation{
			Value:  v,
			Date:   d,
			Source: "FRED",
		})
	}
	if c.l != nil {
		c.l.Info("fred observations fetched",
			applogger.String("series", seriesID),
			applogger.Int("raw", len(out.Observations)),
			applogger.Int("usable", len(obs)),
		)
	}
	return obs, nil
}
