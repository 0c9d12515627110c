package goldpricez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"GoldLens/internal/domain/models"
	pkghttp "GoldLens/pkg/http"
	applogger "GoldLens/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	source   = "GoldPricez"
	currency = "USD"
	unit     = "oz"

	// Upstream publishes e.g. "19-12-2018 01:16:01 pm".
	updatedAtLayout      = "02-01-2006 03:04:05 pm"
	updatedAtLayoutUpper = "02-01-2006 03:04:05 PM"
)

// Client fetches the live XAU/USD spot price from GoldPricez.
//
// Rate limit upstream is 30-60 requests/hour; callers are expected to go
// through the cached price service rather than hit this directly.
type Client struct {
	baseURL string
	apiKey  string
	http    *pkghttp.Client
	l       *applogger.Logger

	// test hook for deterministic fallback timestamps
	now func() time.Time
}

func New(baseURL, apiKey string, timeout time.Duration, l *applogger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		l:       l,
		now:     time.Now,
	}
}

type ratesResponse struct {
	OuncePriceUSD string `json:"ounce_price_usd"`
	UpdatedAt     string `json:"gmt_ounce_price_usd_updated"`
	Ask           string `json:"ounce_price_ask"`
	Bid           string `json:"ounce_price_bid"`
}

func (c *Client) SupportsHistory() bool { return false }

func (c *Client) IsConfigured() bool { return strings.TrimSpace(c.apiKey) != "" }

// NewRequestID returns a short correlation id for one fetch attempt.
func NewRequestID() string {
	return uuid.NewString()[:8]
}

// Spot fetches the current gold price. Every failure is returned as a
// *models.PriceUnavailableError carrying the correlation id and a coarse
// category.
func (c *Client) Spot(ctx context.Context, requestID string) (*models.PriceSnapshot, error) {
	if !c.IsConfigured() {
		c.logFail(requestID, models.PriceErrConfig, "goldpricez api key not configured", nil)
		return nil, models.NewPriceUnavailable(
			"goldpricez api key not configured",
			http.StatusServiceUnavailable, models.PriceErrConfig, requestID, nil)
	}

	// Upstream serves JSON with a wrong Content-Type, so fetch raw text and
	// decode by hand.
	resp, err := c.http.SendRequest(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/rates/currency/usd/measure/ounce",
		Headers: map[string]string{
			"X-API-KEY": c.apiKey,
		},
	})
	if err != nil {
		c.logFail(requestID, models.PriceErrUnexpected, "goldpricez request failed", err)
		return nil, models.NewPriceUnavailable(
			"goldpricez request failed",
			http.StatusBadGateway, models.PriceErrUnexpected, requestID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t := errorTypeForStatus(resp.StatusCode)
		msg := fmt.Sprintf("goldpricez request failed with status %d", resp.StatusCode)
		c.logFail(requestID, t, msg, nil)
		return nil, models.NewPriceUnavailable(msg, resp.StatusCode, t, requestID, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logFail(requestID, models.PriceErrUnexpected, "goldpricez read body failed", err)
		return nil, models.NewPriceUnavailable(
			"goldpricez read body failed",
			http.StatusBadGateway, models.PriceErrUnexpected, requestID, err)
	}

	raw := strings.TrimSpace(string(body))
	if raw == "" {
		c.logFail(requestID, models.PriceErrNullResponse, "goldpricez returned empty response", nil)
		return nil, models.NewPriceUnavailable(
			"goldpricez returned empty response",
			http.StatusBadGateway, models.PriceErrNullResponse, requestID, nil)
	}

	var parsed ratesResponse
	if err := json.Unmarshal([]byte(unwrap(raw)), &parsed); err != nil {
		c.logFail(requestID, models.PriceErrJSONParse, "goldpricez response not parseable", err)
		return nil, models.NewPriceUnavailable(
			"goldpricez response not parseable",
			http.StatusBadGateway, models.PriceErrJSONParse, requestID, err)
	}

	if strings.TrimSpace(parsed.OuncePriceUSD) == "" {
		c.logFail(requestID, models.PriceErrInvalidResp, "goldpricez response missing ounce_price_usd", nil)
		return nil, models.NewPriceUnavailable(
			"goldpricez response missing ounce_price_usd",
			http.StatusBadGateway, models.PriceErrInvalidResp, requestID, nil)
	}

	price, err := decimal.NewFromString(parsed.OuncePriceUSD)
	if err != nil {
		c.logFail(requestID, models.PriceErrInvalidResp, "goldpricez price not numeric", err)
		return nil, models.NewPriceUnavailable(
			"goldpricez price not numeric",
			http.StatusBadGateway, models.PriceErrInvalidResp, requestID, err)
	}

	asOf := c.now().UTC()
	if ts := strings.TrimSpace(parsed.UpdatedAt); ts != "" {
		if t, err := parseUpdatedAt(ts); err == nil {
			asOf = t
		} else if c.l != nil {
			c.l.Debug("goldpricez timestamp not parseable, using now",
				applogger.String("request_id", requestID),
				applogger.String("updated_at", ts),
			)
		}
	}

	if c.l != nil {
		c.l.Info("goldpricez price fetched",
			applogger.String("request_id", requestID),
			applogger.String("price", price.String()),
			applogger.String("currency", currency),
			applogger.String("unit", unit),
		)
	}
	return &models.PriceSnapshot{
		Price:           price,
		Currency:        currency,
		Unit:            unit,
		AsOf:            asOf,
		Source:          source,
		Live:            true,
		SupportsHistory: false,
	}, nil
}

// unwrap handles the double-encoded variant where the whole JSON object
// arrives as a JSON string, e.g. "{\"ounce_price_usd\":\"4895.440\"}".
func unwrap(raw string) string {
	if !strings.HasPrefix(raw, `"`) || !strings.HasSuffix(raw, `"`) {
		return raw
	}
	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err != nil {
		return raw
	}
	return inner
}

func parseUpdatedAt(ts string) (time.Time, error) {
	t, err := time.ParseInLocation(updatedAtLayout, ts, time.UTC)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(updatedAtLayoutUpper, ts, time.UTC)
}

func errorTypeForStatus(status int) models.PriceErrorType {
	switch {
	case status == http.StatusTooManyRequests:
		return models.PriceErrRateLimited
	case status == http.StatusForbidden:
		return models.PriceErrForbidden
	case status == http.StatusUnauthorized:
		return models.PriceErrUnauthorized
	case status >= 500:
		return models.PriceErrServer
	default:
		return models.PriceErrAPI
	}
}

func (c *Client) logFail(requestID string, t models.PriceErrorType, msg string, err error) {
	if c.l == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("request_id", requestID),
		applogger.String("error_type", string(t)),
	}
	if err != nil {
		fields = append(fields, applogger.Error(err))
	}
	c.l.Error(msg, fields...)
}
