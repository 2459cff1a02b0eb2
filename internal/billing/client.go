// Package billing fetches cost-to-date from the external billing source.
//
// DESIGN: One outbound HTTP call per fetch, whole-day granularity only (the
// billing source does not support sub-day queries). No retry here: retry
// policy belongs to the caller. Every failure comes back as a *FetchError
// with a classified kind so the evaluator can distinguish a confirmed zero
// from a blind spot without parsing error strings.
package billing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// DayFormat is the calendar-day layout the billing source accepts.
const DayFormat = "2006-01-02"

// maxResponseSize caps the usage payload read. Real responses are a few KB.
const maxResponseSize = 1 << 20

// Client queries the billing usage endpoint.
type Client struct {
	endpoint string
	httpc    *http.Client
}

// NewClient creates a usage client. timeout bounds each fetch end to end.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
	}
}

// Usage returns the cumulative cost in cents for one UTC calendar day.
// A response with zero line items is a valid zero-cost result, distinct from
// an error. The credential is sent as a bearer token and never logged.
func (c *Client) Usage(ctx context.Context, day time.Time, credential string) (float64, error) {
	date := day.UTC().Format(DayFormat)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return 0, &FetchError{Kind: KindTransport, Day: date, Err: err}
	}
	q := u.Query()
	q.Set("start_date", date)
	q.Set("end_date", date)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, &FetchError{Kind: KindTransport, Day: date, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		kind := classify(err)
		log.Debug().Str("day", date).Str("kind", string(kind)).Err(err).Msg("billing: fetch failed")
		return 0, &FetchError{Kind: kind, Day: date, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return 0, &FetchError{Kind: KindTransport, Day: date, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, &FetchError{Kind: KindAuth, Day: date, Err: fmt.Errorf("billing source returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return 0, &FetchError{Kind: KindTransport, Day: date, Err: fmt.Errorf("billing source returned %d", resp.StatusCode)}
	}

	if !gjson.ValidBytes(body) {
		return 0, &FetchError{Kind: KindParse, Day: date, Err: errors.New("response is not valid JSON")}
	}
	total := gjson.GetBytes(body, "total_usage")
	if !total.Exists() {
		return 0, &FetchError{Kind: KindParse, Day: date, Err: errors.New("response has no total_usage field")}
	}
	cents := total.Float()
	if cents < 0 {
		return 0, &FetchError{Kind: KindParse, Day: date, Err: fmt.Errorf("negative total_usage %v", cents)}
	}

	log.Debug().Str("day", date).Float64("cents", cents).Msg("billing: fetch ok")
	return cents, nil
}
