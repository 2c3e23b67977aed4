package api

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strings"
)

type logWeightRequest struct {
	Weight  float64 `json:"weight"`
	LogDate *Date   `json:"log_date"`
}

// LogWeight records a measurement for the current user. The value is
// bounds-checked locally before any network call; the backend upserts
// one entry per user per calendar day. A nil date means today on the
// server's clock.
func (c *Client) LogWeight(ctx context.Context, weight float64, date *Date) (*WeightLog, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 || weight >= 1000 {
		return nil, ErrInvalidWeight
	}

	var out WeightLog
	err := c.do(ctx, http.MethodPost, "/weight", logWeightRequest{Weight: weight, LogDate: date}, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWeightLogs fetches a user's measurements, newest first, optionally
// bounded by an inclusive date range. An empty userID falls back to the
// current session's user.
func (c *Client) GetWeightLogs(ctx context.Context, userID string, start, end *Date) ([]WeightLog, error) {
	id := userID
	if id == "" {
		id = c.store.UserID()
	}
	if id == "" {
		return nil, ErrNoUserID
	}

	path := "/weight/" + id
	var params []string
	if start != nil {
		params = append(params, "start_date="+url.QueryEscape(start.String()))
	}
	if end != nil {
		params = append(params, "end_date="+url.QueryEscape(end.String()))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var out []WeightLog
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecentWeightLogs fetches the trailing window of measurements
// ending today, the range history charts default to.
func (c *Client) GetRecentWeightLogs(ctx context.Context, userID string, days int) ([]WeightLog, error) {
	now := c.nowTime()
	start := DateOf(now.AddDate(0, 0, -days))
	end := DateOf(now)
	return c.GetWeightLogs(ctx, userID, &start, &end)
}

// GetUsers lists every profile, each merged with its weight log for the
// given date (the server's today when nil).
func (c *Client) GetUsers(ctx context.Context, date *Date) ([]User, error) {
	path := "/users"
	if date != nil {
		path += "?date=" + url.QueryEscape(date.String())
	}

	var out []User
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}
