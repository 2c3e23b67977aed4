package api

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

// Date is a calendar date. The backend speaks plain YYYY-MM-DD strings
// everywhere, with no time-of-day or timezone offset, so Date serializes
// exactly that way in JSON bodies and query parameters.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate constructs a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates t to a calendar date in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "[ParseDate] invalid date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.Errorf("[Date.UnmarshalJSON] not a JSON string: %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Profile is a user's profile record as the backend stores it. The
// client treats it as an opaque payload and never validates its shape.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// User is a profile as returned by the users listing, optionally merged
// with that day's weight log.
type User struct {
	Profile
	WeightLogs []WeightLog `json:"weight_logs,omitempty"`
}

// WeightLog is a single recorded measurement.
type WeightLog struct {
	ID      string  `json:"id,omitempty"`
	UserID  string  `json:"user_id,omitempty"`
	Weight  float64 `json:"weight"`
	LogDate Date    `json:"log_date"`
}

// AuthUser is the user object embedded in auth responses.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// LoginResponse is the payload of a successful login.
type LoginResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

// RegisterResponse is the payload of a successful registration.
type RegisterResponse struct {
	Message string   `json:"message"`
	User    AuthUser `json:"user"`
}

// AvatarResponse is the payload of a successful avatar upload.
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are
// omitted from the request body.
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// SortLogsByDate orders logs ascending by date, the order charts want.
// The backend returns them newest first.
func SortLogsByDate(logs []WeightLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].LogDate.Before(logs[j].LogDate)
	})
}
