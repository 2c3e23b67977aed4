package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weighin/weighin-go/api"
)

func TestDateString(t *testing.T) {
	require.Equal(t, "2024-01-05", api.NewDate(2024, time.January, 5).String())
}

func TestDateOfNormalizesToUTC(t *testing.T) {
	// 23:30 on Jan 1 in UTC-5 is already Jan 2 in UTC; the wire format
	// carries the UTC calendar date.
	loc := time.FixedZone("UTC-5", -5*60*60)
	d := api.DateOf(time.Date(2024, time.January, 1, 23, 30, 0, 0, loc))
	require.Equal(t, api.NewDate(2024, time.January, 2), d)
}

func TestDateJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(api.NewDate(2024, time.March, 9))
	require.NoError(t, err)
	require.Equal(t, `"2024-03-09"`, string(data))

	var d api.Date
	require.NoError(t, json.Unmarshal(data, &d))
	require.Equal(t, api.NewDate(2024, time.March, 9), d)
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := api.ParseDate("01/02/2024")
	require.Error(t, err)
}

func TestDateBefore(t *testing.T) {
	a := api.NewDate(2024, time.January, 31)
	b := api.NewDate(2024, time.February, 1)
	require.True(t, a.Before(b))
	require.False(t, b.Before(a))
	require.False(t, a.Before(a))
}
