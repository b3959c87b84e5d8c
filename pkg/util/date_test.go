package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateOnly(t *testing.T) {
	got, err := ParseDate("2024-10-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateRFC3339(t *testing.T) {
	got, err := ParseDate("2024-10-10T22:10:10Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, err := ParseDate(strconv.FormatInt(ts, 10))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("10/10/2024")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, b.Add(2*time.Hour)))
}
