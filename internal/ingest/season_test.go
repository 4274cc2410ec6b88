package ingest

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeason(t *testing.T) {
	s, err := ParseSeason("2025-2026")
	require.NoError(t, err)
	assert.Equal(t, 2025, s.StartYear)
	assert.Equal(t, 2026, s.EndYear())
	assert.Equal(t, "2025-2026", s.String())

	for _, bad := range []string{"", "2025", "2025-2027", "2026-2025", "25-26", "2025/2026"} {
		_, err := ParseSeason(bad)
		assert.True(t, errors.Is(err, ErrInvalidSeason), bad)
	}
}

func TestCurrentSeason(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2026, time.January, 17, 10, 0, 0, 0, time.UTC), "2025-2026"},
		{time.Date(2025, time.July, 31, 23, 0, 0, 0, time.UTC), "2024-2025"},
		{time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), "2025-2026"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025-2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CurrentSeason(tt.now).String(), tt.now.String())
	}
}
