package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("time value passes through in UTC", func(t *testing.T) {
		loc := time.FixedZone("KST", 9*3600)
		in := time.Date(2024, 3, 1, 9, 0, 0, 0, loc)

		ts, ok := ParseTimestamp(in)

		require.True(t, ok)
		assert.Equal(t, time.UTC, ts.Location())
		assert.True(t, ts.Equal(in))
	})

	t.Run("spreadsheet serial counts days from 1899-12-30", func(t *testing.T) {
		ts, ok := ParseTimestamp(float64(45000))

		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), ts)
	})

	t.Run("fractional serial carries the time of day", func(t *testing.T) {
		ts, ok := ParseTimestamp(45000.5)

		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC), ts)
	})

	t.Run("string layouts", func(t *testing.T) {
		tests := []struct {
			input    string
			expected time.Time
		}{
			{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
			{"2024-03-01 10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
			{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			{"2024/03/01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		}
		for _, tt := range tests {
			ts, ok := ParseTimestamp(tt.input)
			require.True(t, ok, tt.input)
			assert.True(t, tt.expected.Equal(ts), tt.input)
		}
	})

	t.Run("numeric string falls back to serial", func(t *testing.T) {
		ts, ok := ParseTimestamp("45000")

		require.True(t, ok)
		assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), ts)
	})

	t.Run("unusable values", func(t *testing.T) {
		for _, input := range []any{nil, "", "   ", "not a date", struct{}{}} {
			_, ok := ParseTimestamp(input)
			assert.False(t, ok, "%#v", input)
		}
	})
}
