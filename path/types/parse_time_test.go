package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "date",
			value: "2024-04-29",
			want:  time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "time_tz_hm",
			value: "14:15:31+01:22",
			want:  time.Date(0, 1, 1, 14, 15, 31, 0, time.FixedZone("", 4920)),
		},
		{
			name:  "time_tz_h",
			value: "14:15:31+01",
			want:  time.Date(0, 1, 1, 14, 15, 31, 0, time.FixedZone("", 3600)),
		},
		{
			name:  "time_no_tz",
			value: "14:15:31",
			want:  time.Date(0, 1, 1, 14, 15, 31, 0, time.UTC),
		},
		{
			name:  "timestamp_t_tz_hm",
			value: "2024-04-29T15:11:38+02:30",
			want:  time.Date(2024, 4, 29, 15, 11, 38, 0, time.FixedZone("", 9000)),
		},
		{
			name:  "timestamp_space_tz_hm",
			value: "2024-04-29 15:11:38+02:30",
			want:  time.Date(2024, 4, 29, 15, 11, 38, 0, time.FixedZone("", 9000)),
		},
		{
			name:  "timestamp_t_no_tz",
			value: "2024-04-29T15:11:38",
			want:  time.Date(2024, 4, 29, 15, 11, 38, 0, time.UTC),
		},
		{
			name:  "timestamp_space_no_tz",
			value: "2024-04-29 15:11:38",
			want:  time.Date(2024, 4, 29, 15, 11, 38, 0, time.UTC),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTime(tc.value)
			assert.True(t, ok)
			assert.True(t, tc.want.Equal(got), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseTimeFail(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		value string
	}{
		{"bogus", "bogus"},
		{"missing_seconds", "2024-04-29 14:15"},
		{"empty", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, ok := ParseTime(tc.value)
			assert.False(t, ok)
		})
	}
}
