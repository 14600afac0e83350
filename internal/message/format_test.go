package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.March, 5, 14, 7, 9, 45_000_000, time.UTC)
	india := time.Date(2024, time.March, 5, 9, 5, 0, 0, time.FixedZone("IST", 5*3600+30*60))
	midnight := time.Date(2024, time.December, 31, 0, 3, 0, 0, time.UTC)

	tests := map[string]struct {
		time     time.Time
		layout   string
		expected string
	}{
		"IsoDate":          {ts, "yyyy-LL-dd", "2024-03-05"},
		"MediumDateTime":   {ts, "ff", "Mar 5, 2024, 2:07 PM"},
		"ShortDateTime":    {ts, "f", "3/5/2024, 2:07 PM"},
		"FullDateTime":     {ts, "fff", "March 5, 2024 at 2:07 PM UTC"},
		"LongFormWithSecs": {ts, "FF", "Mar 5, 2024, 2:07:09 PM"},
		"Clock":            {ts, "HH:mm:ss.SSS", "14:07:09.045"},
		"QuotedLiteral":    {ts, "'Saved at' t", "Saved at 2:07 PM"},
		"EscapedQuote":     {ts, "HH''mm", "14'07"},
		"Weekday":          {ts, "EEEE, MMMM d", "Tuesday, March 5"},
		"ShortWeekday":     {ts, "ccc LLL", "Tue Mar"},
		"TwelveHour":       {ts, "yy/M/d h a", "24/3/5 2 PM"},
		"Midnight":         {midnight, "hh:mm a", "12:03 AM"},
		"Localized":        {ts, "D | DD | DDD | DDDD", "3/5/2024 | Mar 5, 2024 | March 5, 2024 | Tuesday, March 5, 2024"},
		"Times":            {ts, "t tt T TT", "2:07 PM 2:07:09 PM 14:07 14:07:09"},
		"IsoWeek":          {ts, "kkkk-'W'WW-c", "2024-W10-2"},
		"Ordinal":          {ts, "o ooo q", "65 065 1"},
		"UTCOffsets":       {ts, "Z ZZ ZZZ", "+0 +00:00 +0000"},
		"HalfHourOffsets":  {india, "Z ZZ ZZZ ZZZZ", "+5:30 +05:30 +0530 IST"},
		"Unix":             {ts, "X", "1709647629"},
		"UnknownLetters":   {ts, "yyyy b", "2024 b"},
		"Punctuation":      {ts, "[yyyy] (LL)", "[2024] (03)"},
		"OpenQuote":        {ts, "yyyy 'rest", "2024 rest"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, FormatTime(tc.time, tc.layout))
		})
	}
}
