package message

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTime renders t with a Luxon-style token template, the format users
// know from editor extensions: "yyyy-LL-dd", "HH:mm", "ff", and so on.
// Text inside single quotes is copied verbatim; letters that are not tokens
// are copied as they are.
func FormatTime(t time.Time, layout string) string {
	var sb strings.Builder
	runes := []rune(layout)

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			end := i + 1
			for end < len(runes) && runes[end] != '\'' {
				end++
			}
			if end == i+1 && end < len(runes) {
				// '' is an escaped quote
				sb.WriteRune('\'')
			} else {
				sb.WriteString(string(runes[i+1 : end]))
			}
			i = end + 1
			continue
		}

		j := i + 1
		for j < len(runes) && runes[j] == r {
			j++
		}
		token := string(runes[i:j])
		if v, ok := formatToken(t, token); ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(token)
		}
		i = j
	}

	return sb.String()
}

func formatToken(t time.Time, token string) (string, bool) {
	switch token {
	// era
	case "G", "GG":
		return "AD", true
	case "GGGGG":
		return "A", true

	// year
	case "y":
		return strconv.Itoa(t.Year()), true
	case "yy":
		return pad(t.Year()%100, 2), true
	case "yyyy":
		return pad(t.Year(), 4), true
	case "yyyyyy":
		return pad(t.Year(), 6), true

	// month, format and standalone forms render identically in English
	case "M", "L":
		return strconv.Itoa(int(t.Month())), true
	case "MM", "LL":
		return pad(int(t.Month()), 2), true
	case "MMM", "LLL":
		return t.Format("Jan"), true
	case "MMMM", "LLLL":
		return t.Format("January"), true
	case "MMMMM", "LLLLL":
		return t.Format("January")[:1], true

	// quarter
	case "q":
		return strconv.Itoa((int(t.Month())-1)/3 + 1), true
	case "qq":
		return pad((int(t.Month())-1)/3+1, 2), true

	// day
	case "d":
		return strconv.Itoa(t.Day()), true
	case "dd":
		return pad(t.Day(), 2), true
	case "o":
		return strconv.Itoa(t.YearDay()), true
	case "ooo":
		return pad(t.YearDay(), 3), true

	// weekday
	case "c", "E":
		return strconv.Itoa(isoWeekday(t)), true
	case "ccc", "EEE":
		return t.Format("Mon"), true
	case "cccc", "EEEE":
		return t.Format("Monday"), true
	case "ccccc", "EEEEE":
		return t.Format("Monday")[:1], true

	// ISO week
	case "W":
		_, w := t.ISOWeek()
		return strconv.Itoa(w), true
	case "WW":
		_, w := t.ISOWeek()
		return pad(w, 2), true
	case "kk":
		y, _ := t.ISOWeek()
		return pad(y%100, 2), true
	case "kkkk":
		y, _ := t.ISOWeek()
		return pad(y, 4), true

	// time
	case "H":
		return strconv.Itoa(t.Hour()), true
	case "HH":
		return pad(t.Hour(), 2), true
	case "h":
		return strconv.Itoa(hour12(t)), true
	case "hh":
		return pad(hour12(t), 2), true
	case "m":
		return strconv.Itoa(t.Minute()), true
	case "mm":
		return pad(t.Minute(), 2), true
	case "s":
		return strconv.Itoa(t.Second()), true
	case "ss":
		return pad(t.Second(), 2), true
	case "S":
		return strconv.Itoa(t.Nanosecond() / int(time.Millisecond)), true
	case "SSS":
		return pad(t.Nanosecond()/int(time.Millisecond), 3), true
	case "u":
		return pad(t.Nanosecond()/int(time.Millisecond), 3), true
	case "a":
		return meridiem(t), true

	// zone
	case "Z":
		return offset(t, false, true), true
	case "ZZ":
		return offset(t, true, false), true
	case "ZZZ":
		return offset(t, false, false), true
	case "ZZZZ", "ZZZZZ":
		name, _ := t.Zone()
		return name, true
	case "z":
		return t.Location().String(), true

	// unix
	case "X":
		return strconv.FormatInt(t.Unix(), 10), true
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10), true

	// localized presets (en-US)
	case "D":
		return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year()), true
	case "DD":
		return t.Format("Jan 2, 2006"), true
	case "DDD":
		return t.Format("January 2, 2006"), true
	case "DDDD":
		return t.Format("Monday, January 2, 2006"), true
	case "t":
		return shortTime(t), true
	case "tt":
		return longTime(t), true
	case "ttt", "tttt":
		name, _ := t.Zone()
		return longTime(t) + " " + name, true
	case "T":
		return t.Format("15:04"), true
	case "TT":
		return t.Format("15:04:05"), true
	case "TTT", "TTTT":
		name, _ := t.Zone()
		return t.Format("15:04:05") + " " + name, true
	case "f":
		return fmt.Sprintf("%d/%d/%d, %s", int(t.Month()), t.Day(), t.Year(), shortTime(t)), true
	case "ff":
		return t.Format("Jan 2, 2006") + ", " + shortTime(t), true
	case "fff":
		name, _ := t.Zone()
		return t.Format("January 2, 2006") + " at " + shortTime(t) + " " + name, true
	case "ffff":
		name, _ := t.Zone()
		return t.Format("Monday, January 2, 2006") + " at " + shortTime(t) + " " + name, true
	case "F":
		return fmt.Sprintf("%d/%d/%d, %s", int(t.Month()), t.Day(), t.Year(), longTime(t)), true
	case "FF":
		return t.Format("Jan 2, 2006") + ", " + longTime(t), true
	case "FFF":
		name, _ := t.Zone()
		return t.Format("January 2, 2006") + " at " + longTime(t) + " " + name, true
	case "FFFF":
		name, _ := t.Zone()
		return t.Format("Monday, January 2, 2006") + " at " + longTime(t) + " " + name, true
	}

	return "", false
}

func pad(n, width int) string {
	if n < 0 {
		return "-" + pad(-n, width)
	}
	return fmt.Sprintf("%0*d", width, n)
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		return 12
	}
	return h
}

func meridiem(t time.Time) string {
	if t.Hour() < 12 {
		return "AM"
	}
	return "PM"
}

func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func shortTime(t time.Time) string {
	return fmt.Sprintf("%d:%s %s", hour12(t), pad(t.Minute(), 2), meridiem(t))
}

func longTime(t time.Time) string {
	return fmt.Sprintf("%d:%s:%s %s", hour12(t), pad(t.Minute(), 2), pad(t.Second(), 2), meridiem(t))
}

// offset renders the UTC offset as +5, +05:00 or +0500.
func offset(t time.Time, colon, short bool) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m := secs/3600, (secs%3600)/60

	switch {
	case short && m == 0:
		return fmt.Sprintf("%s%d", sign, h)
	case short:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	case colon:
		return fmt.Sprintf("%s%02d:%02d", sign, h, m)
	default:
		return fmt.Sprintf("%s%02d%02d", sign, h, m)
	}
}
