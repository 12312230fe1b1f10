package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Absolute timestamp layouts accepted by --start-time and --end-time,
// tried in order. Layouts without a zone resolve in local time.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Time-of-day layouts resolve against today's date in local time.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

var (
	clockDurationRegex = regexp.MustCompile(
		`^(?:(\d+):)?(\d+):(\d+(?:[.,]\d*)?)$`,
	)
	secondsDurationRegex = regexp.MustCompile(
		`^\d+(?:[.,]\d*)?$`,
	)
)

// parseTimeFlag parses an absolute timestamp. An empty value or "now"
// means the current time.
func parseTimeFlag(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now(), nil
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			now := time.Now()
			return time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// parseDurationFlag parses a capture duration: Go duration syntax
// ("1h30m", "90s"), clock forms ("hh:mm:ss[.sss]" or "hh:mm"), or bare
// seconds.
func parseDurationFlag(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative duration not allowed")
		}
		return d, nil
	}

	if m := clockDurationRegex.FindStringSubmatch(s); m != nil {
		if m[1] != "" {
			// hh:mm:ss[.sss]
			hours, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, err
			}
			minutes, err := strconv.Atoi(m[2])
			if err != nil {
				return 0, err
			}
			seconds, err := strconv.ParseFloat(
				strings.ReplaceAll(m[3], ",", "."), 64)
			if err != nil {
				return 0, err
			}
			return time.Duration(hours)*time.Hour +
				time.Duration(minutes)*time.Minute +
				time.Duration(seconds*float64(time.Second)), nil
		}
		// hh:mm
		hours, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, err
		}
		minutes, err := strconv.ParseFloat(
			strings.ReplaceAll(m[3], ",", "."), 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(hours)*time.Hour +
			time.Duration(minutes*float64(time.Minute)), nil
	}

	if secondsDurationRegex.MatchString(s) {
		seconds, err := strconv.ParseFloat(
			strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}

	return 0, fmt.Errorf("unrecognized duration %q", s)
}
