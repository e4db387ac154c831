package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// queryFloat returns the named parameter, or def when it is absent.
func queryFloat(q url.Values, name string, def float64) (float64, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, s)
	}
	return v, nil
}

// optionalFloat is queryFloat without a default; ok reports presence.
func optionalFloat(q url.Values, name string) (v float64, ok bool, err error) {
	if strings.TrimSpace(q.Get(name)) == "" {
		return 0, false, nil
	}
	v, err = queryFloat(q, name, 0)
	return v, err == nil, err
}

func queryInt(q url.Values, name string, def int) (int, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, s)
	}
	return v, nil
}

// queryDate parses a YYYY-MM-DD date as noon in loc, defaulting to today.
func queryDate(q url.Values, name string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		now = now.In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, s)
	}
	return d.Add(12 * time.Hour), nil
}
