package api

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/edgard/photobot/internal/database"
)

var errInvalidQuery = errors.New("invalid query parameters")

// parseImageFilter turns the /api/images query into a store filter.
// group_id is optional. month and year only apply when both are present;
// a lone month or year is ignored. Month bounds are taken in loc.
func parseImageFilter(q url.Values, loc *time.Location) (database.ImageFilter, error) {
	var filter database.ImageFilter

	if raw := q.Get("group_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errInvalidQuery
		}
		filter.GroupID = &id
	}

	rawMonth, rawYear := q.Get("month"), q.Get("year")
	if rawMonth == "" || rawYear == "" {
		return filter, nil
	}

	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return filter, errInvalidQuery
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 1 || year > 9999 {
		return filter, errInvalidQuery
	}

	filter.From, filter.To = MonthRange(year, time.Month(month), loc)
	return filter, nil
}

// MonthRange returns [first day of month 00:00, first day of next month 00:00) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
