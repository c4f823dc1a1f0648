package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/doodlesbykumbi/jobtracker/pkg/followup"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
	"github.com/doodlesbykumbi/jobtracker/pkg/validation"
)

const (
	StatusAll           = "all"
	StatusNeedsFollowup = "needs_followup"
	StatusInterview     = "interview"

	TimeThisMonth = "this_month"
)

// ParseApplicationFilter builds a filter from values. today is the current
// time in the configured zone and threshold the follow-up threshold in days.
func ParseApplicationFilter(values url.Values, today time.Time, threshold int) (store.ApplicationFilter, error) {
	var (
		filter store.ApplicationFilter
		result validation.Result
	)

	switch status := strings.TrimSpace(values.Get("status")); status {
	case "", StatusAll:
	case StatusNeedsFollowup:
		cutoff := followup.Cutoff(today, threshold)
		filter.StaleCutoff = &cutoff
	case StatusInterview:
		filter.Statuses = append([]model.PipelineStatus(nil), model.InterviewStatuses...)
	default:
		st, err := model.PipelineStatusString(status)
		if err != nil {
			result.Add("status", "unknown status "+strconv.Quote(status))
		} else {
			filter.Statuses = []model.PipelineStatus{st}
		}
	}

	if values.Get("time") == TimeThisMonth {
		from := model.DateOf(today).FirstOfMonth()
		before := nextMonth(from)
		filter.AppliedFrom, filter.AppliedBefore = &from, &before
	}

	month, hasMonth := values.Get("month"), values.Has("month")
	year, hasYear := values.Get("year"), values.Has("year")
	switch {
	case hasMonth && hasYear:
		m, err := strconv.Atoi(month)
		monthOK := err == nil && m >= 1 && m <= 12
		if !monthOK {
			result.Add("month", "must be an integer between 1 and 12")
		}
		y, err := strconv.Atoi(year)
		yearOK := err == nil && y >= 1 && y <= 9999
		if !yearOK {
			result.Add("year", "must be an integer between 1 and 9999")
		}
		if monthOK && yearOK {
			from := model.NewDate(y, time.Month(m), 1)
			before := nextMonth(from)
			filter.AppliedFrom, filter.AppliedBefore = &from, &before
		}
	case hasMonth:
		result.Add("year", "required when month is given")
	case hasYear:
		result.Add("month", "required when year is given")
	}

	if err := result.Err(); err != nil {
		return store.ApplicationFilter{}, err
	}
	return filter, nil
}

func nextMonth(first model.Date) model.Date {
	return model.NewDate(first.Year(), first.Month()+1, 1)
}
