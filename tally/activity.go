// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/danielhkuo/quorum/models"
)

const dayFormat = "2006-01-02"

// Activity buckets votes by UTC day and hour. It returns the aggregate
// hour-of-day histogram and one dense 24-slot histogram per day, days ascending.
// With dedupe, each user counts once at their earliest row. Multi-vote ballots
// keep a single live submission per user, and its rows may straddle an hour.
func Activity(votes []models.Vote, dedupe bool) ([24]int, []models.DailyActivity) {
	if dedupe {
		votes = submissionTimes(votes)
	}

	var hourly [24]int
	days := make(map[string]*models.DailyActivity)

	for _, v := range votes {
		ts := v.CreatedAt.UTC()
		day, hour := ts.Format(dayFormat), ts.Hour()

		d, ok := days[day]
		if !ok {
			d = &models.DailyActivity{Date: day}
			days[day] = d
		}
		d.Hourly[hour]++
		d.Total++
		hourly[hour]++
	}

	daily := make([]models.DailyActivity, 0, len(days))
	for _, d := range days {
		daily = append(daily, *d)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date < daily[j].Date
	})

	return hourly, daily
}

// submissionTimes keeps the earliest row of each user.
func submissionTimes(votes []models.Vote) []models.Vote {
	first := make(map[string]int, len(votes))
	out := make([]models.Vote, 0, len(votes))
	for _, v := range votes {
		i, ok := first[v.UserID]
		if !ok {
			first[v.UserID] = len(out)
			out = append(out, v)
			continue
		}
		if v.CreatedAt.Before(out[i].CreatedAt) {
			out[i] = v
		}
	}
	return out
}
