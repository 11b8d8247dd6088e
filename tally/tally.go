// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"strings"
	"time"

	"github.com/danielhkuo/quorum/models"
)

// Input is everything Analyze needs about one ballot
type Input struct {
	Ballot        models.Ballot
	Options       []models.VotingOption
	Votes         []models.Vote
	EligibleUsers int
	Now           time.Time
}

// Analyze computes the analytics view for a ballot. It is a pure function of
// its input; a ballot without votes yields a fully zero-filled view.
func Analyze(in Input) models.Analytics {
	voters := UniqueVoters(in.Votes)

	a := models.Analytics{
		BallotID:          in.Ballot.ID,
		Type:              in.Ballot.Type,
		Status:            in.Ballot.StatusAt(in.Now),
		TotalVotes:        len(in.Votes),
		UniqueVoters:      voters,
		EligibleUsers:     in.EligibleUsers,
		ParticipationRate: ParticipationRate(voters, in.EligibleUsers),
		ComputedAt:        in.Now,
	}

	switch in.Ballot.Type {
	case models.TypeRankedChoice:
		a.Ranking, a.WinnerID = Ranking(in.Options, in.Votes)
	case models.TypeTextInput:
		a.TextResponses = TextResponses(in.Votes)
	case models.TypeLinearChoice:
		a.Distribution = LinearValues(ChoiceDistribution(in.Options, in.Votes))
		a.AverageValue = AverageValue(a.Distribution)
	default:
		a.Distribution = ChoiceDistribution(in.Options, in.Votes)
	}

	a.HourlyActivity, a.DailyActivity = Activity(in.Votes, models.IsMultiVote(in.Ballot.Type))
	return a
}

// ParticipationRate is uniqueVoters / eligibleUsers, or 0 when nobody is eligible
func ParticipationRate(uniqueVoters, eligibleUsers int) float64 {
	if eligibleUsers <= 0 {
		return 0
	}
	return float64(uniqueVoters) / float64(eligibleUsers)
}

// UniqueVoters counts distinct users among the votes
func UniqueVoters(votes []models.Vote) int {
	seen := make(map[string]struct{}, len(votes))
	for _, v := range votes {
		seen[v.UserID] = struct{}{}
	}
	return len(seen)
}

// ChoiceDistribution counts vote rows per option, in option order.
// Options without votes are listed with zero.
func ChoiceDistribution(options []models.VotingOption, votes []models.Vote) []models.OptionTally {
	counts := make(map[string]int, len(options))
	for _, v := range votes {
		counts[v.OptionID]++
	}

	total := 0
	for _, opt := range options {
		total += counts[opt.ID]
	}

	dist := make([]models.OptionTally, 0, len(options))
	for _, opt := range options {
		t := models.OptionTally{
			OptionID: opt.ID,
			Title:    opt.Title,
			Votes:    counts[opt.ID],
		}
		if total > 0 {
			t.Percentage = float64(t.Votes) / float64(total) * 100
		}
		dist = append(dist, t)
	}
	return dist
}

// LinearValues fills in the value and label encoded in each linear option title.
// Titles that do not parse are left without a value.
func LinearValues(dist []models.OptionTally) []models.OptionTally {
	for i := range dist {
		if value, label, err := models.ParseLinearTitle(dist[i].Title); err == nil {
			dist[i].Value = &value
			dist[i].Label = label
		}
	}
	return dist
}

// AverageValue is the vote-weighted mean of linear option values.
// It is nil when no vote landed on a parseable option.
func AverageValue(dist []models.OptionTally) *float64 {
	sum, n := 0, 0
	for _, t := range dist {
		if t.Value == nil {
			continue
		}
		sum += *t.Value * t.Votes
		n += t.Votes
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// TextResponses lists the non-empty responses in insertion order
func TextResponses(votes []models.Vote) []string {
	responses := []string{}
	for _, v := range votes {
		if v.TextResponse == nil {
			continue
		}
		if text := strings.TrimSpace(*v.TextResponse); text != "" {
			responses = append(responses, text)
		}
	}
	return responses
}
