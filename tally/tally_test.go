// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"
	"testing"
	"time"

	"github.com/danielhkuo/quorum/models"
)

var base = time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)

func options(titles ...string) []models.VotingOption {
	opts := make([]models.VotingOption, len(titles))
	for i, title := range titles {
		opts[i] = models.VotingOption{ID: title, BallotID: "b1", Title: title, Position: i}
	}
	return opts
}

func vote(id, user, option string, rank int, at time.Time) models.Vote {
	return models.Vote{ID: id, UserID: user, BallotID: "b1", OptionID: option, RankPosition: rank, CreatedAt: at}
}

// ranked builds a user's rows in preference order the way submissions store them
func ranked(user string, at time.Time, order ...string) []models.Vote {
	votes := make([]models.Vote, len(order))
	for i, opt := range order {
		votes[i] = vote(user+"-"+opt, user, opt, i+1, at.Add(time.Duration(i)*time.Millisecond))
	}
	return votes
}

func TestBordaExample(t *testing.T) {
	opts := options("A", "B", "C")
	votes := append(ranked("u1", base, "A", "B", "C"), ranked("u2", base, "B", "A", "C")...)

	ranking, winner := Ranking(opts, votes)

	want := map[string]int{"A": 5, "B": 5, "C": 2}
	for _, r := range ranking {
		if r.BordaScore != want[r.OptionID] {
			t.Errorf("option %s score = %d, want %d", r.OptionID, r.BordaScore, want[r.OptionID])
		}
	}

	a := ranking[0]
	if a.RankDistribution[1] != 1 || a.RankDistribution[2] != 1 || a.RankDistribution[3] != 0 {
		t.Errorf("A rank distribution = %v", a.RankDistribution)
	}
	if c := ranking[2]; c.RankDistribution[3] != 2 {
		t.Errorf("C rank distribution = %v", c.RankDistribution)
	}

	// Tie between A and B goes to the earlier option
	if winner == nil || *winner != "A" {
		t.Errorf("winner = %v, want A", winner)
	}

	// 5 / (2 voters * 3 options) * 100
	if got := ranking[0].NormalizedScore; math.Abs(got-83.333) > 0.01 {
		t.Errorf("normalized score = %f", got)
	}
}

func TestBordaScore(t *testing.T) {
	tests := []struct {
		name  string
		ranks map[int]int
		total int
		want  int
	}{
		{"empty", map[int]int{}, 3, 0},
		{"all first", map[int]int{1: 4}, 3, 12},
		{"all last", map[int]int{3: 4}, 3, 4},
		{"mixed", map[int]int{1: 1, 2: 2, 4: 1}, 4, 4 + 6 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BordaScore(tt.ranks, tt.total); got != tt.want {
				t.Errorf("BordaScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRankReconstructionIgnoresRowOrder(t *testing.T) {
	// Submitted [B, A, C]; rows delivered in reverse so storage order differs from rank order.
	rows := ranked("u1", base, "B", "A", "C")
	rows[0], rows[2] = rows[2], rows[0]

	dist := RankDistribution(rows)
	if dist["B"][1] != 1 || dist["A"][2] != 1 || dist["C"][3] != 1 {
		t.Errorf("rank distribution = %v", dist)
	}
}

func TestRankReconstructionByTimestamp(t *testing.T) {
	// Rows without a rank position fall back to timestamp order.
	rows := []models.Vote{
		vote("z", "u1", "C", 0, base.Add(2*time.Millisecond)),
		vote("y", "u1", "B", 0, base),
		vote("x", "u1", "A", 0, base.Add(time.Millisecond)),
	}

	dist := RankDistribution(rows)
	if dist["B"][1] != 1 || dist["A"][2] != 1 || dist["C"][3] != 1 {
		t.Errorf("rank distribution = %v", dist)
	}
}

func TestChoiceDistribution(t *testing.T) {
	opts := options("Red", "Green", "Blue")
	votes := []models.Vote{
		vote("1", "u1", "Red", 0, base),
		vote("2", "u2", "Red", 0, base),
		vote("3", "u3", "Blue", 0, base),
		vote("4", "u4", "Red", 0, base),
	}

	dist := ChoiceDistribution(opts, votes)
	if len(dist) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(dist))
	}

	sum := 0
	for _, d := range dist {
		sum += d.Votes
	}
	if sum != len(votes) {
		t.Errorf("distribution sums to %d, want %d", sum, len(votes))
	}
	if dist[0].Votes != 3 || dist[1].Votes != 0 || dist[2].Votes != 1 {
		t.Errorf("unexpected counts %+v", dist)
	}
	if dist[0].Percentage != 75 || dist[1].Percentage != 0 {
		t.Errorf("unexpected percentages %+v", dist)
	}
}

func TestLinearAverage(t *testing.T) {
	opts := options("1,Poor", "3", "5,Great")
	votes := []models.Vote{
		vote("1", "u1", "1,Poor", 0, base),
		vote("2", "u2", "5,Great", 0, base),
		vote("3", "u3", "5,Great", 0, base),
	}

	dist := LinearValues(ChoiceDistribution(opts, votes))
	if dist[0].Value == nil || *dist[0].Value != 1 || dist[0].Label != "Poor" {
		t.Errorf("unexpected first entry %+v", dist[0])
	}
	if dist[1].Value == nil || *dist[1].Value != 3 || dist[1].Label != "" {
		t.Errorf("unexpected second entry %+v", dist[1])
	}

	avg := AverageValue(dist)
	if avg == nil || math.Abs(*avg-11.0/3.0) > 1e-9 {
		t.Errorf("average = %v, want 3.667", avg)
	}

	if AverageValue(LinearValues(ChoiceDistribution(opts, nil))) != nil {
		t.Error("average without votes should be nil")
	}
}

func TestParticipationRate(t *testing.T) {
	tests := []struct {
		voters, eligible int
		want             float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 10, 0},
		{5, 10, 0.5},
		{10, 10, 1},
	}

	for _, tt := range tests {
		if got := ParticipationRate(tt.voters, tt.eligible); got != tt.want {
			t.Errorf("ParticipationRate(%d, %d) = %f, want %f", tt.voters, tt.eligible, got, tt.want)
		}
	}
}

func TestActivity(t *testing.T) {
	day2 := base.AddDate(0, 0, 1)
	votes := []models.Vote{
		vote("1", "u1", "A", 0, base),
		vote("2", "u1", "B", 0, base.Add(time.Minute)),
		vote("3", "u2", "A", 0, base.Add(time.Hour)),
		vote("4", "u1", "A", 0, day2),
	}

	hourly, daily := Activity(votes, false)
	if hourly[9] != 3 || hourly[10] != 1 {
		t.Errorf("hourly = %v", hourly)
	}
	if len(daily) != 2 || daily[0].Date != "2025-06-01" || daily[1].Date != "2025-06-02" {
		t.Fatalf("daily = %+v", daily)
	}
	if daily[0].Total != 3 || daily[0].Hourly[9] != 2 || daily[1].Hourly[9] != 1 {
		t.Errorf("day buckets = %+v", daily)
	}

	// Deduped: each user counts once, at their earliest row.
	hourly, daily = Activity(votes, true)
	if hourly[9] != 1 || hourly[10] != 1 || len(daily) != 1 || daily[0].Total != 2 {
		t.Errorf("deduped hourly = %v, daily = %+v", hourly, daily)
	}
}

func TestActivityRankedSubmissionAcrossHour(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 59, 59, int(999*time.Millisecond), time.UTC)
	votes := append(ranked("u1", at, "A", "B", "C"), ranked("u2", at.Add(time.Minute), "B", "A", "C")...)

	tests := []struct {
		name   string
		dedupe bool
		h10    int
		h11    int
		total  int
	}{
		{"per row", false, 1, 5, 6},
		{"per submission", true, 1, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hourly, daily := Activity(votes, tt.dedupe)
			if hourly[10] != tt.h10 || hourly[11] != tt.h11 {
				t.Errorf("hourly[10] = %d, hourly[11] = %d, want %d and %d", hourly[10], hourly[11], tt.h10, tt.h11)
			}
			if len(daily) != 1 || daily[0].Total != tt.total {
				t.Errorf("daily = %+v, want total %d", daily, tt.total)
			}
		})
	}
}

func TestAnalyzeZeroVotes(t *testing.T) {
	now := base
	for _, ballotType := range []string{
		models.TypeSingleChoice, models.TypeMultipleChoice, models.TypeLinearChoice,
		models.TypeYesNo, models.TypeRankedChoice, models.TypeTextInput,
	} {
		t.Run(ballotType, func(t *testing.T) {
			ballot := models.Ballot{ID: "b1", Type: ballotType, LimitDate: now.Add(time.Hour)}
			a := Analyze(Input{Ballot: ballot, Options: options("1", "2", "3"), EligibleUsers: 0, Now: now})

			if a.TotalVotes != 0 || a.UniqueVoters != 0 || a.ParticipationRate != 0 {
				t.Errorf("expected zero totals, got %+v", a)
			}
			if a.Status != models.StatusActive {
				t.Errorf("status = %q", a.Status)
			}
			if a.DailyActivity == nil || len(a.DailyActivity) != 0 {
				t.Errorf("daily activity should be an empty list, got %v", a.DailyActivity)
			}
			if len(a.HourlyActivity) != 24 {
				t.Errorf("hourly activity has %d slots", len(a.HourlyActivity))
			}

			switch ballotType {
			case models.TypeRankedChoice:
				if len(a.Ranking) != 3 || a.WinnerID != nil {
					t.Errorf("ranking = %+v, winner = %v", a.Ranking, a.WinnerID)
				}
				for _, r := range a.Ranking {
					if len(r.RankDistribution) != 3 || r.BordaScore != 0 {
						t.Errorf("ranked entry not zero-filled: %+v", r)
					}
				}
			case models.TypeTextInput:
				if a.TextResponses == nil || len(a.TextResponses) != 0 {
					t.Errorf("text responses = %v", a.TextResponses)
				}
			default:
				if len(a.Distribution) != 3 {
					t.Fatalf("distribution = %+v", a.Distribution)
				}
				for _, d := range a.Distribution {
					if d.Votes != 0 {
						t.Errorf("expected zero votes, got %+v", d)
					}
				}
			}
		})
	}
}

func TestAnalyzeTextAndParticipation(t *testing.T) {
	text := func(s string) *string { return &s }
	votes := []models.Vote{
		{ID: "1", UserID: "u1", OptionID: "T", TextResponse: text("Great idea"), CreatedAt: base},
		{ID: "2", UserID: "u2", OptionID: "T", TextResponse: text("   "), CreatedAt: base},
		{ID: "3", UserID: "u3", OptionID: "T", TextResponse: text("More coffee"), CreatedAt: base},
	}
	ballot := models.Ballot{ID: "b1", Type: models.TypeTextInput, LimitDate: base.Add(-time.Hour)}

	a := Analyze(Input{Ballot: ballot, Options: options("T"), Votes: votes, EligibleUsers: 4, Now: base})

	if len(a.TextResponses) != 2 || a.TextResponses[0] != "Great idea" || a.TextResponses[1] != "More coffee" {
		t.Errorf("text responses = %v", a.TextResponses)
	}
	if a.ParticipationRate != 0.75 {
		t.Errorf("participation = %f, want 0.75", a.ParticipationRate)
	}
	if a.Status != models.StatusEnded {
		t.Errorf("status = %q, want ended", a.Status)
	}
}
