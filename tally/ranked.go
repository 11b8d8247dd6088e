// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/danielhkuo/quorum/models"
)

// RankOrder sorts one user's ranked rows into preference order. Rows carrying
// a rank position sort by it; otherwise creation time decides.
func RankOrder(votes []models.Vote) {
	sort.SliceStable(votes, func(i, j int) bool {
		a, b := votes[i], votes[j]
		if a.RankPosition > 0 && b.RankPosition > 0 && a.RankPosition != b.RankPosition {
			return a.RankPosition < b.RankPosition
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// RankDistribution reconstructs each user's ranking and counts, per option,
// how many users placed it at each 1-based position.
func RankDistribution(votes []models.Vote) map[string]map[int]int {
	byUser := make(map[string][]models.Vote)
	for _, v := range votes {
		byUser[v.UserID] = append(byUser[v.UserID], v)
	}

	dist := make(map[string]map[int]int)
	for _, rows := range byUser {
		RankOrder(rows)
		for i, v := range rows {
			if dist[v.OptionID] == nil {
				dist[v.OptionID] = make(map[int]int)
			}
			dist[v.OptionID][i+1]++
		}
	}
	return dist
}

// BordaScore awards totalOptions points for first place down to 1 for last:
// score = Σ count(rank r) * (totalOptions - r + 1)
func BordaScore(ranks map[int]int, totalOptions int) int {
	score := 0
	for rank, count := range ranks {
		score += count * (totalOptions - rank + 1)
	}
	return score
}

// Ranking builds the ranked-choice tally in option order and picks the winner:
// the highest Borda score, ties going to the earlier option. There is no
// winner without votes. NormalizedScore divides by unique voters times the
// option count, so a unanimous first place scores 100.
func Ranking(options []models.VotingOption, votes []models.Vote) ([]models.RankedTally, *string) {
	dist := RankDistribution(votes)
	voters := UniqueVoters(votes)
	total := len(options)

	ranking := make([]models.RankedTally, 0, total)
	for _, opt := range options {
		ranks := make(map[int]int, total)
		for r := 1; r <= total; r++ {
			ranks[r] = dist[opt.ID][r]
		}

		t := models.RankedTally{
			OptionID:         opt.ID,
			Title:            opt.Title,
			RankDistribution: ranks,
			BordaScore:       BordaScore(ranks, total),
		}
		if voters > 0 && total > 0 {
			t.NormalizedScore = float64(t.BordaScore) / float64(voters*total) * 100
		}
		ranking = append(ranking, t)
	}

	if voters == 0 {
		return ranking, nil
	}

	best := -1
	for i, t := range ranking {
		if best < 0 || t.BordaScore > ranking[best].BordaScore {
			best = i
		}
	}
	if best < 0 {
		return ranking, nil
	}
	winner := ranking[best].OptionID
	return ranking, &winner
}
