// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Ballot type constants
const (
	TypeSingleChoice   = "SINGLE_CHOICE"
	TypeMultipleChoice = "MULTIPLE_CHOICE"
	TypeRankedChoice   = "RANKED_CHOICE"
	TypeLinearChoice   = "LINEAR_CHOICE"
	TypeTextInput      = "TEXT_INPUT"
	TypeYesNo          = "YES_NO"
)

// Ballot status constants (derived, never stored)
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusEnded     = "ended"
)

// List filter values
const (
	FilterActive    = "active"
	FilterPast      = "past"
	FilterSuspended = "suspended"
)

// Request types

type CreateBallotRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	LimitDate   time.Time `json:"limit_date"`
	Type        string    `json:"type"`
	Options     []string  `json:"options"`
}

// VotePayload carries option_id for single-selection types, option_ids for
// MULTIPLE_CHOICE and RANKED_CHOICE (in preference order), and text_response
// for TEXT_INPUT.
type VotePayload struct {
	OptionID     string   `json:"option_id,omitempty"`
	OptionIDs    []string `json:"option_ids,omitempty"`
	TextResponse string   `json:"text_response,omitempty"`
}

type CreateRoleRequest struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

type AssignRoleRequest struct {
	UserID string `json:"user_id"`
}

type CreateCategoryRequest struct {
	Name    string   `json:"name"`
	RoleIDs []string `json:"role_ids"`
}

// Domain types

type Ballot struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	CategoryID  string    `db:"category_id" json:"category_id"`
	AdminID     string    `db:"admin_id" json:"admin_id"`
	LimitDate   time.Time `db:"limit_date" json:"limit_date"`
	IsSuspended bool      `db:"is_suspended" json:"is_suspended"`
	TimeLeft    *int64    `db:"time_left" json:"time_left,omitempty"` // seconds, set only while suspended
	Version     int64     `db:"version" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type VotingOption struct {
	ID       string `db:"id" json:"id"`
	BallotID string `db:"ballot_id" json:"ballot_id"`
	Title    string `db:"title" json:"title"`
	IsText   bool   `db:"is_text" json:"is_text"`
	Position int    `db:"position" json:"position"`
}

type Vote struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	BallotID     string    `db:"ballot_id" json:"ballot_id"`
	OptionID     string    `db:"option_id" json:"option_id"`
	TextResponse *string   `db:"text_response" json:"text_response,omitempty"`
	RankPosition int       `db:"rank_position" json:"rank_position,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"timestamp"`
}

type Role struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	IsAdmin bool   `db:"is_admin" json:"is_admin"`
}

type Category struct {
	ID      string   `db:"id" json:"id"`
	Name    string   `db:"name" json:"name"`
	RoleIDs []string `db:"-" json:"role_ids"`
}

// Response types

// BallotView is a ballot with its options and derived status
type BallotView struct {
	Ballot
	Status   string         `json:"status"`
	Options  []VotingOption `json:"options,omitempty"`
	HasVoted bool           `json:"has_voted"`
}

type PartitionedBallots struct {
	Voted   []BallotView `json:"voted"`
	Unvoted []BallotView `json:"unvoted"`
}

// VoteResult is the outcome of a submission or a lookup of the caller's vote
type VoteResult struct {
	BallotType string
	Votes      []Vote
}

// Body returns the rows as an array for multi-vote types and a single record otherwise.
func (r VoteResult) Body() interface{} {
	if IsMultiVote(r.BallotType) || len(r.Votes) != 1 {
		return r.Votes
	}
	return r.Votes[0]
}

// Analytics types

type OptionTally struct {
	OptionID   string  `json:"option_id"`
	Title      string  `json:"title"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
	Value      *int    `json:"value,omitempty"` // LINEAR_CHOICE only
	Label      string  `json:"label,omitempty"` // LINEAR_CHOICE only
}

type RankedTally struct {
	OptionID         string      `json:"option_id"`
	Title            string      `json:"title"`
	RankDistribution map[int]int `json:"rank_distribution"`
	BordaScore       int         `json:"borda_score"`
	// NormalizedScore is BordaScore / (unique voters * option count) * 100.
	// It divides by voters, not by total_votes, which counts ranked rows.
	NormalizedScore float64 `json:"normalized_score"`
}

type DailyActivity struct {
	Date   string  `json:"date"` // YYYY-MM-DD, UTC
	Hourly [24]int `json:"hourly"`
	Total  int     `json:"total"`
}

type Analytics struct {
	BallotID          string          `json:"ballot_id"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	TotalVotes        int             `json:"total_votes"`
	UniqueVoters      int             `json:"unique_voters"`
	EligibleUsers     int             `json:"eligible_users"`
	ParticipationRate float64         `json:"participation_rate"`
	Distribution      []OptionTally   `json:"distribution,omitempty"`
	AverageValue      *float64        `json:"average_value,omitempty"`
	Ranking           []RankedTally   `json:"ranking,omitempty"`
	WinnerID          *string         `json:"winner_id,omitempty"`
	TextResponses     []string        `json:"text_responses"`
	HourlyActivity    [24]int         `json:"hourly_activity"`
	DailyActivity     []DailyActivity `json:"daily_activity"`
	ComputedAt        time.Time       `json:"computed_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
