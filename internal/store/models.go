package store

import (
	"time"
)

// Match statuses.
const (
	StatusCompleted = "completed"
	StatusScheduled = "scheduled"
)

// Match is the canonical imported match record.
type Match struct {
	ID           string       `json:"id" db:"id"`
	ExternalID   string       `json:"externalId" db:"external_id"`
	Source       string       `json:"source" db:"source"`
	SeasonID     string       `json:"seasonId" db:"season_id"`
	HomeTeam     string       `json:"homeTeam" db:"home_team"`
	AwayTeam     string       `json:"awayTeam" db:"away_team"`
	Opponent     string       `json:"opponent" db:"opponent"`
	IsHome       bool         `json:"isHome" db:"is_home"`
	HomeScore    *int         `json:"homeScore" db:"home_score"`
	AwayScore    *int         `json:"awayScore" db:"away_score"`
	DateTime     string       `json:"datetime" db:"datetime"`
	Venue        string       `json:"venue,omitempty" db:"venue"`
	Category     string       `json:"category" db:"category"`
	CategoryCode string       `json:"categoryCode,omitempty" db:"category_code"`
	Status       string       `json:"status" db:"status"`
	GoalieStats  *GoalieStats `json:"goalieStats,omitempty" db:"-"`
}

// Completed reports whether the match has a final result.
func (m Match) Completed() bool {
	return m.Status == StatusCompleted
}

// GoalieStats is the per-goalie stat line filled in by the user after a
// completed match. Imports only seed the zero value.
type GoalieStats struct {
	Shots          int     `json:"shots"`
	Saves          int     `json:"saves"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	SavePercentage float64 `json:"savePercentage"`
	MinutesPlayed  int     `json:"minutesPlayed"`
}

// StandingsRow is one team's line in a competition table.
type StandingsRow struct {
	Position       int    `json:"position" db:"position"`
	TeamName       string `json:"teamName" db:"team_name"`
	GamesPlayed    int    `json:"gamesPlayed" db:"games_played"`
	Wins           int    `json:"wins" db:"wins"`
	Draws          *int   `json:"draws,omitempty" db:"draws"`
	Losses         int    `json:"losses" db:"losses"`
	WinsOT         *int   `json:"winsOT,omitempty" db:"wins_ot"`
	LossesOT       *int   `json:"lossesOT,omitempty" db:"losses_ot"`
	GoalsFor       int    `json:"goalsFor" db:"goals_for"`
	GoalsAgainst   int    `json:"goalsAgainst" db:"goals_against"`
	GoalDifference int    `json:"goalDifference" db:"goal_difference"`
	Points         int    `json:"points" db:"points"`
	IsOurTeam      bool   `json:"isOurTeam" db:"is_our_team"`
}

// CompetitionStandings is a captured standings table for one competition.
type CompetitionStandings struct {
	ID                    string         `json:"id" db:"id"`
	CompetitionID         string         `json:"competitionId" db:"competition_id"`
	SeasonID              string         `json:"seasonId" db:"season_id"`
	ExternalCompetitionID string         `json:"externalCompetitionId" db:"external_competition_id"`
	Source                string         `json:"source" db:"source"`
	UpdatedAt             time.Time      `json:"updatedAt" db:"updated_at"`
	Rows                  []StandingsRow `json:"rows" db:"-"`
}
