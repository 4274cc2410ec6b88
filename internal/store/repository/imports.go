package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/goaliestats/internal/store"
)

// ImportRepository writes import output. Matches are upserted by id and
// each standings table is replaced as a whole.
type ImportRepository struct {
	db *store.Database
}

// NewImportRepository creates a new import repository
func NewImportRepository(db *store.Database) *ImportRepository {
	return &ImportRepository{db: db}
}

const upsertMatchSQL = `
	INSERT INTO matches (
		id, external_id, source, season_id, home_team, away_team, opponent, is_home,
		home_score, away_score, datetime, venue, category, category_code, status,
		last_import_id, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
	ON CONFLICT (id) DO UPDATE SET
		external_id = EXCLUDED.external_id,
		source = EXCLUDED.source,
		season_id = EXCLUDED.season_id,
		home_team = EXCLUDED.home_team,
		away_team = EXCLUDED.away_team,
		opponent = EXCLUDED.opponent,
		is_home = EXCLUDED.is_home,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		datetime = EXCLUDED.datetime,
		venue = EXCLUDED.venue,
		category = EXCLUDED.category,
		category_code = EXCLUDED.category_code,
		status = EXCLUDED.status,
		last_import_id = EXCLUDED.last_import_id,
		updated_at = NOW()
`

const upsertStandingsSQL = `
	INSERT INTO competition_standings (
		id, competition_id, season_id, external_competition_id, source, updated_at, last_import_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		competition_id = EXCLUDED.competition_id,
		season_id = EXCLUDED.season_id,
		external_competition_id = EXCLUDED.external_competition_id,
		source = EXCLUDED.source,
		updated_at = EXCLUDED.updated_at,
		last_import_id = EXCLUDED.last_import_id
`

const insertStandingsRowSQL = `
	INSERT INTO standings_rows (
		standings_id, position, team_name, games_played, wins, draws, losses, wins_ot, losses_ot,
		goals_for, goals_against, goal_difference, points, is_our_team
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

// SaveImport stores one import run in a single transaction.
func (r *ImportRepository) SaveImport(ctx context.Context, importID string, matches []store.Match, standings []store.CompetitionStandings) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin import transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, match_count, standings_count) VALUES ($1, $2, $3)`,
		importID, len(matches), len(standings)); err != nil {
		return errors.Wrap(err, "recording import")
	}

	for _, m := range matches {
		if _, err := tx.ExecContext(ctx, upsertMatchSQL,
			m.ID, m.ExternalID, m.Source, m.SeasonID, m.HomeTeam, m.AwayTeam, m.Opponent, m.IsHome,
			nullInt(m.HomeScore), nullInt(m.AwayScore), m.DateTime, m.Venue, m.Category, m.CategoryCode, m.Status,
			importID,
		); err != nil {
			return errors.Wrapf(err, "upserting match %s", m.ID)
		}
	}

	for _, s := range standings {
		if err := replaceStandings(ctx, tx, importID, s); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit import")
	}
	return nil
}

func replaceStandings(ctx context.Context, tx *sql.Tx, importID string, s store.CompetitionStandings) error {
	if _, err := tx.ExecContext(ctx, upsertStandingsSQL,
		s.ID, s.CompetitionID, s.SeasonID, s.ExternalCompetitionID, s.Source, s.UpdatedAt, importID,
	); err != nil {
		return errors.Wrapf(err, "upserting standings %s", s.ID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM standings_rows WHERE standings_id = $1`, s.ID); err != nil {
		return errors.Wrapf(err, "clearing standings rows %s", s.ID)
	}
	for _, row := range s.Rows {
		if _, err := tx.ExecContext(ctx, insertStandingsRowSQL,
			s.ID, row.Position, row.TeamName, row.GamesPlayed, row.Wins, nullInt(row.Draws), row.Losses,
			nullInt(row.WinsOT), nullInt(row.LossesOT), row.GoalsFor, row.GoalsAgainst, row.GoalDifference,
			row.Points, row.IsOurTeam,
		); err != nil {
			return errors.Wrapf(err, "inserting standings row %d of %s", row.Position, s.ID)
		}
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
