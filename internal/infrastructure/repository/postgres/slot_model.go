package postgres

import (
	"time"

	"github.com/agsa/field-scheduler/internal/domain/slot"
)

type slotTableModel struct {
	ID              string    `db:"id"`
	LeagueID        string    `db:"league_id"`
	Division        string    `db:"division"`
	FieldKey        string    `db:"field_key"`
	GameDate        time.Time `db:"game_date"`
	StartMinutes    int       `db:"start_minutes"`
	EndMinutes      int       `db:"end_minutes"`
	OfferingTeamID  string    `db:"offering_team_id"`
	ConfirmedTeamID string    `db:"confirmed_team_id"`
	HomeTeamID      string    `db:"home_team_id"`
	AwayTeamID      string    `db:"away_team_id"`
	Status          string    `db:"status"`
	IsAvailability  bool      `db:"is_availability"`
	IsExternalOffer bool      `db:"is_external_offer"`
	GameType        string    `db:"game_type"`
	Notes           string    `db:"notes"`
	VersionToken    string    `db:"version_token"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

var slotColumns = []string{
	"id", "league_id", "division", "field_key", "game_date",
	"start_minutes", "end_minutes", "offering_team_id", "confirmed_team_id",
	"home_team_id", "away_team_id", "status", "is_availability",
	"is_external_offer", "game_type", "notes", "version_token",
	"created_at", "updated_at",
}

func slotFromRow(row slotTableModel) slot.Slot {
	return slot.Slot{
		ID:              row.ID,
		LeagueID:        row.LeagueID,
		Division:        row.Division,
		FieldKey:        row.FieldKey,
		Date:            row.GameDate.UTC(),
		StartMinutes:    row.StartMinutes,
		EndMinutes:      row.EndMinutes,
		OfferingTeamID:  row.OfferingTeamID,
		ConfirmedTeamID: row.ConfirmedTeamID,
		HomeTeamID:      row.HomeTeamID,
		AwayTeamID:      row.AwayTeamID,
		Status:          slot.Status(row.Status),
		IsAvailability:  row.IsAvailability,
		IsExternalOffer: row.IsExternalOffer,
		GameType:        row.GameType,
		Notes:           row.Notes,
		Token:           row.VersionToken,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type slotInsertModel struct {
	ID              string    `db:"id"`
	LeagueID        string    `db:"league_id"`
	Division        string    `db:"division"`
	FieldKey        string    `db:"field_key"`
	GameDate        time.Time `db:"game_date"`
	StartMinutes    int       `db:"start_minutes"`
	EndMinutes      int       `db:"end_minutes"`
	OfferingTeamID  string    `db:"offering_team_id"`
	ConfirmedTeamID string    `db:"confirmed_team_id"`
	HomeTeamID      string    `db:"home_team_id"`
	AwayTeamID      string    `db:"away_team_id"`
	Status          string    `db:"status"`
	IsAvailability  bool      `db:"is_availability"`
	IsExternalOffer bool      `db:"is_external_offer"`
	GameType        string    `db:"game_type"`
	Notes           string    `db:"notes"`
	VersionToken    string    `db:"version_token"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func slotToInsertModel(item slot.Slot) slotInsertModel {
	return slotInsertModel{
		ID:              item.ID,
		LeagueID:        item.LeagueID,
		Division:        item.Division,
		FieldKey:        item.FieldKey,
		GameDate:        item.Date,
		StartMinutes:    item.StartMinutes,
		EndMinutes:      item.EndMinutes,
		OfferingTeamID:  item.OfferingTeamID,
		ConfirmedTeamID: item.ConfirmedTeamID,
		HomeTeamID:      item.HomeTeamID,
		AwayTeamID:      item.AwayTeamID,
		Status:          string(item.Status),
		IsAvailability:  item.IsAvailability,
		IsExternalOffer: item.IsExternalOffer,
		GameType:        item.GameType,
		Notes:           item.Notes,
		VersionToken:    item.Token,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
