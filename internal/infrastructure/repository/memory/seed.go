package memory

import (
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
	"github.com/agsa/field-scheduler/internal/domain/league"
	"github.com/agsa/field-scheduler/internal/domain/team"
)

const (
	LeagueIDMetroYouth = "metro-youth-2026"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:                LeagueIDMetroYouth,
			Name:              "Metro Youth Baseball",
			Timezone:          "America/New_York",
			GameLengthMinutes: 120,
			Divisions:         []string{"10U", "12U"},
			Blackouts: []league.Blackout{
				{
					StartsOn: time.Date(2026, time.July, 3, 0, 0, 0, 0, time.UTC),
					EndsOn:   time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC),
					Reason:   "Independence Day weekend",
				},
			},
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "metro-10u-falcons", LeagueID: LeagueIDMetroYouth, Division: "10U", Name: "Falcons"},
		{ID: "metro-10u-hawks", LeagueID: LeagueIDMetroYouth, Division: "10U", Name: "Hawks"},
		{ID: "metro-10u-otters", LeagueID: LeagueIDMetroYouth, Division: "10U", Name: "Otters"},
		{ID: "metro-10u-wolves", LeagueID: LeagueIDMetroYouth, Division: "10U", Name: "Wolves"},
		{ID: "metro-12u-bears", LeagueID: LeagueIDMetroYouth, Division: "12U", Name: "Bears"},
		{ID: "metro-12u-eagles", LeagueID: LeagueIDMetroYouth, Division: "12U", Name: "Eagles"},
		{ID: "metro-12u-lynx", LeagueID: LeagueIDMetroYouth, Division: "12U", Name: "Lynx"},
		{ID: "metro-12u-pumas", LeagueID: LeagueIDMetroYouth, Division: "12U", Name: "Pumas"},
		{ID: "metro-12u-ravens", LeagueID: LeagueIDMetroYouth, Division: "12U", Name: "Ravens"},
	}
}

func SeedAvailabilityRules() []availability.Rule {
	return []availability.Rule{
		{
			ID:           "rule-10u-riverside",
			LeagueID:     LeagueIDMetroYouth,
			Division:     "10U",
			FieldKey:     "riverside-1",
			StartsOn:     time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC),
			EndsOn:       time.Date(2026, time.August, 14, 0, 0, 0, 0, time.UTC),
			DaysOfWeek:   []time.Weekday{time.Tuesday, time.Thursday},
			StartMinutes: 17*60 + 30,
			EndMinutes:   21*60 + 30,
			Active:       true,
		},
		{
			ID:           "rule-12u-riverside",
			LeagueID:     LeagueIDMetroYouth,
			Division:     "12U",
			FieldKey:     "riverside-2",
			StartsOn:     time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC),
			EndsOn:       time.Date(2026, time.August, 14, 0, 0, 0, 0, time.UTC),
			DaysOfWeek:   []time.Weekday{time.Wednesday, time.Saturday},
			StartMinutes: 9 * 60,
			EndMinutes:   13 * 60,
			Active:       true,
		},
	}
}
