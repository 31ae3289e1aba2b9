package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agsa/field-scheduler/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
}

func NewTeamRepository(seed []team.Team) *TeamRepository {
	repo := &TeamRepository{items: make(map[string]team.Team, len(seed))}
	for _, item := range seed {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *TeamRepository) ListByDivision(_ context.Context, leagueID, division string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID && item.Division == division {
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) Upsert(_ context.Context, item team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}
