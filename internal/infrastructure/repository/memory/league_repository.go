package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agsa/field-scheduler/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository(seed []league.League) *LeagueRepository {
	repo := &LeagueRepository{items: make(map[string]league.League, len(seed))}
	for _, item := range seed {
		repo.items[item.ID] = cloneLeague(item)
	}
	return repo
}

func (r *LeagueRepository) GetByID(_ context.Context, id string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return league.League{}, false, nil
	}
	return cloneLeague(item), true, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneLeague(item))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) Upsert(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneLeague(item)
	return nil
}

func cloneLeague(item league.League) league.League {
	copied := item
	copied.Divisions = append([]string(nil), item.Divisions...)
	copied.Blackouts = append([]league.Blackout(nil), item.Blackouts...)
	return copied
}
