package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agsa/field-scheduler/internal/domain/schedule"
)

type RunRepository struct {
	mu    sync.RWMutex
	items map[string]schedule.Run
}

func NewRunRepository() *RunRepository {
	return &RunRepository{items: make(map[string]schedule.Run)}
}

func (r *RunRepository) GetByID(_ context.Context, id string) (schedule.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return schedule.Run{}, false, nil
	}
	return cloneRun(item), true, nil
}

func (r *RunRepository) ListByLeague(_ context.Context, leagueID string) ([]schedule.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedule.Run, 0)
	for _, item := range r.items {
		if item.LeagueID == leagueID {
			out = append(out, cloneRun(item))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RunRepository) Create(_ context.Context, run schedule.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[run.ID]; exists {
		return fmt.Errorf("schedule run %s already exists", run.ID)
	}
	r.items[run.ID] = cloneRun(run)
	return nil
}

func cloneRun(run schedule.Run) schedule.Run {
	copied := run
	copied.Assignments = append([]schedule.RunAssignment(nil), run.Assignments...)
	copied.Failures = append([]schedule.Issue(nil), run.Failures...)
	return copied
}
