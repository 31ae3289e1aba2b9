package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agsa/field-scheduler/internal/domain/slot"
)

type SlotRepository struct {
	mu       sync.RWMutex
	items    map[string]slot.Slot
	tokenSeq int
}

func NewSlotRepository() *SlotRepository {
	return &SlotRepository{items: make(map[string]slot.Slot)}
}

func (r *SlotRepository) GetByID(_ context.Context, id string) (slot.Slot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return slot.Slot{}, false, nil
	}
	return item, true, nil
}

func (r *SlotRepository) Query(_ context.Context, filter slot.Filter) ([]slot.Slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]slot.Slot, 0)
	for _, item := range r.items {
		if !matchesFilter(item, filter) {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartMinutes != out[j].StartMinutes {
			return out[i].StartMinutes < out[j].StartMinutes
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SlotRepository) Create(_ context.Context, item slot.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("slot %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

// UpdateWithToken applies the patch only when the stored token matches and
// rotates the token on success. A stale token returns ok false with no
// error so the caller can re-read and retry.
func (r *SlotRepository) UpdateWithToken(_ context.Context, id, token string, patch slot.Patch) (slot.Slot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return slot.Slot{}, false, fmt.Errorf("slot %s does not exist", id)
	}
	if item.Token != token {
		return slot.Slot{}, false, nil
	}

	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.ConfirmedTeamID != nil {
		item.ConfirmedTeamID = *patch.ConfirmedTeamID
	}
	if patch.HomeTeamID != nil {
		item.HomeTeamID = *patch.HomeTeamID
	}
	if patch.AwayTeamID != nil {
		item.AwayTeamID = *patch.AwayTeamID
	}
	if patch.IsExternalOffer != nil {
		item.IsExternalOffer = *patch.IsExternalOffer
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}

	r.tokenSeq++
	item.Token = fmt.Sprintf("%s.%d", id, r.tokenSeq)
	r.items[id] = item
	return item, true, nil
}

func (r *SlotRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

func matchesFilter(item slot.Slot, filter slot.Filter) bool {
	if filter.LeagueID != "" && item.LeagueID != filter.LeagueID {
		return false
	}
	if filter.Division != "" && item.Division != filter.Division {
		return false
	}
	if filter.FieldKey != "" && item.FieldKey != filter.FieldKey {
		return false
	}
	if !filter.DateFrom.IsZero() && item.Date.Before(filter.DateFrom) {
		return false
	}
	if !filter.DateTo.IsZero() && item.Date.After(filter.DateTo) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if item.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
