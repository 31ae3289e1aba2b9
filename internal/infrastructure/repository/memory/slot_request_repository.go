package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/agsa/field-scheduler/internal/domain/slot"
)

type SlotRequestRepository struct {
	mu    sync.RWMutex
	items map[string]slot.Request
}

func NewSlotRequestRepository() *SlotRequestRepository {
	return &SlotRequestRepository{items: make(map[string]slot.Request)}
}

func (r *SlotRequestRepository) GetByID(_ context.Context, id string) (slot.Request, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return slot.Request{}, false, nil
	}
	return item, true, nil
}

func (r *SlotRequestRepository) ListBySlot(_ context.Context, slotID string) ([]slot.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]slot.Request, 0)
	for _, item := range r.items {
		if item.SlotID == slotID {
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SlotRequestRepository) Create(_ context.Context, item slot.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("slot request %s already exists", item.ID)
	}
	r.items[item.ID] = item
	return nil
}

func (r *SlotRequestRepository) UpdateStatus(_ context.Context, id string, status slot.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return fmt.Errorf("slot request %s does not exist", id)
	}
	item.Status = status
	r.items[id] = item
	return nil
}
