package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agsa/field-scheduler/internal/domain/availability"
)

type AvailabilityRepository struct {
	mu         sync.RWMutex
	rules      map[string]availability.Rule
	exceptions map[string][]availability.Exception
}

func NewAvailabilityRepository(seed []availability.Rule) *AvailabilityRepository {
	repo := &AvailabilityRepository{
		rules:      make(map[string]availability.Rule, len(seed)),
		exceptions: make(map[string][]availability.Exception),
	}
	for _, rule := range seed {
		repo.rules[rule.ID] = cloneRule(rule)
	}
	return repo
}

func (r *AvailabilityRepository) GetByID(_ context.Context, id string) (availability.Rule, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return availability.Rule{}, false, nil
	}
	return cloneRule(rule), true, nil
}

func (r *AvailabilityRepository) ListByDivision(_ context.Context, leagueID, division string) ([]availability.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]availability.Rule, 0)
	for _, rule := range r.rules {
		if rule.LeagueID == leagueID && rule.Division == division {
			out = append(out, cloneRule(rule))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AvailabilityRepository) Create(_ context.Context, rule availability.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("availability rule %s already exists", rule.ID)
	}
	r.rules[rule.ID] = cloneRule(rule)
	return nil
}

func (r *AvailabilityRepository) ListExceptionsByRule(_ context.Context, ruleID string) ([]availability.Exception, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]availability.Exception(nil), r.exceptions[ruleID]...), nil
}

func (r *AvailabilityRepository) CreateException(_ context.Context, exception availability.Exception) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exceptions[exception.RuleID] = append(r.exceptions[exception.RuleID], exception)
	return nil
}

func cloneRule(rule availability.Rule) availability.Rule {
	copied := rule
	copied.DaysOfWeek = append([]time.Weekday(nil), rule.DaysOfWeek...)
	return copied
}
