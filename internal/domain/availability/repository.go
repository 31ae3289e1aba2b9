package availability

import "context"

// RuleRepository stores availability rules and their exceptions.
type RuleRepository interface {
	GetByID(ctx context.Context, id string) (Rule, bool, error)
	ListByDivision(ctx context.Context, leagueID, division string) ([]Rule, error)
	Create(ctx context.Context, rule Rule) error
	ListExceptionsByRule(ctx context.Context, ruleID string) ([]Exception, error)
	CreateException(ctx context.Context, exception Exception) error
}
