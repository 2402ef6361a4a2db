package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

type RulesService struct {
	rules  repository.RuleRepository
	logger *zap.Logger
}

func NewRulesService(rules repository.RuleRepository, logger *zap.Logger) *RulesService {
	return &RulesService{rules: rules, logger: logger}
}

// GetRulesByMajor returns the rules for majorCode and ErrNotFound when the
// major has none.
func (s *RulesService) GetRulesByMajor(ctx context.Context, majorCode string) ([]domain.RequirementRule, error) {
	major := strings.ToUpper(strings.TrimSpace(majorCode))
	if major == "" {
		return nil, fmt.Errorf("%w: major code is required", ErrInvalidInput)
	}
	rules, err := s.rules.ListByMajor(ctx, major)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules for major %s", ErrNotFound, major)
	}
	return rules, nil
}

func (s *RulesService) ListMajors(ctx context.Context) ([]string, error) {
	return s.rules.ListMajors(ctx)
}

func (s *RulesService) SaveRule(ctx context.Context, rule domain.RequirementRule) (domain.RequirementRule, error) {
	rule.MajorCode = strings.ToUpper(strings.TrimSpace(rule.MajorCode))
	rule.RequirementType = strings.ToUpper(strings.TrimSpace(rule.RequirementType))
	if rule.MajorCode == "" || rule.RequirementType == "" {
		return domain.RequirementRule{}, fmt.Errorf("%w: MajorCode and RequirementType are required", ErrInvalidInput)
	}
	if rule.Kind == domain.RuleKindUnknown {
		s.logger.Warn("saving rule without courses or credit threshold",
			zap.String("major", rule.MajorCode),
			zap.String("requirement_type", rule.RequirementType),
		)
	}
	if err := s.rules.Upsert(ctx, rule); err != nil {
		return domain.RequirementRule{}, err
	}
	return rule, nil
}

func (s *RulesService) DeleteRule(ctx context.Context, majorCode, requirementType string) error {
	major := strings.ToUpper(strings.TrimSpace(majorCode))
	reqType := strings.ToUpper(strings.TrimSpace(requirementType))
	if err := s.rules.Delete(ctx, major, reqType); err != nil {
		return notFound(err, "rule %s for %s", reqType, major)
	}
	return nil
}
