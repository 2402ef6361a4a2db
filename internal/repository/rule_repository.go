package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

type RuleRepository interface {
	ListByMajor(ctx context.Context, majorCode string) ([]domain.RequirementRule, error)
	ListMajors(ctx context.Context) ([]string, error)
	ListAll(ctx context.Context) ([]domain.RequirementRule, error)
	Upsert(ctx context.Context, rule domain.RequirementRule) error
	Delete(ctx context.Context, majorCode, requirementType string) error
}

type RuleSQLRepository struct {
	execer Execer
	table  string
}

func NewRuleSQLRepository(execer Execer, settings Settings) *RuleSQLRepository {
	return &RuleSQLRepository{execer: execer, table: settings.Tables.DegreeRequirements}
}

func (r *RuleSQLRepository) ListByMajor(ctx context.Context, majorCode string) ([]domain.RequirementRule, error) {
	query := fmt.Sprintf(`
SELECT doc
FROM %s
WHERE major_code = $1
ORDER BY requirement_type ASC
`, r.table)

	return r.queryRules(ctx, query, majorCode)
}

func (r *RuleSQLRepository) ListAll(ctx context.Context) ([]domain.RequirementRule, error) {
	query := fmt.Sprintf(`
SELECT doc
FROM %s
ORDER BY major_code ASC, requirement_type ASC
`, r.table)

	return r.queryRules(ctx, query)
}

func (r *RuleSQLRepository) ListMajors(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT major_code FROM %s ORDER BY major_code ASC`, r.table)

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	majors := make([]string, 0)
	for rows.Next() {
		var major string
		if err := rows.Scan(&major); err != nil {
			return nil, err
		}
		majors = append(majors, major)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return majors, nil
}

func (r *RuleSQLRepository) Upsert(ctx context.Context, rule domain.RequirementRule) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	major_code,
	requirement_type,
	doc,
	created_at,
	updated_at
) VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (major_code, requirement_type)
DO UPDATE SET
	doc = EXCLUDED.doc,
	updated_at = CURRENT_TIMESTAMP
`, r.table)

	doc, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	_, err = r.execer.ExecContext(ctx, query, rule.MajorCode, rule.RequirementType, string(doc))
	return err
}

func (r *RuleSQLRepository) Delete(ctx context.Context, majorCode, requirementType string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE major_code = $1 AND requirement_type = $2`, r.table)

	result, err := r.execer.ExecContext(ctx, query, majorCode, requirementType)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *RuleSQLRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.RequirementRule, error) {
	rows, err := r.execer.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]domain.RequirementRule, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rule domain.RequirementRule
		if err := json.Unmarshal(doc, &rule); err != nil {
			return nil, fmt.Errorf("decode rule document: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rules, nil
}
