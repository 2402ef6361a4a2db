package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

type CourseRepository interface {
	Get(ctx context.Context, ref domain.CourseRef) (domain.Course, error)
	ListAll(ctx context.Context) ([]domain.Course, error)
	GetByKeys(ctx context.Context, refs []domain.CourseRef) ([]domain.Course, error)
	Upsert(ctx context.Context, course domain.Course) error
	UpsertMany(ctx context.Context, courses []domain.Course) error
	Delete(ctx context.Context, ref domain.CourseRef) error
}

type CourseSQLRepository struct {
	execer    Execer
	table     string
	batchSize int
}

func NewCourseSQLRepository(execer Execer, settings Settings) *CourseSQLRepository {
	return &CourseSQLRepository{
		execer:    execer,
		table:     settings.Tables.Courses,
		batchSize: settings.batchSize(),
	}
}

func (r *CourseSQLRepository) Get(ctx context.Context, ref domain.CourseRef) (domain.Course, error) {
	query := fmt.Sprintf(`
SELECT doc
FROM %s
WHERE subject = $1 AND course_number = $2
`, r.table)

	var doc []byte
	if err := r.execer.QueryRowContext(ctx, query, ref.Subject, ref.CourseNumber).Scan(&doc); err != nil {
		return domain.Course{}, err
	}
	return decodeCourse(doc)
}

func (r *CourseSQLRepository) ListAll(ctx context.Context) ([]domain.Course, error) {
	query := fmt.Sprintf(`
SELECT doc
FROM %s
ORDER BY subject ASC, course_number ASC
`, r.table)

	return r.queryCourses(ctx, query)
}

// GetByKeys returns the courses that exist for refs. Keys are de-duplicated
// and fetched in batches; missing keys are omitted.
func (r *CourseSQLRepository) GetByKeys(ctx context.Context, refs []domain.CourseRef) ([]domain.Course, error) {
	keys := uniqueRefs(refs)
	courses := make([]domain.Course, 0, len(keys))

	for start := 0; start < len(keys); start += r.batchSize {
		end := start + r.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		var where strings.Builder
		args := make([]any, 0, len(batch)*2)
		for i, key := range batch {
			if i > 0 {
				where.WriteString(" OR ")
			}
			fmt.Fprintf(&where, "(subject = $%d AND course_number = $%d)", len(args)+1, len(args)+2)
			args = append(args, key.Subject, key.CourseNumber)
		}

		query := fmt.Sprintf(`
SELECT doc
FROM %s
WHERE %s
ORDER BY subject ASC, course_number ASC
`, r.table, where.String())

		found, err := r.queryCourses(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("course batch %d-%d: %w", start, end, err)
		}
		courses = append(courses, found...)
	}

	return courses, nil
}

func (r *CourseSQLRepository) Upsert(ctx context.Context, course domain.Course) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	subject,
	course_number,
	doc,
	created_at,
	updated_at
) VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (subject, course_number)
DO UPDATE SET
	doc = EXCLUDED.doc,
	updated_at = CURRENT_TIMESTAMP
`, r.table)

	doc, err := json.Marshal(course)
	if err != nil {
		return err
	}
	_, err = r.execer.ExecContext(ctx, query, course.Subject, course.CourseNumber, string(doc))
	return err
}

func (r *CourseSQLRepository) UpsertMany(ctx context.Context, courses []domain.Course) error {
	for _, course := range courses {
		if err := r.Upsert(ctx, course); err != nil {
			return fmt.Errorf("upsert %s: %w", course.Ref(), err)
		}
	}
	return nil
}

func (r *CourseSQLRepository) Delete(ctx context.Context, ref domain.CourseRef) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE subject = $1 AND course_number = $2`, r.table)

	result, err := r.execer.ExecContext(ctx, query, ref.Subject, ref.CourseNumber)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *CourseSQLRepository) queryCourses(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.execer.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		course, err := decodeCourse(doc)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func decodeCourse(doc []byte) (domain.Course, error) {
	var course domain.Course
	if err := json.Unmarshal(doc, &course); err != nil {
		return domain.Course{}, fmt.Errorf("decode course document: %w", err)
	}
	return course, nil
}

func uniqueRefs(refs []domain.CourseRef) []domain.CourseRef {
	out := make([]domain.CourseRef, 0, len(refs))
	seen := make(map[domain.CourseRef]struct{}, len(refs))
	for _, ref := range refs {
		if !ref.Valid() {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
