package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

type StudentRepository interface {
	Get(ctx context.Context, studentID int) (domain.Student, error)
	ListSummaries(ctx context.Context) ([]domain.StudentSummary, error)
	ListAll(ctx context.Context) ([]domain.Student, error)
	Upsert(ctx context.Context, student domain.Student) error
	Delete(ctx context.Context, studentID int) error
}

type StudentSQLRepository struct {
	execer Execer
	table  string
}

func NewStudentSQLRepository(execer Execer, settings Settings) *StudentSQLRepository {
	return &StudentSQLRepository{execer: execer, table: settings.Tables.Students}
}

func (r *StudentSQLRepository) Get(ctx context.Context, studentID int) (domain.Student, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE student_id = $1`, r.table)

	var doc []byte
	if err := r.execer.QueryRowContext(ctx, query, studentID).Scan(&doc); err != nil {
		return domain.Student{}, err
	}
	return decodeStudent(doc)
}

func (r *StudentSQLRepository) ListSummaries(ctx context.Context) ([]domain.StudentSummary, error) {
	query := fmt.Sprintf(`
SELECT student_id, first_name, last_name
FROM %s
ORDER BY student_id ASC
`, r.table)

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]domain.StudentSummary, 0)
	for rows.Next() {
		var summary domain.StudentSummary
		var firstName sql.NullString
		var lastName sql.NullString
		if err := rows.Scan(&summary.StudentID, &firstName, &lastName); err != nil {
			return nil, err
		}
		if firstName.Valid {
			summary.FirstName = firstName.String
		}
		if lastName.Valid {
			summary.LastName = lastName.String
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *StudentSQLRepository) ListAll(ctx context.Context) ([]domain.Student, error) {
	query := fmt.Sprintf(`SELECT doc FROM %s ORDER BY student_id ASC`, r.table)

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]domain.Student, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		student, err := decodeStudent(doc)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *StudentSQLRepository) Upsert(ctx context.Context, student domain.Student) error {
	query := fmt.Sprintf(`
INSERT INTO %s (
	student_id,
	first_name,
	last_name,
	doc,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (student_id)
DO UPDATE SET
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	doc = EXCLUDED.doc,
	updated_at = CURRENT_TIMESTAMP
`, r.table)

	doc, err := json.Marshal(student)
	if err != nil {
		return err
	}
	_, err = r.execer.ExecContext(
		ctx,
		query,
		student.StudentID,
		student.FirstName,
		student.LastName,
		string(doc),
	)
	return err
}

func (r *StudentSQLRepository) Delete(ctx context.Context, studentID int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE student_id = $1`, r.table)

	result, err := r.execer.ExecContext(ctx, query, studentID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func decodeStudent(doc []byte) (domain.Student, error) {
	var student domain.Student
	if err := json.Unmarshal(doc, &student); err != nil {
		return domain.Student{}, fmt.Errorf("decode student document: %w", err)
	}
	return student, nil
}
