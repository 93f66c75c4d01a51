package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"qrattend/internal/apperr"
	"qrattend/internal/store"
)

// Repository persists students and attendance in the SQL store.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// InsertStudent writes a new student through q, which may be a transaction.
// A duplicate roll number yields a conflict error.
func (r *Repository) InsertStudent(ctx context.Context, q store.Querier, st Student) error {
	_, err := q.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO students (roll_no, name, created_at)
		VALUES (?, ?, ?)
	`), st.RollNo, st.Name, st.CreatedAt)
	if err != nil {
		if store.ClassifyConstraint(err) == store.UniqueViolation {
			return apperr.Conflict("DUPLICATE_ROLL_NO", "roll number already exists")
		}
		return apperr.Storage(err, "insert student")
	}
	return nil
}

// GetStudent returns nil, nil when the roll number is unknown.
func (r *Repository) GetStudent(ctx context.Context, rollNo string) (*Student, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT roll_no, name, created_at FROM students WHERE roll_no = ?
	`), rollNo)
	var st Student
	if err := row.Scan(&st.RollNo, &st.Name, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(err, "get student")
	}
	return &st, nil
}

// ListStudents returns all students ordered by roll number.
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := r.db.Client.QueryContext(ctx, `SELECT roll_no, name, created_at FROM students ORDER BY roll_no`)
	if err != nil {
		return nil, apperr.Storage(err, "list students")
	}
	defer rows.Close()

	students := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.RollNo, &st.Name, &st.CreatedAt); err != nil {
			return nil, apperr.Storage(err, "scan student")
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list students")
	}
	return students, nil
}

// GetSubject returns nil, nil when the code is not seeded.
func (r *Repository) GetSubject(ctx context.Context, code string) (*Subject, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`SELECT code, name FROM subjects WHERE code = ?`), code)
	var s Subject
	if err := row.Scan(&s.Code, &s.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(err, "get subject")
	}
	return &s, nil
}

// ListSubjects returns the seeded subjects ordered by name.
func (r *Repository) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := r.db.Client.QueryContext(ctx, `SELECT code, name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, apperr.Storage(err, "list subjects")
	}
	defer rows.Close()

	subjects := []Subject{}
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, apperr.Storage(err, "scan subject")
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list subjects")
	}
	return subjects, nil
}

// UpsertRecord inserts the record or, when one exists for the same
// (roll_no, subject_code, scan_date), overwrites its timestamp and status in
// the same statement. The returned record carries the id of the stored row.
func (r *Repository) UpsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO attendance (id, roll_no, subject_code, scan_date, scanned_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (roll_no, subject_code, scan_date) DO UPDATE SET
			scanned_at = excluded.scanned_at,
			status = excluded.status
		RETURNING id
	`), rec.ID, rec.RollNo, rec.SubjectCode, rec.Date, rec.ScannedAt, rec.Status)
	if err := row.Scan(&rec.ID); err != nil {
		if store.ClassifyConstraint(err) == store.ForeignKeyViolation {
			return Record{}, apperr.NotFound("STUDENT_NOT_FOUND", "student not found")
		}
		return Record{}, apperr.Storage(err, "upsert attendance")
	}
	return rec, nil
}

// GetRecord returns nil, nil when no record exists for the key.
func (r *Repository) GetRecord(ctx context.Context, rollNo, subjectCode, date string) (*Record, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, roll_no, subject_code, scan_date, scanned_at, status
		FROM attendance
		WHERE roll_no = ? AND subject_code = ? AND scan_date = ?
	`), rollNo, subjectCode, date)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.RollNo, &rec.SubjectCode, &rec.Date, &rec.ScannedAt, &rec.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage(err, "get attendance")
	}
	return &rec, nil
}

// ListRecords returns attendance rows, newest scan first.
func (r *Repository) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.db.Client.QueryContext(ctx, `
		SELECT id, roll_no, subject_code, scan_date, scanned_at, status
		FROM attendance
		ORDER BY scanned_at DESC
	`)
	if err != nil {
		return nil, apperr.Storage(err, "list attendance")
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RollNo, &rec.SubjectCode, &rec.Date, &rec.ScannedAt, &rec.Status); err != nil {
			return nil, apperr.Storage(err, "scan attendance")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err, "list attendance")
	}
	return records, nil
}

// CountRecords counts rows for a roll number and subject across all dates.
func (r *Repository) CountRecords(ctx context.Context, rollNo, subjectCode string) (int, error) {
	var n int
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT COUNT(*) FROM attendance WHERE roll_no = ? AND subject_code = ?
	`), rollNo, subjectCode).Scan(&n)
	if err != nil {
		return 0, apperr.Storage(err, "count attendance")
	}
	return n, nil
}

// Clear deletes all attendance rows and students in one transaction.
// Subjects are reference data and stay.
func (r *Repository) Clear(ctx context.Context) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM students`)
		return err
	})
	if err != nil {
		return apperr.Storage(err, "clear data")
	}
	return nil
}
