package store

import (
	"context"
	"fmt"
)

// Subject is a row of the seeded subjects table.
type Subject struct {
	Code string
	Name string
}

// DefaultSubjects is the reference data inserted at start-up.
var DefaultSubjects = []Subject{
	{Code: "DBMS", Name: "Database Management Systems"},
	{Code: "JAVA", Name: "Java Programming"},
	{Code: "CN", Name: "Computer Networks"},
	{Code: "DBMS-LAB", Name: "DBMS Laboratory"},
	{Code: "JAVA-LAB", Name: "Java Laboratory"},
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS students (
	roll_no     TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subjects (
	code  TEXT PRIMARY KEY,
	name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
	id            TEXT PRIMARY KEY,
	roll_no       TEXT NOT NULL REFERENCES students(roll_no),
	subject_code  TEXT NOT NULL REFERENCES subjects(code),
	scan_date     TEXT NOT NULL,
	scanned_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	status        TEXT NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'absent')),
	UNIQUE (roll_no, subject_code, scan_date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_scanned_at ON attendance(scanned_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS students (
	roll_no     TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subjects (
	code  TEXT PRIMARY KEY,
	name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance (
	id            TEXT PRIMARY KEY,
	roll_no       TEXT NOT NULL REFERENCES students(roll_no),
	subject_code  TEXT NOT NULL REFERENCES subjects(code),
	scan_date     TEXT NOT NULL,
	scanned_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	status        TEXT NOT NULL DEFAULT 'present' CHECK (status IN ('present', 'absent')),
	UNIQUE (roll_no, subject_code, scan_date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_scanned_at ON attendance(scanned_at);
`

// Migrate creates the schema. It is safe to run repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if d.Dialect == Postgres {
		schema = postgresSchema
	}
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}

// SeedSubjects inserts subjects that are not present yet.
func (d *DB) SeedSubjects(ctx context.Context, subjects []Subject) error {
	q := d.Rebind(`INSERT INTO subjects (code, name) VALUES (?, ?) ON CONFLICT (code) DO NOTHING`)
	for _, s := range subjects {
		if _, err := d.Client.ExecContext(ctx, q, s.Code, s.Name); err != nil {
			return fmt.Errorf("seed %s: %w", s.Code, err)
		}
	}
	return nil
}
