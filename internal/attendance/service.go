package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"qrattend/internal/apperr"
	"qrattend/internal/metrics"
	"qrattend/internal/qr"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

// Service implements registration and scanning on top of the repository and
// the artifact store.
type Service struct {
	db        *store.DB
	repo      *Repository
	artifacts *qr.ArtifactStore
	jobs      queue.Queue
	validate  *validator.Validate
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for scan dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithQueue sets the queue that receives artifact rebuild jobs.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) { s.jobs = q }
}

// NewService creates a service backed by db and the artifact store.
func NewService(db *store.DB, artifacts *qr.ArtifactStore, opts ...Option) *Service {
	s := &Service{
		db:        db,
		repo:      NewRepository(db),
		artifacts: artifacts,
		validate:  newValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Repository() *Repository { return s.repo }

// Register stores a new student and writes the QR artifact for its roll
// number. The student row is committed only after the artifact is on disk,
// so a failed write leaves neither behind.
func (s *Service) Register(ctx context.Context, rollNo, name string) (Registration, error) {
	in := registerInput{RollNo: clean(rollNo), Name: clean(name)}
	if err := s.validate.Struct(in); err != nil {
		metrics.Registrations.WithLabelValues("invalid").Inc()
		return Registration{}, validationError(err)
	}

	st := Student{RollNo: in.RollNo, Name: in.Name, CreatedAt: s.now().UTC()}
	var png []byte
	written := false

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.repo.InsertStudent(ctx, tx, st); err != nil {
			return err
		}
		var err error
		if png, err = qr.Encode(st.RollNo); err != nil {
			return apperr.Encoding(err, "generate qr code")
		}
		if err := s.artifacts.Write(st.RollNo, png); err != nil {
			return apperr.Internal(err, "write qr artifact")
		}
		written = true
		return nil
	})
	if err != nil {
		if written && errors.Is(err, store.ErrCommit) {
			if rmErr := s.artifacts.Remove(st.RollNo); rmErr != nil {
				log.Error().Err(rmErr).Str("roll_no", st.RollNo).Msg("remove orphaned qr artifact")
			}
		}
		if apperr.KindOf(err) == apperr.KindUnknown {
			err = apperr.Storage(err, "register student")
		}
		metrics.Registrations.WithLabelValues(outcome(err)).Inc()
		return Registration{}, err
	}

	metrics.Registrations.WithLabelValues("ok").Inc()
	metrics.ArtifactsWritten.WithLabelValues("register").Inc()
	return Registration{Student: st, PNG: png, ArtifactPath: s.artifacts.Path(st.RollNo)}, nil
}

// Scan marks the student present for subjectCode on today's server-local
// date. Repeated scans on one day overwrite the timestamp of the same row.
func (s *Service) Scan(ctx context.Context, rollNo, subjectCode string) (ScanResult, error) {
	in := scanInput{RollNo: clean(rollNo), SubjectCode: clean(subjectCode)}
	if err := s.validate.Struct(in); err != nil {
		metrics.Scans.WithLabelValues("invalid").Inc()
		return ScanResult{}, validationError(err)
	}

	res, err := s.scan(ctx, in)
	if err != nil {
		metrics.Scans.WithLabelValues(outcome(err)).Inc()
		return ScanResult{}, err
	}
	metrics.Scans.WithLabelValues("ok").Inc()
	return res, nil
}

func (s *Service) scan(ctx context.Context, in scanInput) (ScanResult, error) {
	subject, err := s.repo.GetSubject(ctx, in.SubjectCode)
	if err != nil {
		return ScanResult{}, err
	}
	if subject == nil {
		return ScanResult{}, apperr.NotFound("SUBJECT_NOT_FOUND", "subject not found")
	}
	student, err := s.repo.GetStudent(ctx, in.RollNo)
	if err != nil {
		return ScanResult{}, err
	}
	if student == nil {
		return ScanResult{}, apperr.NotFound("STUDENT_NOT_FOUND", "student not found")
	}

	now := s.now()
	rec, err := s.repo.UpsertRecord(ctx, Record{
		RollNo:      student.RollNo,
		SubjectCode: subject.Code,
		Date:        now.Format(DateLayout),
		ScannedAt:   now.UTC(),
		Status:      StatusPresent,
	})
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Student: *student, Subject: *subject, Record: rec}, nil
}

// Subjects lists the seeded subjects.
func (s *Service) Subjects(ctx context.Context) ([]Subject, error) {
	return s.repo.ListSubjects(ctx)
}

// Snapshot dumps all three tables.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Students: students, Subjects: subjects, Attendance: records}, nil
}

// Clear removes all students and attendance rows. Artifacts on disk are
// left alone; re-registering a roll number overwrites its file.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	log.Warn().Msg("all students and attendance records cleared")
	return nil
}

// RenderQR re-derives the QR image of a registered student.
func (s *Service) RenderQR(ctx context.Context, rollNo string) ([]byte, error) {
	rollNo = clean(rollNo)
	if rollNo == "" {
		return nil, apperr.Validation("MISSING_ROLL_NO", "roll number is required")
	}
	st, err := s.repo.GetStudent(ctx, rollNo)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apperr.NotFound("STUDENT_NOT_FOUND", "student not found")
	}
	png, err := qr.Encode(st.RollNo)
	if err != nil {
		return nil, apperr.Encoding(err, "generate qr code")
	}
	return png, nil
}

// EnqueueArtifactRebuild publishes one render job per registered student
// and returns how many were queued. With onlyMissing set, students whose
// artifact file exists are skipped.
func (s *Service) EnqueueArtifactRebuild(ctx context.Context, onlyMissing bool) (int, error) {
	if s.jobs == nil {
		return 0, apperr.New(apperr.KindInternal, "QUEUE_NOT_CONFIGURED", "render queue not configured")
	}
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, st := range students {
		if onlyMissing && s.artifacts.Exists(st.RollNo) {
			continue
		}
		if err := s.jobs.Publish(ctx, queue.Message{Type: qr.RenderJob, Body: []byte(st.RollNo)}); err != nil {
			return queued, apperr.Internal(err, "queue render job")
		}
		queued++
	}
	return queued, nil
}

func outcome(err error) string {
	return apperr.KindOf(err).String()
}
