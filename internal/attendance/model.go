package attendance

import "time"

// StatusPresent is the only status the scan flow writes.
const StatusPresent = "present"

// DateLayout is the calendar-date key of an attendance record.
const DateLayout = "2006-01-02"

// Student is a registered student; the roll number is its identity.
type Student struct {
	RollNo    string    `json:"roll_no"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Subject is seeded reference data.
type Subject struct {
	Code string `json:"subject_code"`
	Name string `json:"subject_name"`
}

// Record is one attendance row, unique per (roll number, subject, date).
type Record struct {
	ID          string    `json:"id"`
	RollNo      string    `json:"roll_no"`
	SubjectCode string    `json:"subject_code"`
	Date        string    `json:"date"`
	ScannedAt   time.Time `json:"scanned_at"`
	Status      string    `json:"status"`
}

// Registration is returned by a successful Register call.
type Registration struct {
	Student      Student
	PNG          []byte
	ArtifactPath string
}

// ScanResult is returned by a successful Scan call. Student carries the
// stored name, never anything the caller supplied.
type ScanResult struct {
	Student Student
	Subject Subject
	Record  Record
}

// Snapshot is a full dump of the three tables.
type Snapshot struct {
	Students   []Student `json:"students"`
	Subjects   []Subject `json:"subjects"`
	Attendance []Record  `json:"attendance"`
}
