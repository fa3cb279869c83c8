// Package user defines the interfaces for accessing operator, fingerprint,
// visit, and dismissal entities. These repositories abstract the data
// persistence details, ensuring the core application is clean and decoupled
// from the database.
// Note: Sessions are handled by the cache layer, not persistence.
package user

import "time"

// Operator represents an authenticated administrator who manages notices.
type Operator struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Subscribed   bool      `json:"subscribed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Fingerprint represents a durable anonymous client identity. The seen flags
// for dismissed notices are keyed off it.
type Fingerprint struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Visit represents a browsing episode tied to a specific fingerprint.
type Visit struct {
	ID            string    `json:"id"`
	FingerprintID string    `json:"fingerprintId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Dismissal is the persisted seen marker: this fingerprint has dismissed
// this notice. Rows are never deleted by the application; clearing them is
// an external operation.
type Dismissal struct {
	FingerprintID string    `json:"fingerprintId"`
	NoticeID      string    `json:"noticeId"`
	DismissedAt   time.Time `json:"dismissedAt"`
}

// FingerprintRepository defines the operations for persisting Fingerprint entities.
type FingerprintRepository interface {
	FindByID(id string) (*Fingerprint, error)
	Create(fingerprint *Fingerprint) error
	Exists(id string) (bool, error)
}

// VisitRepository defines the operations for persisting Visit entities.
type VisitRepository interface {
	FindLatestByFingerprint(fingerprintID string) (*Visit, error)
	Create(visit *Visit) error
}

// DismissalRepository defines the operations for persisting seen markers.
type DismissalRepository interface {
	Find(fingerprintID, noticeID string) (*Dismissal, error)
	Record(dismissal *Dismissal) error
}

// OperatorRepository defines the operations for persisting Operator entities.
type OperatorRepository interface {
	FindByEmail(email string) (*Operator, error)
	FindSubscribed() ([]*Operator, error)
	Create(operator *Operator) error
}
