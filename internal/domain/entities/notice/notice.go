// Package notice defines the sunset notice domain entity.
package notice

import "time"

// Notice is one version of the deprecation announcement. Its ID doubles as
// the popup persistence key: mint a new ID whenever the copy changes
// materially, so every client sees the popup again. All user-facing strings
// arrive pre-localized and are treated as opaque.
type Notice struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	SunsetDate      time.Time  `json:"sunsetDate"`
	LearnMoreURL    string     `json:"learnMoreUrl"`
	NewInterfaceURL string     `json:"newInterfaceUrl"`
	ImageSrc        *string    `json:"imageSrc,omitempty"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	Changed         *time.Time `json:"changed,omitempty"`
}

// Repository defines the operations for persisting Notice entities.
// At most one notice is active at a time; SetActive enforces that.
// Delete also drops the notice's dismissal rows.
type Repository interface {
	FindByID(id string) (*Notice, error)
	FindActive() (*Notice, error)
	FindAll() ([]*Notice, error)
	Create(n *Notice) error
	Update(n *Notice) error
	SetActive(id string) error
	Delete(id string) error
}
