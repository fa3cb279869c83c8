// Package events provides event types
package events

// Popup event verbs emitted by the designated banner controls.
const (
	VerbOpened    = "OPENED"
	VerbDismissed = "DISMISSED"
)

// PopupEvent describes a single user activation against a notice popup.
type PopupEvent struct {
	NoticeID string
	Verb     string
}

// IsValid reports whether the event carries a known verb and a notice ID.
func (e PopupEvent) IsValid() bool {
	if e.NoticeID == "" {
		return false
	}
	return e.Verb == VerbOpened || e.Verb == VerbDismissed
}
