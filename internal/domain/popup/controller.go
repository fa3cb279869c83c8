// Package popup implements the one-time-dismissible popup visibility state machine.
package popup

// SeenStore is the persistent key-value contract the controller depends on.
// Absence of a key is a valid state, not an error. Implementations that lose
// writes or cannot look keys up must behave as always-absent and swallow the
// write; the popup then reopens on every render, which is acceptable.
type SeenStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Surface is the presentation collaborator whose only duty is reflecting the
// controller's visibility decisions. Layout and styling live elsewhere.
type Surface interface {
	SetVisible(visible bool)
}

// EventSource delivers user activations of the two designated controls.
type EventSource interface {
	OnOpenRequested(handler func())
	OnCloseRequested(handler func())
}

// SeenMarker is the truthy value written when no better marker is supplied.
const SeenMarker = "seen"

// Controller gates the one-time-per-client display of an informational popup
// and allows manual re-opening. It holds no reference to any concrete
// presentation API; both the store and the surface are injected.
//
// The seen flag is monotonic: nothing here ever resets it to false.
type Controller struct {
	popupID    string
	isOpen     bool
	store      SeenStore
	surface    Surface
	seenMarker string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithSeenMarker overrides the marker value persisted on close. Any non-absent
// stored value counts as seen regardless of the marker used to write it.
func WithSeenMarker(marker string) Option {
	return func(c *Controller) {
		if marker != "" {
			c.seenMarker = marker
		}
	}
}

// NewController creates a controller for a single popup instance. popupID is
// the stable identifier used as the persistence key; mint a new one whenever
// the popup's content changes materially so every client sees it again.
func NewController(popupID string, store SeenStore, surface Surface, opts ...Option) *Controller {
	c := &Controller{
		popupID:    popupID,
		store:      store,
		surface:    surface,
		seenMarker: SeenMarker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init computes initial visibility. It reads the seen flag exactly once: an
// absent entry means this client has never dismissed the popup, so it opens
// immediately and unconditionally; any present value leaves it closed.
func (c *Controller) Init() {
	if _, seen := c.lookupSeen(); seen {
		c.setOpen(false)
		return
	}
	c.setOpen(true)
}

// Bind subscribes the controller to the two user activations. The source is a
// capability interface so the controller is testable without a live surface.
func (c *Controller) Bind(events EventSource) {
	if events == nil {
		return
	}
	events.OnOpenRequested(c.Open)
	events.OnCloseRequested(c.Close)
}

// Open shows the popup. Opening an already-open popup is a no-op in
// observable effect.
func (c *Controller) Open() {
	c.setOpen(true)
}

// Close hides the popup and persists the seen flag unconditionally, even if
// it was already set. Closing an already-closed popup is safe; the write
// still happens. Suppressing the triggering control's default action is the
// presentation layer's side of the contract.
func (c *Controller) Close() {
	c.setOpen(false)
	c.writeSeen()
}

// IsOpen reports the current transient visibility.
func (c *Controller) IsOpen() bool {
	return c.isOpen
}

// PopupID returns the stable identifier this controller persists under.
func (c *Controller) PopupID() string {
	return c.popupID
}

// Seen reports whether the persistent store currently holds an entry for this
// popup. A degraded store always reports false.
func (c *Controller) Seen() bool {
	_, seen := c.lookupSeen()
	return seen
}

func (c *Controller) setOpen(open bool) {
	c.isOpen = open
	if c.surface != nil {
		c.surface.SetVisible(open)
	}
}

func (c *Controller) lookupSeen() (string, bool) {
	if c.store == nil {
		return "", false
	}
	return c.store.Get(c.popupID)
}

func (c *Controller) writeSeen() {
	if c.store == nil {
		return
	}
	c.store.Set(c.popupID, c.seenMarker)
}

// NopStore is a SeenStore for clients whose persistent storage is unavailable
// or disabled by policy: lookups are always absent, writes are dropped.
type NopStore struct{}

func (NopStore) Get(string) (string, bool) { return "", false }
func (NopStore) Set(string, string)        {}

// MemStore is an in-process SeenStore, used by tests and by surfaces that
// only need page-lifetime persistence.
type MemStore struct {
	entries map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, bool) {
	value, ok := m.entries[key]
	return value, ok
}

func (m *MemStore) Set(key, value string) {
	m.entries[key] = value
}
