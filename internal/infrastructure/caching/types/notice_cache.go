package types

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
)

// SiteNoticeCache holds the notice catalog for a single site. The active
// notice is read on every banner render, so it is kept hot here and
// invalidated on any catalog write.
type SiteNoticeCache struct {
	Notices      map[string]*notice.Notice // noticeId -> notice
	ActiveNotice *notice.Notice
	ActiveLoaded bool

	LastLoaded time.Time
	Mu         sync.RWMutex
}
