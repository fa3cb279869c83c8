package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPopupEventIsValid(t *testing.T) {
	assert.True(t, PopupEvent{NoticeID: "n-1", Verb: VerbOpened}.IsValid())
	assert.True(t, PopupEvent{NoticeID: "n-1", Verb: VerbDismissed}.IsValid())

	assert.False(t, PopupEvent{NoticeID: "", Verb: VerbOpened}.IsValid())
	assert.False(t, PopupEvent{NoticeID: "n-1", Verb: "CLOSED"}.IsValid())
	assert.False(t, PopupEvent{NoticeID: "n-1", Verb: "opened"}.IsValid())
	assert.False(t, PopupEvent{}.IsValid())
}
