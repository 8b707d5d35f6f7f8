package services

import (
	"sync"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

var (
	focusMessages = []string{
		"Time to focus. Your tree is ready to grow.",
		"One session at a time. Let's plant something great.",
		"Silence the noise. Deep work starts now.",
		"Stay with it. Every minute helps your tree grow.",
		"Small steps build big forests. Focus on this one.",
	}
	breakMessages = []string{
		"Nice work. Stretch, breathe and rest your eyes.",
		"Break time. Step away from the screen for a bit.",
		"You earned this pause. Grab some water.",
		"Rest well. Your next session will be better for it.",
	}
)

// MotivationProvider rotates through encouragement messages for focus and
// break starts.
type MotivationProvider struct {
	mu    sync.Mutex
	focus int
	brk   int
}

// NewMotivationProvider creates a provider starting at the first message.
func NewMotivationProvider() *MotivationProvider {
	return &MotivationProvider{}
}

// MessageFor returns the next message for a session of the given kind.
func (p *MotivationProvider) MessageFor(kind domain.SessionKind) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if kind == domain.SessionKindBreak {
		msg := breakMessages[p.brk%len(breakMessages)]
		p.brk++
		return msg
	}
	msg := focusMessages[p.focus%len(focusMessages)]
	p.focus++
	return msg
}
