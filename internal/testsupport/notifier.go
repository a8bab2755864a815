package testsupport

import (
	"context"
	"sync"

	"hireline/internal/notifications"
)

// RecorderSink captures published notification intents for assertions.
// When Err is set, Publish returns it after recording the intent.
type RecorderSink struct {
	mu      sync.Mutex
	intents []notifications.Intent

	Err error
}

// Publish records the intent.
func (r *RecorderSink) Publish(_ context.Context, intent notifications.Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intent)
	return r.Err
}

// Intents returns a copy of everything published so far.
func (r *RecorderSink) Intents() []notifications.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifications.Intent, len(r.intents))
	copy(out, r.intents)
	return out
}

// Reset clears any recorded intents.
func (r *RecorderSink) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = nil
}
