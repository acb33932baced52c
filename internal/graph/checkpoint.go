package graph

import (
	"sync"

	"github.com/sreevatsan/storysmith/internal/types"
)

// MemorySaver is an in-memory checkpointer keyed by thread identifier. It
// lets successive runs on the same thread continue one conversation while
// each run still owns its own history slice. State lives for the process
// lifetime only.
type MemorySaver struct {
	mu      sync.Mutex
	threads map[string][]types.Message
}

// NewMemorySaver creates an empty checkpointer.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{threads: make(map[string][]types.Message)}
}

// Get returns a copy of the history stored for a thread, or nil when the
// thread has no checkpoint yet.
func (s *MemorySaver) Get(threadID string) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.threads[threadID]
	if !ok {
		return nil
	}
	history := make([]types.Message, len(stored))
	copy(history, stored)
	return history
}

// Put stores a copy of the history as the thread's checkpoint.
func (s *MemorySaver) Put(threadID string, history []types.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]types.Message, len(history))
	copy(stored, history)
	s.threads[threadID] = stored
}

// Clear drops the checkpoint for a thread.
func (s *MemorySaver) Clear(threadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
}
