package app

import (
	"sync"

	"github.com/yourusername/podfetch-go/internal/domain"
)

// EpisodeQueue holds the episodes still to be processed in a run. It is filled
// once before the workers start and only drained afterwards.
type EpisodeQueue struct {
	mu       sync.Mutex
	episodes []domain.Episode
}

// NewEpisodeQueue creates a queue holding a copy of episodes
func NewEpisodeQueue(episodes []domain.Episode) *EpisodeQueue {
	q := &EpisodeQueue{episodes: make([]domain.Episode, len(episodes))}
	copy(q.episodes, episodes)
	return q
}

// Pop removes and returns the last episode. ok is false once the queue is empty.
func (q *EpisodeQueue) Pop() (ep domain.Episode, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.episodes)
	if n == 0 {
		return domain.Episode{}, false
	}
	ep = q.episodes[n-1]
	q.episodes[n-1] = domain.Episode{}
	q.episodes = q.episodes[:n-1]
	return ep, true
}

// Len returns the number of episodes left
func (q *EpisodeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.episodes)
}
