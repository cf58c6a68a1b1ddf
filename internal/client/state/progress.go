package state

import (
	"sync"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/metrics"
)

// Progress is the single sync-progress record of the process. The zero value
// is {InProgress: false, Message: ""}. Writes are last-write-wins.
type Progress struct {
	mu sync.RWMutex
	p  models.SyncProgress
}

func NewProgress() *Progress {
	return &Progress{}
}

func (s *Progress) Get() models.SyncProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

func (s *Progress) Set(p models.SyncProgress) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()

	if p.InProgress {
		metrics.SyncInProgress.Set(1)
	} else {
		metrics.SyncInProgress.Set(0)
	}
}

// Begin marks a cycle as running with a phase message.
func (s *Progress) Begin(message string) {
	s.Set(models.SyncProgress{InProgress: true, Message: message})
}

func (s *Progress) InProgress() bool {
	return s.Get().InProgress
}
