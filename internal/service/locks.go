package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex hands out one mutex per user so that check-then-write sequences
// of the same user run one at a time.
type keyedMutex struct {
	mutexes sync.Map
}

func (k *keyedMutex) lock(userID uuid.UUID) func() {
	value, _ := k.mutexes.LoadOrStore(userID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
