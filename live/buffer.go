package live

import (
	"sync"

	"github.com/pawelknorps/chord-lab-sub001/algorithms/common"
)

// PitchBuffer is a bounded ring of pitch samples. Pushing onto a full buffer
// evicts the oldest sample. It is not safe for concurrent use.
type PitchBuffer struct {
	ring *common.RingBuffer[PitchSample]
}

// NewPitchBuffer creates a buffer holding at most capacity samples
func NewPitchBuffer(capacity int) *PitchBuffer {
	return &PitchBuffer{ring: common.NewRingBuffer[PitchSample](capacity)}
}

// Push appends a sample and reports whether the oldest one was evicted
func (b *PitchBuffer) Push(sample PitchSample) bool {
	return b.ring.Push(sample)
}

// Snapshot copies the samples ordered oldest to newest
func (b *PitchBuffer) Snapshot() []PitchSample {
	return b.ring.Snapshot()
}

func (b *PitchBuffer) Len() int {
	return b.ring.Len()
}

func (b *PitchBuffer) Cap() int {
	return b.ring.Cap()
}

func (b *PitchBuffer) Clear() {
	b.ring.Clear()
}

// SyncBuffer guards a PitchBuffer with a mutex for a producer and a polling
// loop running on different goroutines
type SyncBuffer struct {
	mu  sync.Mutex
	buf *PitchBuffer
}

// NewSyncBuffer creates a synchronized buffer
func NewSyncBuffer(capacity int) *SyncBuffer {
	return &SyncBuffer{buf: NewPitchBuffer(capacity)}
}

func (b *SyncBuffer) Push(sample PitchSample) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Push(sample)
}

func (b *SyncBuffer) Snapshot() []PitchSample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Snapshot()
}

func (b *SyncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *SyncBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Clear()
}
