// Package turns journals completed chat turns in a write-ahead log so that
// observers can follow the conversation stream.
package turns

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/nova/internal/domain"
)

const (
	DefaultDir   = "./wal/turns"
	segmentLimit = 100
	maxSegments  = 10

	turnKeyPrefix = "turn_"
)

// WALStore persists turns in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed turn journal.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "turn_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init turn WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the turn and returns its index.
func (s *WALStore) Save(turn domain.Turn) (uint64, error) {
	if s == nil || s.wal == nil {
		return 0, errors.New("turn store is not initialized")
	}
	if turn.ID == "" {
		return 0, errors.New("turn id is required")
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		return 0, errors.Wrap(err, "marshal turn")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, turnKeyPrefix+turn.ID, payload); err != nil {
		return 0, errors.Wrap(err, "write turn")
	}
	return nextIndex, nil
}

// TurnsAfter returns the turns written after the provided WAL index.
// Entries dropped by segment rotation are skipped.
func (s *WALStore) TurnsAfter(index uint64) ([]domain.TurnRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("turn store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.TurnRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, turnKeyPrefix) {
			continue
		}

		var turn domain.Turn
		if err := json.Unmarshal(payload, &turn); err != nil {
			return nil, errors.Wrap(err, "decode turn")
		}
		records = append(records, domain.TurnRecord{Index: idx, Turn: turn})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("turn store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
