package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/sifan077/CharacterVault/internal/app/repository"
)

const (
	defaultFilterCapacity = 100_000
	defaultFilterFPRate   = 0.001
)

// IDFilter remembers which character ids this process has seen. It is only
// complete when this process is the sole writer; otherwise a miss must be
// confirmed against the store. A nil *IDFilter admits every id.
type IDFilter struct {
	mu sync.RWMutex
	bf *bloom.BloomFilter
}

func NewIDFilter(capacity uint, fpRate float64) *IDFilter {
	if capacity == 0 {
		capacity = defaultFilterCapacity
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultFilterFPRate
	}
	return &IDFilter{bf: bloom.NewWithEstimates(capacity, fpRate)}
}

// LoadIDFilter builds a filter seeded with every id currently in the store.
func LoadIDFilter(ctx context.Context, repo repository.CharacterRepository) (*IDFilter, error) {
	ids, err := repo.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed id filter: %w", err)
	}
	capacity := uint(len(ids) * 2)
	if capacity < defaultFilterCapacity {
		capacity = defaultFilterCapacity
	}
	f := NewIDFilter(capacity, defaultFilterFPRate)
	f.addAll(ids)
	return f, nil
}

// Seed adds every id currently in the store. Call it after the event
// consumer is subscribed so no create falls between the two.
func (f *IDFilter) Seed(ctx context.Context, repo repository.CharacterRepository) error {
	ids, err := repo.IDs(ctx)
	if err != nil {
		return fmt.Errorf("seed id filter: %w", err)
	}
	f.addAll(ids)
	return nil
}

func (f *IDFilter) addAll(ids []int64) {
	for _, id := range ids {
		f.Add(id)
	}
}

func (f *IDFilter) Add(id int64) {
	if f == nil {
		return
	}
	key := idKey(id)
	f.mu.Lock()
	f.bf.Add(key[:])
	f.mu.Unlock()
}

func (f *IDFilter) MayContain(id int64) bool {
	if f == nil {
		return true
	}
	key := idKey(id)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.Test(key[:])
}

func idKey(id int64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b
}
