package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type inMemoryStore struct {
	deliveries map[string]Delivery
	mu         sync.RWMutex
}

func NewInMemoryStore() DataAccess {
	return &inMemoryStore{
		deliveries: make(map[string]Delivery, 100),
	}
}

func (s *inMemoryStore) RecordDelivery(d Delivery) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, exists := s.deliveries[d.ID]; exists {
		return "", fmt.Errorf("delivery with ID %s already exists", d.ID)
	}
	d.LastUpdated = time.Now()
	s.deliveries[d.ID] = d
	return d.ID, nil
}

func (s *inMemoryStore) GetDelivery(id string) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.deliveries[id]
	if !exists {
		return nil, fmt.Errorf("delivery with ID %s not found", id)
	}
	return &d, nil
}

func (s *inMemoryStore) RecordAckHandle(id string, handle uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.deliveries[id]
	if !exists {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	d.AckHandle = wrapperspb.UInt64(handle)
	d.LastUpdated = time.Now()
	s.deliveries[id] = d
	return nil
}

func (s *inMemoryStore) MarkAcked(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.deliveries[id]
	if !exists {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	d.Acked = true
	d.LastUpdated = time.Now()
	s.deliveries[id] = d
	return nil
}

func (s *inMemoryStore) ListPending() []Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]Delivery, 0, len(s.deliveries))
	for _, d := range s.deliveries {
		if !d.Acked {
			pending = append(pending, d)
		}
	}
	return pending
}

func (s *inMemoryStore) DeleteDelivery(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deliveries[id]; !exists {
		return fmt.Errorf("delivery with ID %s not found", id)
	}
	delete(s.deliveries, id)
	return nil
}
