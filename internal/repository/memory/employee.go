// Package memory is an in-process employee store used when no database is
// configured and as the backing store in service tests.
package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/database"
)

type EmployeeStore struct {
	mu         sync.RWMutex
	order      []string
	records    map[string]employee.Employee
	tombstones employee.Tombstones
}

func NewEmployeeStore(seed ...employee.Employee) *EmployeeStore {
	s := &EmployeeStore{
		records:    make(map[string]employee.Employee),
		tombstones: make(employee.Tombstones),
	}
	for _, e := range seed {
		s.put(e)
	}
	return s
}

var (
	_ employee.EmployeeRepository = (*EmployeeStore)(nil)
	_ database.Transactor         = (*EmployeeStore)(nil)
)

func (s *EmployeeStore) put(e employee.Employee) {
	if _, ok := s.records[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.records[e.ID] = e.Clone()
}

// List implements employee.EmployeeRepository.
func (s *EmployeeStore) List(ctx context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]employee.Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out, nil
}

// GetByID implements employee.EmployeeRepository.
func (s *EmployeeStore) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

// UpsertMany implements employee.EmployeeRepository.
func (s *EmployeeStore) UpsertMany(ctx context.Context, employees []employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range employees {
		s.put(e)
	}
	return nil
}

// Delete implements employee.EmployeeRepository.
func (s *EmployeeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(s.records, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListTombstones implements employee.EmployeeRepository.
func (s *EmployeeStore) ListTombstones(ctx context.Context) (employee.Tombstones, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(employee.Tombstones, len(s.tombstones))
	for id := range s.tombstones {
		out[id] = struct{}{}
	}
	return out, nil
}

// AddTombstone implements employee.EmployeeRepository.
func (s *EmployeeStore) AddTombstone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tombstones[id] = struct{}{}
	return nil
}

// RemoveTombstones implements employee.EmployeeRepository.
func (s *EmployeeStore) RemoveTombstones(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.tombstones, id)
	}
	return nil
}

// WithinTransaction implements database.Transactor. State is snapshotted and
// restored when fn fails.
func (s *EmployeeStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	order := append([]string(nil), s.order...)
	records := make(map[string]employee.Employee, len(s.records))
	for id, e := range s.records {
		records[id] = e
	}
	tombstones := make(employee.Tombstones, len(s.tombstones))
	for id := range s.tombstones {
		tombstones[id] = struct{}{}
	}
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.order, s.records, s.tombstones = order, records, tombstones
		s.mu.Unlock()
		return err
	}
	return nil
}
