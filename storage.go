package rolodex

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("record not found")

// FilterFunc is used for GetAll to filter records that are read from storage
type FilterFunc func(*Record) bool

// Storage defines how the API will interact with a storage backend
type Storage interface {
	// Get a single record by last name
	Get(context.Context, string) (*Record, error)
	// GetAll will return all records that match the provided FilterFunc,
	// sorted by last name
	GetAll(context.Context, FilterFunc) (Records, error)
	// Set will save the provided record under its last name
	Set(context.Context, *Record) error
	// Delete will delete a record by last name
	Delete(context.Context, string) error
}

// MapStorage is the default implementation of the Storage interface that just
// uses a map. The lock is required because the HTTP server runs handlers
// concurrently
type MapStorage struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMapStorage() *MapStorage {
	return &MapStorage{records: map[string]*Record{}}
}

func (m *MapStorage) Get(_ context.Context, lastName string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[lastName]
	if !ok {
		return nil, ErrNotFound
	}

	return record, nil
}

func (m *MapStorage) GetAll(_ context.Context, filter FilterFunc) (Records, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := Records{}
	for _, record := range m.records {
		if filter == nil || filter(record) {
			results = append(results, record)
		}
	}

	sortRecords(results)

	return results, nil
}

func (m *MapStorage) Set(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.GetID()] = record

	return nil
}

func (m *MapStorage) Delete(_ context.Context, lastName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[lastName]
	if !ok {
		return ErrNotFound
	}

	delete(m.records, lastName)

	return nil
}

// sortRecords orders by last name so list responses are deterministic even
// though the backing stores have no inherent order
func sortRecords(records Records) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastName < records[j].LastName
	})
}
