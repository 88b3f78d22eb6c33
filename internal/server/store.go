package server

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"recordsrv/internal/shared"
)

// ErrNotFound is returned when an id matches no row. Update and Delete use
// it for zero-row mutations instead of reporting success.
var ErrNotFound = errors.New("record not found")

type Record struct {
	ID   int64
	Name string
}

func (r Record) View() shared.RecordView {
	return shared.RecordView{ID: strconv.FormatInt(r.ID, 10), Name: r.Name}
}

func Views(recs []Record) []shared.RecordView {
	out := make([]shared.RecordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.View())
	}
	return out
}

// Store is everything the request path needs from persistence.
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, name string) (int64, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

// MemoryStore keeps records in process. Ids are never reused, matching the
// AUTOINCREMENT table.
type MemoryStore struct {
	mu      sync.Mutex
	lastID  int64
	records map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[int64]string{}}
}

func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for id, name := range s.records {
		out = append(out, Record{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Name: name}, nil
}

func (s *MemoryStore) Create(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.records[s.lastID] = name
	return s.lastID, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	s.records[id] = name
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}
