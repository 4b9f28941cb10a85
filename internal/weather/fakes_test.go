package weather

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type fakeProvider struct {
	mu      sync.Mutex
	queries []Query

	current     Payload
	forecast    Payload
	currentErr  error
	forecastErr error
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) record(q Query) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, q)
}

func (p *fakeProvider) calls() []Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Query(nil), p.queries...)
}

func (p *fakeProvider) Current(ctx context.Context, q Query) (Payload, error) {
	p.record(q)
	if p.currentErr != nil {
		return nil, p.currentErr
	}
	return clonePayload(p.current), nil
}

func (p *fakeProvider) Forecast(ctx context.Context, q Query) (Payload, error) {
	p.record(q)
	if p.forecastErr != nil {
		return nil, p.forecastErr
	}
	return clonePayload(p.forecast), nil
}

func clonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type fakeGeocoder struct {
	mu      sync.Mutex
	forward []string
	reverse [][2]float64
	places  []Place
	err     error
}

func (g *fakeGeocoder) Forward(ctx context.Context, text string) ([]Place, error) {
	g.mu.Lock()
	g.forward = append(g.forward, text)
	g.mu.Unlock()
	return g.places, g.err
}

func (g *fakeGeocoder) Reverse(ctx context.Context, lat, lon float64) ([]Place, error) {
	g.mu.Lock()
	g.reverse = append(g.reverse, [2]float64{lat, lon})
	g.mu.Unlock()
	return g.places, g.err
}

// memStore is an in-memory Store used by service tests.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]WeatherQuery
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int64]WeatherQuery)}
}

func (s *memStore) Insert(ctx context.Context, q WeatherQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	q.ID = s.nextID
	q.CreatedAt = time.Now().UTC()
	s.rows[q.ID] = q
	return q.ID, nil
}

func (s *memStore) List(ctx context.Context) ([]WeatherQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WeatherQuery, 0, len(s.rows))
	for _, q := range s.rows {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (WeatherQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.rows[id]
	if !ok {
		return WeatherQuery{}, fmt.Errorf("query %d: %w", id, ErrNotFound)
	}
	return q, nil
}

func (s *memStore) Update(ctx context.Context, id int64, q WeatherQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rows[id]
	if !ok {
		return fmt.Errorf("query %d: %w", id, ErrNotFound)
	}
	q.ID = id
	q.CreatedAt = old.CreatedAt
	s.rows[id] = q
	return nil
}

func (s *memStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("query %d: %w", id, ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}
