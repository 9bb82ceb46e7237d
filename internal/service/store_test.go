package service

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yizeng/gab/gin/gorm/event-registration/internal/domain"
)

// memStore is an in-memory EventRepository and RegistrationRepository with the
// same guarantees as the Postgres store: unique (event, user) registrations and
// an atomic participant counter.
type memStore struct {
	mu     sync.Mutex
	clock  time.Time
	events map[string]domain.Event
	regs   []domain.Registration
}

func newMemStore() *memStore {
	return &memStore{
		clock:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		events: make(map[string]domain.Event),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event.ID = uuid.NewString()
	event.CreatedAt = m.tick()
	event.UpdatedAt = event.CreatedAt
	m.events[event.ID] = event

	return event, nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}

	return event, nil
}

func (m *memStore) FindByStatuses(ctx context.Context, statuses []domain.EventStatus) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]domain.Event, 0)
	for _, e := range m.events {
		if slices.Contains(statuses, e.Status) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })

	return result, nil
}

func (m *memStore) FindAll(ctx context.Context) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]domain.Event, 0, len(m.events))
	for _, e := range m.events {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })

	return result, nil
}

func (m *memStore) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.events[event.ID]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	event.CreatedBy = current.CreatedBy
	event.ParticipantCount = current.ParticipantCount
	event.CreatedAt = current.CreatedAt
	event.UpdatedAt = m.tick()
	m.events[event.ID] = event

	return event, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(m.events, id)

	return nil
}

func (m *memStore) RecountParticipants(ctx context.Context, id string) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}
	event.ParticipantCount = 0
	for _, r := range m.regs {
		if r.EventID == id {
			event.ParticipantCount++
		}
	}
	m.events[id] = event

	return event, nil
}

func (m *memStore) registrations() *memRegistrations {
	return &memRegistrations{m}
}

// memRegistrations exposes the registration half of memStore; the method sets
// of the two repositories overlap.
type memRegistrations struct {
	*memStore
}

func (r *memRegistrations) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[reg.EventID]
	if !ok {
		return domain.Registration{}, ErrEventNotFound
	}
	for _, existing := range r.regs {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return domain.Registration{}, ErrAlreadyRegistered
		}
	}

	reg.ID = uuid.NewString()
	reg.CreatedAt = r.tick()
	r.regs = append(r.regs, reg)
	event.ParticipantCount++
	r.events[reg.EventID] = event

	return reg, nil
}

func (r *memRegistrations) FindByEvent(ctx context.Context, eventID string) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.Registration, 0)
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			result = append(result, reg)
		}
	}

	return result, nil
}

func (r *memRegistrations) FindByEventAndUser(ctx context.Context, eventID, userID string) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, nil
		}
	}

	return domain.Registration{}, ErrRegistrationNotFound
}

func (r *memRegistrations) FindByID(ctx context.Context, id string) (domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.regs {
		if reg.ID == id {
			return reg, nil
		}
	}

	return domain.Registration{}, ErrRegistrationNotFound
}

func (r *memRegistrations) count(eventID, userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			n++
		}
	}

	return n
}
