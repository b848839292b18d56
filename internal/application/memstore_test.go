package application

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/krisztak/kidevent/internal/domain/event"
	"github.com/krisztak/kidevent/internal/domain/registration"
	"github.com/krisztak/kidevent/internal/domain/transaction"
	"github.com/krisztak/kidevent/internal/domain/user"
)

// memStore はシナリオテスト用のインメモリストア
// トランザクションは txMu で直列化し、コミットまで変更を memTx に保持する
type memStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	events   map[string]event.Event
	regs     []registration.Registration
	children map[string]user.Child
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[string]event.Event),
		children: make(map[string]user.Child),
	}
}

type memTx struct {
	s       *memStore
	events  map[string]event.Event
	newRegs []registration.Registration
	done    bool
}

func (s *memStore) Begin(ctx context.Context) (transaction.Tx, error) {
	s.txMu.Lock()
	return &memTx{s: s, events: make(map[string]event.Event)}, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.s.mu.Lock()
	for id, e := range t.events {
		t.s.events[id] = e
	}
	t.s.regs = append(t.s.regs, t.newRegs...)
	t.s.mu.Unlock()
	t.done = true
	t.s.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.txMu.Unlock()
	return nil
}

func (t *memTx) event(id string) (event.Event, bool) {
	if e, ok := t.events[id]; ok {
		return e, true
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	e, ok := t.s.events[id]
	return e, ok
}

func (t *memTx) registrations() []registration.Registration {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	out := make([]registration.Registration, 0, len(t.s.regs)+len(t.newRegs))
	out = append(out, t.s.regs...)
	return append(out, t.newRegs...)
}

// --- event.Repository ---

type memEventRepo struct{ s *memStore }

func (r memEventRepo) Create(ctx context.Context, e *event.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.NewString()
	r.s.events[e.ID] = *e
	return nil
}

func (r memEventRepo) GetByID(ctx context.Context, id string) (*event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return &e, nil
}

func (r memEventRepo) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	e, ok := tx.(*memTx).event(id)
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return &e, nil
}

func (r memEventRepo) List(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*event.Event
	for _, e := range r.s.events {
		if (e.Deleted && !filter.IncludeDeleted) || (e.Editing && !filter.IncludeEditing) {
			continue
		}
		e := e
		all = append(all, &e)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartAt.Equal(all[j].StartAt) {
			return all[i].StartAt.Before(all[j].StartAt)
		}
		return all[i].ID < all[j].ID
	})
	if filter.Offset >= len(all) {
		return []*event.Event{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, nil
}

func (r memEventRepo) Update(ctx context.Context, tx transaction.Tx, e *event.Event) error {
	t := tx.(*memTx)
	if _, ok := t.event(e.ID); !ok {
		return event.ErrEventNotFound
	}
	t.events[e.ID] = *e
	return nil
}

func (r memEventRepo) AddRemainingSeats(ctx context.Context, tx transaction.Tx, id string, delta int) error {
	t := tx.(*memTx)
	e, ok := t.event(id)
	if !ok {
		return event.ErrEventNotFound
	}
	next := e.RemainingSeats + delta
	if next < 0 || next > e.MaxSeats {
		if delta < 0 {
			return event.ErrEventFull
		}
		return event.ErrInvalidRemainingSeats
	}
	e.RemainingSeats = next
	t.events[id] = e
	return nil
}

func (r memEventRepo) UpdateStatus(ctx context.Context, id string, status event.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return event.ErrEventNotFound
	}
	e.Status = status
	r.s.events[id] = e
	return nil
}

// --- registration.Repository ---

type memRegistrationRepo struct{ s *memStore }

func (r memRegistrationRepo) Create(ctx context.Context, tx transaction.Tx, reg *registration.Registration) error {
	t := tx.(*memTx)
	for _, existing := range t.registrations() {
		if existing.EventID != reg.EventID {
			continue
		}
		switch {
		case reg.ChildID != nil && existing.ChildID != nil && *existing.ChildID == *reg.ChildID:
			return registration.ErrAlreadyRegistered
		case reg.ChildID == nil && existing.ChildID == nil && existing.ParentID == reg.ParentID:
			return registration.ErrAlreadyRegistered
		}
	}
	reg.ID = uuid.NewString()
	t.newRegs = append(t.newRegs, *reg)
	return nil
}

func (r memRegistrationRepo) ExistsForChild(ctx context.Context, tx transaction.Tx, eventID, childID string) (bool, error) {
	for _, reg := range tx.(*memTx).registrations() {
		if reg.EventID == eventID && reg.ChildID != nil && *reg.ChildID == childID {
			return true, nil
		}
	}
	return false, nil
}

func (r memRegistrationRepo) ExistsForParent(ctx context.Context, tx transaction.Tx, eventID, parentID string) (bool, error) {
	for _, reg := range tx.(*memTx).registrations() {
		if reg.EventID == eventID && reg.ChildID == nil && reg.ParentID == parentID {
			return true, nil
		}
	}
	return false, nil
}

func (r memRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	return r.filter(func(reg registration.Registration) bool { return reg.EventID == eventID }), nil
}

func (r memRegistrationRepo) ListByParentID(ctx context.Context, parentID string, limit, offset int) ([]*registration.Registration, error) {
	all := r.filter(func(reg registration.Registration) bool { return reg.ParentID == parentID })
	if offset >= len(all) {
		return []*registration.Registration{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memRegistrationRepo) filter(match func(registration.Registration) bool) []*registration.Registration {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*registration.Registration{}
	for _, reg := range r.s.regs {
		if match(reg) {
			reg := reg
			out = append(out, &reg)
		}
	}
	return out
}

// --- user.ChildRepository ---

type memChildRepo struct{ s *memStore }

func (r memChildRepo) Create(ctx context.Context, c *user.Child) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = uuid.NewString()
	r.s.children[c.ID] = *c
	return nil
}

func (r memChildRepo) GetByID(ctx context.Context, id string) (*user.Child, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.children[id]
	if !ok {
		return nil, user.ErrChildNotFound
	}
	return &c, nil
}

func (r memChildRepo) ListByParentID(ctx context.Context, parentID string) ([]*user.Child, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*user.Child{}
	for _, c := range r.s.children {
		if c.ParentID == parentID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

var (
	_ event.Repository        = memEventRepo{}
	_ registration.Repository = memRegistrationRepo{}
	_ user.ChildRepository    = memChildRepo{}
	_ transaction.Manager     = (*memStore)(nil)
)
