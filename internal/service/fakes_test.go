package service

import (
	"context"
	"errors"
	"sync"

	"jotha-be/internal/entity"
	"jotha-be/internal/repository/contract"
	"jotha-be/internal/repository/specification"
	"jotha-be/internal/repository/unitofwork"
	"jotha-be/pkg/events"
)

// passageTable is an in-memory passages table shared by every unit of work.
type passageTable struct {
	mu        sync.Mutex
	rows      map[string][]*entity.Passage
	createErr error
	commits   int
}

func newPassageTable() *passageTable {
	return &passageTable{rows: map[string][]*entity.Passage{}}
}

func (t *passageTable) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{table: t}
}

func (t *passageTable) corpus(name string) []*entity.Passage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows[name]
}

type fakeUnitOfWork struct {
	table   *passageTable
	staged  map[string][]*entity.Passage
	deleted map[string]bool
	active  bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.active = true
	u.staged = map[string][]*entity.Passage{}
	u.deleted = map[string]bool{}
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.active {
		return errors.New("no transaction to commit")
	}
	u.table.mu.Lock()
	defer u.table.mu.Unlock()
	for corpus := range u.deleted {
		delete(u.table.rows, corpus)
	}
	for corpus, rows := range u.staged {
		u.table.rows[corpus] = append(u.table.rows[corpus], rows...)
	}
	u.table.commits++
	u.active = false
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.active {
		return errors.New("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *fakeUnitOfWork) PassageRepository() contract.PassageRepository {
	return &fakePassageRepository{uow: u}
}

func (u *fakeUnitOfWork) UnansweredQuestionRepository() contract.UnansweredQuestionRepository {
	return nil
}

type fakePassageRepository struct {
	contract.PassageRepository
	uow *fakeUnitOfWork
}

func (r *fakePassageRepository) DeleteByCorpus(ctx context.Context, corpus string) error {
	r.uow.deleted[corpus] = true
	return nil
}

func (r *fakePassageRepository) CreateBulk(ctx context.Context, passages []*entity.Passage) error {
	if r.uow.table.createErr != nil {
		return r.uow.table.createErr
	}
	for _, p := range passages {
		r.uow.staged[p.Corpus] = append(r.uow.staged[p.Corpus], p)
	}
	return nil
}

func (r *fakePassageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakeEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fakeMailer struct {
	subjects []string
	bodies   []string
	err      error
}

func (m *fakeMailer) SendAlert(subject, body string) error {
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return m.err
}
