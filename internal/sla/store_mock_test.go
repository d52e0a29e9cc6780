package sla

import (
	"context"
	"sync"

	"sla-monitor/internal/models"
)

type taskUpdateCall struct {
	id  int64
	upd models.TaskUpdate
}

// mockStore is an in-memory test double for Store with per-call error
// injection.
type mockStore struct {
	mu sync.Mutex

	tasks    []models.TaskSnapshot
	fetchErr error

	violations         []models.Violation
	insertViolationErr error

	notifications []models.QueuedNotification
	notifyErrFor  map[string]error

	actionLogs   []models.ActionLogEntry
	actionLogErr error

	updates   []taskUpdateCall
	updateErr error

	usersByRole  map[models.Role][]models.User
	findUsersErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		notifyErrFor: make(map[string]error),
		usersByRole:  make(map[models.Role][]models.User),
	}
}

func (m *mockStore) FetchActiveTasks(context.Context) ([]models.TaskSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]models.TaskSnapshot, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *mockStore) InsertViolation(_ context.Context, v models.Violation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertViolationErr != nil {
		return m.insertViolationErr
	}
	m.violations = append(m.violations, v)
	return nil
}

func (m *mockStore) InsertNotification(_ context.Context, n models.QueuedNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.notifyErrFor[n.Recipient]; ok {
		return err
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockStore) InsertActionLog(_ context.Context, e models.ActionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actionLogErr != nil {
		return m.actionLogErr
	}
	m.actionLogs = append(m.actionLogs, e)
	return nil
}

func (m *mockStore) UpdateTask(_ context.Context, id int64, upd models.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, taskUpdateCall{id: id, upd: upd})
	return nil
}

func (m *mockStore) FindUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findUsersErr != nil {
		return nil, m.findUsersErr
	}
	return m.usersByRole[role], nil
}
