package acl

import "sync"

// MemoryStore keeps access lists in memory, one map of user to role per
// document.
type MemoryStore struct {
	mu    sync.RWMutex
	lists map[string]map[string]Role
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string]map[string]Role)}
}

func (m *MemoryStore) Grant(docID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, ok := m.lists[docID]
	if !ok {
		list = make(map[string]Role)
		m.lists[docID] = list
	}

	list[userID] = role

	return nil
}

func (m *MemoryStore) Revoke(docID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.lists[docID]
	if _, ok := list[userID]; !ok {
		return ErrPermissionNotFound
	}

	delete(list, userID)

	if len(list) == 0 {
		delete(m.lists, docID)
	}

	return nil
}

func (m *MemoryStore) RevokeAll(docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.lists, docID)

	return nil
}

func (m *MemoryStore) GetRole(docID, userID string) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.lists[docID][userID]
	if !ok {
		return 0, ErrPermissionNotFound
	}

	return role, nil
}

func (m *MemoryStore) ListPermissions(docID string) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.lists[docID]
	perms := make([]Permission, 0, len(list))

	for userID, role := range list {
		perms = append(perms, Permission{DocID: docID, UserID: userID, Role: role})
	}

	sortByUser(perms)

	return perms, nil
}

var _ Store = (*MemoryStore)(nil)
