package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"user-accounts-backend/apperror"
)

// memoryStore is an in-memory Store that keeps the same guarantees as MongoStore:
// unique emails, creation-order ids and atomic writes.
type memoryStore struct {
	mu    sync.Mutex
	seq   int
	users []User

	failInsert error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (m *memoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (m *memoryStore) matching(f StoreFilter) []User {
	var out []User
	search := strings.ToLower(f.Search)
	for _, u := range m.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Username), search) && !strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (m *memoryStore) Find(ctx context.Context, q Query) ([]User, error) {
	if q.Skip < 0 {
		return nil, fmt.Errorf("negative skip %d", q.Skip)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.matching(q.Filter)
	key := func(u User) string {
		switch q.SortField {
		case "username":
			return u.Username
		case "email":
			return u.Email
		case "address":
			return u.Address
		case "role":
			return string(u.Role)
		case "created_at":
			return u.CreatedAt.Format("20060102150405.000000000")
		}
		return ""
	}
	sort.SliceStable(list, func(i, j int) bool {
		ki, kj := key(list[i]), key(list[j])
		if ki == kj {
			ki, kj = list[i].ID, list[j].ID
		}
		if q.Descending {
			return ki > kj
		}
		return ki < kj
	})

	out := make([]User, 0)
	for i := int(q.Skip); i < len(list); i++ {
		if q.Limit > 0 && int64(len(out)) >= q.Limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}

func (m *memoryStore) Count(ctx context.Context, f StoreFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(f))), nil
}

func (m *memoryStore) Insert(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert != nil {
		return m.failInsert
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperror.ErrDuplicateEmail
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("%024x", m.seq)
	m.users = append(m.users, *u)
	return nil
}

func (m *memoryStore) Save(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, existing := range m.users {
		if existing.ID == u.ID {
			idx = i
			continue
		}
		if existing.Email == u.Email {
			return apperror.ErrDuplicateEmail
		}
	}
	if idx < 0 {
		return apperror.ErrUserNotFound
	}
	m.users[idx] = *u
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return apperror.ErrUserNotFound
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
