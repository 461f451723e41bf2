// Package memstore is an in-memory stand-in for the PostgreSQL repositories.
// It mirrors their contracts (pgx.ErrNoRows for missing rows,
// repository.ErrEmailTaken for duplicate emails, owner-scoped task access)
// and is used by the service and HTTP tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

type Store struct {
	mu         sync.Mutex
	users      map[int]model.User
	tasks      map[int]model.Task
	nextUserID int
	nextTaskID int

	// Err, when set, is returned by every call.
	Err error
}

func New() *Store {
	return &Store{
		users: make(map[int]model.User),
		tasks: make(map[int]model.Task),
	}
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}

	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *Store) Insert(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.nextTaskID++
	now := time.Now()
	t.ID = s.nextTaskID
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID int) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	tasks := []model.Task{}
	for _, t := range s.tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate.Time) {
			return tasks[i].DueDate.Before(tasks[j].DueDate.Time)
		}
		return tasks[i].ID > tasks[j].ID
	})
	return tasks, nil
}

func (s *Store) FindByID(_ context.Context, id, userID int) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (s *Store) Update(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	existing, ok := s.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return pgx.ErrNoRows
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	s.tasks[t.ID] = *t
	return nil
}

func (s *Store) Delete(_ context.Context, id, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return false, s.Err
	}
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}

// TaskCount reports the number of stored tasks across all owners.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Task returns a stored task regardless of owner.
func (s *Store) Task(id int) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}
