// Package testutil provides in-memory fakes for the store and the message
// broker so handler and service tests run without infrastructure.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rosterhq/roster/internal/domain"
	"github.com/rosterhq/roster/internal/domain/entity"
	"github.com/rosterhq/roster/internal/domain/repository"
)

// FakeUserRepository is an in-memory UserRepository with the same observable
// behavior as the Postgres implementation: case-insensitive email
// uniqueness, newest-first listing and the domain sentinels. CreatedAt is
// assigned from a strictly increasing clock so list order is deterministic.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[string]entity.User
	clock time.Time

	// FailWith, when set, makes every operation return that error. Use it
	// to simulate the store being unreachable.
	FailWith error
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{
		users: make(map[string]entity.User),
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

var _ repository.UserRepository = (*FakeUserRepository)(nil)

func (f *FakeUserRepository) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *FakeUserRepository) emailTaken(email, exceptID string) bool {
	needle := strings.ToLower(email)
	for id, u := range f.users {
		if id != exceptID && strings.ToLower(u.Email) == needle {
			return true
		}
	}
	return false
}

// Add seeds a user directly, bypassing uniqueness checks. Zero-value ID and
// timestamps are filled in; IsActive is stored as given.
func (f *FakeUserRepository) Add(u entity.User) entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := f.tick()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	f.users[u.ID] = u
	return u
}

func (f *FakeUserRepository) Create(ctx context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	if f.emailTaken(u.Email, "") {
		return domain.ErrEmailTaken
	}
	u.ID = uuid.New().String()
	u.IsActive = true
	now := f.tick()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.ID] = *u
	return nil
}

// project returns a copy with the password hash stripped, mirroring the
// Postgres read projection that never selects the column.
func project(u entity.User) entity.User {
	u.PasswordHash = ""
	return u
}

func (f *FakeUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u = project(u)
	return &u, nil
}

// StoredHash exposes the raw stored password hash for assertions.
func (f *FakeUserRepository) StoredHash(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].PasswordHash
}

func (f *FakeUserRepository) List(ctx context.Context, q repository.ListQuery) ([]entity.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, 0, f.FailWith
	}

	matched := make([]entity.User, 0, len(f.users))
	needle := strings.ToLower(q.Search)
	for _, u := range f.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Name), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		matched = append(matched, project(u))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []entity.User{}, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *FakeUserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Email != nil && f.emailTaken(*patch.Email, id) {
		return nil, domain.ErrEmailTaken
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = f.tick()
	f.users[id] = u
	u = project(u)
	return &u, nil
}

func (f *FakeUserRepository) Delete(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(f.users, id)
	u = project(u)
	return &u, nil
}

func (f *FakeUserRepository) CountByStatus(ctx context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return 0, 0, f.FailWith
	}
	var total, active int64
	for _, u := range f.users {
		total++
		if u.IsActive {
			active++
		}
	}
	return total, active, nil
}

// RecordingPublisher captures published jobs in order.
type RecordingPublisher struct {
	mu   sync.Mutex
	Jobs []any

	// Err, when set, is returned from every publish.
	Err error
}

func (p *RecordingPublisher) PublishJSON(ctx context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Jobs = append(p.Jobs, body)
	return nil
}
