package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/blog-api/internal/models"
)

// MemoryStore is an in-process user and post store for development and tests.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	posts map[string]*memPost
	seq   int64
	now   func() time.Time
}

type memPost struct {
	post models.Post
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		posts: make(map[string]*memPost),
		now:   time.Now,
	}
}

// --- users ---

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, models.ErrDuplicate
		}
	}
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = m.now().UTC()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if upd.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, models.ErrDuplicate
			}
		}
	}
	apply(&u.Name, upd.Name)
	apply(&u.Email, upd.Email)
	apply(&u.Password, upd.Password)
	apply(&u.PhoneNumber, upd.PhoneNumber)
	apply(&u.Address, upd.Address)
	out := *u
	return &out, nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(m.users, id)
	return u, nil
}

// --- posts ---

func (m *MemoryStore) CreatePost(ctx context.Context, p *models.Post) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	created := *p
	created.ID = uuid.NewString()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = m.now().UTC()
	}
	m.posts[created.ID] = &memPost{post: created, seq: m.seq}
	return &created, nil
}

func (m *MemoryStore) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := p.post
	return &out, nil
}

func (m *MemoryStore) UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	apply(&p.post.Title, upd.Title)
	apply(&p.post.Content, upd.Content)
	apply(&p.post.CoverImageKey, upd.CoverImageKey)
	out := p.post
	return &out, nil
}

func (m *MemoryStore) DeletePost(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(m.posts, id)
	out := p.post
	return &out, nil
}

// ListLatestPosts orders by creation time, newest first; posts created in the
// same instant keep reverse insertion order.
func (m *MemoryStore) ListLatestPosts(ctx context.Context, skip, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*memPost, 0, len(m.posts))
	for _, p := range m.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	if skip >= len(all) {
		return []models.Post{}, nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]models.Post, 0, len(all))
	for _, p := range all {
		out = append(out, p.post)
	}
	return out, nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
