package access

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-simple-crud/config"
	"github.com/FACorreiaa/go-simple-crud/internal/api/auth"
	"github.com/FACorreiaa/go-simple-crud/internal/api/credential"
	"github.com/FACorreiaa/go-simple-crud/internal/api/post"
	"github.com/FACorreiaa/go-simple-crud/internal/api/user"
	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// memoryUserRepo mirrors the users table: serial ids and a unique email.
type memoryUserRepo struct {
	mu    sync.Mutex
	users []types.User
}

func (m *memoryUserRepo) CreateUser(_ context.Context, userName, email, passwordHash string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, types.ErrDuplicateEmail
		}
	}
	u := types.User{ID: int64(len(m.users) + 1), UserName: userName, Email: email, PasswordHash: passwordHash}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memoryUserRepo) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *memoryUserRepo) GetUserByID(_ context.Context, id int64) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.users)) {
		return nil, types.ErrNotFound
	}
	u := m.users[id-1]
	return &u, nil
}

func (m *memoryUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, email)
	return err == nil, nil
}

// memoryPostRepo mirrors the posts table, deleted rows included.
type memoryPostRepo struct {
	mu    sync.Mutex
	posts []types.Post
}

func (m *memoryPostRepo) CreatePost(_ context.Context, ownerID int64, title, content string) (*types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	p := types.Post{ID: int64(len(m.posts) + 1), OwnerID: ownerID, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}
	m.posts = append(m.posts, p)
	return &p, nil
}

// visible returns the index of the visible post with id, or -1. Callers hold mu.
func (m *memoryPostRepo) visible(id int64) int {
	if id < 1 || id > int64(len(m.posts)) || m.posts[id-1].DeletedAt != nil {
		return -1
	}
	return int(id - 1)
}

func (m *memoryPostRepo) GetVisiblePost(_ context.Context, id int64) (*types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.visible(id)
	if i < 0 {
		return nil, types.ErrNotFound
	}
	p := m.posts[i]
	return &p, nil
}

func (m *memoryPostRepo) ListVisiblePosts(_ context.Context) ([]types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]types.Post, 0, len(m.posts))
	for _, p := range m.posts {
		if p.DeletedAt == nil {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (m *memoryPostRepo) UpdatePost(_ context.Context, id int64, title, content string) (*types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.visible(id)
	if i < 0 {
		return nil, types.ErrNotFound
	}
	m.posts[i].Title = title
	m.posts[i].Content = content
	m.posts[i].UpdatedAt = time.Now()
	p := m.posts[i]
	return &p, nil
}

func (m *memoryPostRepo) SoftDeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.visible(id)
	if i < 0 {
		return types.ErrNotFound
	}
	now := time.Now()
	m.posts[i].DeletedAt = &now
	return nil
}

func (m *memoryPostRepo) GetPostIncludingDeleted(_ context.Context, id int64) (*types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.posts)) {
		return nil, types.ErrNotFound
	}
	p := m.posts[id-1]
	return &p, nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]types.Session
}

func (m *memorySessionStore) CreateSession(_ context.Context, s types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memorySessionStore) GetSession(_ context.Context, id uuid.UUID) (*types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &s, nil
}

func (m *memorySessionStore) TouchSession(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.LastSeenAt = at
		m.sessions[id] = s
	}
	return nil
}

func (m *memorySessionStore) RevokeSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

var testSessionConfig = config.SessionConfig{
	CookieName:        "SESSION",
	HashKey:           "test-hash-key-0123456789abcdefghijklmnopqrstuvwxyz",
	BlockKey:          "test-block-key-0123456789abcdefg",
	MaxLifetime:       time.Hour,
	IdleTimeout:       30 * time.Minute,
	PrincipalCacheTTL: time.Minute,
}

// testStack wires the real services over in-memory storage.
type testStack struct {
	controller *Controller
	posts      *memoryPostRepo
	cookies    *auth.CookieManager
}

func newTestStack() *testStack {
	logger := slog.Default()
	hasher := credential.NewHasher(bcrypt.MinCost)
	postRepo := &memoryPostRepo{}

	users := user.NewUserService(&memoryUserRepo{}, hasher, logger)
	sessions := &memorySessionStore{sessions: make(map[uuid.UUID]types.Session)}
	authService := auth.NewAuthService(users, hasher, sessions, testSessionConfig, logger)
	posts := post.NewPostService(postRepo, logger)

	return &testStack{
		controller: NewController(users, authService, posts, logger),
		posts:      postRepo,
		cookies:    auth.NewCookieManager(testSessionConfig),
	}
}
