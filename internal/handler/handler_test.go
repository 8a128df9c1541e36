package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/task-tracker/backend/internal/config"
	"github.com/task-tracker/backend/internal/model"
	"github.com/task-tracker/backend/internal/service"
)

// memStore backs every service store interface for HTTP-level tests.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	refresh map[string]*model.RefreshToken
	pending map[string]*model.PendingUser
	tasks   map[uuid.UUID]*model.Task
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*model.User{},
		refresh: map[string]*model.RefreshToken{},
		pending: map[string]*model.PendingUser{},
		tasks:   map[uuid.UUID]*model.Task{},
	}
}

func (m *memStore) CreateUser(_ context.Context, name, email, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	}
	user := &model.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash}
	m.users[email] = user
	return user, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[email]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) GetUserByID(_ context.Context, userID uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == userID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) InsertRefreshToken(_ context.Context, userID uuid.UUID, family, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[tokenHash] = &model.RefreshToken{
		ID: uuid.New(), UserID: userID, Family: family,
		TokenHash: tokenHash, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	return nil
}

func (m *memStore) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.refresh[tokenHash]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) MarkTokenUsed(_ context.Context, tokenID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.refresh {
		if token.ID == tokenID && !token.IsUsed {
			token.IsUsed = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RevokeFamily(_ context.Context, family string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, token := range m.refresh {
		if token.Family == family {
			delete(m.refresh, hash)
		}
	}
	return nil
}

func (m *memStore) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, token := range m.refresh {
		if token.UserID == userID {
			delete(m.refresh, hash)
		}
	}
	return nil
}

func (m *memStore) UpsertPendingUser(_ context.Context, name, email, passwordHash, tokenHash string, expiresAt time.Time) (*model.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := &model.PendingUser{
		ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash,
		TokenHash: tokenHash, ExpiresAt: expiresAt, CreatedAt: time.Now(),
	}
	m.pending[email] = pending
	return pending, nil
}

func (m *memStore) GetPendingUserByTokenHash(_ context.Context, tokenHash string) (*model.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pending := range m.pending {
		if pending.TokenHash == tokenHash && pending.ExpiresAt.After(time.Now()) {
			copied := *pending
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) UpdatePendingUserToken(_ context.Context, email, tokenHash string, expiresAt time.Time) (*model.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, ok := m.pending[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	pending.TokenHash = tokenHash
	pending.ExpiresAt = expiresAt
	copied := *pending
	return &copied, nil
}

func (m *memStore) DeletePendingUser(_ context.Context, pendingID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, pending := range m.pending {
		if pending.ID == pendingID {
			delete(m.pending, email)
		}
	}
	return nil
}

func (m *memStore) PromotePendingUser(ctx context.Context, pending *model.PendingUser) (*model.User, error) {
	user, err := m.CreateUser(ctx, pending.Name, pending.Email, pending.PasswordHash)
	if err != nil {
		return nil, err
	}
	return user, m.DeletePendingUser(ctx, pending.ID)
}

func (m *memStore) CreateTask(_ context.Context, task *model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = uuid.New()
	task.CreatedAt = time.Now()
	m.tasks[task.ID] = task
	copied := *task
	return &copied, nil
}

func (m *memStore) GetTasksByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := []model.Task{}
	for _, task := range m.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (m *memStore) GetTaskByID(_ context.Context, taskID, ownerID uuid.UUID) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.tasks[taskID]; ok && task.OwnerID == ownerID {
		copied := *task
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memStore) UpdateTask(_ context.Context, task *model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[task.ID]
	if !ok || stored.OwnerID != task.OwnerID {
		return nil, pgx.ErrNoRows
	}
	copied := *task
	m.tasks[task.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memStore) DeleteTask(_ context.Context, taskID, ownerID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.tasks[taskID]; ok && task.OwnerID == ownerID {
		delete(m.tasks, taskID)
		return true, nil
	}
	return false, nil
}

type recordingMailer struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recordingMailer) SendVerificationEmail(_ context.Context, _, rawToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, rawToken)
	return nil
}

func (r *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) == 0 {
		t.Fatalf("no verification email sent")
	}
	return r.tokens[len(r.tokens)-1]
}

type testServer struct {
	router *gin.Engine
	store  *memStore
	mailer *recordingMailer
	tokens *service.TokenManager
}

// newTestServer wires the full route table over in-memory storage.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := service.NewTokenManager(config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTTL:       "15m",
		RefreshTTL:      "168h",
		VerificationTTL: "24h",
		ReaperInterval:  "1h",
	})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	store := newMemStore()
	mailer := &recordingMailer{}
	authService := service.NewAuthService(tokens, store, store, store, mailer)
	userService := service.NewUserService(store, authService)
	taskService := service.NewTaskService(store)

	authHandler := NewAuthHandler(authService, userService, "http://localhost:3000/?verified=true")
	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService)

	router := gin.New()
	router.GET("/ping", Ping)
	router.POST("/users/register", userHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)
	router.POST("/auth/logout", authHandler.Logout)
	router.GET("/auth/verify-email", authHandler.VerifyEmail)
	router.POST("/auth/resend-verification", authHandler.ResendVerification)
	router.GET("/auth/status", authHandler.VerificationStatus)

	tasks := router.Group("/tasks")
	tasks.Use(AuthMiddleware(tokens))
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	return &testServer{router: router, store: store, mailer: mailer, tokens: tokens}
}

func (ts *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// register + verify + login, returning the token pair.
func (ts *testServer) signUpAndLogin(t *testing.T, email, password string) model.TokenPair {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/users/register", "", model.RegisterRequest{
		Name: "Test User", Email: email, Password: password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/auth/verify-email?token="+ts.mailer.lastToken(t), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify-email: status %d", w.Code)
	}

	w = ts.do(t, http.MethodPost, "/auth/login", "", model.LoginRequest{Email: email, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}

	var pair model.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode token pair: %v", err)
	}
	return pair
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("pong")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
