package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/touradmin/internal/domain"
	"github.com/simp-lee/touradmin/internal/pkg"
)

// mockService is an in-memory domain.UserService.
type mockService struct {
	users     map[uint]*domain.User
	nextID    uint
	createErr error
	listErr   error
}

func newMockService() *mockService {
	return &mockService{users: make(map[uint]*domain.User), nextID: 1}
}

func (m *mockService) CreateUser(_ context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	u := &domain.User{BaseModel: domain.BaseModel{ID: m.nextID}, Name: in.Name, Email: in.Email, Role: in.Role}
	m.users[u.ID] = u
	m.nextID++
	return u, nil
}

func (m *mockService) GetUser(_ context.Context, id uint) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockService) ListUsers(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	items := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, *u)
	}
	return &domain.PageResult[domain.User]{Items: items, Total: int64(len(items)), Page: req.Page, PageSize: req.PageSize}, nil
}

func (m *mockService) UpdateUser(_ context.Context, id uint, in domain.UpdateUserInput) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Name, u.Email = in.Name, in.Email
	return u, nil
}

func (m *mockService) DeleteUser(_ context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockService) EnsureAdmin(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	return m.CreateUser(ctx, in)
}

// setupAPIRouter creates a gin engine with REST API routes for handler testing.
func setupAPIRouter(h *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api/v1/users")
	api.POST("", h.Create)
	api.GET("", h.List)
	api.GET("/:id", h.Get)
	api.PUT("/:id", h.Update)
	api.DELETE("/:id", h.Delete)

	return r
}

func TestUserHandler_Create(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"Alice","email":"alice@example.com","password":"s3cret-pass","role":"editor"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusCreated {
		t.Errorf("expected response code 201, got %d", resp.Code)
	}
	if resp.Message != "success" {
		t.Errorf("expected message 'success', got %q", resp.Message)
	}
}

func TestUserHandler_Create_ValidationError(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	// Missing required fields
	body := `{"name":"","email":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected code 400, got %d", resp.Code)
	}
	if resp.Message != "validation error" {
		t.Errorf("expected message 'validation error', got %q", resp.Message)
	}
	if resp.Errors == nil {
		t.Fatal("expected errors map to be non-nil")
	}
	if _, ok := resp.Errors["name"]; !ok {
		t.Error("expected 'name' field in errors map")
	}
	if _, ok := resp.Errors["email"]; !ok {
		t.Error("expected 'email' field in errors map")
	}
	if _, ok := resp.Errors["password"]; !ok {
		t.Error("expected 'password' field in errors map")
	}
}

func TestUserHandler_Create_UnknownRole(t *testing.T) {
	r := setupAPIRouter(NewUserHandler(newMockService()))

	body := `{"name":"Alice","email":"alice@example.com","password":"s3cret-pass","role":"root"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUserHandler_Create_ServiceError(t *testing.T) {
	svc := newMockService()
	svc.createErr = domain.NewAppError(domain.CodeAlreadyExists, "email already exists", nil)
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"Alice","email":"alice@example.com","password":"s3cret-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestUserHandler_Get(t *testing.T) {
	svc := newMockService()
	// Seed a user
	svc.users[1] = &domain.User{
		BaseModel: domain.BaseModel{ID: 1},
		Name:      "Alice",
		Email:     "alice@example.com",
	}
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Errorf("expected response code 200, got %d", resp.Code)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUserHandler_List(t *testing.T) {
	svc := newMockService()
	svc.users[1] = &domain.User{
		BaseModel: domain.BaseModel{ID: 1},
		Name:      "Alice",
		Email:     "alice@example.com",
	}
	svc.users[2] = &domain.User{
		BaseModel: domain.BaseModel{ID: 2},
		Name:      "Bob",
		Email:     "bob@example.com",
	}
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Code != http.StatusOK {
		t.Errorf("expected response code 200, got %d", resp.Code)
	}
}

func TestUserHandler_List_PaginationParams(t *testing.T) {
	svc := newMockService()
	for i := uint(1); i <= 10; i++ {
		svc.users[i] = &domain.User{
			BaseModel: domain.BaseModel{ID: i},
			Name:      "User",
			Email:     "user@example.com",
		}
	}
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=2&page_size=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected Data to be a map, got %T", resp.Data)
	}
	if page, _ := data["page"].(float64); int(page) != 2 {
		t.Errorf("expected page=2, got %v", data["page"])
	}
	if pageSize, _ := data["page_size"].(float64); int(pageSize) != 5 {
		t.Errorf("expected page_size=5, got %v", data["page_size"])
	}
}

func TestUserHandler_List_ServiceError(t *testing.T) {
	svc := newMockService()
	svc.listErr = domain.NewAppError(domain.CodeInternal, "db error", nil)
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}

func TestUserHandler_Update(t *testing.T) {
	svc := newMockService()
	svc.users[1] = &domain.User{
		BaseModel: domain.BaseModel{ID: 1},
		Name:      "Alice",
		Email:     "alice@example.com",
	}
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"Alice Updated","email":"alice2@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Message != "success" {
		t.Errorf("expected message 'success', got %q", resp.Message)
	}
}

func TestUserHandler_Update_InvalidID(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"Alice","email":"alice@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/abc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUserHandler_Update_ValidationError(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"","email":"invalid"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Errors == nil {
		t.Fatal("expected errors map to be non-nil")
	}
	if _, ok := resp.Errors["name"]; !ok {
		t.Error("expected 'name' field in errors map")
	}
	if _, ok := resp.Errors["email"]; !ok {
		t.Error("expected 'email' field in errors map")
	}
}

func TestUserHandler_Update_NotFound(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	body := `{"name":"Alice","email":"alice@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/999", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	svc := newMockService()
	svc.users[1] = &domain.User{
		BaseModel: domain.BaseModel{ID: 1},
		Name:      "Alice",
		Email:     "alice@example.com",
	}
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestUserHandler_Delete_NotFound(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestUserHandler_Delete_InvalidID(t *testing.T) {
	svc := newMockService()
	h := NewUserHandler(svc)
	r := setupAPIRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/users/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
