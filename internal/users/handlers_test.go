package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(store UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := NewUserHandlers(NewUserService(store), zap.NewNop())
	handlers.RegisterRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorPayload(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error
}

func TestListUsers_Empty(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListUsers_SortedAscending(t *testing.T) {
	store := newMemStore()
	store.seed(User{ID: 5, Name: "Ed", Email: "ed@x.com"})
	store.seed(User{ID: 2, Name: "Bea", Email: "bea@x.com"})
	router := newTestRouter(store)

	w := doRequest(router, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var list []User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, int64(5), list[1].ID)
}

func TestListUsers_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.failAll = true
	router := newTestRouter(store)

	w := doRequest(router, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch users", errorPayload(t, w))
}

func TestGetUserByID(t *testing.T) {
	store := newMemStore()
	store.seed(User{ID: 3, Name: "Ann", Email: "ann@x.com"})
	router := newTestRouter(store)

	w := doRequest(router, http.MethodGet, "/users/3", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The lookup returns a single-element array.
	var list []User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, User{ID: 3, Name: "Ann", Email: "ann@x.com"}, list[0])
}

func TestGetUserByID_NotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodGet, "/users/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorPayload(t, w))
}

func TestGetUserByID_InvalidID(t *testing.T) {
	router := newTestRouter(newMemStore())

	for _, id := range []string{"abc", "-1", "0", "1.5"} {
		w := doRequest(router, http.MethodGet, "/users/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
		assert.Equal(t, "Invalid user ID", errorPayload(t, w))
	}
}

func TestCreateUser_Success(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User created successfully with ID 1", w.Body.String())
}

func TestCreateUser_MissingFields(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPost, "/users", `{"name":"","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name and email are required", errorPayload(t, w))
}

func TestCreateUser_InvalidBody(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPost, "/users", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", errorPayload(t, w))
}

func TestCreateUserHandler_DuplicateEmail(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/users", `{"name":"Ann 2","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email ID already exists", errorPayload(t, w))
}

func TestUpdateUserHandler(t *testing.T) {
	store := newMemStore()
	store.seed(User{ID: 4, Name: "Ann", Email: "ann@x.com"})

	// Both PUT and PATCH are accepted.
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		router := newTestRouter(store)
		w := doRequest(router, method, "/users/4", `{"name":"Anne","email":"anne@x.com"}`)
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.Equal(t, "User modified with ID: 4", w.Body.String(), method)
	}
}

func TestUpdateUserHandler_NotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPut, "/users/8", `{"name":"Ann","email":"ann@x.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorPayload(t, w))
}

func TestDeleteUserHandler(t *testing.T) {
	store := newMemStore()
	store.seed(User{ID: 6, Name: "Ann", Email: "ann@x.com"})
	router := newTestRouter(store)

	w := doRequest(router, http.MethodDelete, "/users/6", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted with ID: 6", w.Body.String())
}

func TestDeleteUserHandler_NotFound(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodDelete, "/users/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", errorPayload(t, w))
}

// TestUserLifecycle walks the create → duplicate → delete → lookup sequence
// end to end through the HTTP surface.
func TestUserLifecycle(t *testing.T) {
	router := newTestRouter(newMemStore())

	w := doRequest(router, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var id int64
	_, err := fmt.Sscanf(w.Body.String(), "User created successfully with ID %d", &id)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	w = doRequest(router, http.MethodPost, "/users", `{"name":"Ann Again","email":"ann@x.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Email ID already exists", errorPayload(t, w))

	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/users/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, fmt.Sprintf("/users/%d", id), "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
