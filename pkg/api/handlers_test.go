package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

func newTestRouter(provider *MockProvider) *mux.Router {
	router := mux.NewRouter()
	NewHandler(provider).RegisterRoutes(router)
	return router
}

func TestHandler_HandleGetByKey(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		seed           domain.Document
		expectedStatus int
	}{
		{
			name:           "existing document",
			key:            "1",
			seed:           domain.Document{"_id": "1", "title": "Dune"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing document",
			key:            "missing",
			seed:           domain.Document{"_id": "1", "title": "Dune"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewMockProvider()
			provider.Mock("books").Seed(tt.seed)
			router := newTestRouter(provider)

			req := httptest.NewRequest("GET", "/collections/books/documents/"+tt.key, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var doc domain.Document
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
				assert.Equal(t, "Dune", doc["title"])
			} else {
				var errResp ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.expectedStatus, errResp.Code)
			}
		})
	}
}

func TestHandler_HandleInsert(t *testing.T) {
	provider := NewMockProvider()
	router := newTestRouter(provider)

	body, _ := json.Marshal(map[string]interface{}{"name": "Alice"})
	req := httptest.NewRequest("POST", "/collections/users/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var doc domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Alice", doc["name"])
	assert.NotEmpty(t, doc["_id"], "a document without a key gets a generated one")

	assert.Equal(t, 1, provider.Mock("users").updateCalls)
}

func TestHandler_HandleInsert_InvalidBody(t *testing.T) {
	provider := NewMockProvider()
	router := newTestRouter(provider)

	req := httptest.NewRequest("POST", "/collections/users/documents", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, provider.Mock("users").updateCalls)
}

func TestHandler_HandleUpdate_URLKeyWins(t *testing.T) {
	provider := NewMockProvider()
	router := newTestRouter(provider)

	body, _ := json.Marshal(map[string]interface{}{"_id": "other", "name": "Alice"})
	req := httptest.NewRequest("PUT", "/collections/users/documents/u1", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	doc, err := provider.Mock("users").Find(req.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", doc["name"])
}

func TestHandler_HandleRemove(t *testing.T) {
	provider := NewMockProvider()
	provider.Mock("users").Seed(domain.Document{"_id": "u1"})
	router := newTestRouter(provider)

	req := httptest.NewRequest("DELETE", "/collections/users/documents/u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["deleted"])
}

func TestHandler_HandleFindAll_Pagination(t *testing.T) {
	provider := NewMockProvider()
	store := provider.Mock("users")
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		store.Seed(domain.Document{"_id": id})
	}
	router := newTestRouter(provider)

	tests := []struct {
		name         string
		query        string
		expectedLen  int
		expectedNext bool
		expectedPrev bool
	}{
		{"no pagination", "", 5, false, false},
		{"first page", "?offset=0&limit=2", 2, true, false},
		{"middle page", "?offset=2&limit=2", 2, true, true},
		{"last page", "?offset=4&limit=2", 1, false, true},
		{"offset beyond total", "?offset=10", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/collections/users/documents"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			var resp FindAllResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Documents, tt.expectedLen)
			assert.Equal(t, 5, resp.Total)
			assert.Equal(t, tt.expectedNext, resp.HasNext)
			assert.Equal(t, tt.expectedPrev, resp.HasPrev)
		})
	}
}

func TestHandler_HandleFindAll_InvalidPagination(t *testing.T) {
	router := newTestRouter(NewMockProvider())

	req := httptest.NewRequest("GET", "/collections/users/documents?limit=nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_HandleStream(t *testing.T) {
	provider := NewMockProvider()
	provider.Mock("users").Seed(domain.Document{"_id": "1", "name": "Alice"})
	provider.Mock("users").Seed(domain.Document{"_id": "2", "name": "Bob"})
	router := newTestRouter(provider)

	req := httptest.NewRequest("GET", "/collections/users/stream", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// The streamed output is one complete JSON array
	var docs []domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 2)
}

func TestHandler_HandleQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		storeErr       error
		query          string
		expectedStatus int
	}{
		{
			name:           "missing predicate parameter",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unregistered predicate",
			storeErr:       domain.ErrUnsupportedIndex,
			query:          "?predicate=by_rating&value=5",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "backend failure",
			storeErr:       errors.New("disk on fire"),
			query:          "?predicate=by_genre&value=scifi",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewMockProvider()
			provider.Mock("books").Err = tt.storeErr
			router := newTestRouter(provider)

			req := httptest.NewRequest("GET", "/collections/books/query"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHandler_HandleBulk(t *testing.T) {
	provider := NewMockProvider()
	router := newTestRouter(provider)

	batch := domain.BatchPatch{
		{Key: "1", Patch: domain.Merge(map[string]domain.Patch{"b": domain.Replace("pizza")})},
		{Key: "2", Patch: domain.Delete()},
	}
	body, err := json.Marshal(BulkRequest{Operations: batch})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/collections/books/bulk", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp BulkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Applied)
	assert.Equal(t, 1, provider.Mock("books").bulkCalls)
}

func TestHandler_HandleBulk_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"invalid json", "{broken", http.StatusBadRequest},
		{"empty batch", `{"operations":[]}`, http.StatusBadRequest},
		{"unknown patch op", `{"operations":[{"key":"1","patch":{"op":"increment"}}]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewMockProvider()
			router := newTestRouter(provider)

			req := httptest.NewRequest("POST", "/collections/books/bulk", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, 0, provider.Mock("books").bulkCalls)
		})
	}
}

func TestHandler_HandleBulk_UnsupportedShapeIs422(t *testing.T) {
	provider := NewMockProvider()
	provider.Mock("books").Err = domain.ErrUnsupportedPatchShape
	router := newTestRouter(provider)

	body, _ := json.Marshal(BulkRequest{Operations: domain.BatchPatch{
		{Key: "1", Patch: domain.Replace(map[string]interface{}{"a": 1})},
	}})
	req := httptest.NewRequest("POST", "/collections/books/bulk", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_HandleCreateIndex(t *testing.T) {
	provider := NewMockProvider()
	router := newTestRouter(provider)

	req := httptest.NewRequest("POST", "/collections/books/indexes/genre", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "by_genre", resp["predicate"])
	assert.Equal(t, []string{"books.genre"}, provider.registered)
}

func TestHandler_HandleHealth(t *testing.T) {
	router := newTestRouter(NewMockProvider())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
