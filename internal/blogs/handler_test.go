package blogs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agritrade-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var errDuplicate = mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}

type memRepo struct {
	items []Blog
}

func (m *memRepo) Create(_ context.Context, item Blog) error {
	for _, b := range m.items {
		if b.Slug == item.Slug {
			return errDuplicate
		}
	}
	m.items = append(m.items, item)
	return nil
}

func (m *memRepo) Update(_ context.Context, id string, set bson.M) (Blog, error) {
	for i, b := range m.items {
		if b.ID == id {
			b.Slug = set["slug"].(string)
			b.Title = set["title"].(string)
			m.items[i] = b
			return b, nil
		}
	}
	return Blog{}, mongo.ErrNoDocuments
}

func (m *memRepo) UpsertBySlug(_ context.Context, slug string, set bson.M, onInsert bson.M) error {
	for i, b := range m.items {
		if b.Slug == slug {
			b.Title = set["title"].(string)
			m.items[i] = b
			return nil
		}
	}
	m.items = append(m.items, Blog{ID: onInsert["_id"].(string), Slug: slug, Title: set["title"].(string)})
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	for i, b := range m.items {
		if b.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) GetBySlug(_ context.Context, slug string) (Blog, error) {
	for _, b := range m.items {
		if b.Slug == slug {
			return b, nil
		}
	}
	return Blog{}, mongo.ErrNoDocuments
}

func (m *memRepo) List(_ context.Context, limit, offset int64) ([]Blog, error) {
	return append([]Blog(nil), m.items...), nil
}

func (m *memRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

func newRouter(repo *memRepo) http.Handler {
	h := NewHandler(NewService(repo, nil, time.Minute, time.UTC), validation.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Get("/blogs", h.PublicList)
	r.Get("/blogs/{slug}", h.PublicGetBySlug)
	r.Post("/admin/blogs", h.AdminCreate)
	r.Put("/admin/blogs/{id}", h.AdminUpdate)
	r.Delete("/admin/blogs/{id}", h.AdminDelete)
	return r
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateDerivesSlug(t *testing.T) {
	repo := &memRepo{}
	h := newRouter(repo)

	rec := send(h, http.MethodPost, "/admin/blogs", `{"title":"Avocado Export & Cold Chain","content":"..."}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "avocado-export-and-cold-chain", repo.items[0].Slug)

	rec = send(h, http.MethodGet, "/blogs/avocado-export-and-cold-chain", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(h, http.MethodPost, "/admin/blogs", `{"title":"Avocado export and cold chain","content":"again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(h, http.MethodPost, "/admin/blogs", `{"title":"!!!","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFoundPaths(t *testing.T) {
	h := newRouter(&memRepo{})
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodGet, "/blogs/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodPut, "/admin/blogs/x", `{"title":"T","content":"c"}`).Code)
	assert.Equal(t, http.StatusNotFound, send(h, http.MethodDelete, "/admin/blogs/x", "").Code)
}

func TestImportUpsertsBySlug(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil, 0, nil)

	n, err := svc.Import(context.Background(), []UpsertRequest{
		{Title: "Harvest update", Content: "a"},
		{Title: "Harvest Update", Content: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "Harvest Update", repo.items[0].Title)
}
