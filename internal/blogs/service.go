package blogs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"agritrade-backend/internal/cache"
	"agritrade-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("blog not found")
	ErrSlugExists  = errors.New("slug already exists")
	ErrInvalidSlug = errors.New("invalid slug")
)

const cachePrefix = "blogs:"

type Service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	location *time.Location
}

func NewService(repo Repository, c cache.Cache, cacheTTL time.Duration, location *time.Location) *Service {
	if c == nil {
		c = cache.NewNoop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Blog, error) {
	slug := normalizeSlug(req.Slug, req.Title)
	if slug == "" {
		return Blog{}, ErrInvalidSlug
	}

	now := time.Now().In(s.location)
	item := Blog{
		ID:        primitive.NewObjectID().Hex(),
		Slug:      slug,
		Title:     strings.TrimSpace(req.Title),
		Excerpt:   strings.TrimSpace(req.Excerpt),
		Content:   req.Content,
		Image:     strings.TrimSpace(req.Image),
		Author:    strings.TrimSpace(req.Author),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Blog{}, ErrSlugExists
		}
		return Blog{}, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Blog, error) {
	slug := normalizeSlug(req.Slug, req.Title)
	if slug == "" {
		return Blog{}, ErrInvalidSlug
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), fieldSet(slug, req, time.Now().In(s.location)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Blog{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Blog{}, ErrSlugExists
		}
		return Blog{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Import upserts posts by slug, leaving the original createdAt of existing
// posts untouched.
func (s *Service) Import(ctx context.Context, items []UpsertRequest) (int, error) {
	now := time.Now().In(s.location)
	n := 0
	for _, req := range items {
		slug := normalizeSlug(req.Slug, req.Title)
		if slug == "" {
			return n, ErrInvalidSlug
		}
		onInsert := bson.M{"_id": primitive.NewObjectID().Hex(), "createdAt": now}
		if err := s.repo.UpsertBySlug(ctx, slug, fieldSet(slug, req, now), onInsert); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.invalidate(ctx)
	return nil
}

// ListPublic returns every post newest first, served from cache when warm.
func (s *Service) ListPublic(ctx context.Context) ([]Blog, error) {
	key := cachePrefix + "all"
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var items []Blog
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		_ = s.cache.Set(ctx, key, raw, s.cacheTTL)
	}
	return items, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Blog, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Blog{}, ErrNotFound
		}
		return Blog{}, err
	}
	return item, nil
}

func (s *Service) ListAdmin(ctx context.Context, limit, offset int64) ([]Blog, int64, error) {
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.DeletePrefix(ctx, cachePrefix)
}

func fieldSet(slug string, req UpsertRequest, now time.Time) bson.M {
	return bson.M{
		"slug":      slug,
		"title":     strings.TrimSpace(req.Title),
		"excerpt":   strings.TrimSpace(req.Excerpt),
		"content":   req.Content,
		"image":     strings.TrimSpace(req.Image),
		"author":    strings.TrimSpace(req.Author),
		"updatedAt": now,
	}
}

func normalizeSlug(slug, title string) string {
	raw := strings.TrimSpace(slug)
	if raw == "" {
		raw = strings.TrimSpace(title)
	}
	return utils.Slugify(raw)
}
