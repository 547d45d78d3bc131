package products

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"agritrade-backend/internal/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("product not found")

const cachePrefix = "products:"

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

// List returns the catalog in display order, served from cache when warm.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	key := cachePrefix + "all"
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var items []Product
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		_ = s.cache.Set(ctx, key, raw, s.cacheTTL)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	item, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Product, error) {
	now := time.Now().In(s.location)
	item := fromRequest(req)
	item.CreatedAt = now
	item.UpdatedAt = now

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

// Update replaces every editable field of the product.
func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Product, error) {
	set := fieldSet(fromRequest(req), time.Now().In(s.location))

	updated, err := s.repo.Replace(ctx, strings.TrimSpace(id), set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	s.invalidate(ctx)
	return updated, nil
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

// Import creates or overwrites catalog entries keyed by their IDs.
func (s *Service) Import(ctx context.Context, items []SeedItem) (int, error) {
	now := time.Now().In(s.location)
	n := 0
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return n, errors.New("product id is required")
		}
		if err := s.repo.Upsert(ctx, id, fieldSet(fromRequest(item.UpsertRequest), now), now); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	_ = s.cache.DeletePrefix(ctx, cachePrefix)
}

func fromRequest(req UpsertRequest) Product {
	p := Product{
		Name:            strings.TrimSpace(req.Name),
		Type:            strings.TrimSpace(req.Type),
		Image:           strings.TrimSpace(req.Image),
		Description:     strings.TrimSpace(req.Description),
		LongDescription: req.LongDescription,
		Varieties:       cleanList(req.Varieties),
		Features:        cleanList(req.Features),
		Specifications:  req.Specifications,
		Order:           req.Order,
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}
	return p
}

func fieldSet(item Product, now time.Time) bson.M {
	return bson.M{
		"name":            item.Name,
		"type":            item.Type,
		"image":           item.Image,
		"description":     item.Description,
		"longDescription": item.LongDescription,
		"varieties":       item.Varieties,
		"features":        item.Features,
		"specifications":  item.Specifications,
		"order":           item.Order,
		"updatedAt":       now,
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
