package main

import (
	"fmt"
	"os"

	"agritrade-backend/internal/blogs"
	"agritrade-backend/internal/products"

	"gopkg.in/yaml.v3"
)

type catalog struct {
	Products []products.SeedItem  `yaml:"products"`
	Blogs    []blogs.UpsertRequest `yaml:"blogs"`
}

func loadCatalog(path string) (catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog{}, err
	}
	return parseCatalog(raw)
}

func parseCatalog(raw []byte) (catalog, error) {
	var cat catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i, p := range cat.Products {
		if p.ID == "" || p.Name == "" {
			return catalog{}, fmt.Errorf("product %d: id and name are required", i)
		}
	}
	for i, b := range cat.Blogs {
		if b.Title == "" {
			return catalog{}, fmt.Errorf("blog %d: title is required", i)
		}
	}
	return cat, nil
}
