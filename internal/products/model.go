package products

import "time"

type Product struct {
	ID              string            `bson:"_id,omitempty" json:"id" yaml:"id,omitempty"`
	Name            string            `bson:"name" json:"name" yaml:"name"`
	Type            string            `bson:"type" json:"type" yaml:"type"`
	Image           string            `bson:"image" json:"image" yaml:"image"`
	Description     string            `bson:"description" json:"description" yaml:"description"`
	LongDescription string            `bson:"longDescription" json:"longDescription" yaml:"longDescription"`
	Varieties       []string          `bson:"varieties" json:"varieties" yaml:"varieties"`
	Features        []string          `bson:"features" json:"features" yaml:"features"`
	Specifications  map[string]string `bson:"specifications" json:"specifications" yaml:"specifications"`
	Order           int               `bson:"order" json:"order" yaml:"order"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

type UpsertRequest struct {
	Name            string            `json:"name" yaml:"name" validate:"required,notblank,max=200"`
	Type            string            `json:"type" yaml:"type" validate:"max=100"`
	Image           string            `json:"image" yaml:"image" validate:"omitempty,max=2048"`
	Description     string            `json:"description" yaml:"description" validate:"max=2000"`
	LongDescription string            `json:"longDescription" yaml:"longDescription" validate:"max=20000"`
	Varieties       []string          `json:"varieties" yaml:"varieties" validate:"omitempty,dive,max=200"`
	Features        []string          `json:"features" yaml:"features" validate:"omitempty,dive,max=500"`
	Specifications  map[string]string `json:"specifications" yaml:"specifications"`
	Order           int               `json:"order" yaml:"order"`
}

// SeedItem is one catalog entry of a seed file. ID keeps reseeding idempotent.
type SeedItem struct {
	ID            string `yaml:"id"`
	UpsertRequest `yaml:",inline"`
}
