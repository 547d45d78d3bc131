package blogs

import "time"

type Blog struct {
	ID        string    `bson:"_id,omitempty" json:"id" yaml:"-"`
	Slug      string    `bson:"slug" json:"slug" yaml:"slug"`
	Title     string    `bson:"title" json:"title" yaml:"title"`
	Excerpt   string    `bson:"excerpt" json:"excerpt" yaml:"excerpt"`
	Content   string    `bson:"content" json:"content" yaml:"content"`
	Image     string    `bson:"image" json:"image" yaml:"image"`
	Author    string    `bson:"author" json:"author" yaml:"author"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

type UpsertRequest struct {
	Slug    string `json:"slug" yaml:"slug" validate:"max=160"`
	Title   string `json:"title" yaml:"title" validate:"required,notblank,max=200"`
	Excerpt string `json:"excerpt" yaml:"excerpt" validate:"max=1000"`
	Content string `json:"content" yaml:"content" validate:"required"`
	Image   string `json:"image" yaml:"image" validate:"omitempty,max=2048"`
	Author  string `json:"author" yaml:"author" validate:"max=120"`
}
