package models

import "time"

// Post is a blog post. Author holds the owning user's ID and never changes
// after creation.
type Post struct {
	ID            string
	Title         string
	Content       string
	Author        string
	CoverImageKey string
	CreatedAt     time.Time
}

// PostUpdate is a partial update; nil fields are left untouched. It has no
// author field on purpose: ownership is fixed at creation.
type PostUpdate struct {
	Title         *string
	Content       *string
	CoverImageKey *string
}

// CreatePostDto is the JSON body for POST /posts.
type CreatePostDto struct {
	Title   string `json:"title"   validate:"required"`
	Content string `json:"content" validate:"required"`
}

// UpdatePostDto is the JSON body for PUT /posts/{id}. Fields that are
// present must not be empty.
type UpdatePostDto struct {
	Title   *string `json:"title"   validate:"omitempty,min=1"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

// Pagination selects a page of the newest posts.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 5
)

// Normalize replaces non-positive values with the defaults.
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Skip is the number of posts before this page.
func (p Pagination) Skip() int {
	return (p.Page - 1) * p.PageSize
}
