// Package posts implements post authoring, the latest-posts feed and post
// cover images.
package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/models"
)

const (
	msgPostNotFound  = "Post not found"
	msgCoverNotFound = "Cover image not found"
	msgCoversOff     = "Cover images are not enabled"
)

// Store defines the interface for post persistence.
type Store interface {
	CreatePost(ctx context.Context, p *models.Post) (*models.Post, error)
	FindPostByID(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (*models.Post, error)
	ListLatestPosts(ctx context.Context, skip, limit int) ([]models.Post, error)
}

// Authors resolves post authors in one batch.
type Authors interface {
	FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// CoverStore defines the interface for cover image objects.
type CoverStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
}

// Entry is a post together with its author. Author is nil when the account
// has since been deleted.
type Entry struct {
	Post   *models.Post
	Author *models.User
}

// Page is one slice of the newest-first feed.
type Page struct {
	Entries []Entry
	HasMore bool
	Page    int
}

type Service struct {
	posts   Store
	authors Authors
	covers  CoverStore
}

// NewService wires the post flows. covers may be nil, which disables cover
// images.
func NewService(posts Store, authors Authors, covers CoverStore) *Service {
	return &Service{posts: posts, authors: authors, covers: covers}
}

// CreatePost stores a post owned by userID.
func (s *Service) CreatePost(ctx context.Context, userID string, dto models.CreatePostDto) (*Entry, error) {
	post, err := s.posts.CreatePost(ctx, &models.Post{
		Title:   dto.Title,
		Content: dto.Content,
		Author:  userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.withAuthor(ctx, post)
}

// GetPost returns the bare post record.
func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.FindPostByID(ctx, id)
	if err != nil {
		return nil, postErr(err, "find post")
	}
	return post, nil
}

func (s *Service) GetPostByID(ctx context.Context, id string) (*Entry, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAuthor(ctx, post)
}

// UpdatePost applies a partial update. Ownership is checked by the caller.
func (s *Service) UpdatePost(ctx context.Context, id string, dto models.UpdatePostDto) (*Entry, error) {
	post, err := s.posts.UpdatePost(ctx, id, models.PostUpdate{
		Title:   dto.Title,
		Content: dto.Content,
	})
	if err != nil {
		return nil, postErr(err, "update post")
	}
	return s.withAuthor(ctx, post)
}

// DeletePost removes the post and returns what it held. The cover object is
// removed afterwards; failing to do so is only logged.
func (s *Service) DeletePost(ctx context.Context, id string) (*Entry, error) {
	post, err := s.posts.DeletePost(ctx, id)
	if err != nil {
		return nil, postErr(err, "delete post")
	}
	if s.covers != nil && post.CoverImageKey != "" {
		if err := s.covers.Remove(ctx, post.CoverImageKey); err != nil {
			log.Printf("remove cover %s: %v", post.CoverImageKey, err)
		}
	}
	return s.withAuthor(ctx, post)
}

// ListLatest returns one page of posts, newest first. It reads one record
// past the page to learn whether another page follows.
func (s *Service) ListLatest(ctx context.Context, p models.Pagination) (*Page, error) {
	p = p.Normalize()
	posts, err := s.posts.ListLatestPosts(ctx, p.Skip(), p.PageSize+1)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	hasMore := len(posts) > p.PageSize
	if hasMore {
		posts = posts[:p.PageSize]
	}

	authors, err := s.lookupAuthors(ctx, posts)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(posts))
	for i := range posts {
		entries = append(entries, Entry{Post: &posts[i], Author: authors[posts[i].Author]})
	}
	return &Page{Entries: entries, HasMore: hasMore, Page: p.Page}, nil
}

// CoverKey is the object key of a post's cover image.
func CoverKey(postID string) string {
	return "posts/" + postID + "/cover"
}

// SetCover uploads a cover image and records its key on the post. If the
// post is gone by the time the key is recorded, the object is removed again.
func (s *Service) SetCover(ctx context.Context, postID string, r io.Reader, size int64, contentType string) (*Entry, error) {
	if s.covers == nil {
		return nil, apperr.New(http.StatusNotImplemented, msgCoversOff)
	}
	key := CoverKey(postID)
	if err := s.covers.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("store cover: %w", err)
	}
	post, err := s.posts.UpdatePost(ctx, postID, models.PostUpdate{CoverImageKey: &key})
	if errors.Is(err, models.ErrNotFound) {
		if rmErr := s.covers.Remove(ctx, key); rmErr != nil {
			log.Printf("remove orphaned cover %s: %v", key, rmErr)
		}
	}
	if err != nil {
		return nil, postErr(err, "update post")
	}
	return s.withAuthor(ctx, post)
}

// OpenCover returns the cover image of a post. The caller closes the reader.
func (s *Service) OpenCover(ctx context.Context, postID string) (io.ReadCloser, string, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, "", err
	}
	if s.covers == nil || post.CoverImageKey == "" {
		return nil, "", apperr.NotFound(msgCoverNotFound)
	}
	rc, contentType, err := s.covers.Get(ctx, post.CoverImageKey)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", apperr.NotFound(msgCoverNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open cover: %w", err)
	}
	return rc, contentType, nil
}

func (s *Service) withAuthor(ctx context.Context, post *models.Post) (*Entry, error) {
	authors, err := s.lookupAuthors(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &Entry{Post: post, Author: authors[post.Author]}, nil
}

func (s *Service) lookupAuthors(ctx context.Context, posts []models.Post) (map[string]*models.User, error) {
	seen := make(map[string]bool, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if !seen[p.Author] {
			seen[p.Author] = true
			ids = append(ids, p.Author)
		}
	}
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.authors.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func postErr(err error, op string) error {
	if errors.Is(err, models.ErrNotFound) {
		return apperr.NotFound(msgPostNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
