package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostRepository is an in-memory repositories.PostRepository.
type PostRepository struct {
	mu    sync.RWMutex
	seq   uint64
	posts map[string]record[models.Post]
}

var _ repositories.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]record[models.Post])}
}

func clonePost(p models.Post) models.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.Author = nil
	p.CommentsCount = 0
	return p
}

func postField(p models.Post) func(string) any {
	return func(key string) any {
		switch key {
		case "status":
			return string(p.Status)
		case "tags":
			return p.Tags
		case "author_id":
			return p.AuthorID
		case "slug":
			return p.Slug
		}
		return nil
	}
}

func (r *PostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.posts {
		if existing.val.Slug == post.Slug {
			return apperr.ErrDuplicateSlug
		}
	}
	post.ID = primitive.NewObjectID()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	r.seq++
	r.posts[post.ID.Hex()] = record[models.Post]{seq: r.seq, val: clonePost(*post)}
	return nil
}

func (r *PostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.posts[id]
	if !ok {
		return nil, apperr.ErrPostNotFound
	}
	p := clonePost(rec.val)
	return &p, nil
}

func (r *PostRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.posts {
		if rec.val.Slug == slug {
			p := clonePost(rec.val)
			return &p, nil
		}
	}
	return nil, apperr.ErrPostNotFound
}

func (r *PostRepository) matching(filter query.Filter) []record[models.Post] {
	var recs []record[models.Post]
	for _, rec := range r.posts {
		if filter.Match(postField(rec.val)) {
			recs = append(recs, record[models.Post]{seq: rec.seq, val: clonePost(rec.val)})
		}
	}
	return recs
}

func (r *PostRepository) FindPosts(ctx context.Context, filter query.Filter, page query.Page) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	created := func(p models.Post) time.Time { return p.CreatedAt }
	return ordered(r.matching(filter), created, true, &page), nil
}

func (r *PostRepository) CountPosts(ctx context.Context, filter query.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *PostRepository) UpdatePost(ctx context.Context, id string, changes models.PostChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.posts[id]
	if !ok {
		return apperr.ErrPostNotFound
	}
	p := rec.val
	if changes.Slug != nil && *changes.Slug != p.Slug {
		for otherID, other := range r.posts {
			if otherID != id && other.val.Slug == *changes.Slug {
				return apperr.ErrDuplicateSlug
			}
		}
		p.Slug = *changes.Slug
	}
	if changes.Title != nil {
		p.Title = *changes.Title
	}
	if changes.Content != nil {
		p.Content = *changes.Content
	}
	if changes.Summary != nil {
		p.Summary = *changes.Summary
	}
	if changes.Tags != nil {
		p.Tags = slices.Clone(changes.Tags)
	}
	if changes.Status != nil {
		p.Status = *changes.Status
	}
	p.UpdatedAt = changes.UpdatedAt
	r.posts[id] = record[models.Post]{seq: rec.seq, val: p}
	return nil
}

func (r *PostRepository) DeletePost(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}
