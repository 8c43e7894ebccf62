package memory

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentRepository is an in-memory repositories.CommentRepository.
type CommentRepository struct {
	mu       sync.RWMutex
	seq      uint64
	comments map[string]record[models.Comment]
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[string]record[models.Comment])}
}

func cloneComment(c models.Comment) models.Comment {
	if c.ParentID != nil {
		parent := *c.ParentID
		c.ParentID = &parent
	}
	c.Author = nil
	c.Replies = nil
	c.PostTitle = ""
	return c
}

func commentField(c models.Comment) func(string) any {
	return func(key string) any {
		switch key {
		case "post_id":
			return c.PostID
		case "parent_id":
			return c.ParentID
		case "author_id":
			return c.AuthorID
		}
		return nil
	}
}

func createdAt(c models.Comment) time.Time { return c.CreatedAt }

func (r *CommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	comment.ID = primitive.NewObjectID()
	r.seq++
	r.comments[comment.ID.Hex()] = record[models.Comment]{seq: r.seq, val: cloneComment(*comment)}
	return nil
}

func (r *CommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.comments[id]
	if !ok {
		return nil, apperr.ErrCommentNotFound
	}
	c := cloneComment(rec.val)
	return &c, nil
}

func (r *CommentRepository) matching(filter query.Filter) []record[models.Comment] {
	var recs []record[models.Comment]
	for _, rec := range r.comments {
		if filter.Match(commentField(rec.val)) {
			recs = append(recs, record[models.Comment]{seq: rec.seq, val: cloneComment(rec.val)})
		}
	}
	return recs
}

func (r *CommentRepository) FindComments(ctx context.Context, filter query.Filter, page query.Page, order repositories.SortOrder) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ordered(r.matching(filter), createdAt, order == repositories.NewestFirst, &page), nil
}

func (r *CommentRepository) FindReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	filter := query.NewFilter().Eq("parent_id", parentID)
	return ordered(r.matching(filter), createdAt, false, nil), nil
}

func (r *CommentRepository) FindReplyIDs(ctx context.Context, parentID string) ([]string, error) {
	replies, err := r.FindReplies(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(replies))
	for _, c := range replies {
		ids = append(ids, c.ID.Hex())
	}
	return ids, nil
}

func (r *CommentRepository) CountComments(ctx context.Context, filter query.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *CommentRepository) UpdateCommentContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.comments[id]
	if !ok {
		return apperr.ErrCommentNotFound
	}
	rec.val.Content = content
	rec.val.UpdatedAt = updatedAt
	r.comments[id] = rec
	return nil
}

func (r *CommentRepository) DeleteComment(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return false, nil
	}
	delete(r.comments, id)
	return true, nil
}

func (r *CommentRepository) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.comments {
		if rec.val.PostID == postID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

// All returns every stored comment, for assertions in tests.
func (r *CommentRepository) All() []models.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ordered(r.matching(query.NewFilter()), createdAt, false, nil)
}
