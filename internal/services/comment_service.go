package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/quill/backend/internal/apperr"
	"github.com/anonto42/quill/backend/internal/logger"
	"github.com/anonto42/quill/backend/internal/metrics"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/policy"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/repositories"
)

// CommentService owns the comment forest of every post: creation with
// same-post parent checks, subtree reads and cascading deletes.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	users    repositories.UserRepository
	now      func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, users repositories.UserRepository) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		now:      now,
	}
}

// now is UTC truncated to the millisecond precision MongoDB stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Create stores a new comment. A parent must exist and belong to the same post.
func (s *CommentService) Create(ctx context.Context, req models.CreateCommentRequest, authorID string) (*models.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.ErrEmptyContent
	}

	if _, err := s.posts.GetPostByID(ctx, req.PostID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrPostNotFound
		}
		return nil, err
	}

	var parentID *string
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.comments.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != req.PostID {
			return nil, apperr.ErrParentNotFound
		}
		id := parent.ID.Hex()
		parentID = &id
	}

	ts := s.now()
	comment := &models.Comment{
		PostID:    req.PostID,
		ParentID:  parentID,
		AuthorID:  authorID,
		Content:   req.Content,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	authors := newAuthorLookup(s.users)
	author, err := authors.get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

// GetByID returns a comment with its author embedded.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withAuthors(ctx, newAuthorLookup(s.users), comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) withAuthors(ctx context.Context, authors *authorLookup, comments ...*models.Comment) error {
	for _, c := range comments {
		author, err := authors.get(ctx, c.AuthorID)
		if err != nil {
			return err
		}
		c.Author = author
	}
	return nil
}

// GetReplies returns the whole reply tree under parentID. Siblings are
// ordered oldest first at every level. The tree is walked with an explicit
// stack, so thread depth is bounded by memory only. Comments deleted while
// the walk is in progress are simply absent from the result.
func (s *CommentService) GetReplies(ctx context.Context, parentID string) ([]*models.Comment, error) {
	return s.replyTree(ctx, newAuthorLookup(s.users), parentID)
}

func (s *CommentService) replyTree(ctx context.Context, authors *authorLookup, parentID string) ([]*models.Comment, error) {
	type pending struct {
		id   string
		into *[]*models.Comment
	}

	var replies []*models.Comment
	stack := []pending{{id: parentID, into: &replies}}
	visited := map[string]bool{parentID: true}
	nodes := 0

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.comments.FindReplies(ctx, next.id)
		if err != nil {
			return nil, err
		}

		level := make([]*models.Comment, 0, len(children))
		for i := range children {
			c := &children[i]
			id := c.ID.Hex()
			// guards against hand-edited parent cycles
			if visited[id] {
				continue
			}
			visited[id] = true
			if err := s.withAuthors(ctx, authors, c); err != nil {
				return nil, err
			}
			level = append(level, c)
		}
		*next.into = level
		nodes += len(level)

		for i := len(level) - 1; i >= 0; i-- {
			stack = append(stack, pending{id: level[i].ID.Hex(), into: &level[i].Replies})
		}
	}

	metrics.ReplyTreeSize.Observe(float64(nodes))
	return replies, nil
}

// ListByPost returns one page of root comments on an existing post, newest first. With
// includeReplies each root carries its reply tree. The total counts every
// comment on the post, replies included.
func (s *CommentService) ListByPost(ctx context.Context, postID string, page query.Page, includeReplies bool) ([]*models.Comment, int64, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, 0, err
	}

	filter := query.NewFilter().Eq("post_id", postID).Null("parent_id")
	roots, err := s.comments.FindComments(ctx, filter, page, repositories.NewestFirst)
	if err != nil {
		return nil, 0, err
	}

	authors := newAuthorLookup(s.users)
	items := make([]*models.Comment, 0, len(roots))
	for i := range roots {
		root := &roots[i]
		if err := s.withAuthors(ctx, authors, root); err != nil {
			return nil, 0, err
		}
		if includeReplies {
			if root.Replies, err = s.replyTree(ctx, authors, root.ID.Hex()); err != nil {
				return nil, 0, err
			}
		}
		items = append(items, root)
	}

	total, err := s.CountForPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByAuthor returns one page of a user's comments, newest first, each
// tagged with the title of its post.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID string, page query.Page) ([]*models.Comment, int64, error) {
	filter := query.NewFilter().Eq("author_id", authorID)
	found, err := s.comments.FindComments(ctx, filter, page, repositories.NewestFirst)
	if err != nil {
		return nil, 0, err
	}

	authors := newAuthorLookup(s.users)
	titles := make(map[string]string)
	items := make([]*models.Comment, 0, len(found))
	for i := range found {
		c := &found[i]
		if err := s.withAuthors(ctx, authors, c); err != nil {
			return nil, 0, err
		}
		title, ok := titles[c.PostID]
		if !ok {
			if post, err := s.posts.GetPostByID(ctx, c.PostID); err == nil {
				title = post.Title
			} else if !errors.Is(err, apperr.ErrNotFound) {
				return nil, 0, err
			}
			titles[c.PostID] = title
		}
		c.PostTitle = title
		items = append(items, c)
	}

	total, err := s.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update replaces a comment's content. Only the author may edit: admins can
// delete any comment but never rewrite someone else's words, so this does
// not go through policy.CanEditComment.
func (s *CommentService) Update(ctx context.Context, id, content, authorID string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.ErrEmptyContent
	}

	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, apperr.Forbiddenf("you do not have permission to update this comment")
	}

	if err := s.comments.UpdateCommentContent(ctx, id, content, s.now()); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a comment and all of its replies, as allowed by
// policy.CanDeleteComment. Deleting an id that is already gone succeeds and
// still sweeps replies an interrupted earlier delete left behind: admins
// sweep all of them, other users only the replies they wrote.
func (s *CommentService) Delete(ctx context.Context, id string, actor models.Identity) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	var removed int
	switch {
	case comment != nil:
		if !policy.CanDeleteComment(comment, actor) {
			return apperr.Forbiddenf("you do not have permission to delete this comment")
		}
		removed, err = s.deleteSubtree(ctx, id)
	case policy.IsAdmin(actor):
		removed, err = s.deleteSubtree(ctx, id)
	default:
		removed, err = s.sweepOwnOrphans(ctx, id, actor)
	}

	metrics.CommentsDeleted.WithLabelValues("thread").Add(float64(removed))
	if err != nil {
		logger.ErrorContext(ctx, "cascading comment delete interrupted",
			"comment_id", id, "removed", removed, "error", err)
		return err
	}
	return nil
}

// sweepOwnOrphans deletes the subtrees under a vanished parent whose top
// reply actor is allowed to delete.
func (s *CommentService) sweepOwnOrphans(ctx context.Context, parentID string, actor models.Identity) (int, error) {
	orphans, err := s.comments.FindReplies(ctx, parentID)
	if err != nil {
		return 0, apperr.Internalf("list replies of %s: %w", parentID, err)
	}

	removed := 0
	for i := range orphans {
		if !policy.CanDeleteComment(&orphans[i], actor) {
			continue
		}
		n, err := s.deleteSubtree(ctx, orphans[i].ID.Hex())
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// deleteSubtree collects the subtree in pre-order and deletes it in reverse,
// so every reply is removed before its parent. If it stops early, what is
// left is still attached to rootID and a repeated call finishes the job.
func (s *CommentService) deleteSubtree(ctx context.Context, rootID string) (int, error) {
	var order []string
	stack := []string{rootID}
	visited := make(map[string]bool)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)

		children, err := s.comments.FindReplyIDs(ctx, id)
		if err != nil {
			return 0, apperr.Internalf("list replies of %s: %w", id, err)
		}
		stack = append(stack, children...)
	}

	removed := 0
	for i := len(order) - 1; i >= 0; i-- {
		ok, err := s.comments.DeleteComment(ctx, order[i])
		if err != nil {
			return removed, apperr.Internalf("delete comment %s: %w", order[i], err)
		}
		// a concurrent delete may have won the race; that is fine
		if ok {
			removed++
		}
	}
	return removed, nil
}

// DeleteAllForPost removes every comment on a post without authorship checks.
func (s *CommentService) DeleteAllForPost(ctx context.Context, postID string) (int64, error) {
	n, err := s.comments.DeleteCommentsByPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	metrics.CommentsDeleted.WithLabelValues("post").Add(float64(n))
	return n, nil
}

// CountForPost counts roots and replies on a post.
func (s *CommentService) CountForPost(ctx context.Context, postID string) (int64, error) {
	return s.comments.CountComments(ctx, query.NewFilter().Eq("post_id", postID))
}

// CountByAuthor counts every comment written by a user.
func (s *CommentService) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	return s.comments.CountComments(ctx, query.NewFilter().Eq("author_id", authorID))
}
