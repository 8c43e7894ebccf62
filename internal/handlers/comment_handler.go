package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/comments/:id", h.GetComment)
	g.GET("/comments/:id/replies", h.GetCommentWithReplies)
	g.POST("/comments", h.CreateComment, auth)
	g.PUT("/comments/:id", h.UpdateComment, auth)
	g.DELETE("/comments/:id", h.DeleteComment, auth)
}

// CreateComment adds a root comment or a reply to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Create(c.Request().Context(), req, actor.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetComment retrieves a comment by ID
func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.comments.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

// GetCommentWithReplies returns a comment with its full reply tree
func (h *CommentHandler) GetCommentWithReplies(c echo.Context) error {
	ctx := c.Request().Context()

	comment, err := h.comments.GetByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	replies, err := h.comments.GetReplies(ctx, comment.ID.Hex())
	if err != nil {
		return httpError(c, err)
	}
	if replies == nil {
		replies = []*models.Comment{}
	}

	return c.JSON(http.StatusOK, commentWithReplies{Comment: comment, Replies: replies})
}

// commentWithReplies always serializes replies, even when empty.
type commentWithReplies struct {
	*models.Comment
	Replies []*models.Comment `json:"replies"`
}

// UpdateComment replaces the content of the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.comments.Update(c.Request().Context(), c.Param("id"), req.Content, actor.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment and all of its replies
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.comments.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
