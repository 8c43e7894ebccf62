package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, comments *services.CommentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

// RegisterPostRoutes registers post routes. Reads are public, writes go
// through auth.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/slug/:slug", h.GetPostBySlug)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts/:id/comments", h.GetPostComments)
	g.POST("/posts", h.CreatePost, auth)
	g.PUT("/posts/:id", h.UpdatePost, auth)
	g.DELETE("/posts/:id", h.DeletePost, auth)
}

// CreatePost creates a new post authored by the caller
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), req, actor.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPostBySlug retrieves a post by slug
func (h *PostHandler) GetPostBySlug(c echo.Context) error {
	post, err := h.posts.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists posts filtered by status, tag and author_id
func (h *PostHandler) GetPosts(c echo.Context) error {
	p := page(c, query.DefaultPostLimit)
	filters := models.PostFilters{
		Status:   models.PostStatus(c.QueryParam("status")),
		Tag:      c.QueryParam("tag"),
		AuthorID: c.QueryParam("author_id"),
	}

	posts, total, err := h.posts.List(c.Request().Context(), filters, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list(posts, total, p))
}

// UpdatePost applies a partial update. Editors and admins may edit any post.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), c.Param("id"), req, actor)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post together with its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPostComments lists the root comments of a post
func (h *PostHandler) GetPostComments(c echo.Context) error {
	p := page(c, query.DefaultPostCommentLimit)
	includeReplies, _ := strconv.ParseBool(c.QueryParam("include_replies"))

	comments, total, err := h.comments.ListByPost(c.Request().Context(), c.Param("id"), p, includeReplies)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list(comments, total, p))
}
