package handlers

import (
	"net/http"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/internal/query"
	"github.com/anonto42/quill/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users    *services.UserService
	posts    *services.PostService
	comments *services.CommentService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, posts *services.PostService, comments *services.CommentService) *UserHandler {
	return &UserHandler{users: users, posts: posts, comments: comments}
}

// RegisterUserRoutes registers profile and user administration routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	me := g.Group("/users/me", auth)
	me.GET("", h.GetProfile)
	me.PUT("", h.UpdateProfile)
	me.GET("/stats", h.GetProfileStats)
	me.GET("/posts", h.GetProfilePosts)
	me.GET("/comments", h.GetProfileComments)

	g.GET("/users", h.GetUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/stats", h.GetUserStats)
	g.PUT("/users/:id", h.UpdateUser, auth)
	g.DELETE("/users/:id", h.DeleteUser, auth)
}

// GetProfile retrieves the authenticated user's account
func (h *UserHandler) GetProfile(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.Request().Context(), actor.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfileStats retrieves the authenticated user's account with counters
func (h *UserHandler) GetProfileStats(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	stats, err := h.users.Stats(c.Request().Context(), actor.ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// UpdateProfile updates the authenticated user's profile. The role cannot
// be changed this way.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateSelf(c.Request().Context(), actor, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfilePosts lists the authenticated user's posts
func (h *UserHandler) GetProfilePosts(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	p := page(c, query.DefaultPostLimit)
	filters := models.PostFilters{
		Status:   models.PostStatus(c.QueryParam("status")),
		AuthorID: actor.ID,
	}
	posts, total, err := h.posts.List(c.Request().Context(), filters, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list(posts, total, p))
}

// GetProfileComments lists the authenticated user's comments with post titles
func (h *UserHandler) GetProfileComments(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	p := page(c, query.DefaultUserCommentLimit)
	comments, total, err := h.comments.ListByAuthor(c.Request().Context(), actor.ID, p)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, list(comments, total, p))
}

// GetUsers lists public profiles, optionally filtered by role
func (h *UserHandler) GetUsers(c echo.Context) error {
	p := page(c, query.DefaultUserLimit)

	users, err := h.users.List(c.Request().Context(), models.Role(c.QueryParam("role")), p)
	if err != nil {
		return httpError(c, err)
	}

	profiles := make([]*models.UserPublic, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetUser retrieves a public profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user.Public())
}

// GetUserStats retrieves a profile with post and comment counters
func (h *UserHandler) GetUserStats(c echo.Context) error {
	stats, err := h.users.Stats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// UpdateUser lets an admin update any account
func (h *UserHandler) UpdateUser(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser lets an admin delete another account
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
