package validators

import (
	"net/http"
	"testing"

	"github.com/anonto42/quill/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreatePost(t *testing.T) {
	v := NewValidator()

	t.Run("valid without slug", func(t *testing.T) {
		err := v.Validate(models.CreatePostRequest{Title: "Hello", Content: "World"})
		assert.NoError(t, err)
	})

	t.Run("valid slug", func(t *testing.T) {
		err := v.Validate(models.CreatePostRequest{Title: "Hello", Content: "World", Slug: "hello-world-2"})
		assert.NoError(t, err)
	})

	for _, slug := range []string{"Hello", "hello--world", "-hello", "hello_world", "hello-"} {
		t.Run("invalid slug "+slug, func(t *testing.T) {
			err := v.Validate(models.CreatePostRequest{Title: "Hello", Content: "World", Slug: slug})
			require.Error(t, err)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusBadRequest, he.Code)
			assert.Contains(t, he.Message, "slug")
		})
	}

	t.Run("missing title uses json name", func(t *testing.T) {
		err := v.Validate(models.CreatePostRequest{Content: "World"})
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, "title is required", he.Message)
	})

	t.Run("bad status", func(t *testing.T) {
		err := v.Validate(models.CreatePostRequest{Title: "a", Content: "b", Status: "deleted"})
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Contains(t, he.Message, "status must be one of")
	})
}

func TestValidateCreateUser(t *testing.T) {
	v := NewValidator()

	err := v.Validate(models.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: "password1"})
	assert.NoError(t, err)

	err = v.Validate(models.CreateUserRequest{Username: "al", Email: "not-an-email", Password: "short"})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	msg, ok := he.Message.(string)
	require.True(t, ok)
	assert.Contains(t, msg, "username must be at least 3 characters")
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "password must be at least 8 characters")
}
