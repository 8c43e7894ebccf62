// Package policy decides who may do what. Every function is pure.
package policy

import "github.com/anonto42/quill/backend/internal/models"

// IsElevated reports whether the actor may act on any post.
func IsElevated(actor models.Identity) bool {
	return actor.Role == models.RoleEditor || actor.Role == models.RoleAdmin
}

// IsAdmin reports whether the actor is an administrator.
func IsAdmin(actor models.Identity) bool {
	return actor.Role == models.RoleAdmin
}

// CanEditPost allows the author, editors and admins.
func CanEditPost(post *models.Post, actor models.Identity) bool {
	return (actor.ID != "" && post.AuthorID == actor.ID) || IsElevated(actor)
}

// CanDeletePost follows the edit rule.
func CanDeletePost(post *models.Post, actor models.Identity) bool {
	return CanEditPost(post, actor)
}

// CanEditComment allows the author and admins. Editors get no comment rights.
func CanEditComment(comment *models.Comment, actor models.Identity) bool {
	return (actor.ID != "" && comment.AuthorID == actor.ID) || IsAdmin(actor)
}

// CanDeleteComment follows the edit rule.
func CanDeleteComment(comment *models.Comment, actor models.Identity) bool {
	return CanEditComment(comment, actor)
}

// CanChangeOwnRole is always false: roles are granted by an admin only.
func CanChangeOwnRole(actor models.Identity) bool {
	return false
}

// CanManageUsers allows admins to update or delete other accounts.
func CanManageUsers(actor models.Identity) bool {
	return IsAdmin(actor)
}
