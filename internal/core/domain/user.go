package domain

import "strings"

const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User models a parent or child account.
// A parent never has a ParentID; a child always points at its parent's ID.
type User struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Role         string  `json:"role"`
	ParentID     *string `json:"parent_id"`
}

// IsParent reports whether the user holds the parent role.
func (u *User) IsParent() bool {
	return u != nil && u.Role == RoleParent
}

// IsChild reports whether the user holds the child role.
func (u *User) IsChild() bool {
	return u != nil && u.Role == RoleChild
}

// OwnedBy reports whether the user is a child of the given parent.
func (u *User) OwnedBy(parent *User) bool {
	if u == nil || parent == nil || u.ParentID == nil {
		return false
	}
	return *u.ParentID == parent.ID
}

// NormalizeUsername is applied to every username before it is stored or
// looked up.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
