package auth

import (
	"strings"

	"github.com/bazaar-shop/marketplace/internal/models"
	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

// RequireRole fails with CodeForbidden unless id holds one of roles.
func RequireRole(id Identity, roles ...models.Role) error {
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return appErr.Newf(appErr.CodeForbidden, "this action requires the %s role", strings.Join(names, " or "))
}

// Owns reports whether ownerID and userID name the same account. Both are
// compared as trimmed, case-folded strings; an empty id owns nothing.
func Owns(ownerID, userID string) bool {
	o, u := normalizeID(ownerID), normalizeID(userID)
	return o != "" && o == u
}

// CheckOwner fails with CodeForbidden unless id owns the resource recorded
// with ownerID. action names the attempted operation in the message.
func CheckOwner(ownerID string, id Identity, action string) error {
	if Owns(ownerID, id.UserID) {
		return nil
	}
	return appErr.Newf(appErr.CodeForbidden, "you are not allowed to %s this product", action)
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
