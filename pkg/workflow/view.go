package workflow

import "github.com/modelmagic/modelmagic/dao/model"

// ResolveViewMode maps a user's immutable role plus their stored preference
// to the surface the UI must show. Only admins get a choice: editors are
// always on the admin surface, clients always on the client surface, and any
// stale stored preference for them is ignored.
func ResolveViewMode(role model.Role, stored model.ViewMode) model.ViewMode {
	switch role {
	case model.RoleAdmin:
		if stored == model.ViewModeAdmin {
			return model.ViewModeAdmin
		}
		return model.ViewModeClient
	case model.RoleEditor:
		return model.ViewModeAdmin
	default:
		return model.ViewModeClient
	}
}

// CanSetViewMode reports whether the role may persist the given preference.
// Switching is a pure preference change and never mutates project state.
func CanSetViewMode(role model.Role, mode model.ViewMode) bool {
	if mode != model.ViewModeClient && mode != model.ViewModeAdmin {
		return false
	}
	if mode == model.ViewModeAdmin {
		return role == model.RoleAdmin
	}
	// Everyone may store the client preference; it is a no-op for editors,
	// who resolve to the admin surface regardless.
	return true
}
