package domain

// CanEdit reports whether actor may edit target. Rules are evaluated in
// order and the first match wins:
//
//	no actor                                → false
//	Administrator                           → true
//	Manager editing a User                  → true
//	User editing their own account          → true
//	anything else                           → false
func CanEdit(actor, target *Account) bool {
	if actor == nil || target == nil {
		return false
	}
	switch {
	case actor.Role == RoleAdministrator:
		return true
	case actor.Role == RoleManager && target.Role == RoleUser:
		return true
	case actor.Role == RoleUser && actor.ID == target.ID:
		return true
	}
	return false
}

// CanCreate reports whether actor may create accounts.
func CanCreate(actor *Account) bool {
	if actor == nil {
		return false
	}
	return actor.Role == RoleAdministrator || actor.Role == RoleManager
}
