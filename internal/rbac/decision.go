package rbac

// Decide evaluates a declared requirement against the caller's resolved
// role and permission codes. Pure and deterministic: no I/O, no mutation.
//
// An empty requirement always allows. A non-empty role list admits a caller
// whose roles intersect it (ANY-semantics, independent of Mode — preserved
// from observed production behavior). A non-empty permission list honors
// Mode. When both kinds are declared, both must pass independently.
func Decide(req Requirement, callerRoleCodes, callerPermissionCodes []string) Verdict {
	if req.IsEmpty() {
		return Allow
	}

	if len(req.Roles) > 0 {
		if !containsAny(callerRoleCodes, req.Roles) {
			return Deny(ReasonMissingRole)
		}
	}

	if len(req.Permissions) > 0 {
		switch req.Mode {
		case ModeAll:
			if !containsAll(callerPermissionCodes, req.Permissions) {
				return Deny(ReasonMissingPermission)
			}
		default: // ANY
			if !containsAny(callerPermissionCodes, req.Permissions) {
				return Deny(ReasonMissingPermission)
			}
		}
	}

	return Allow
}

func containsAny(held, required []string) bool {
	for _, r := range required {
		for _, h := range held {
			if h == r {
				return true
			}
		}
	}
	return false
}

func containsAll(held, required []string) bool {
	for _, r := range required {
		found := false
		for _, h := range held {
			if h == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
