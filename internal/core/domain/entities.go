package domain

import "time"

// Role names known to the system
const (
	RoleAdmin = "admin"
)

// DefaultRoles are the roles every deployment starts with
var DefaultRoles = []string{RoleAdmin}

// SessionTTL is the lifetime of a login session (2 weeks)
const SessionTTL = 1209600 * time.Second
