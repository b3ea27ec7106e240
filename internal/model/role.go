package model

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      = Role("user")
	RoleAssistant = Role("assistant")
)

// ParseRole accepts the canonical role names and the "model" alias some
// providers use for assistant turns.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "assistant", "model":
		return RoleAssistant, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}
