package model

import (
	"fmt"
	"strings"
)

// Role distinguishes the two kinds of directory accounts.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts CUSTOMER or ADMIN in any case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// User is a directory account. Accounts are never edited after creation.
//
// Fields:
//  Username    – unique login name without spaces.
//  Password    – stored secret; clear text unless a hasher is configured.
//  Role        – CUSTOMER or ADMIN.
//  DisplayName – customer's name; empty for admins.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"-"`
	Role        Role   `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
}

// IsAdmin reports whether the account may use admin operations.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidateCredential checks that a username or password is non-empty and
// contains no whitespace. field names the value in the error.
func ValidateCredential(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("%w: %s must not contain spaces", ErrValidation, field)
	}
	return nil
}
