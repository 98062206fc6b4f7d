package entity

import "strings"

// RoleAdmin nombre (sin distinguir mayúsculas) del rol que gestiona usuarios.
const RoleAdmin = "admin"

// Role rol asignable a usuarios. El nombre es único en la práctica, no por constraint.
type Role struct {
	ID   int64
	Name string
}

// IsAdmin indica si el nombre de rol corresponde al administrador.
func IsAdmin(roleName string) bool {
	return strings.EqualFold(strings.TrimSpace(roleName), RoleAdmin)
}
