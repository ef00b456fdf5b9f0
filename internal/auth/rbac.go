package auth

import "strings"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleColaborador Role = "colaborador"
)

// NormalizeRole maps arbitrary input to a known role. Unknown values fall
// back to colaborador, the least privileged role.
func NormalizeRole(role string) Role {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleColaborador
	}
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}
