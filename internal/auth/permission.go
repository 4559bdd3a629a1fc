package auth

import "strings"

// RoleAdmin é o único papel reconhecido hoje.
const RoleAdmin = "admin"

// DevIdentity é injetada quando AUTH_MODE=dev.
var DevIdentity = Identity{Subject: "admin", Nome: "Administrador Master", Roles: []string{RoleAdmin}}

// CheckPermission é um stub: libera tudo para o papel admin e nada para os
// demais. Não há modelo de RBAC por trás; substituir quando existir.
func CheckPermission(id Identity, permission string) bool {
	for _, role := range id.Roles {
		if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
			return true
		}
	}
	return false
}
