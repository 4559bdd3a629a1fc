package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/escritoriodigital/api/internal/auth"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyIdentity contextKey = "identity"
)

// Auth valida JWT de acesso e injeta a identidade no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Identity())))
		})
	}
}

// DevAuth injeta sempre a mesma identidade. Usado com AUTH_MODE=dev.
func DevAuth(id auth.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity guarda a identidade e o subject no contexto.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	if info, ok := ctx.Value(contextKeyRequestInfo).(*requestInfo); ok {
		info.subject = id.Subject
	}
	ctx = context.WithValue(ctx, ContextKeySubject, id.Subject)
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetIdentity recupera a identidade do contexto.
func GetIdentity(ctx context.Context) auth.Identity {
	val, _ := ctx.Value(ContextKeyIdentity).(auth.Identity)
	return val
}

// RequirePermission consulta o verificador de permissões antes do handler.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.CheckPermission(GetIdentity(r.Context()), permission) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
