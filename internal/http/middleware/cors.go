package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	corsAllowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-Id"
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders = "X-Request-Id, Retry-After"
	corsMaxAge        = "600"
)

// originPolicy decide quais Origins recebem cabeçalhos CORS.
type originPolicy struct {
	exact    map[string]struct{}
	suffixes []string
}

// newOriginPolicy interpreta ALLOW_ORIGINS. Entradas "*.dominio" liberam
// apenas subdomínios; as demais exigem Origin idêntico.
func newOriginPolicy(entries []string) originPolicy {
	p := originPolicy{exact: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		e := strings.TrimSpace(entry)
		switch {
		case e == "":
		case strings.HasPrefix(e, "*."):
			p.suffixes = append(p.suffixes, strings.ToLower(e[1:]))
		default:
			p.exact[strings.TrimRight(e, "/")] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	if len(p.suffixes) == 0 {
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suf := range p.suffixes {
		// o domínio raiz não casa com "*.dominio"
		if strings.HasSuffix(host, suf) && host != suf[1:] {
			return true
		}
	}
	return false
}

// CORS aplica a política de ALLOW_ORIGINS (ex.: https://console.escritorio.com.br,
// *.escritorio.com.br) e responde preflights sem chegar aos handlers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := policy.allows(origin)
			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			if allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Max-Age", corsMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
