package middleware

import (
	"net/http"
	"strings"
)

const methodField = "_method"

var overridable = map[string]struct{}{
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Methods restricts handlers to an allowlist of HTTP methods.
func Methods(allowed ...string) func(http.Handler) http.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, m := range allowed {
		allowedSet[strings.ToUpper(m)] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowedSet[r.Method]; !ok {
				w.Header().Set("Allow", strings.Join(allowed, ", "))
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MethodOverride lets HTML forms issue PUT, PATCH and DELETE by posting
// _method in the query string or an urlencoded body. An urlencoded body is
// parsed while the method is still POST; net/http ignores DELETE bodies.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := r.URL.Query().Get(methodField)
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				if err := r.ParseForm(); err == nil && m == "" {
					m = r.PostForm.Get(methodField)
				}
			}
			m = strings.ToUpper(m)
			if _, ok := overridable[m]; ok {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
