// Файл: internal/api/middleware.go
package api

import (
	"context"
	"mime"
	"net/http"
)

// ConfigContextKey - ключ для сохранения конфига в контексте запроса.
var ConfigContextKey = &contextKey{"Config"}

type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "api context value " + k.name
}

// ConfigMiddleware добавляет конфиг в контекст запроса.
func ConfigMiddleware(cfg interface{}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ConfigContextKey, cfg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JSONContentTypeMiddleware отклоняет запросы с телом не в JSON.
func JSONContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !isJSONContentType(ct) {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}
