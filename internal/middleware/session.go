package middleware

import (
	"net/http"
	"strings"
)

// InteractionRecorder records use of a named feature
type InteractionRecorder interface {
	RecordInteraction(feature string)
}

// SessionTracking records one interaction per API request, named after the
// first path segment below prefix. Health and metrics endpoints are not counted.
func SessionTracking(recorder InteractionRecorder, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if feature := featureFromPath(r.URL.Path, prefix); feature != "" && r.Method != http.MethodOptions {
				recorder.RecordInteraction(feature)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func featureFromPath(path, prefix string) string {
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok {
		return ""
	}
	rest = strings.TrimPrefix(rest, "/")
	feature, _, _ := strings.Cut(rest, "/")
	return feature
}
