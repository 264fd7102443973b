package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories"
	"github.com/blogem/inkwell/userctx"
)

var auditedMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// AuditLogger records every content mutation made through the admin area
func AuditLogger(auditRepo repositories.AuditRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auditedMethods[r.Method] {
				entry := &models.AuditLogEntry{
					UserEmail: userctx.GetUserEmail(r.Context()),
					Method:    r.Method,
					Path:      r.URL.Path,
					UserAgent: r.UserAgent(),
					IPAddress: getIPAddress(r),
					FormData:  captureFormData(r),
				}

				// Log asynchronously to avoid blocking request; the request
				// context ends with the response
				go func() {
					if err := auditRepo.Create(context.Background(), entry); err != nil {
						logger.Error("Failed to create audit log",
							zap.String("path", entry.Path),
							zap.Error(err))
					}
				}()
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Take first IP if multiple
		ip, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(ip)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// captureFormData serializes the posted fields as JSON. Page bodies are
// replaced by their length.
func captureFormData(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}

	fields := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		switch {
		case key == "body":
			fields[key] = fmt.Sprintf("<%d bytes>", len(r.PostForm.Get(key)))
		case len(values) == 1:
			fields[key] = values[0]
		default:
			fields[key] = values
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(data)
}
