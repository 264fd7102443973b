package debugbar

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Config controls the debugger.
type Config struct {
	Enabled bool
	// Editor is the URL template used for source links, see DefaultEditor.
	Editor string
}

// Extension contributes panels to every request. Attach may return a derived
// context, which is handed to the rest of the handler chain.
type Extension interface {
	Attach(ctx context.Context, bar *Bar, screen *BlueScreen) context.Context
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(ctx context.Context, bar *Bar, screen *BlueScreen) context.Context

func (f ExtensionFunc) Attach(ctx context.Context, bar *Bar, screen *BlueScreen) context.Context {
	return f(ctx, bar, screen)
}

// Debugger builds a fresh bar and blue screen for each request.
type Debugger struct {
	config     Config
	logger     *zap.Logger
	extensions []Extension
}

// New creates a debugger. A nil logger disables logging.
func New(config Config, logger *zap.Logger, extensions ...Extension) *Debugger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Debugger{
		config:     config,
		logger:     logger,
		extensions: extensions,
	}
}

// Enabled reports whether the debugger instruments requests.
func (d *Debugger) Enabled() bool {
	return d.config.Enabled
}

// Editor returns the configured editor URL template.
func (d *Debugger) Editor() string {
	return d.config.Editor
}

type sessionKey struct{}

type session struct {
	bar    *Bar
	screen *BlueScreen
	failed bool
}

func sessionFromContext(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

// Middleware instruments the request: extensions attach their panels, HTML
// responses get the bar injected before </body>, and panics are rendered by
// the blue screen.
func (d *Debugger) Middleware(next http.Handler) http.Handler {
	if !d.config.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := &session{bar: NewBar(), screen: NewBlueScreen()}
		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		for _, ext := range d.extensions {
			ctx = ext.Attach(ctx, s.bar, s.screen)
		}

		bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			d.logger.Error("Request panicked",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
				zap.Stack("stack"),
			)
			d.writeBlueScreen(w, s.screen, err)
		}()

		next.ServeHTTP(bw, r.WithContext(ctx))

		body := bw.buf.Bytes()
		if !s.failed && isHTML(w.Header(), body) {
			body = d.inject(s.bar, body)
			w.Header().Del("Content-Length")
		}
		w.WriteHeader(bw.status)
		if _, err := w.Write(body); err != nil {
			d.logger.Debug("Failed to write response", zap.Error(err))
		}
	})
}

func (d *Debugger) inject(bar *Bar, body []byte) []byte {
	idx := bytes.LastIndex(body, []byte("</body>"))
	if idx < 0 {
		return body
	}
	markup, err := bar.Render()
	if err != nil {
		d.logger.Warn("Failed to render debug bar", zap.Error(err))
		return body
	}

	out := make([]byte, 0, len(body)+len(markup))
	out = append(out, body[:idx]...)
	out = append(out, markup...)
	out = append(out, body[idx:]...)
	return out
}

func (d *Debugger) writeBlueScreen(w http.ResponseWriter, screen *BlueScreen, err error) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Del("Content-Length")
	w.WriteHeader(http.StatusInternalServerError)
	if rerr := screen.Render(w, err); rerr != nil {
		d.logger.Error("Failed to render blue screen", zap.Error(rerr))
	}
}

// Fail reports err for the current request. With an active debugger session
// the blue screen is rendered, otherwise a plain 500 response is written.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	s := sessionFromContext(r.Context())
	if s == nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.failed = true
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if rerr := s.screen.Render(w, err); rerr != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isHTML(h http.Header, body []byte) bool {
	ct := h.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}
	return strings.HasPrefix(ct, "text/html")
}

// bufferedWriter holds the response until the bar has been injected.
type bufferedWriter struct {
	http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
}

func (w *bufferedWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
}

func (w *bufferedWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.buf.Write(p)
}
