package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blogem/inkwell/models"
	"github.com/blogem/inkwell/repositories/mocks"
	"github.com/blogem/inkwell/userctx"
)

// echoUser writes the request user as "<id>|<email>|<roles>"
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	w.Write([]byte(userctx.GetUserID(ctx) + "|" + userctx.GetUserEmail(ctx) + "|" + strings.Join(userctx.GetRoles(ctx), ",")))
})

func newSessionRouter(t *testing.T) chi.Router {
	t.Helper()
	sessioner, err := session.Sessioner(session.Options{
		Provider:   "memory",
		CookieName: "test_session",
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(sessioner)
	r.Get("/login-as", func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		sess.Set(SessionUserID, "sub-1")
		sess.Set(SessionUserEmail, "editor@example.com")
		sess.Set(SessionUserRoles, []string{"editor"})
	})
	r.With(RequireAuth).Get("/private", echoUser)
	return r
}

func TestRequireAuth(t *testing.T) {
	r := newSessionRouter(t)

	// Anonymous requests are sent to the login page
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// A signed in session reaches the handler with the user in context
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login-as", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sub-1|editor@example.com|editor", rec.Body.String())
}

func TestStaticUser(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticUser("dev@localhost", []string{"editor", "admin"})(echoUser).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "dev@localhost|dev@localhost|editor,admin", rec.Body.String())
}

func TestAuditLogger(t *testing.T) {
	repo := mocks.NewMockAuditRepository(t)
	done := make(chan *models.AuditLogEntry, 1)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLogEntry")).
		Run(func(args mock.Arguments) { done <- args.Get(1).(*models.AuditLogEntry) }).
		Return(nil).Once()

	h := StaticUser("editor@example.com", nil)(AuditLogger(repo, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the form stays readable after auditing
		w.Write([]byte(r.PostFormValue("title")))
	})))

	// GET requests are not audited
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pages", nil))

	form := url.Values{"title": {"Hello"}, "body": {"12345"}, "tags[]": {"1", "2"}}
	req := httptest.NewRequest(http.MethodPost, "/pages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "Hello", rec.Body.String())

	select {
	case entry := <-done:
		assert.Equal(t, "editor@example.com", entry.UserEmail)
		assert.Equal(t, "POST", entry.Method)
		assert.Equal(t, "10.0.0.1", entry.IPAddress)
		assert.JSONEq(t, `{"title":"Hello","body":"<5 bytes>","tags[]":["1","2"]}`, entry.FormData)
	case <-time.After(time.Second):
		t.Fatal("audit entry was not written")
	}
}

func TestGetIPAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4321"
	assert.Equal(t, "192.168.1.5", getIPAddress(req))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", getIPAddress(req))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, "Request served", entries[0].Message)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["bytes"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}
