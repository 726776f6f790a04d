// Package web is the HTTP front-end: one server-rendered page per panel,
// plain form posts for every action, and a cookie that carries the
// backend access token across restarts. All behavior lives in the app
// controller; handlers only translate requests into controller calls.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/log"
	appweb "fintrack/web"
)

const (
	sessionCookie = "fintrack_session"
	tokenKey      = "access_token"
)

type Server struct {
	http.Server
	mux       *http.ServeMux
	templates *template.Template
	app       *app.App
	cookies   *sessions.CookieStore
	log       *log.Logger
	csrfKey   []byte
	devMode   bool

	authLimiter *limiter
}

type Config struct {
	Addr       string
	SessionKey []byte
	CSRFKey    []byte
	// DevMode relaxes the Secure flag on cookies for plain-HTTP setups.
	DevMode bool
}

func NewServer(cfg Config, application *app.App, logger *log.Logger) (*Server, error) {
	mux := http.NewServeMux()
	s := &Server{
		Server:  http.Server{Addr: cfg.Addr, Handler: mux},
		mux:     mux,
		app:     application,
		cookies: sessions.NewCookieStore(cfg.SessionKey),
		log:     logger.WithComponent(log.ComponentWeb),
		csrfKey: cfg.CSRFKey,
		devMode: cfg.DevMode,

		authLimiter: newLimiter(authLimitPerMinute),
	}
	s.cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   !cfg.DevMode,
		SameSite: http.SameSiteLaxMode,
	}

	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("£%.2f", v) },
		"num":   core.FormatNumber,
		"count": core.FormatCount,
		"deref": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"freqs": func() []core.Frequency {
			return []core.Frequency{core.OneOff, core.Weekly, core.Monthly, core.Quarterly, core.Yearly}
		},
		"accountTypes": func() []core.AccountType {
			return []core.AccountType{core.AccountBank, core.AccountCash, core.AccountOther}
		},
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/", s.trace(s.handleIndex))

	mux.HandleFunc("/auth/register", s.trace(s.limitAuth(s.handleRegister)))
	mux.HandleFunc("/auth/login", s.trace(s.limitAuth(s.handleLogin)))
	mux.HandleFunc("/auth/forgot", s.trace(s.limitAuth(s.handleForgot)))
	mux.HandleFunc("/auth/reset", s.trace(s.limitAuth(s.handleReset)))
	mux.HandleFunc("/auth/logout", s.trace(s.handleLogout))

	mux.HandleFunc("/nav/open", s.trace(s.handleOpen))
	mux.HandleFunc("/nav/back", s.trace(s.handleBack))
	mux.HandleFunc("/nav/month", s.trace(s.handleMonth))
	mux.HandleFunc("/nav/day", s.trace(s.handleDay))
	mux.HandleFunc("/nav/company", s.trace(s.handleSelectCompany))

	mux.HandleFunc("/accounts/save", s.trace(s.handleSaveAccount))
	mux.HandleFunc("/accounts/edit", s.trace(s.handleEditAccount))
	mux.HandleFunc("/accounts/delete", s.trace(s.handleDeleteAccount))

	mux.HandleFunc("/bills/save", s.trace(s.handleSaveBill))
	mux.HandleFunc("/bills/edit", s.trace(s.handleEditBill))
	mux.HandleFunc("/bills/delete", s.trace(s.handleDeleteBill))

	mux.HandleFunc("/companies/save", s.trace(s.handleSaveCompany))
	mux.HandleFunc("/companies/edit", s.trace(s.handleEditCompany))
	mux.HandleFunc("/companies/delete", s.trace(s.handleDeleteCompany))

	mux.HandleFunc("/shift/save", s.trace(s.handleSaveShift))
	mux.HandleFunc("/shift/stamp", s.trace(s.handleStampShift))
	mux.HandleFunc("/shift/delete", s.trace(s.handleDeleteShift))

	protected := csrf.Protect(cfg.CSRFKey,
		csrf.Secure(!cfg.DevMode),
		csrf.Path("/"),
	)(mux)
	if cfg.DevMode {
		// Plain-HTTP setups must be marked explicitly or gorilla/csrf
		// assumes HTTPS and rejects every unsafe request (no referer).
		inner := protected
		protected = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
	s.Handler = protected
	return s, nil
}

// trace wraps a handler with security headers and request logging, with
// a request id for correlating the two log lines.
func (s *Server) trace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := newRequestID()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		s.log.Debug("Request started",
			"request_id", requestID, "method", r.Method, "url", r.URL.Path)

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		s.log.Info("Request completed",
			"request_id", requestID, "method", r.Method, "url", r.URL.Path,
			"status", rw.status, "duration_ms", time.Since(start).Milliseconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// storedToken reads the backend access token from the session cookie.
func (s *Server) storedToken(r *http.Request) string {
	sess, err := s.cookies.Get(r, sessionCookie)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

// persistToken writes the current backend access token into the cookie,
// or clears the cookie when the session is gone.
func (s *Server) persistToken(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.cookies.Get(r, sessionCookie)
	token := s.app.Token()
	if token == "" {
		sess.Options.MaxAge = -1
	} else {
		sess.Values[tokenKey] = token
	}
	if err := sess.Save(r, w); err != nil {
		s.log.Warn("Saving session cookie failed", "error", err)
	}
}
