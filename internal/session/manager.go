package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tickethub/internal/platform/metrics"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

type contextKey struct{}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by the manager middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok && sess != nil
}

// Manager loads or creates the session for each request and owns the cookie.
type Manager struct {
	store   Store
	codec   *CookieCodec
	csrf    *CSRF
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	cookieName string
	maxAge     time.Duration
	secure     bool
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(mtr *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mtr }
}

// WithCookie sets the cookie name, lifetime and Secure flag.
func WithCookie(name string, maxAge time.Duration, secure bool) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
		if maxAge > 0 {
			m.maxAge = maxAge
		}
		m.secure = secure
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager builds a manager over store. secret signs cookies and derives
// CSRF tokens.
func NewManager(store Store, secret string, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		codec:      NewCookieCodec(secret),
		csrf:       NewCSRF(secret),
		logger:     slog.New(slog.DiscardHandler),
		now:        time.Now,
		cookieName: "tickethub_session",
		maxAge:     365 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware resolves the session from the cookie. A missing, tampered or
// unknown cookie starts a fresh session and sets a new cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, err := m.resume(ctx, r)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to load session", "error", err)
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		if sess == nil {
			sess, err = m.start(ctx, r)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to create session", "error", err)
				http.Error(w, "session unavailable", http.StatusServiceUnavailable)
				return
			}
			if err := m.writeCookie(w, sess.ID()); err != nil {
				m.logger.ErrorContext(ctx, "failed to write session cookie", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
	})
}

// resume returns nil without error when the request carries no usable session.
func (m *Manager) resume(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	sessionID, err := m.codec.Decode(cookie.Value)
	if err != nil {
		m.logger.DebugContext(ctx, "discarding session cookie", "error", err)
		return nil, nil
	}
	data, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Attach(m.store, data), nil
}

func (m *Manager) start(ctx context.Context, r *http.Request) (*Session, error) {
	data := NewData(id.NewSessionID(), DeviceName(r.UserAgent()), m.now())
	if err := m.store.Create(ctx, data); err != nil {
		return nil, err
	}
	m.metrics.IncrementSessionsCreated()
	m.logger.DebugContext(ctx, "session created", "session_id", data.ID.String(), "device", data.Device)

	sess := Attach(m.store, data)
	sess.isNew = true
	return sess, nil
}

// Destroy deletes the stored session and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if err := m.store.Delete(r.Context(), sess.ID()); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) writeCookie(w http.ResponseWriter, sessionID id.SessionID) error {
	value, err := m.codec.Encode(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CSRFToken returns the form token for sess.
func (m *Manager) CSRFToken(sess *Session) string {
	return m.csrf.Token(sess.ID())
}

// RequireCSRF rejects state-changing requests whose form field or header
// does not carry the session's token. It must run inside Middleware.
func (m *Manager) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := FromContext(r.Context())
		if !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		token := r.Header.Get(CSRFHeader)
		if token == "" {
			token = r.PostFormValue(CSRFField)
		}
		if !m.csrf.Verify(sess.ID(), token) {
			m.logger.WarnContext(r.Context(), "csrf token mismatch",
				"session_id", sess.ID().String(),
				"path", r.URL.Path,
			)
			http.Error(w, "invalid or missing form token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
