package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"tickethub/internal/platform/metrics"
	"tickethub/internal/session"
	"tickethub/internal/session/store"
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
)

const secret = "manager-test-secret-0123456789"

type ManagerSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	manager *session.Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.store = store.NewMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.manager = session.NewManager(s.store, secret,
		session.WithMetrics(s.metrics),
		session.WithCookie("tickethub_session", 0, false),
	)
}

// serve runs req through the middleware and returns the session the handler saw.
func (s *ManagerSuite) serve(req *http.Request) (*httptest.ResponseRecorder, *session.Session) {
	var seen *session.Session
	h := s.manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		s.Require().True(ok)
		seen = sess
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "tickethub_session" {
			return c
		}
	}
	return nil
}

func (s *ManagerSuite) TestMiddleware() {
	s.Run("first visit creates a session and sets the cookie", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
		rec, sess := s.serve(req)

		s.Require().NotNil(sess)
		s.True(sess.IsNew())
		s.Contains(sess.Device(), "Firefox")
		cookie := sessionCookie(rec)
		s.Require().NotNil(cookie)
		s.True(cookie.HttpOnly)
		s.Equal(http.SameSiteLaxMode, cookie.SameSite)
		s.Equal(1, s.store.Len())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsCreated))
	})

	s.Run("cookie resumes the same session", func() {
		s.SetupTest()
		first, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(sessionCookie(first))
		rec, resumed := s.serve(req)

		s.Equal(sess.ID(), resumed.ID())
		s.False(resumed.IsNew())
		s.Nil(sessionCookie(rec))
		s.Equal(1, s.store.Len())
	})

	s.Run("tampered cookie starts a fresh session", func() {
		s.SetupTest()
		first, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
		cookie := sessionCookie(first)
		cookie.Value = cookie.Value[:len(cookie.Value)-4] + "AAAA"

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		rec, fresh := s.serve(req)

		s.NotEqual(sess.ID(), fresh.ID())
		s.True(fresh.IsNew())
		s.NotNil(sessionCookie(rec))
	})

	s.Run("cookie for an evicted session starts a fresh session", func() {
		s.SetupTest()
		first, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
		s.Require().NoError(s.store.Delete(context.Background(), sess.ID()))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(sessionCookie(first))
		_, fresh := s.serve(req)

		s.NotEqual(sess.ID(), fresh.ID())
	})
}

func (s *ManagerSuite) TestDestroy() {
	_, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	s.Require().NoError(s.manager.Destroy(rec, httptest.NewRequest(http.MethodPost, "/sign-out/user", nil), sess))

	s.Equal(0, s.store.Len())
	cookie := sessionCookie(rec)
	s.Require().NotNil(cookie)
	s.Equal(-1, cookie.MaxAge)
}

func (s *ManagerSuite) TestRequireCSRF() {
	_, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	token := s.manager.CSRFToken(sess)

	handler := s.manager.RequireCSRF(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	run := func(method, body, header string) int {
		req := httptest.NewRequest(method, "/validate-user", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if header != "" {
			req.Header.Set(session.CSRFHeader, header)
		}
		req = req.WithContext(session.WithSession(req.Context(), sess))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	s.Equal(http.StatusNoContent, run(http.MethodGet, "", ""))
	s.Equal(http.StatusForbidden, run(http.MethodPost, "card=GHA-123456789-0", ""))
	s.Equal(http.StatusForbidden, run(http.MethodPost, "csrf_token=forged", ""))
	s.Equal(http.StatusNoContent, run(http.MethodPost, url.Values{session.CSRFField: {token}}.Encode(), ""))
	s.Equal(http.StatusNoContent, run(http.MethodPost, "", token))
}

func (s *ManagerSuite) TestSessionWrites() {
	ctx := context.Background()
	_, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := &models.IdentityRecord{ID: 7, CardNumber: "GHA-123456789-0", FirstName: "Ama"}

	s.Run("identity writes are persisted", func() {
		s.Require().NoError(sess.SetIdentity(ctx, models.RoleCitizen, rec))
		s.True(sess.Has(models.RoleCitizen))
		s.False(sess.Has(models.RoleOfficer))

		stored, err := s.store.Load(ctx, sess.ID())
		s.Require().NoError(err)
		s.Equal(rec, stored.Citizen)
	})

	s.Run("notices drain once", func() {
		s.Require().NoError(sess.Notify(ctx, session.NoticeSuccess("Ghana card verified successfully")))
		notices, err := sess.TakeNotices(ctx)
		s.Require().NoError(err)
		s.Len(notices, 1)

		notices, err = sess.TakeNotices(ctx)
		s.Require().NoError(err)
		s.Empty(notices)
	})

	s.Run("handoff is one-shot", func() {
		s.Require().NoError(sess.Handoff(ctx, rec))
		got, err := sess.TakeHandoff(ctx)
		s.Require().NoError(err)
		s.Equal(rec, got)

		got, err = sess.TakeHandoff(ctx)
		s.Require().NoError(err)
		s.Nil(got)
	})

	s.Run("clear signs out only that role", func() {
		s.Require().NoError(sess.SetIdentity(ctx, models.RoleOfficer, &models.IdentityRecord{ID: 3, CardNumber: "GHA-000000003-1"}))
		s.Require().NoError(sess.Clear(ctx, models.RoleCitizen))
		s.False(sess.Has(models.RoleCitizen))
		s.True(sess.Has(models.RoleOfficer))
	})

	s.Run("callback errors abort the write", func() {
		boom := errors.New("boom")
		err := sess.Update(ctx, func(d *session.Data) error {
			d.Officer = nil
			return boom
		})
		s.ErrorIs(err, boom)
		s.True(sess.Has(models.RoleOfficer))
	})
}

func (s *ManagerSuite) TestConcurrentWritesOnOneSession() {
	ctx := context.Background()
	_, sess := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		// Each request gets its own handle, as separate HTTP requests would.
		handle := session.Attach(s.store, sess.Snapshot())
		wg.Add(1)
		go func(ticketID id.TicketID) {
			defer wg.Done()
			_ = handle.Update(ctx, func(d *session.Data) error {
				d.Ledger.SetMethod(ticketID, models.PaymentMethodMomo)
				return nil
			})
		}(id.TicketID(i))
	}
	wg.Wait()

	stored, err := s.store.Load(ctx, sess.ID())
	s.Require().NoError(err)
	s.Len(stored.Ledger.Methods, 20)
}
