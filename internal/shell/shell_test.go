package shell

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"foodreel/internal/backend"
	"foodreel/internal/gateway"
	"foodreel/internal/platform/logger"
	"foodreel/internal/platform/metrics"
	"foodreel/internal/session"
	"foodreel/internal/storage"
	"foodreel/pkg/platform/sentinel"
)

// backendCall is one request the fake backend saw.
type backendCall struct {
	Method        string
	Path          string
	Authorization string
}

type ShellSuite struct {
	suite.Suite
	ctx     context.Context
	store   *storage.MemoryStore
	holder  *session.Holder
	metrics *metrics.Metrics
	shell   *Shell
	router  http.Handler

	backend *httptest.Server
	mux     *http.ServeMux
	mu      sync.Mutex
	calls   []backendCall
}

func TestShellSuite(t *testing.T) {
	suite.Run(t, new(ShellSuite))
}

func (s *ShellSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = storage.NewMemoryStore()
	s.calls = nil
	s.mux = http.NewServeMux()
	s.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, backendCall{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, "/api/v1"),
			Authorization: r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		s.mux.ServeHTTP(w, r)
	}))

	log := logger.NewWithWriter(io.Discard, "debug", "json")
	s.holder = session.NewHolder(s.store, log)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	client, err := gateway.New(s.backend.URL+"/api/v1",
		gateway.WithCredentials(s.holder),
		gateway.WithInvalidator(s.holder),
		gateway.WithLogger(log),
		gateway.WithMetrics(s.metrics),
	)
	s.Require().NoError(err)

	s.shell = New(s.holder, client, log, s.metrics)
	s.router = s.shell.Router()
}

func (s *ShellSuite) TearDownTest() {
	s.shell.Close()
	s.backend.Close()
}

func (s *ShellSuite) seed(credential string, role session.Role) {
	s.Require().NoError(s.store.Set(s.ctx, storage.KeyAuthToken, credential))
	s.Require().NoError(s.store.Set(s.ctx, storage.KeyUserRole, role.String()))
}

func (s *ShellSuite) respond(pattern string, status int, body string) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (s *ShellSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ShellSuite) backendCalls() []backendCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backendCall(nil), s.calls...)
}

func (s *ShellSuite) view(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// A 401 on one page clears the credential and sends the visitor to login; a
// guard on another page then redirects as well and renders nothing.
func (s *ShellSuite) TestExpiredCredentialScenario() {
	s.seed("abc123", session.RoleCustomer)
	s.respond("GET /api/v1/user/cartItems", http.StatusUnauthorized, `{"message":"jwt expired"}`)
	s.shell.Start(s.ctx)
	s.Equal(session.FlagAuthenticated, s.holder.Read().Flag)

	rec := s.do(http.MethodGet, "/cart", "")

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
	s.Equal(`"cache"`, rec.Header().Get("Clear-Site-Data"))
	s.Equal([]backendCall{{Method: http.MethodGet, Path: "/user/cartItems", Authorization: "Bearer abc123"}}, s.backendCalls())

	_, err := s.store.Get(s.ctx, storage.KeyAuthToken)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(session.FlagUnauthenticated, s.holder.Read().Flag)

	rec = s.do(http.MethodGet, "/saved", "")
	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
	s.NotContains(rec.Body.String(), `"view"`)
	s.Len(s.backendCalls(), 1, "guarded view must not load data")

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.SessionInvalidations))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.GuardRedirects.WithLabelValues("/login")))
}

func (s *ShellSuite) TestOperatorInvalidation() {
	s.seed("op-token", session.RoleRestaurant)
	s.respond("GET /api/v1/resturants/profile", http.StatusOK, `{"data":{"_id":"r1","name":"Udupi","items":[]}}`)
	s.respond("GET /api/v1/resturants/analytics", http.StatusUnauthorized, `{}`)
	s.shell.Start(s.ctx)

	rec := s.do(http.MethodGet, "/restaurant/dashboard", "")

	s.Equal(http.StatusFound, rec.Code)
	s.Equal(OperatorLogin, rec.Header().Get("Location"))
	s.False(s.shell.Profiles().Cached(), "cached profile is dropped with the session")
	s.Equal(session.RoleRestaurant, s.holder.Read().Role)

	rec = s.do(http.MethodGet, "/restaurant/orders", "")
	s.Equal(OperatorLogin, rec.Header().Get("Location"))

	rec = s.do(http.MethodGet, OperatorLogin, "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("restaurant", s.view(rec)["data"].(map[string]any)["role"])
}

func (s *ShellSuite) TestNonAuthFailuresKeepSession() {
	s.seed("abc123", session.RoleCustomer)
	s.respond("GET /api/v1/user/cartItems", http.StatusForbidden, `{"message":"nope"}`)
	s.respond("GET /api/v1/items/item/missing", http.StatusNotFound, `{"message":"Item not found"}`)
	s.respond("GET /api/v1/user/savedItems", http.StatusInternalServerError, `{"message":"stack trace"}`)
	s.respond("POST /api/v1/orders/place", http.StatusUnprocessableEntity, `{"errors":[{"field":"items","message":"out of stock"}]}`)
	s.shell.Start(s.ctx)

	rec := s.do(http.MethodGet, "/cart", "")
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/item/missing", "")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Item not found", s.view(rec)["error_description"])

	rec = s.do(http.MethodGet, "/saved", "")
	s.Equal(http.StatusBadGateway, rec.Code)
	s.NotContains(rec.Body.String(), "stack trace")

	rec = s.do(http.MethodPost, "/orders/list", `{"items":[{"_id":"i1","quantity":1}]}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal(map[string]any{"items": "out of stock"}, s.view(rec)["fields"])

	credential, err := s.store.Get(s.ctx, storage.KeyAuthToken)
	s.Require().NoError(err)
	s.Equal("abc123", credential)
	s.Equal(session.FlagAuthenticated, s.holder.Read().Flag)
}

func (s *ShellSuite) TestLoadingUntilStarted() {
	s.seed("abc123", session.RoleCustomer)

	rec := s.do(http.MethodGet, "/cart", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal("1", rec.Header().Get("Retry-After"))
	s.Equal("loading", s.view(rec)["view"])
	s.Empty(rec.Header().Get("Location"), "unknown never redirects")
	s.Empty(s.backendCalls())

	rec = s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("unknown", s.view(rec)["session"])

	s.respond("GET /api/v1/user/cartItems", http.StatusOK, `{"response":{"items":[],"totalItems":0,"totalAmount":0}}`)
	s.shell.Start(s.ctx)

	rec = s.do(http.MethodGet, "/cart", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("cart", s.view(rec)["view"])
}

func (s *ShellSuite) TestHealthReportsDependencies() {
	s.shell.Start(s.ctx)
	var storageDown atomic.Bool
	s.shell.CheckHealth("storage", func(context.Context) error {
		if storageDown.Load() {
			return sentinel.ErrUnavailable
		}
		return nil
	})

	rec := s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusOK, rec.Code)
	body := s.view(rec)
	s.Equal("ok", body["status"])
	s.Equal(map[string]any{"storage": "ok"}, body["checks"])

	storageDown.Store(true)
	rec = s.do(http.MethodGet, "/healthz", "")
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	body = s.view(rec)
	s.Equal("degraded", body["status"])
	s.Equal(map[string]any{"storage": "unavailable"}, body["checks"])
	s.Equal("unauthenticated", body["session"])
}

func (s *ShellSuite) TestLoginAndLogout() {
	s.respond("POST /api/v1/user/login", http.StatusOK, `{"success":true,"token":"fresh"}`)
	s.shell.Start(s.ctx)
	s.Equal(session.FlagUnauthenticated, s.holder.Read().Flag)

	rec := s.do(http.MethodPost, "/login", `{"email":"a@b.c","password":"pw","role":"customer"}`)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/home", rec.Header().Get("Location"))

	credential, err := s.store.Get(s.ctx, storage.KeyAuthToken)
	s.Require().NoError(err)
	s.Equal("fresh", credential)
	role, err := s.store.Get(s.ctx, storage.KeyUserRole)
	s.Require().NoError(err)
	s.Equal("customer", role)
	s.Equal(session.State{Flag: session.FlagAuthenticated, Role: session.RoleCustomer}, s.holder.Read())

	for range 2 {
		rec = s.do(http.MethodPost, "/logout", "")
		s.Equal(http.StatusSeeOther, rec.Code)
		s.Equal("/login", rec.Header().Get("Location"))
		_, err = s.store.Get(s.ctx, storage.KeyAuthToken)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(session.FlagUnauthenticated, s.holder.Read().Flag)
	}
}

func (s *ShellSuite) TestLoginValidation() {
	s.shell.Start(s.ctx)

	rec := s.do(http.MethodPost, "/login", `{"role":"customer"}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(s.view(rec)["fields"], "email")
	s.Empty(s.backendCalls())

	rec = s.do(http.MethodPost, "/login", `{"email":"a","password":"b","role":"admin"}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/login", `{not json`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ShellSuite) TestRootAndCatchAll() {
	s.Run("customers get the feed at the root", func() {
		s.seed("abc123", session.RoleCustomer)
		s.respond("GET /api/v1/items", http.StatusOK, `{"data":[{"_id":"i1"}]}`)
		s.respond("GET /api/v1/user/savedItems", http.StatusOK, `{"data":[{"_id":"i1"}]}`)
		s.shell.Start(s.ctx)

		rec := s.do(http.MethodGet, "/", "")
		s.Equal(http.StatusOK, rec.Code)
		v := s.view(rec)
		s.Equal("home", v["view"])
		s.Equal([]any{"i1"}, v["data"].(map[string]any)["savedIds"])
	})

	s.Run("unknown paths go to the root", func() {
		rec := s.do(http.MethodGet, "/no/such/view", "")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/", rec.Header().Get("Location"))
	})

	s.Run("everyone else is sent to the operator dashboard", func() {
		s.TearDownTest()
		s.SetupTest()
		s.Require().NoError(s.store.Set(s.ctx, storage.KeyUserRole, session.RoleRestaurant.String()))
		s.shell.Start(s.ctx)

		rec := s.do(http.MethodGet, "/", "")
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/restaurant/dashboard", rec.Header().Get("Location"))
	})
}

func (s *ShellSuite) TestOperatorViews() {
	s.seed("op-token", session.RoleRestaurant)
	var profileCalls atomic.Int32
	s.mux.HandleFunc("GET /api/v1/resturants/profile", func(w http.ResponseWriter, _ *http.Request) {
		profileCalls.Add(1)
		_, _ = io.WriteString(w, `{"data":{"_id":"r1","name":"Udupi","items":[{"_id":"i1"}]}}`)
	})
	s.respond("GET /api/v1/resturants/analytics", http.StatusOK, `{"data":{"revenue":1200}}`)
	s.respond("POST /api/v1/restaurant/items", http.StatusCreated, `{"success":true}`)
	s.respond("GET /api/v1/resturants/orders", http.StatusOK, `{"data":[{"_id":"o1","status":"pending"},{"_id":"o2","status":"ready"}]}`)
	s.shell.Start(s.ctx)

	rec := s.do(http.MethodGet, "/restaurant/dashboard", "")
	s.Equal(http.StatusOK, rec.Code)
	s.do(http.MethodGet, "/restaurant/dashboard", "")
	s.Equal(int32(1), profileCalls.Load(), "profile is served from cache")

	rec = s.do(http.MethodPost, "/restaurant/items/add", `{"name":"Dosa"}`)
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/restaurant/items/add",
		`{"name":"Dosa","description":"Crisp","price":99,"category":"Indian","videoUrl":"https://v/1.mp4"}`)
	s.Equal(http.StatusSeeOther, rec.Code)
	s.Equal("/restaurant/dashboard", rec.Header().Get("Location"))
	s.False(s.shell.Profiles().Cached(), "adding an item refreshes the profile")

	rec = s.do(http.MethodGet, "/restaurant/orders", "")
	s.Equal(http.StatusOK, rec.Code)
	counts := s.view(rec)["data"].(map[string]any)["counts"].(map[string]any)
	s.Equal(1.0, counts["pending"])
	s.Equal(0.0, counts["delivered"])
}

func TestProfileCache(t *testing.T) {
	t.Run("a hit never refetches", func(t *testing.T) {
		fetcher := newSlowFetcher()
		close(fetcher.release)
		cache := NewProfileCache(fetcher)

		for range 3 {
			p, err := cache.Profile(context.Background())
			if err != nil || p.ID != "r1" {
				t.Fatalf("unexpected profile %+v, err %v", p, err)
			}
		}
		if got := fetcher.calls.Load(); got != 1 {
			t.Fatalf("expected one fetch, got %d", got)
		}
	})

	t.Run("forget detaches a fetch in flight", func(t *testing.T) {
		fetcher := newSlowFetcher()
		cache := NewProfileCache(fetcher)

		done := make(chan error, 1)
		go func() {
			_, err := cache.Profile(context.Background())
			done <- err
		}()
		<-fetcher.started
		cache.Forget()
		close(fetcher.release)

		if err := <-done; err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if cache.Cached() {
			t.Fatal("a fetch that began before Forget must not repopulate the cache")
		}
	})
}

type slowFetcher struct {
	release   chan struct{}
	started   chan struct{}
	startOnce sync.Once
	calls     atomic.Int32
}

func newSlowFetcher() *slowFetcher {
	return &slowFetcher{release: make(chan struct{}), started: make(chan struct{})}
}

func (f *slowFetcher) Profile(context.Context) (backend.Restaurant, error) {
	f.calls.Add(1)
	f.startOnce.Do(func() { close(f.started) })
	<-f.release
	return backend.Restaurant{ID: "r1"}, nil
}
