package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	"storefront/internal/i18n"
	"storefront/internal/kv"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
)

// fakeCatalog serves a fakestoreapi-shaped catalog of n products.
type fakeCatalog struct {
	products []domain.Product
	down     atomic.Bool
}

func newFakeCatalog(t *testing.T, n int) (*fakeCatalog, string) {
	t.Helper()
	f := &fakeCatalog{}
	cats := []string{"electronics", "jewelery", "men's clothing"}
	for i := 1; i <= n; i++ {
		f.products = append(f.products, domain.Product{
			ID:       i,
			Title:    fmt.Sprintf("Product %02d", i),
			Price:    float64(i*5) + 0.99,
			Category: cats[i%len(cats)],
			Image:    fmt.Sprintf("https://img.test/%d.jpg", i),
			Rating:   domain.Rating{Rate: float64(i%5) + 0.5, Count: i * 10},
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(f.products)
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(cats)
	})
	mux.HandleFunc("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		for _, p := range f.products {
			if fmt.Sprint(p.ID) == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(p)
				return
			}
		}
		// the real API answers unknown ids with an empty 200
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

type testApp struct {
	app     *fiber.App
	catalog *fakeCatalog
	storage *kv.Memory
	metrics *metrics.Metrics
	clock   *clock.Mock
}

func newTestApp(t *testing.T, products int) *testApp {
	t.Helper()
	fake, baseURL := newFakeCatalog(t, products)

	cfg := config.Config{PageSize: 10}
	bundle, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	m := metrics.New()
	storage := kv.NewMemory()
	source := catalog.NewClient(baseURL, catalog.WithErrorRecorder(m), catalog.WithTimeout(time.Second))
	mock := clock.NewMock()
	ack := cart.NewAcknowledger(mock, cart.DefaultAckWindow)
	t.Cleanup(ack.Stop)

	engine := html.New("../../web/templates", ".html")
	for name, fn := range handlers.TemplateFuncs(bundle) {
		engine.AddFunc(name, fn)
	}
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Server().MaxRequestBodySize = 1 << 20

	deps := handlers.NewDeps(cfg, source, storage, ack, m, zerolog.Nop())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ErrorHandler:   handlers.CSRFError,
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(handlers.Locale(bundle))
	app.Use(handlers.Theme())
	app.Use(handlers.CartBadge(deps.CartService))
	handlers.Register(app, deps)
	app.Use(handlers.NotFound)

	return &testApp{app: app, catalog: fake, storage: storage, metrics: m, clock: mock}
}

func (a *testApp) get(t *testing.T, target string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := a.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (a *testApp) post(t *testing.T, target string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := a.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	return resp
}

// session is a browser: a csrf token plus whatever sid the server issued.
type session struct {
	csrf string
	sid  string
}

func (a *testApp) newSession(t *testing.T) *session {
	t.Helper()
	resp, _ := a.get(t, "/cart")
	s := &session{csrf: extractCookie(resp, "csrf_"), sid: extractCookie(resp, "sid")}
	if s.csrf == "" {
		t.Fatal("csrf token missing")
	}
	if s.sid == "" {
		t.Fatal("sid missing")
	}
	return s
}

func (s *session) cookies() []*http.Cookie {
	return []*http.Cookie{{Name: "csrf_", Value: s.csrf}, {Name: "sid", Value: s.sid}}
}

func (a *testApp) submit(t *testing.T, s *session, target string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", s.csrf)
	return a.post(t, target, form, s.cookies()...)
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	prev := applog.L()
	applog.SetLogger(zerolog.New(buf))
	defer applog.SetLogger(prev)

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func httptestRequest(target, acceptLanguage string) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Accept-Language", acceptLanguage)
	return req
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}
