package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/royalton/portal"
	"github.com/royalton/portal/internal/auth"
	"github.com/royalton/portal/internal/handlers"
	"github.com/royalton/portal/internal/jobs"
	"github.com/royalton/portal/internal/shipping"
	"github.com/royalton/portal/internal/store"
	"github.com/royalton/portal/internal/views"
	"github.com/royalton/portal/pkg/cache"
	"github.com/royalton/portal/pkg/job"
	"github.com/royalton/portal/pkg/session"
	"github.com/royalton/portal/pkg/toast"
)

var now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

const password = "secret123"

// queue records enqueued tasks instead of running them.
type queue struct {
	mu    sync.Mutex
	names []string
	args  []any
}

func (q *queue) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.names = append(q.names, name)
	q.args = append(q.args, payload)
	return nil
}

func (q *queue) EnqueueTx(ctx context.Context, _ pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error {
	return q.Enqueue(ctx, name, payload, opts...)
}

func (q *queue) tasks() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.names...)
}

type harness struct {
	app   *portal.App
	store *store.Memory
	auth  *auth.Service
	site  *handlers.Site
	jobs  *queue
}

type options struct {
	jobs bool
}

func newHarness(t *testing.T, o options) *harness {
	t.Helper()

	st := store.NewMemory(
		store.WithClock(func() time.Time { return now }),
		store.WithLocations(shipping.Location{ID: "loc-1", Name: "Rotterdam Hub", City: "Rotterdam", Country: "NL", Type: shipping.LocationServiceCenter, IsActive: true}),
	)
	svc := auth.NewService(st, auth.WithHashCost(bcrypt.MinCost), auth.WithClock(func() time.Time { return now }))
	tracking := cache.NewMemory[handlers.Lookup]()
	sessionData := cache.NewMemory[session.Session]()
	sessionIndex := cache.NewMemory[[]string]()
	hub := toast.NewHub(time.Minute)
	t.Cleanup(func() {
		hub.Close()
		_ = tracking.Close()
		_ = sessionData.Close()
		_ = sessionIndex.Close()
	})

	site := handlers.New(handlers.Deps{
		Store:    st,
		Auth:     svc,
		Tracking: tracking,
		Now:      func() time.Time { return now },
	})
	sessions := session.NewCacheStore(sessionData, sessionIndex)
	h := &harness{store: st, auth: svc, site: site, jobs: &queue{}}

	opts := []portal.Option{
		portal.WithSession(sessions),
		portal.WithToasts(hub, func(m []toast.Message) portal.Component { return views.ToastRegion(m) }),
		portal.WithMiddleware(svc.Middleware()),
		portal.WithHandlers(site),
		portal.WithNotFound(site.NotFound),
	}
	if o.jobs {
		opts = append(opts, portal.WithJobs(h.jobs))
	}
	h.app = portal.New(opts...)
	return h
}

func (h *harness) do(req *http.Request, sid *http.Cookie) *httptest.ResponseRecorder {
	if sid != nil {
		req.AddCookie(sid)
	}
	rec := httptest.NewRecorder()
	h.app.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(path string, sid *http.Cookie) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil), sid)
}

func (h *harness) post(path string, form url.Values, sid *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, sid)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var sid *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "__sid" && c.MaxAge >= 0 {
			sid = c
		}
	}
	require.NotNil(t, sid, "no session cookie in response")
	return sid
}

// signUp creates an account and signs it in, returning the session cookie.
func (h *harness) signUp(t *testing.T, email string, admin bool) (shipping.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	u, err := h.auth.SignUp(ctx, auth.SignUpInput{Email: email, Password: password, DisplayName: "Ada"})
	require.NoError(t, err)
	if admin {
		u, err = h.auth.Promote(ctx, auth.ActorCLI, email)
		require.NoError(t, err)
	}
	rec := h.post("/signin", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, auth.Landing(u), rec.Header().Get("Location"))
	return u, sessionCookie(t, rec)
}

func (h *harness) addShipment(t *testing.T, userID, number string, status shipping.Status) shipping.Shipment {
	t.Helper()
	eta := now.AddDate(0, 0, 3)
	sh := shipping.Shipment{
		UserID:            userID,
		TrackingNumber:    number,
		Status:            status,
		ServiceType:       shipping.ServiceDomestic,
		Origin:            shipping.Address{Address: "1 Quay St", City: "Leeds", Country: "UK"},
		Destination:       shipping.Address{Address: "9 Dock Rd", City: "Hull", Country: "UK"},
		Recipient:         shipping.Recipient{Name: "Grace", Email: "grace@example.com"},
		EstimatedDelivery: &eta,
	}
	require.NoError(t, h.store.CreateShipment(context.Background(), &sh))
	return sh
}

func TestPageTable(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})

	pages := h.site.Pages()
	require.Equal(t, "/", pages[0])
	require.Contains(t, pages, "/services/domestic")
	require.Equal(t, "/admin", pages[len(pages)-1])

	for _, p := range pages {
		require.Equal(t, p, h.site.Resolve(p).Path, "page %s", p)
	}
}

func TestUnknownPaths(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})

	t.Run("unknown get renders the home page", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/no/such/page?x=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Shipping that arrives when you said it would")
	})

	t.Run("unknown post is a plain not found", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/no/such/page", url.Values{}, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("guarded pages send visitors to sign in", func(t *testing.T) {
		t.Parallel()
		m := h.site.Resolve("/dashboard#recent")
		require.Equal(t, "/dashboard", m.Path)
		rec := h.get("/dashboard", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/signin?next=%2Fdashboard", rec.Header().Get("Location"))
	})
}

func TestTrack(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})
	h.addShipment(t, "", "TXP42", shipping.StatusInTransit)

	t.Run("known number shows the shipment", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/track?number=txp42", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, "TXP42")
		require.Contains(t, body, "Leeds, UK")
		require.NotContains(t, body, views.TrackNotFound)
	})

	t.Run("unknown number says so", func(t *testing.T) {
		t.Parallel()
		rec := h.get("/track?number=NOPE1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), views.TrackNotFound)
	})

	t.Run("htmx requests get the partial", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/track?number=TXP42", nil)
		req.Header.Set("HX-Request", "true")
		rec := h.do(req, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), "<!DOCTYPE html>")
		require.Contains(t, rec.Body.String(), `id="toasts"`)
	})
}

func TestQuote(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})

	t.Run("invalid form is re-rendered with errors", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/quote", url.Values{"service_type": {"domestic"}, "weight": {"0"}}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, rec.Body.String(), "field-error")
	})

	t.Run("valid form prices and saves the quote", func(t *testing.T) {
		t.Parallel()
		_, sid := h.signUp(t, "quoter@example.com", false)
		rec := h.post("/quote", url.Values{
			"service_type":        {"domestic"},
			"origin_city":         {"Leeds"},
			"origin_country":      {"UK"},
			"destination_city":    {"Hull"},
			"destination_country": {"UK"},
			"weight":              {"10"},
		}, sid)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `id="quote-result"`)

		u, err := h.store.UserByEmail(context.Background(), "quoter@example.com")
		require.NoError(t, err)
		quotes, err := h.store.UserQuotes(context.Background(), u.ID)
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		require.Equal(t, 10.0, quotes[0].Weight)
	})
}

func TestShip(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{jobs: true})
	u, sid := h.signUp(t, "shipper@example.com", false)

	form := url.Values{
		"service_type":        {"domestic"},
		"origin_address":      {"1 Quay St"},
		"origin_city":         {"Leeds"},
		"origin_country":      {"UK"},
		"destination_address": {"9 Dock Rd"},
		"destination_city":    {"Hull"},
		"destination_country": {"UK"},
		"recipient_name":      {"Grace"},
		"recipient_email":     {"grace@example.com"},
		"pickup_date":         {now.Format(time.DateOnly)},
		"weight":              {"2.5"},
	}

	t.Run("anonymous visitors are sent to sign in", func(t *testing.T) {
		rec := h.post("/ship", form, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.True(t, strings.HasPrefix(rec.Header().Get("Location"), auth.SignInPath))
	})

	t.Run("past pickup dates are rejected", func(t *testing.T) {
		bad := url.Values{}
		for k, v := range form {
			bad[k] = v
		}
		bad.Set("pickup_date", now.AddDate(0, 0, -1).Format(time.DateOnly))
		rec := h.post("/ship", bad, sid)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("booking creates the shipment and goes to the dashboard", func(t *testing.T) {
		rec := h.post("/ship", form, sid)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))

		list, err := h.store.UserShipments(context.Background(), u.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, shipping.StatusPending, list[0].Status)

		events, err := h.store.TrackingEvents(context.Background(), list[0].ID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.Equal(t, []string{jobs.ShipmentCreatedTask}, h.jobs.tasks())

		dash := h.get("/dashboard", sid)
		require.Equal(t, http.StatusOK, dash.Code)
		require.Contains(t, dash.Body.String(), list[0].TrackingNumber)
		require.Contains(t, dash.Body.String(), "Shipment created successfully!")
	})

	t.Run("htmx booking navigates with HX-Location", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ship", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		rec := h.do(req, sid)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("HX-Location"), "/dashboard")
	})
}

func TestSupport(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})

	rec := h.post("/support", url.Values{"name": {"Ada"}, "subject": {"Late parcel"}, "message": {"Where is it?"}}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, h.store.SupportTickets())

	rec = h.post("/support", url.Values{
		"name":            {"Ada"},
		"email":           {"ADA@example.com"},
		"subject":         {"Late parcel"},
		"tracking_number": {"txp42"},
		"message":         {"Where is it?"},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tickets := h.store.SupportTickets()
	require.Len(t, tickets, 1)
	require.Equal(t, "ada@example.com", tickets[0].Email)
	require.Equal(t, "TXP42", tickets[0].TrackingNumber)
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})
	_, err := h.auth.SignUp(context.Background(), auth.SignUpInput{Email: "kim@example.com", Password: password})
	require.NoError(t, err)

	t.Run("wrong password re-renders without echoing it", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/signin", url.Values{"email": {"kim@example.com"}, "password": {"nope-nope"}}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, rec.Body.String(), "Invalid email or password.")
		require.NotContains(t, rec.Body.String(), "nope-nope")
	})

	t.Run("next is honoured when local", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/signin", url.Values{"email": {"kim@example.com"}, "password": {password}, "next": {"/shipments"}}, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/shipments", rec.Header().Get("Location"))
	})

	t.Run("next pointing off site is ignored", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/signin", url.Values{"email": {"kim@example.com"}, "password": {password}, "next": {"//evil.example"}}, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("sign up with a taken email", func(t *testing.T) {
		t.Parallel()
		rec := h.post("/signup", url.Values{"email": {"kim@example.com"}, "password": {password}}, nil)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Contains(t, rec.Body.String(), "is already registered")
	})
}

func TestAddresses(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})
	u, sid := h.signUp(t, "home@example.com", false)

	rec := h.post("/addresses", url.Values{"label": {"Home"}}, sid)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.post("/addresses", url.Values{
		"label":          {"Home"},
		"recipient_name": {"Ada"},
		"address_line1":  {"1 Quay St"},
		"city":           {"Leeds"},
		"postal_code":    {"LS1"},
		"country":        {"UK"},
		"is_default":     {"on"},
	}, sid)
	require.Equal(t, http.StatusOK, rec.Code)

	list, err := h.store.SavedAddresses(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].IsDefault)

	form := h.get("/ship", sid)
	require.Equal(t, http.StatusOK, form.Code)
	require.Contains(t, form.Body.String(), `value="1 Quay St"`)

	del := h.do(httptest.NewRequest(http.MethodDelete, "/addresses/"+list[0].ID, nil), sid)
	require.Equal(t, http.StatusOK, del.Code)
	list, err = h.store.SavedAddresses(context.Background(), u.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAdmin(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})
	owner, userSID := h.signUp(t, "owner@example.com", false)
	_, adminSID := h.signUp(t, "ops@example.com", true)
	sh := h.addShipment(t, owner.ID, "TXP77", shipping.StatusPending)

	t.Run("customers are kept out", func(t *testing.T) {
		rec := h.get("/admin", userSID)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))

		rec = h.post("/admin/shipments/"+sh.ID, url.Values{"status": {"delivered"}}, userSID)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("admins see every shipment", func(t *testing.T) {
		rec := h.get("/admin", adminSID)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "TXP77")
	})

	t.Run("status update notifies the owner", func(t *testing.T) {
		// Warm the tracking cache so the update has something to evict.
		require.Equal(t, http.StatusOK, h.get("/track?number=TXP77", nil).Code)

		rec := h.post("/admin/shipments/"+sh.ID, url.Values{"status": {"delivered"}}, adminSID)
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := h.store.ShipmentByID(context.Background(), sh.ID)
		require.NoError(t, err)
		require.Equal(t, shipping.StatusDelivered, got.Status)
		require.NotNil(t, got.ActualDelivery)

		notes, err := h.store.UserNotifications(context.Background(), owner.ID, 10)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		require.Equal(t, shipping.NotifyDelivered, notes[0].Type)

		track := h.get("/track?number=TXP77", nil)
		require.Contains(t, track.Body.String(), shipping.StatusDelivered.Label())
	})

	t.Run("csv export", func(t *testing.T) {
		rec := h.get("/admin/export.csv?q=TXP77", adminSID)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		require.True(t, strings.HasPrefix(lines[0], "tracking_number,"))
		require.True(t, strings.HasPrefix(lines[1], "TXP77,"))
	})

	t.Run("storage export needs a job queue", func(t *testing.T) {
		rec := h.post("/admin/exports", url.Values{}, adminSID)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("admins cannot demote themselves", func(t *testing.T) {
		rec := h.post("/admin/roles", url.Values{"email": {"ops@example.com"}, "role": {"user"}}, adminSID)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete shipment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/shipments/"+sh.ID, nil)
		req.Header.Set("HX-Request", "true")
		rec := h.do(req, adminSID)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Shipment TXP77 deleted")

		_, err := h.store.ShipmentByID(context.Background(), sh.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPaymentIntentIsNotImplemented(t *testing.T) {
	t.Parallel()
	h := newHarness(t, options{})

	rec := h.post("/api/payment/create-intent", url.Values{}, nil)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}
