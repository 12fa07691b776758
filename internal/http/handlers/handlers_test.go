package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
	"easyrent/internal/domain/models"
	"easyrent/internal/http/middleware"
	"easyrent/internal/services"
	"easyrent/internal/workflow"
)

type fakeResolver struct{}

func (fakeResolver) Identify(_ context.Context, token string) (domain.Identity, error) {
	if token == "good" {
		return domain.Identity{UserID: 1, Username: "asha"}, nil
	}
	return domain.Identity{}, domain.ErrUnauthenticated
}

type fakeFlow struct {
	BookingFlow
	gotForm workflow.DriverForm
}

func (f *fakeFlow) SubmitDriverDetails(_ context.Context, _ domain.Identity, sid string, form workflow.DriverForm) (*workflow.Session, error) {
	f.gotForm = form
	return &workflow.Session{ID: sid, State: workflow.StateCaptchaPending, Captcha: "NEW123"}, domain.CaptchaMismatchError{}
}

func (f *fakeFlow) Start(_ context.Context, id domain.Identity, vehicleID int64) (*workflow.Session, error) {
	return &workflow.Session{ID: "s1", UserID: id.UserID, Vehicle: workflow.VehicleSnapshot{ID: vehicleID}, State: workflow.StateSelectingTrip}, nil
}

func (f *fakeFlow) Get(context.Context, domain.Identity, string) (*workflow.Session, error) {
	return nil, domain.AuthorizationError{Msg: "booking session belongs to another user"}
}

type fakeGeo struct {
	label string
	point *models.LocationPoint
	km    float64
}

func (g fakeGeo) LabelFor(_ context.Context, lat, lng float64) string {
	if g.label != "" {
		return g.label
	}
	return models.LocationPoint{Lat: lat, Lng: lng}.CoordLabel()
}

func (g fakeGeo) ForwardGeocode(context.Context, string) (models.LocationPoint, bool) {
	if g.point == nil {
		return models.LocationPoint{}, false
	}
	return *g.point, true
}

func (g fakeGeo) DrivingDistanceKm(context.Context, models.LocationPoint, models.LocationPoint) (float64, bool) {
	return g.km, g.km > 0
}

type fakeBookings struct {
	BookingStore
	cancelErr error
}

func (f fakeBookings) CancelBooking(context.Context, domain.Identity, int64) error { return f.cancelErr }

type fakeReceipts struct{}

func (fakeReceipts) Receipt(_ context.Context, _ domain.Identity, id int64) ([]byte, string, error) {
	return []byte("%PDF-1.3 test"), "BookingReceipt_9.pdf", nil
}

type fakeVehicles struct {
	got models.VehicleFilter
}

func (f *fakeVehicles) List(_ context.Context, filter models.VehicleFilter) ([]models.Vehicle, error) {
	f.got = filter
	return nil, nil
}

func (f *fakeVehicles) GetVehicle(_ context.Context, id int64) (models.Vehicle, error) {
	return models.Vehicle{}, domain.NotFoundError{Resource: "vehicle"}
}

type fakeAuth struct {
	Authenticator
}

func (fakeAuth) Login(_ context.Context, login, password string) (services.LoginResult, error) {
	if login != "asha@example.com" || password != "secret1" {
		return services.LoginResult{}, domain.AuthorizationError{Msg: "invalid email or password", Unauthenticated: true}
	}
	return services.LoginResult{
		Token:     "tok",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      models.PublicUser{ID: 1, Username: "asha"},
	}, nil
}

func newTestEngine(hd *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/api/auth/login", hd.Login)
	r.GET("/api/vehicles", hd.ListVehicles)
	r.GET("/api/vehicles/:id", hd.GetVehicle)

	api := r.Group("/api", middleware.RequireIdentity(fakeResolver{}))
	api.GET("/geo/reverse", hd.ReverseGeocode)
	api.GET("/geo/search", hd.SearchAddress)
	api.POST("/directions", hd.Directions)
	api.POST("/booking-sessions", hd.StartSession)
	api.GET("/booking-sessions/:sid", hd.GetSession)
	api.POST("/booking-sessions/:sid/driver-details", hd.SubmitDriverDetails)
	api.DELETE("/bookings/:id", hd.CancelBooking)
	api.GET("/bookings/:id/receipt", hd.DownloadReceipt)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestCaptchaMismatchReturnsSessionWithNewChallenge(t *testing.T) {
	flow := &fakeFlow{}
	r := newTestEngine(&Handler{Flow: flow})

	w := do(r, http.MethodPost, "/api/booking-sessions/s1/driver-details",
		`{"name":"Asha","contact":"98765 43210","age":"21","license":"DL1234","captcha":"WRONG1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["code"] != "captcha_mismatch" {
		t.Fatalf("code = %v", body["code"])
	}
	sess, ok := body["session"].(map[string]any)
	if !ok || sess["captcha"] != "NEW123" || sess["state"] != string(workflow.StateCaptchaPending) {
		t.Fatalf("session = %v", body["session"])
	}
	if flow.gotForm.Age != 21 || flow.gotForm.Captcha != "WRONG1" {
		t.Fatalf("form = %+v", flow.gotForm)
	}
}

func TestSessionRoutesRequireIdentity(t *testing.T) {
	r := newTestEngine(&Handler{Flow: &fakeFlow{}})
	req := httptest.NewRequest(http.MethodPost, "/api/booking-sessions", strings.NewReader(`{"vehicleId":7}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", w.Code)
	}
	if decode(t, w)["message"] == "" {
		t.Fatal("401 body must carry a message")
	}
}

func TestStartSessionUsesCallerIdentity(t *testing.T) {
	r := newTestEngine(&Handler{Flow: &fakeFlow{}})
	w := do(r, http.MethodPost, "/api/booking-sessions", `{"vehicleId":7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["userId"] != float64(1) || body["state"] != string(workflow.StateSelectingTrip) {
		t.Fatalf("body = %v", body)
	}
}

func TestForeignSessionIsForbidden(t *testing.T) {
	r := newTestEngine(&Handler{Flow: &fakeFlow{}})
	w := do(r, http.MethodGet, "/api/booking-sessions/other", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d", w.Code)
	}
	if _, leaked := decode(t, w)["session"]; leaked {
		t.Fatal("foreign session must not be returned")
	}
}

func TestDirections(t *testing.T) {
	cases := []struct {
		name   string
		geo    fakeGeo
		body   string
		status int
	}{
		{"ok", fakeGeo{km: 12.5}, `{"start":[77.59,12.97],"end":[77.64,12.91]}`, http.StatusOK},
		{"no route", fakeGeo{}, `{"start":[77.59,12.97],"end":[77.64,12.91]}`, http.StatusUnprocessableEntity},
		{"bad pair", fakeGeo{km: 1}, `{"start":[77.59],"end":[77.64,12.91]}`, http.StatusBadRequest},
		{"swapped order out of range", fakeGeo{km: 1}, `{"start":[12.97,177.59],"end":[77.64,12.91]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestEngine(&Handler{Geo: tc.geo})
			w := do(r, http.MethodPost, "/api/directions", tc.body)
			if w.Code != tc.status {
				t.Fatalf("status %d body %s", w.Code, w.Body.String())
			}
			if tc.status == http.StatusOK && decode(t, w)["distanceKm"] != 12.5 {
				t.Fatalf("body %s", w.Body.String())
			}
		})
	}
}

func TestReverseGeocodeFallsBackToCoordinates(t *testing.T) {
	r := newTestEngine(&Handler{Geo: fakeGeo{}})
	w := do(r, http.MethodGet, "/api/geo/reverse?lat=12.9716&lng=77.5946", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := decode(t, w)["label"]; got != "12.97160, 77.59460" {
		t.Fatalf("label = %v", got)
	}
}

func TestSearchAddressNotFound(t *testing.T) {
	r := newTestEngine(&Handler{Geo: fakeGeo{}})
	w := do(r, http.MethodGet, "/api/geo/search?text=nowhere", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", w.Code)
	}
	if decode(t, w)["code"] != "lookup_failed" {
		t.Fatalf("body %s", w.Body.String())
	}
}

func TestListVehiclesFilters(t *testing.T) {
	vehicles := &fakeVehicles{}
	r := newTestEngine(&Handler{Vehicles: vehicles})

	w := do(r, http.MethodGet, "/api/vehicles?q=city&type=suv", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if vehicles.got.Query != "city" || vehicles.got.Type != models.VehicleSUV {
		t.Fatalf("filter = %+v", vehicles.got)
	}

	w = do(r, http.MethodGet, "/api/vehicles?type=spaceship", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown type status %d", w.Code)
	}
	w = do(r, http.MethodGet, "/api/vehicles/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing vehicle status %d", w.Code)
	}
}

func TestCancelBookingErrors(t *testing.T) {
	cases := []struct {
		err    error
		path   string
		status int
	}{
		{nil, "/api/bookings/5", http.StatusOK},
		{domain.AuthorizationError{Msg: "not allowed"}, "/api/bookings/5", http.StatusForbidden},
		{domain.NotFoundError{Resource: "booking"}, "/api/bookings/5", http.StatusNotFound},
		{domain.PersistenceError{Op: "cancel booking"}, "/api/bookings/5", http.StatusInternalServerError},
		{nil, "/api/bookings/abc", http.StatusBadRequest},
	}
	for _, tc := range cases {
		r := newTestEngine(&Handler{Bookings: fakeBookings{cancelErr: tc.err}})
		w := do(r, http.MethodDelete, tc.path, "")
		if w.Code != tc.status {
			t.Fatalf("%s err=%v: status %d", tc.path, tc.err, w.Code)
		}
	}
}

func TestReceiptIsPDFAttachment(t *testing.T) {
	r := newTestEngine(&Handler{Receipts: fakeReceipts{}})
	w := do(r, http.MethodGet, "/api/bookings/9/receipt", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="BookingReceipt_9.pdf"` {
		t.Fatalf("disposition %q", cd)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := newTestEngine(&Handler{Auth: fakeAuth{}})

	w := do(r, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, middleware.SessionCookie+"=tok") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("cookie %q", cookie)
	}

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status %d", w.Code)
	}
}

func TestEmptyBodyIsRejected(t *testing.T) {
	r := newTestEngine(&Handler{Flow: &fakeFlow{}})
	w := do(r, http.MethodPost, "/api/booking-sessions", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestFlexInt(t *testing.T) {
	cases := map[string]int{`21`: 21, `"21"`: 21, `" 30 "`: 30, `""`: 0, `null`: 0}
	for in, want := range cases {
		var n FlexInt
		if err := json.Unmarshal([]byte(in), &n); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if n.Int() != want {
			t.Fatalf("%s = %d, want %d", in, n, want)
		}
	}
	var n FlexInt
	if err := json.Unmarshal([]byte(`"twenty"`), &n); err == nil {
		t.Fatal("non-numeric string must fail")
	}
}
