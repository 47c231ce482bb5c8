package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careledger/careledger/internal/platform/auth"
	"github.com/careledger/careledger/internal/platform/funds"
)

func newTestHandler() (*Handler, *Service, *funds.MemoryLedger, *echo.Echo) {
	svc, ledger := newTestService()
	return NewHandler(svc), svc, ledger, echo.New()
}

func request(e *echo.Echo, caller uuid.UUID, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithParticipant(req.Context(), caller))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Schedule(t *testing.T) {
	h, _, ledger, e := newTestHandler()
	patient := uuid.New()
	ledger.Credit(context.Background(), funds.ParticipantAccount(patient), 100)

	body := `{"doctor_id":"` + uuid.New().String() + `","scheduled_at":"2026-09-01T10:00:00Z","description":"checkup","fee":100}`
	c, rec := request(e, patient, http.MethodPost, body)

	if err := h.Schedule(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.ID != 0 || a.Fee != 100 {
		t.Errorf("response id=%d fee=%d, want 0 and 100", a.ID, a.Fee)
	}
}

func TestHandler_ScheduleInsufficientFunds(t *testing.T) {
	h, _, _, e := newTestHandler()
	body := `{"doctor_id":"` + uuid.New().String() + `","fee":100}`
	c, _ := request(e, uuid.New(), http.MethodPost, body)

	err := h.Schedule(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusPaymentRequired {
		t.Errorf("expected 402, got %d", he.Code)
	}
}

func TestHandler_ScheduleMissingDoctor(t *testing.T) {
	h, _, _, e := newTestHandler()
	c, _ := request(e, uuid.New(), http.MethodPost, `{"fee":100}`)

	err := h.Schedule(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_ConfirmWrongCaller(t *testing.T) {
	h, svc, ledger, e := newTestHandler()
	patient := uuid.New()
	doctor := uuid.New()
	ledger.Credit(context.Background(), funds.ParticipantAccount(patient), 100)
	if _, err := svc.Schedule(context.Background(), patient, doctor, time.Now(), "", 100); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	c, _ := request(e, patient, http.MethodPost, "")
	c.SetParamNames("id")
	c.SetParamValues("0")

	err := h.Confirm(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	c, rec := request(e, doctor, http.MethodPost, "")
	c.SetParamNames("id")
	c.SetParamValues("0")
	if err := h.Confirm(c); err != nil {
		t.Fatalf("Confirm by doctor: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_GetNotParty(t *testing.T) {
	h, svc, ledger, e := newTestHandler()
	patient := uuid.New()
	ledger.Credit(context.Background(), funds.ParticipantAccount(patient), 100)
	if _, err := svc.Schedule(context.Background(), patient, uuid.New(), time.Now(), "", 100); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	c, _ := request(e, uuid.New(), http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues("0")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestHandler_GetBadID(t *testing.T) {
	h, _, _, e := newTestHandler()
	c, _ := request(e, uuid.New(), http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_ListAsDoctor(t *testing.T) {
	h, svc, ledger, e := newTestHandler()
	patient := uuid.New()
	doctor := uuid.New()
	ledger.Credit(context.Background(), funds.ParticipantAccount(patient), 200)
	for i := 0; i < 2; i++ {
		if _, err := svc.Schedule(context.Background(), patient, doctor, time.Now(), "", 100); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/?as=doctor", nil)
	req = req.WithContext(auth.WithParticipant(req.Context(), doctor))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}
