package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/chargedesk/internal/assistant"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/chargeback/present"
	"github.com/smallbiznis/chargedesk/internal/clock"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChargebackService struct {
	cases     []domain.Case
	events    []domain.CaseEvent
	summary   domain.SummaryResponse
	err       error
	lastEvent string
}

func (f *fakeChargebackService) ListCases(ctx context.Context) (domain.ListCasesResponse, error) {
	if f.err != nil {
		return domain.ListCasesResponse{}, f.err
	}
	return domain.ListCasesResponse{Chargebacks: f.cases}, nil
}

func (f *fakeChargebackService) ListEvents(ctx context.Context, req domain.ListEventsRequest) (domain.ListEventsResponse, error) {
	f.lastEvent = req.ChargebackID
	if strings.TrimSpace(req.ChargebackID) == "" {
		return domain.ListEventsResponse{}, domain.ErrInvalidChargebackID
	}
	if f.err != nil {
		return domain.ListEventsResponse{}, f.err
	}
	return domain.ListEventsResponse{Events: f.events}, nil
}

func (f *fakeChargebackService) Summary(ctx context.Context) (domain.SummaryResponse, error) {
	if f.err != nil {
		return domain.SummaryResponse{}, f.err
	}
	return f.summary, nil
}

func newTestServer(t *testing.T, svc domain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	board := assistant.NewBoard(assistant.Params{
		Log:   log,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
	})
	return NewServer(ServerParams{
		Gin:           NewEngine(observability.Config{Environment: "test"}, nil),
		Cfg:           config.Config{},
		Log:           log,
		ChargebackSvc: svc,
		Presenter:     present.New(present.Params{Log: log}),
		Board:         board,
		Display:       config.NewStaticDisplayConfigHolder(config.DefaultDisplayConfig()),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func TestListChargebacks(t *testing.T) {
	score := 0.91
	svc := &fakeChargebackService{cases: []domain.Case{
		{ChargebackID: "cb_002", Status: "open", DisputeDate: "2024-05-10", FraudScore: &score, Currency: "USD"},
		{ChargebackID: "cb_001", Status: "won", DisputeDate: "2024-05-01", Currency: "USD"},
	}}
	s := newTestServer(t, svc)

	w := do(t, s, http.MethodGet, "/api/chargebacks", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Chargebacks []map[string]any `json:"chargebacks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Chargebacks, 2)
	assert.Equal(t, "cb_002", body.Chargebacks[0]["chargeback_id"])
	assert.InDelta(t, 0.91, body.Chargebacks[0]["fraud_score"], 1e-9)
	assert.Nil(t, body.Chargebacks[1]["fraud_score"])
	assert.Contains(t, body.Chargebacks[1], "outcome")
}

func TestListChargebacksEmpty(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{})

	w := do(t, s, http.MethodGet, "/api/chargebacks", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"chargebacks":[]}`, w.Body.String())
}

func TestListChargebacksStoreFailure(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{err: domain.ErrCasesUnavailable})

	w := do(t, s, http.MethodGet, "/api/chargebacks", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"service unavailable"}`, w.Body.String())
}

func TestUnknownErrorsHideDetails(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{err: &domain.StoreError{Op: "fetch_cases", Err: assert.AnError}})

	w := do(t, s, http.MethodGet, "/api/chargebacks/summary", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "fetch_cases")
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestChargebackSummary(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{summary: domain.SummaryResponse{
		TotalCases:  2,
		TotalAmount: "165.35",
		ByStatus:    []domain.StatusSummary{{Status: "open", Cases: 2, TotalAmount: "165.35"}},
	}})

	w := do(t, s, http.MethodGet, "/api/chargebacks/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body domain.SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.TotalCases)
	assert.Equal(t, "165.35", body.TotalAmount)
}

func TestChargebackEvents(t *testing.T) {
	svc := &fakeChargebackService{events: []domain.CaseEvent{
		{EventID: 7, ChargebackID: "cb_003", EventType: "support_ticket", EventData: []byte(`{"ticket":"T-1"}`)},
	}}
	s := newTestServer(t, svc)

	w := do(t, s, http.MethodGet, "/api/chargebacks/cb_003/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cb_003", svc.lastEvent)
	assert.JSONEq(t, `{"events":[{"event_id":7,"chargeback_id":"cb_003","event_type":"support_ticket","event_date":"","event_data":{"ticket":"T-1"},"description":""}]}`, w.Body.String())

	svc.events = nil
	w = do(t, s, http.MethodGet, "/api/chargebacks/cb_404/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"events":[]}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/chargebacks/%20/events", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"chargeback id is required"}`, w.Body.String())
}

func TestAssistantBoardRoundTrip(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{})

	w := do(t, s, http.MethodGet, "/api/assistant", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"research":null,"analysis":null,"research_updated_at":null,"analysis_updated_at":null}`, w.Body.String())

	w = do(t, s, http.MethodPut, "/api/assistant", `{"research":{"signals":["velocity"]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/assistant", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `{"signals":["velocity"]}`, string(body["research"]))
	assert.JSONEq(t, `null`, string(body["analysis"]))
	assert.JSONEq(t, `"2024-06-01T09:00:00Z"`, string(body["research_updated_at"]))
}

func TestAssistantBoardRejectsBadInput(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{})

	w := do(t, s, http.MethodPut, "/api/assistant", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"research or analysis is required"}`, w.Body.String())

	w = do(t, s, http.MethodPut, "/api/assistant", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestDashboard(t *testing.T) {
	display := config.DefaultDisplayConfig()

	t.Run("populated", func(t *testing.T) {
		s := newTestServer(t, &fakeChargebackService{cases: []domain.Case{
			{ChargebackID: "cb_001", Status: "open", DisputeDate: "2024-05-10", ChargebackAmount: 1234.5, Currency: "USD", RiskLevel: "high"},
		}})

		w := do(t, s, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), `id="case-cb_001"`)
		assert.Contains(t, w.Body.String(), "$1,234.50")
	})

	t.Run("empty", func(t *testing.T) {
		s := newTestServer(t, &fakeChargebackService{cases: []domain.Case{}})

		w := do(t, s, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), display.EmptyMessage)
	})

	t.Run("error", func(t *testing.T) {
		s := newTestServer(t, &fakeChargebackService{err: domain.ErrCasesUnavailable})

		w := do(t, s, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), display.ErrorMessage)
		assert.NotContains(t, w.Body.String(), display.EmptyMessage)
	})
}

func TestHealthAndFallback(t *testing.T) {
	s := newTestServer(t, &fakeChargebackService{})

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestClassifyErrorForLog(t *testing.T) {
	errorType, code := classifyErrorForLog(domain.ErrCasesUnavailable)
	assert.Equal(t, "service_unavailable", errorType)
	assert.Equal(t, "cases_unavailable", code)

	errorType, code = classifyErrorForLog(assert.AnError)
	assert.Equal(t, "internal_error", errorType)
	assert.Equal(t, "unknown", code)
}
