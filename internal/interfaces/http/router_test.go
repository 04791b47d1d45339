package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dto"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/transfer"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/domain/entity"
	apphttp "github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/interfaces/http"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/testutil/memstore"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el almacén en memoria con una derivación dep-a → dep-b,
// doctor/jefe en dep-b y 10 unidades de med-1 en dep-b.
func buildTestApp(t *testing.T) (*fiber.App, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.PutDoctor(entity.Doctor{ID: "doc-a", DepartmentID: "dep-a"})
	store.PutDoctor(entity.Doctor{ID: "doc-b", DepartmentID: "dep-b"})
	store.PutDepartmentHead(entity.DepartmentHead{ID: "head-b", DoctorID: "doc-b", DepartmentID: "dep-b"})
	store.PutTransfer(entity.Transfer{ID: "der-1", Kind: entity.TransferDerivation, SourceDepartmentID: "dep-a", DestinationDepartmentID: "dep-b"})
	store.PutEmergency(entity.EmergencyCare{ID: "em-1", DepartmentID: "dep-a"})
	store.PutStock(entity.StockRecord{DepartmentID: "dep-b", MedicationID: "med-1", Quantity: 10, MinQuantity: 2, MaxQuantity: 20})

	log := logger.Nop()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Dispensations:   dispensation.NewCoordinator(store, log),
		Consultations:   consultation.NewWorkflow(store, log),
		Transfers:       transfer.NewUseCase(store),
		Stock:           inventory.NewStockUseCase(store),
		ThresholdReport: inventory.NewThresholdReportUseCase(store.StockRepository()),
		Log:             log,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createConsultation(t *testing.T, app *fiber.App, doctorID string) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPost, "/api/consultations/derivation", dto.CreateConsultationRequest{
		TransferID: "der-1", Diagnosis: "fractura", DoctorID: doctorID, DepartmentHeadID: "head-b",
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDispensationLifecycle(t *testing.T) {
	app, store := buildTestApp(t)

	resp := createConsultation(t, app, "doc-b")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	cons := decode[dto.ConsultationResponse](t, resp)

	resp = doJSON(t, app, http.MethodPost, "/api/dispensations", dto.CreateDispensationRequest{
		ContextKind: "derivation", ContextID: cons.ID, MedicationID: "med-1", Quantity: 7,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	line := decode[dto.DispensationResponse](t, resp)

	resp = doJSON(t, app, http.MethodPut, "/api/dispensations/"+line.ID, map[string]any{"quantity": 9})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/dispensations/"+line.ID, map[string]any{"quantity": 20})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodeInsufficientStock, errBody.Code)
	assert.Contains(t, errBody.Message, "disponible=1, solicitado=11")

	resp = doJSON(t, app, http.MethodGet, "/api/dispensations?context_kind=derivation&context_id="+cons.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[map[string]any](t, resp)
	assert.EqualValues(t, 1, list["total"])

	resp = doJSON(t, app, http.MethodDelete, "/api/dispensations/"+line.ID, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	rec, ok := store.Stock(entity.StockKey{DepartmentID: "dep-b", MedicationID: "med-1"})
	require.True(t, ok)
	assert.Equal(t, 10, rec.Quantity)
}

func TestConsultation_DepartmentMismatch(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := createConsultation(t, app, "doc-a")
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodeDepartmentMismatch, body.Code)
}

func TestErrorMapping(t *testing.T) {
	app, _ := buildTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/api/dispensations", "{not json", fiber.StatusBadRequest, apphttp.CodeInvalidBody},
		{"validation", http.MethodPost, "/api/dispensations",
			dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: "med-1", Quantity: 0},
			fiber.StatusBadRequest, apphttp.CodeValidation},
		{"context not found", http.MethodPost, "/api/dispensations",
			dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-404", MedicationID: "med-1", Quantity: 1},
			fiber.StatusNotFound, apphttp.CodeContextNotFound},
		{"stock not found", http.MethodPost, "/api/dispensations",
			dto.CreateDispensationRequest{ContextKind: "emergency", ContextID: "em-1", MedicationID: "med-1", Quantity: 1},
			fiber.StatusNotFound, apphttp.CodeStockNotFound},
		{"line not found", http.MethodDelete, "/api/dispensations/missing", nil, fiber.StatusNotFound, apphttp.CodeNotFound},
		{"transfer not found", http.MethodGet, "/api/transfers/referral/missing", nil, fiber.StatusNotFound, apphttp.CodeNotFound},
		{"duplicate stock", http.MethodPost, "/api/stock",
			dto.CreateStockRequest{DepartmentID: "dep-b", MedicationID: "med-1", MaxQuantity: 5},
			fiber.StatusConflict, apphttp.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestPersistenceFailureIsOpaque(t *testing.T) {
	app, store := buildTestApp(t)
	store.FailOn(memstore.OpStockSave, errors.New("pq: could not serialize access"))

	resp := doJSON(t, app, http.MethodPost, "/api/stock/restock", dto.RestockRequest{DepartmentID: "dep-b", MedicationID: "med-1", Amount: 5})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, apphttp.CodePersistence, body.Code)
	assert.NotContains(t, body.Message, "serialize")
}

func TestTransfersAndStockRoutes(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/referrals", dto.CreateReferralRequest{
		ExternalPostID: "post-1", DestinationDepartmentID: "dep-b", PatientID: "p-1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	ref := decode[dto.TransferResponse](t, resp)

	resp = doJSON(t, app, http.MethodGet, "/api/transfers/referral/"+ref.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/transfers/derivation/der-1", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/api/stock/thresholds", dto.UpdateThresholdsRequest{
		DepartmentID: "dep-b", MedicationID: "med-1", MinQuantity: 12, MaxQuantity: 30,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	stock := decode[dto.StockResponse](t, resp)
	assert.True(t, stock.BelowMinimum)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/report?department_id=dep-b", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	report := decode[dto.ThresholdReportDTO](t, resp)
	require.Len(t, report.BelowMinimum, 1)
	assert.Equal(t, 20, report.BelowMinimum[0].SuggestedOrder)
}

func TestRequestID(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/transfers/derivation/der-1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/api/transfers/derivation/der-1", nil)
	req.Header.Set(apphttp.HeaderRequestID, "req-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
}
