package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/sunset/internal/actorctx"
	auditdomain "github.com/smallbiznis/sunset/internal/audit/domain"
	cancellationdomain "github.com/smallbiznis/sunset/internal/cancellation/domain"
	"github.com/smallbiznis/sunset/internal/config"
	invoicedomain "github.com/smallbiznis/sunset/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCancellationService struct {
	lastReq   cancellationdomain.StatusChangeRequest
	lastActor string
	editedID  string
	result    cancellationdomain.CascadeResult
	err       error
}

func (f *fakeCancellationService) HandleStatusChange(ctx context.Context, req cancellationdomain.StatusChangeRequest) (cancellationdomain.CascadeResult, error) {
	f.lastReq = req
	f.lastActor = actorctx.ActorFromContext(ctx)
	return f.result, f.err
}

func (f *fakeCancellationService) CompleteServiceEdit(ctx context.Context, serviceID string) error {
	f.editedID = serviceID
	return f.err
}

type fakeInvoiceService struct {
	invoices []invoicedomain.Invoice
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	return invoicedomain.ListInvoiceResponse{Invoices: f.invoices}, nil
}

func (f *fakeInvoiceService) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	if _, err := snowflake.ParseString(id); err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidInvoiceID
	}
	for _, inv := range f.invoices {
		if inv.ID.String() == id {
			return inv, nil
		}
	}
	return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
}

func (f *fakeInvoiceService) CancelUnpaidForEntities(ctx context.Context, customerID snowflake.ID, relatedIDs []snowflake.ID, now time.Time) error {
	return nil
}

type fakeAuditService struct{}

func (fakeAuditService) Activity(ctx context.Context, message string, subjectID snowflake.ID) {}

func (fakeAuditService) Record(ctx context.Context, action, subjectType string, subjectID snowflake.ID, message string, metadata map[string]any) {
}

func (fakeAuditService) List(ctx context.Context, req auditdomain.ListActivityRequest) (auditdomain.ListActivityResponse, error) {
	return auditdomain.ListActivityResponse{}, nil
}

func newTestServer(t *testing.T, cancellation *fakeCancellationService, invoices *fakeInvoiceService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := NewEngine(zap.NewNop())
	s := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             config.Config{},
		Log:             zap.NewNop(),
		CancellationSvc: cancellation,
		InvoiceSvc:      invoices,
		AuditSvc:        fakeAuditService{},
	})
	registerRoutes(s)
	return engine
}

func TestHandleServiceStatusChange(t *testing.T) {
	cancellation := &fakeCancellationService{
		result: cancellationdomain.CascadeResult{
			Triggered:         true,
			Note:              "Service cancelled by jsmith on 2024-01-15",
			CancelledAddonIDs: []snowflake.ID{snowflake.ID(42)},
		},
	}
	engine := newTestServer(t, cancellation, &fakeInvoiceService{})

	body := bytes.NewBufferString(`{"new_status":"Cancelled","previous_status":"Active","ticket_ref":"T-42"}`)
	req := httptest.NewRequest(http.MethodPost, "/hooks/services/123/status-change", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-User", "jsmith")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "123", cancellation.lastReq.ServiceID)
	assert.Equal(t, "T-42", cancellation.lastReq.TicketRef)
	assert.Equal(t, "jsmith", cancellation.lastActor)

	var resp statusChangeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Triggered)
	assert.Equal(t, []string{"42"}, resp.CancelledAddonIDs)
}

func TestHandleServiceStatusChange_Errors(t *testing.T) {
	cancellation := &fakeCancellationService{}
	engine := newTestServer(t, cancellation, &fakeInvoiceService{})

	// Missing required fields.
	req := httptest.NewRequest(http.MethodPost, "/hooks/services/123/status-change", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown service.
	cancellation.err = cancellationdomain.ErrServiceNotFound
	req = httptest.NewRequest(http.MethodPost, "/hooks/services/999/status-change",
		bytes.NewBufferString(`{"new_status":"Cancelled","previous_status":"Active"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed id.
	cancellation.err = cancellationdomain.ErrInvalidServiceID
	req = httptest.NewRequest(http.MethodPost, "/hooks/services/garbage/status-change",
		bytes.NewBufferString(`{"new_status":"Cancelled","previous_status":"Active"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleServiceEdited(t *testing.T) {
	cancellation := &fakeCancellationService{}
	engine := newTestServer(t, cancellation, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodPost, "/hooks/services/123/edited", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "123", cancellation.editedID)
}

func TestListInvoices(t *testing.T) {
	invoices := &fakeInvoiceService{invoices: []invoicedomain.Invoice{
		{ID: snowflake.ID(7), Status: invoicedomain.InvoiceStatusUnpaid},
	}}
	engine := newTestServer(t, &fakeCancellationService{}, invoices)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?status=Unpaid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp invoicedomain.ListInvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Invoices, 1)

	// Non-numeric customer filter.
	req = httptest.NewRequest(http.MethodGet, "/api/invoices?customer_id=abc", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoiceByID(t *testing.T) {
	invoices := &fakeInvoiceService{invoices: []invoicedomain.Invoice{
		{ID: snowflake.ID(7), Status: invoicedomain.InvoiceStatusUnpaid},
	}}
	engine := newTestServer(t, &fakeCancellationService{}, invoices)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/7", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/invoices/8", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t, &fakeCancellationService{}, &fakeInvoiceService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
