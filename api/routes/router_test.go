package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/internal/auth"
	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/internal/export"
	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/internal/sla"
	pkgAuth "github.com/quayside/quayside-backend/pkg/auth"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/outbox"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

type stubPoolingService struct{}

func (stubPoolingService) IntakeOrder(context.Context, pooling.IntakeOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubPoolingService) LockPool(_ context.Context, poolID uuid.UUID, _ enums.LockTrigger, _ *outbox.ActorRef) (*models.Pool, error) {
	return &models.Pool{ID: poolID, Status: enums.PoolStatusLocked}, nil
}

func (stubPoolingService) SweepCutoffs(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (stubPoolingService) GetPool(_ context.Context, poolID uuid.UUID) (*models.Pool, error) {
	return &models.Pool{ID: poolID}, nil
}

func (stubPoolingService) GetOrder(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubPoolingService) ListPools(context.Context, pooling.PoolFilter) ([]models.Pool, error) {
	return nil, nil
}

func (stubPoolingService) ListPoolOrders(context.Context, uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

type stubExceptionsService struct{}

func (stubExceptionsService) Raise(context.Context, exceptions.RaiseInput) (*models.OpsException, error) {
	return &models.OpsException{}, nil
}

func (stubExceptionsService) Transition(_ context.Context, input exceptions.TransitionInput) (*models.OpsException, error) {
	return &models.OpsException{ID: input.ExceptionID, Status: input.Target}, nil
}

func (stubExceptionsService) Get(_ context.Context, exceptionID uuid.UUID) (*models.OpsException, error) {
	return &models.OpsException{ID: exceptionID}, nil
}

func (stubExceptionsService) List(context.Context, exceptions.Filter) ([]models.OpsException, error) {
	return nil, nil
}

type stubLedgerService struct{}

func (stubLedgerService) Append(context.Context, ledger.AppendInput) (*models.FinanceLedgerEntry, error) {
	return &models.FinanceLedgerEntry{ID: uuid.New()}, nil
}

func (stubLedgerService) Aggregate(context.Context, ledger.AggregateQuery) (*ledger.Report, error) {
	return &ledger.Report{}, nil
}

func (stubLedgerService) ListEntries(context.Context, ledger.RangeFilter) ([]models.FinanceLedgerEntry, error) {
	return nil, nil
}

type stubSLAService struct{}

func (stubSLAService) RecordDelivered(_ context.Context, deliveryID uuid.UUID, _ time.Time) (*models.Delivery, error) {
	return &models.Delivery{ID: deliveryID}, nil
}

func (stubSLAService) Override(_ context.Context, input sla.OverrideInput) (*models.Delivery, error) {
	return &models.Delivery{ID: input.DeliveryID}, nil
}

type stubExportService struct{}

func (stubExportService) WriteCSV(_ context.Context, w io.Writer, _ export.View, _ export.Filter) error {
	_, err := w.Write([]byte("header\n"))
	return err
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Params{
		Config:     cfg,
		Logger:     logg,
		DB:         stubPinger{},
		Sessions:   stubSessionChecker{},
		Auth:       stubAuthService{},
		Pooling:    stubPoolingService{},
		Exceptions: stubExceptionsService{},
		Ledger:     stubLedgerService{},
		SLA:        stubSLAService{},
		Export:     stubExportService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}

func TestPoolLockRequiresCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/pools/" + uuid.NewString() + "/lock"

	viewer := httptest.NewRequest(http.MethodPost, target, strings.NewReader("{}"))
	viewer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsViewer))
	viewer.Header.Set("Idempotency-Key", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, target, strings.NewReader("{}"))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsAdmin))
	admin.Header.Set("Idempotency-Key", uuid.NewString())
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestExceptionCloseRequiresCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/exceptions/" + uuid.NewString() + "/transition"

	viewer := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"target":"closed"}`))
	viewer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsViewer))
	viewer.Header.Set("Idempotency-Key", uuid.NewString())
	viewer.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer close got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"target":"closed"}`))
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsAgent))
	agent.Header.Set("Idempotency-Key", uuid.NewString())
	agent.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent close got %d", resp.Code)
	}
}

func TestExportRequiresCapability(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	viewer := httptest.NewRequest(http.MethodGet, "/api/v1/exports/orders", nil)
	viewer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, viewer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer export got %d", resp.Code)
	}

	agent := httptest.NewRequest(http.MethodGet, "/api/v1/exports/orders", nil)
	agent.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.StaffRoleOpsAgent))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, agent)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for agent export got %d", resp.Code)
	}
}
