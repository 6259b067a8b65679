package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/kisanshaktiai/market-ingestor/internal/domain/dto"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/metrics"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/utils"
)

func newTestRouter() (*APIService, *echo.Echo) {
	e := echo.New()
	e.Validator = NewValidator()
	e.Binder = NewBinder()
	e.JSONSerializer = NewSonicSerializer()
	e.HTTPErrorHandler = httpErrorHandler

	return &APIService{router: e}, e
}

func TestAdminMiddlewareMissingCookie(t *testing.T) {
	svc, e := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/run", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	next := func(echo.Context) error {
		called = true
		return nil
	}

	if err := svc.AdminMiddleware(next)(ctx); err != constants.ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if called {
		t.Fatal("next handler ran without a cookie")
	}
}

func TestAdminMiddlewareValidToken(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "s3cret")

	token, err := utils.GenerateAuthToken(utils.AuthTokenWrapper{Secret: "s3cret"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	svc, e := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/run", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieKeySecretToken, Value: token})
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	next := func(echo.Context) error {
		called = true
		return nil
	}

	if err := svc.AdminMiddleware(next)(ctx); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if !called {
		t.Fatal("next handler never ran")
	}
}

func TestAdminMiddlewareStaleSecret(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "old-secret")

	token, err := utils.GenerateAuthToken(utils.AuthTokenWrapper{Secret: "old-secret"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	viper.Set(constants.ViperSecretKey, "new-secret")

	svc, e := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/run", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieKeySecretToken, Value: token})
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	next := func(echo.Context) error { return nil }

	if err := svc.AdminMiddleware(next)(ctx); err != constants.ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	_, e := newTestRouter()

	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"coded", constants.ErrDBNotFound, http.StatusNotFound, "not found"},
		{"wrapped coded", fmt.Errorf("getSource: %w", constants.ErrDBNotFound), http.StatusNotFound, "not found"},
		{"echo", echo.NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot, "teapot"},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, "boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)

			httpErrorHandler(tc.err, ctx)

			if rec.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tc.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tc.wantMsg) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tc.wantMsg)
			}
		})
	}
}

func TestBindRejectsBadQuery(t *testing.T) {
	_, e := newTestRouter()

	e.GET("/prices", func(ctx echo.Context) error {
		var req dto.ListPricesRequest
		if err := ctx.Bind(&req); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, req)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices?from=not-a-date", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prices?from=2024-01-15&limit=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "2024-01-15") {
		t.Fatalf("body = %q, want bound from date echoed back", rec.Body.String())
	}
}

func TestSonicSerializerDeserializeBadJSON(t *testing.T) {
	_, e := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	var body dto.TriggerIngestRequest
	err := NewSonicSerializer().Deserialize(ctx, &body)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 HTTPError", err)
	}
}

func TestRoutesWired(t *testing.T) {
	svc, err := NewAPIService(nil, metrics.New())
	if err != nil {
		t.Fatalf("NewAPIService: %v", err)
	}

	rec := httptest.NewRecorder()
	svc.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz code = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("healthz body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	svc.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics code = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	svc.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ingest/run", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("ingest without cookie code = %d, want 401", rec.Code)
	}
}
