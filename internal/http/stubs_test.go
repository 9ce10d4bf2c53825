package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"legal-companion/internal/domain"
	"legal-companion/internal/service"
)

type stubRegistrar struct {
	requestOTP func(email string) (service.OTPIssued, error)
	resendOTP  func(email string) (service.OTPIssued, error)
	verifyOTP  func(email, code string) (service.VerifiedEmail, error)
	register   func(in service.RegisterInput) (domain.User, error)
	checkEmail func(email string) (service.EmailAvailability, error)
}

func (s *stubRegistrar) RequestOTP(_ context.Context, email string) (service.OTPIssued, error) {
	return s.requestOTP(email)
}

func (s *stubRegistrar) ResendOTP(_ context.Context, email string) (service.OTPIssued, error) {
	return s.resendOTP(email)
}

func (s *stubRegistrar) VerifyOTP(_ context.Context, email, code string) (service.VerifiedEmail, error) {
	return s.verifyOTP(email, code)
}

func (s *stubRegistrar) CompleteRegistration(_ context.Context, in service.RegisterInput) (domain.User, error) {
	return s.register(in)
}

func (s *stubRegistrar) CheckEmail(_ context.Context, email string) (service.EmailAvailability, error) {
	return s.checkEmail(email)
}

type stubSessions struct {
	login   func(username, password string) (service.Session, error)
	refresh func(user domain.User) (service.Session, error)
}

func (s *stubSessions) Login(_ context.Context, username, password string) (service.Session, error) {
	return s.login(username, password)
}

func (s *stubSessions) Refresh(user domain.User) (service.Session, error) {
	return s.refresh(user)
}

// tokenAuthenticator mapea tokens fijos a usuarios.
type tokenAuthenticator map[string]domain.User

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (domain.User, error) {
	if user, ok := a[token]; ok {
		return user, nil
	}
	return domain.User{}, service.ErrJWTInvalid
}

type stubProcessor struct {
	last service.ProcessInput
	res  service.ProcessResult
	err  error
}

func (s *stubProcessor) Process(_ context.Context, in service.ProcessInput) (service.ProcessResult, error) {
	s.last = in
	return s.res, s.err
}

type stubExporter struct {
	last service.ExportInput
	out  service.ExportedPDF
	err  error
}

func (s *stubExporter) GeneratePDF(_ context.Context, in service.ExportInput) (service.ExportedPDF, error) {
	s.last = in
	return s.out, s.err
}

var (
	adminUser   = domain.User{ID: "00000000000000000000000a", Username: "root", IsAdmin: true, IsVerified: true}
	regularUser = domain.User{ID: "00000000000000000000000b", Username: "alice", Email: "alice@example.com", IsVerified: true}
)

func defaultAuthenticator() tokenAuthenticator {
	return tokenAuthenticator{"admin-token": adminUser, "user-token": regularUser}
}

type testRouter struct {
	registrar *stubRegistrar
	sessions  *stubSessions
	processor *stubProcessor
	exporter  *stubExporter
	admin     *stubAdmin
	opts      RouterOptions
}

func newTestRouter() *testRouter {
	return &testRouter{
		registrar: &stubRegistrar{},
		sessions:  &stubSessions{},
		processor: &stubProcessor{},
		exporter:  &stubExporter{},
		admin:     &stubAdmin{},
	}
}

func (tr *testRouter) engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	return NewRouter(logger, defaultAuthenticator(), Handlers{
		Auth:     NewAuthHandler(logger, tr.registrar, tr.sessions),
		Document: NewDocumentHandler(logger, tr.processor, tr.exporter, 1<<20),
		Admin:    NewAdminHandler(logger, tr.admin),
		Health:   NewHealthHandler(logger, nil, []string{"http://localhost:5173"}),
	}, tr.opts)
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func performForm(r http.Handler, method, path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type multipartFile struct {
	field, name string
	data        []byte
}

func performMultipart(r http.Handler, path string, fields map[string]string, file *multipartFile, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if file != nil {
		part, _ := w.CreateFormFile(file.field, file.name)
		_, _ = io.Copy(part, bytes.NewReader(file.data))
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectDetail(t *testing.T, rec *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["detail"]; got != detail {
		t.Fatalf("expected detail %q, got %v", detail, got)
	}
}
