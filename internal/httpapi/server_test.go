package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"cardgend/internal/pipeline"
	"cardgend/pkg/types"
)

type fakeService struct {
	card  json.RawMessage
	err   error
	ready bool
	calls int
}

func (f *fakeService) Generate(ctx context.Context, description string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.card, nil
}

func (f *fakeService) Ready() bool { return f.ready }

func postCard(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate-card", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var er types.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&er); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rr.Body.String())
	}
	return er
}

func TestGenerateCardSuccessIsUnwrapped(t *testing.T) {
	card := json.RawMessage(`{"type":"AdaptiveCard","body":[]}`)
	svc := &fakeService{card: card, ready: true}
	h := NewMux(svc)
	rr := postCard(t, h, `{"description":"a weather widget"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	var got, want map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not the raw artifact: %v", err)
	}
	if err := json.Unmarshal(card, &want); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("body = %v, want %v", got, want)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestGenerateCardMissingDescription(t *testing.T) {
	svc := &fakeService{ready: true}
	h := NewMux(svc)
	for _, body := range []string{`{}`, `{"description":""}`, `{"description":"   "}`} {
		rr := postCard(t, h, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rr.Code)
		}
	}
	if svc.calls != 0 {
		t.Fatalf("service must not be invoked without a description")
	}
}

func TestGenerateCardInvalidJSONBody(t *testing.T) {
	svc := &fakeService{ready: true}
	rr := postCard(t, NewMux(svc), `{"description":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service must not be invoked on invalid body")
	}
}

func TestGenerateCardContentTypeRequired(t *testing.T) {
	svc := &fakeService{ready: true}
	req := httptest.NewRequest(http.MethodPost, "/generate-card", strings.NewReader(`{"description":"x"}`))
	rr := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rr.Code)
	}
}

func TestGenerateCardStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"busy", pipeline.ErrBusy(), http.StatusTooManyRequests, "busy"},
		{"rate limited", pipeline.ErrRateLimit(3600), http.StatusTooManyRequests, "rate_limited"},
		{"timeout", pipeline.ErrTimeout(), http.StatusGatewayTimeout, "timeout"},
		{"configuration", pipeline.ErrConfiguration("no key"), http.StatusInternalServerError, "configuration"},
		{"malformed output", pipeline.ErrMalformedResponse("bad tag", `{"x":1}`), http.StatusInternalServerError, "malformed_response"},
		{"provider error", pipeline.ErrProvider(502, "upstream sad"), http.StatusInternalServerError, "provider_error"},
		{"validation", pipeline.ErrValidation("description is required"), http.StatusBadRequest, "validation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{err: tc.err, ready: true}
			rr := postCard(t, NewMux(svc), `{"description":"a card"}`)
			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			er := decodeError(t, rr)
			if er.Error != tc.wantCode {
				t.Fatalf("error code = %q, want %q", er.Error, tc.wantCode)
			}
		})
	}
}

func TestGenerateCardRateLimitCarriesRetryAfter(t *testing.T) {
	svc := &fakeService{err: pipeline.ErrRateLimit(3600), ready: true}
	rr := postCard(t, NewMux(svc), `{"description":"a card"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	er := decodeError(t, rr)
	if er.RetryAfter != 3600 {
		t.Fatalf("retryAfter = %d, want 3600", er.RetryAfter)
	}
	if got := rr.Header().Get("Retry-After"); got != "3600" {
		t.Fatalf("Retry-After header = %q", got)
	}
}

func TestErrorBodiesNeverLeakDiagnostics(t *testing.T) {
	secret := `{"internal":"provider payload"}`
	cases := []error{
		pipeline.ErrMalformedResponse("wrong tag", secret),
		pipeline.ErrProvider(500, "stack: goroutine 1 [running] "+secret),
	}
	for _, err := range cases {
		svc := &fakeService{err: err, ready: true}
		rr := postCard(t, NewMux(svc), `{"description":"a card"}`)
		if strings.Contains(rr.Body.String(), "provider payload") {
			t.Fatalf("external body leaks internal detail: %s", rr.Body.String())
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	svc := &fakeService{ready: true}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	NewMux(svc).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var hr types.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&hr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hr.Status != "ok" || hr.Version != Version || len(hr.Endpoints) == 0 {
		t.Fatalf("unexpected health payload: %+v", hr)
	}
}

func TestReadyz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	rr := httptest.NewRecorder()
	NewMux(&fakeService{ready: true}).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ready: status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	NewMux(&fakeService{ready: false}).ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready: status = %d, want 503", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	NewMux(&fakeService{}).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
