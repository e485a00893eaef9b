package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSecurityHeadersAllowRemoteImages(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "img-src 'self' https:") {
		t.Fatalf("expected remote images allowed, got %q", csp)
	}
	if got := rr.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("did not expect HSTS on plain http, got %q", got)
	}
}

func TestBodyLimitAllowsSmallPayload(t *testing.T) {
	h := BodyLimit(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			t.Fatalf("unexpected read error: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("name=abc"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for small payload, got %d", rr.Code)
	}
}

func TestBodyLimitRejectsLargePayload(t *testing.T) {
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		var maxBytesErr *http.MaxBytesError
		if !errors.As(err, &maxBytesErr) {
			t.Fatalf("expected MaxBytesError, got %v", err)
		}
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("123456789"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized payload, got %d", rr.Code)
	}
}

func csrfTestHandler(t *testing.T, seen *string) http.Handler {
	t.Helper()
	return CSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = CSRFToken(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestCSRFIssuesCookieOnSafeRequest(t *testing.T) {
	var seen string
	h := csrfTestHandler(t, &seen)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CSRFCookieName || cookies[0].Value == "" {
		t.Fatalf("expected csrf cookie, got %+v", cookies)
	}
	if seen != cookies[0].Value {
		t.Fatalf("expected token in context %q, got %q", cookies[0].Value, seen)
	}
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	var seen string
	h := csrfTestHandler(t, &seen)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "existing"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("did not expect a new cookie")
	}
	if seen != "existing" {
		t.Fatalf("expected existing token, got %q", seen)
	}
}

func TestCSRFRejectsMissingCookie(t *testing.T) {
	var seen string
	h := csrfTestHandler(t, &seen)
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.Header.Set(CSRFHeader, "token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf cookie, got %d", rr.Code)
	}
}

func TestCSRFRejectsMismatch(t *testing.T) {
	var seen string
	h := csrfTestHandler(t, &seen)
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "cookie-value"})
	req.Header.Set(CSRFHeader, "header-value")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for csrf mismatch, got %d", rr.Code)
	}
}

func TestCSRFAcceptsHeaderOrFormField(t *testing.T) {
	var seen string
	h := csrfTestHandler(t, &seen)

	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "match"})
	req.Header.Set(CSRFHeader, "match")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for header token, got %d", rr.Code)
	}

	form := url.Values{CSRFFormField: {"match"}, "name": {"Chair"}}
	req = httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "match"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for form token, got %d", rr.Code)
	}
}
