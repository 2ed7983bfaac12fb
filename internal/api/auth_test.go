package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func resetAuth() {
	auth = nil
}

func TestAuthDisabledWhenNoCredentials(t *testing.T) {
	resetAuth()

	SetAuthForTest("", "", "", "")

	if IsAuthEnabled() {
		t.Error("auth should be disabled when no credentials are set")
	}

	called := false
	handler := RequireAnyRole(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if !called {
		t.Error("handler should be called when auth is disabled")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestAuthEnabledRequiresCredentials(t *testing.T) {
	resetAuth()

	SetAuthForTest("admin", "secret", "operator", "opsecret")

	if !IsAuthEnabled() {
		t.Error("auth should be enabled")
	}

	called := false
	handler := RequireAnyRole(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if called {
		t.Error("handler should NOT be called without credentials")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
}

func TestValidAdminCredentials(t *testing.T) {
	resetAuth()

	SetAuthForTest("admin", "secret", "operator", "opsecret")

	called := false
	handler := RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.SetBasicAuth("admin", "secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if !called {
		t.Error("handler should be called with valid admin credentials")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestValidOperatorCredentials(t *testing.T) {
	resetAuth()

	SetAuthForTest("admin", "secret", "operator", "opsecret")

	called := false
	handler := RequireAnyRole(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.SetBasicAuth("operator", "opsecret")
	w := httptest.NewRecorder()

	handler(w, req)

	if !called {
		t.Error("handler should be called with valid operator credentials")
	}
}

func TestOperatorDeniedAdminEndpoint(t *testing.T) {
	resetAuth()

	SetAuthForTest("admin", "secret", "operator", "opsecret")

	called := false
	handler := RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/session/start", nil)
	req.SetBasicAuth("operator", "opsecret")
	w := httptest.NewRecorder()

	handler(w, req)

	if called {
		t.Error("operator should not reach admin-only endpoints")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestInvalidCredentials(t *testing.T) {
	resetAuth()

	SetAuthForTest("admin", "secret", "operator", "opsecret")

	called := false
	handler := RequireAnyRole(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.SetBasicAuth("admin", "wrong")
	w := httptest.NewRecorder()

	handler(w, req)

	if called {
		t.Error("handler should not be called with invalid credentials")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}

func TestSecureCompare(t *testing.T) {
	if !secureCompare("abc", "abc") {
		t.Error("identical strings should compare equal")
	}
	if secureCompare("abc", "abd") {
		t.Error("different strings should not compare equal")
	}
	if secureCompare("abc", "abcd") {
		t.Error("different lengths should not compare equal")
	}
}
