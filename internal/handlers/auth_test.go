package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/NNikoGG/water-quality-monitoring/internal/service"
)

func TestAuthHandlers_SignUp(t *testing.T) {
	auth := &mockAuth{signUpID: 42}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodPost, "/auth/sign-up", `{"username":"alice","password":"s3cret"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	if auth.lastSignUpUsername != "alice" || auth.lastSignUpPassword != "s3cret" {
		t.Fatalf("wrong credentials forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}
	var resp struct {
		ID int `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ID != 42 {
		t.Fatalf("id=%d, want 42", resp.ID)
	}
}

func TestAuthHandlers_SignUpValidation(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s, nil)

	// Missing required fields → 400 before the service runs.
	w := doRequest(r, http.MethodPost, "/auth/sign-up", `{"username":"alice"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPost, "/auth/sign-up", `{not json`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestAuthHandlers_SignIn(t *testing.T) {
	auth := &mockAuth{genTokenToken: "jwt-token"}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodPost, "/auth/sign-in", `{"username":"alice","password":"s3cret"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token != "jwt-token" {
		t.Fatalf("token=%q", resp.Token)
	}
}

func TestAuthHandlers_SignInBadCredentialsIs401(t *testing.T) {
	auth := &mockAuth{genTokenErr: errors.New("invalid password")}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s, nil)

	w := doRequest(r, http.MethodPost, "/auth/sign-in", `{"username":"alice","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	// The client gets a generic message, not the internal error.
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "invalid credentials" {
		t.Fatalf("unexpected error message: %q", resp.Error)
	}
}
