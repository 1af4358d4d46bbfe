package portalauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/litspark/portalauth/api"
	"github.com/litspark/portalauth/session"
)

func TestLoginPersistsSessionBeforeReturning(t *testing.T) {
	srv := newAuthServer(t)
	srv.handle("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if body["email"] != "ada@litspark.example" || body["password"] != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, authPayloadBody(testUser(), "t1", "r1"))
	})

	m, mr := buildTestManager(t, srv, nil)

	u, err := m.Login(context.Background(), "ada@litspark.example", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("unexpected user: %+v", u)
	}

	snap := m.Snapshot()
	if !snap.IsAuthenticated() {
		t.Fatal("expected authenticated snapshot after login")
	}
	if snap.AccessToken != "t1" || snap.RefreshToken != "r1" {
		t.Fatalf("unexpected tokens: %q %q", snap.AccessToken, snap.RefreshToken)
	}
	if snap.Err != "" {
		t.Fatalf("expected empty error, got %q", snap.Err)
	}

	stored, err := mr.Get("litspark:user")
	if err != nil {
		t.Fatalf("expected durable user entry: %v", err)
	}
	var storedUser session.User
	if err := json.Unmarshal([]byte(stored), &storedUser); err != nil {
		t.Fatalf("stored user not JSON: %v", err)
	}
	if storedUser.ID != "u1" {
		t.Fatalf("unexpected stored user: %+v", storedUser)
	}
	if tok, _ := mr.Get("litspark:token"); tok != "t1" {
		t.Fatalf("expected durable token t1, got %q", tok)
	}
	if got := m.MetricsSnapshot().Counters[MetricLoginSuccess]; got != 1 {
		t.Fatalf("expected 1 login success, got %d", got)
	}
}

func TestLoginFailureRecordsServerMessage(t *testing.T) {
	srv := newAuthServer(t)
	srv.handle("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	m, mr := buildTestManager(t, srv, nil)

	_, err := m.Login(context.Background(), "ada@litspark.example", "wrong")
	if !api.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 api error, got %v", err)
	}

	snap := m.Snapshot()
	if snap.IsAuthenticated() {
		t.Fatal("expected session untouched on failure")
	}
	if snap.Err != "Invalid credentials" {
		t.Fatalf("expected server message recorded, got %q", snap.Err)
	}
	if mr.Exists("litspark:token") {
		t.Fatal("expected no durable token after failed login")
	}
	if got := m.MetricsSnapshot().Counters[MetricLoginFailure]; got != 1 {
		t.Fatalf("expected 1 login failure, got %d", got)
	}
}

func TestLoginUnreachableRecordsGenericMessage(t *testing.T) {
	srv := newAuthServer(t)
	m, _ := buildTestManager(t, srv, func(cfg *Config) {
		cfg.API.BaseURL = "http://127.0.0.1:1"
	})

	_, err := m.Login(context.Background(), "ada@litspark.example", "hunter2")
	if !errors.Is(err, api.ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}
	if got := m.Snapshot().Err; got != genericFailureMessage {
		t.Fatalf("expected generic failure message, got %q", got)
	}
}

func TestLoginRejectsIncompletePayload(t *testing.T) {
	srv := newAuthServer(t)
	srv.handle("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": testUser()})
	})

	m, _ := buildTestManager(t, srv, nil)

	_, err := m.Login(context.Background(), "ada@litspark.example", "hunter2")
	if !errors.Is(err, errIncompletePayload) {
		t.Fatalf("expected incomplete payload error, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("expected no session from a payload missing its token")
	}
}

func TestLoginClearsPreviousError(t *testing.T) {
	srv := newAuthServer(t)
	attempts := 0
	srv.handle("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, authPayloadBody(testUser(), "t1", "r1"))
	})

	m, _ := buildTestManager(t, srv, nil)

	_, _ = m.Login(context.Background(), "ada@litspark.example", "wrong")
	if m.Snapshot().Err == "" {
		t.Fatal("expected first attempt to record an error")
	}

	if _, err := m.Login(context.Background(), "ada@litspark.example", "hunter2"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if got := m.Snapshot().Err; got != "" {
		t.Fatalf("expected error cleared by new attempt, got %q", got)
	}
}

func TestRegisterSignsIn(t *testing.T) {
	srv := newAuthServer(t)
	srv.handle("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var input api.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decode register body: %v", err)
		}
		if input.Email != "new@litspark.example" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already in use"})
			return
		}
		u := testUser()
		u.ID = "u2"
		u.Email = input.Email
		u.EmailVerified = false
		writeJSON(w, http.StatusOK, authPayloadBody(u, "t1", "r1"))
	})

	m, _ := buildTestManager(t, srv, nil)

	u, err := m.Register(context.Background(), api.RegisterInput{
		FirstName: "Noor",
		LastName:  "Haddad",
		Email:     "new@litspark.example",
		Password:  "hunter2",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.ID != "u2" || u.EmailVerified {
		t.Fatalf("unexpected registered user: %+v", u)
	}
	if !m.IsAuthenticated() {
		t.Fatal("expected registration to sign the account in")
	}
	if got := m.MetricsSnapshot().Counters[MetricRegisterSuccess]; got != 1 {
		t.Fatalf("expected 1 register success, got %d", got)
	}
}

func TestRegisterFailureRecordsServerMessage(t *testing.T) {
	srv := newAuthServer(t)
	srv.handle("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already in use"})
	})

	m, _ := buildTestManager(t, srv, nil)

	_, err := m.Register(context.Background(), api.RegisterInput{Email: "taken@litspark.example"})
	if !api.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("expected 400 api error, got %v", err)
	}
	if got := m.Snapshot().Err; got != "Email already in use" {
		t.Fatalf("expected server message recorded, got %q", got)
	}
}
