package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/gradscout/gradscout/internal/store"
)

func newAuthTestServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	auth := &AuthHandler{Store: &store.Store{DB: db}, Secret: []byte("test-secret")}
	auth.Register(e.Group("/api/auth"))
	return e, mock
}

func TestSignup(t *testing.T) {
	e, mock := newAuthTestServer(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (email, password_hash) VALUES ($1,$2)`)).
		WithArgs("grad@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"email":"grad@example.com","password":"hunter22pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSignupShortPassword(t *testing.T) {
	e, _ := newAuthTestServer(t)

	body := `{"email":"grad@example.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginSetsCookieAndToken(t *testing.T) {
	e, mock := newAuthTestServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE email=$1`)).
		WithArgs("grad@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u1", string(hash)))

	body := `{"email":"grad@example.com","password":"hunter22pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected token in body, got %s (%v)", rec.Body.String(), err)
	}
	var sawCookie bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "auth" && ck.Value != "" {
			sawCookie = true
		}
	}
	if !sawCookie {
		t.Fatalf("expected auth cookie to be set")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e, mock := newAuthTestServer(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash FROM users WHERE email=$1`)).
		WithArgs("grad@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "password_hash"}).AddRow("u1", string(hash)))

	body := `{"email":"grad@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
