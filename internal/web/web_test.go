package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayush/blog-api/internal/apperr"
	"github.com/ayush/blog-api/internal/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantDetail []string
	}{
		{"valid", `{"name":"A","email":"a@example.com","password":"pw"}`, false, nil},
		{"valid with phone", `{"name":"A","email":"a@example.com","password":"pw","phoneNumber":"+919876543210"}`, false, nil},
		{"malformed", `{"name":`, true, nil},
		{"missing fields", `{}`, true, []string{"name should not be empty", "email should not be empty", "password should not be empty"}},
		{"bad email", `{"name":"A","email":"nope","password":"pw"}`, true, []string{"email must be an email"}},
		{"bad phone", `{"name":"A","email":"a@example.com","password":"pw","phoneNumber":"12345"}`, true, []string{"phoneNumber must be a phone number"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dto models.CreateUserDto
			err := Decode(req, &dto)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if apperr.StatusOf(err) != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
			if tc.wantDetail == nil {
				return
			}
			e, _ := apperr.As(err)
			if strings.Join(e.Details, "|") != strings.Join(tc.wantDetail, "|") {
				t.Errorf("expected details %v, got %v", tc.wantDetail, e.Details)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"app error", apperr.Forbidden("nope"), http.StatusForbidden, `"nope"`},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperr.NotFound("gone")), http.StatusNotFound, `"gone"`},
		{"validation", apperr.Validation([]string{"a", "b"}), http.StatusBadRequest, `["a","b"]`},
		{"plain error", errors.New("dial tcp: refused"), http.StatusInternalServerError, `"Internal server error"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			var body struct {
				StatusCode int             `json:"statusCode"`
				Message    json.RawMessage `json:"message"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.StatusCode != tc.wantStatus || string(body.Message) != tc.wantMessage {
				t.Errorf("unexpected body %d %s", body.StatusCode, body.Message)
			}
		})
	}
}

func TestDecode_PartialUpdates(t *testing.T) {
	tests := []struct {
		name       string
		dst        any
		body       string
		wantDetail string
	}{
		{"user name absent", &models.UpdateUserDto{}, `{"address":"Pune"}`, ""},
		{"user name set", &models.UpdateUserDto{}, `{"name":"Alicia"}`, ""},
		{"user name blank", &models.UpdateUserDto{}, `{"name":""}`, "name should not be empty"},
		{"user email blank", &models.UpdateUserDto{}, `{"email":""}`, "email must be an email"},
		{"post title set", &models.UpdatePostDto{}, `{"title":"t"}`, ""},
		{"post title blank", &models.UpdatePostDto{}, `{"title":""}`, "title should not be empty"},
		{"post content blank", &models.UpdatePostDto{}, `{"content":""}`, "content should not be empty"},
		{"post empty body", &models.UpdatePostDto{}, `{}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tc.body))
			err := Decode(req, tc.dst)
			if tc.wantDetail == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			e, ok := apperr.As(err)
			if !ok || e.Status != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
			if len(e.Details) != 1 || e.Details[0] != tc.wantDetail {
				t.Errorf("expected [%s], got %v", tc.wantDetail, e.Details)
			}
		})
	}
}
