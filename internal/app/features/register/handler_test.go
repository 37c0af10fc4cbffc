package register_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/volunteerhub/volunteerhub/internal/app/features/register"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleRegister_Volunteer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := register.NewHandler(db, nil, zap.NewNop())
	router := register.Routes(handler)

	rec := postJSON(t, router, "/", map[string]any{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "correct horse",
		"role":      "volunteer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.User.Role != models.RoleVolunteer {
		t.Errorf("role: got %q", resp.User.Role)
	}
	if resp.User.Status != models.StatusActive {
		t.Errorf("status: got %q", resp.User.Status)
	}

	// The stored password is a bcrypt hash, never the plaintext.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	var stored models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "jane@example.com"}).Decode(&stored); err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse")); err != nil {
		t.Errorf("stored password does not verify: %v", err)
	}
}

func TestHandleRegister_NGO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := register.NewHandler(db, nil, zap.NewNop())
	router := register.Routes(handler)

	rec := postJSON(t, router, "/", map[string]any{
		"full_name": "Sam Lee",
		"email":     "sam@greenearth.org",
		"password":  "correct horse",
		"role":      "ngo",
		"organization": map[string]any{
			"name":     "Green Earth",
			"category": "environment",
			"city":     "Porto",
			"country":  "PT",
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User models.User `json:"user"`
		NGO  *models.NGO `json:"ngo"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.NGO == nil {
		t.Fatal("expected organization in response")
	}
	if resp.NGO.Verification.Status != models.VerificationPending {
		t.Errorf("verification: got %q, want pending", resp.NGO.Verification.Status)
	}
	if resp.User.NGOID == nil || *resp.User.NGOID != resp.NGO.ID {
		t.Error("user should be linked to the organization")
	}
}

func TestHandleRegister_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := register.NewHandler(db, nil, zap.NewNop())
	router := register.Routes(handler)

	cases := []map[string]any{
		{"full_name": "X", "email": "x@example.com", "password": "correct horse", "role": "admin"},
		{"full_name": "", "email": "x@example.com", "password": "correct horse", "role": "volunteer"},
		{"full_name": "X", "email": "not-an-email", "password": "correct horse", "role": "volunteer"},
		{"full_name": "X", "email": "x@example.com", "password": "short", "role": "volunteer"},
		{"full_name": "X", "email": "x@example.com", "password": "correct horse", "role": "ngo"},
	}
	for i, body := range cases {
		rec := postJSON(t, router, "/", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: got %d, want 400: %s", i, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := register.NewHandler(db, nil, zap.NewNop())
	router := register.Routes(handler)

	body := map[string]any{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "correct horse",
		"role":      "volunteer",
	}
	if rec := postJSON(t, router, "/", body); rec.Code != http.StatusCreated {
		t.Fatalf("first registration: got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := postJSON(t, router, "/", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate registration: got %d, want 409: %s", rec.Code, rec.Body.String())
	}
}
