package login_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/volunteerhub/volunteerhub/internal/app/features/login"
	"github.com/volunteerhub/volunteerhub/internal/app/system/auth"
	"github.com/volunteerhub/volunteerhub/internal/domain/models"
	"github.com/volunteerhub/volunteerhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func setupLogin(t *testing.T) (*login.Handler, http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	if err := auth.InitSessionStore("0123456789abcdef0123456789abcdef", "", "", false, zap.NewNop()); err != nil {
		t.Fatalf("init session store: %v", err)
	}
	handler := login.NewHandler(db, nil, zap.NewNop())
	return handler, login.Routes(handler), testutil.NewFixtures(t, db)
}

func seedAccount(t *testing.T, fixtures *testutil.Fixtures, email, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Jane Doe", email, models.RoleVolunteer)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, user.ID,
		bson.M{"$set": bson.M{"password": string(hash)}}); err != nil {
		t.Fatalf("set password: %v", err)
	}
	return user
}

func postLogin(t *testing.T, router http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	_, router, fixtures := setupLogin(t)
	seedAccount(t, fixtures, "jane@example.com", "correct horse")

	rec := postLogin(t, router, "jane@example.com", "correct horse")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}

	cookie := rec.Header().Get("Set-Cookie")
	if cookie == "" || !strings.Contains(cookie, "volunteerhub-session") {
		t.Errorf("expected session cookie, got %q", cookie)
	}

	var body struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.User.Email != "jane@example.com" {
		t.Errorf("email: got %q", body.User.Email)
	}
}

func TestHandleLogin_FailuresLookAlike(t *testing.T) {
	_, router, fixtures := setupLogin(t)
	user := seedAccount(t, fixtures, "jane@example.com", "correct horse")

	// Wrong password.
	rec := postLogin(t, router, "jane@example.com", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}
	wrongBody := rec.Body.String()

	// Unknown account: same status, same body.
	rec = postLogin(t, router, "nobody@example.com", "correct horse")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: got %d, want 401", rec.Code)
	}
	if rec.Body.String() != wrongBody {
		t.Error("failure responses should be indistinguishable")
	}

	// Disabled account with the right password still fails.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, user.ID,
		bson.M{"$set": bson.M{"status": models.StatusDisabled}}); err != nil {
		t.Fatalf("disable account: %v", err)
	}
	rec = postLogin(t, router, "jane@example.com", "correct horse")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("disabled account: got %d, want 401", rec.Code)
	}
}
