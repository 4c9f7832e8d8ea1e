package main

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/katsunarinishio0430-cmd/biolog-app/store"
	"github.com/katsunarinishio0430-cmd/biolog-app/tracker"
)

const (
	testUser     = "lyle"
	testPassword = "correct horse"
)

// setupHandlerTest creates a Handler on a fresh SQLite store with no
// estimator, registers all routes and returns the router.
func setupHandlerTest(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "biolog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	h := &Handler{
		svc:      tracker.New(st, log),
		creds:    credentials{Username: testUser, PasswordHash: string(hash)},
		sessions: newSessionStore(),
		log:      log,
	}
	router := gin.New()
	h.registerRoutes(router)
	return router, h
}

// doRequest sends a JSON request with an optional bearer token.
func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// loginForTest logs in with the test credentials and returns the token.
func loginForTest(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doRequest(router, "POST", "/api/login", "", `{"username":"lyle","password":"correct horse"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login: no token in %s", w.Body.String())
	}
	return resp.Token
}

// workoutListResponse is the subset of GET /api/workouts the tests read.
type workoutListResponse struct {
	Entries []struct {
		CaloriesBurned float64 `json:"calories_burned"`
		Volume         float64 `json:"volume"`
	} `json:"entries"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}

/* ─── Auth ───────────────────────────────────────────────────────────── */

func TestLogin_Failures(t *testing.T) {
	router, _ := setupHandlerTest(t)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"wrong password", `{"username":"lyle","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"someone","password":"correct horse"}`, http.StatusUnauthorized},
		{"bad body", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/api/login", "", tc.body)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := setupHandlerTest(t)

	if w := doRequest(router, "GET", "/api/meals", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", w.Code)
	}
	if w := doRequest(router, "GET", "/api/meals", "not-a-token", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", w.Code)
	}

	token := loginForTest(t, router)
	if w := doRequest(router, "GET", "/api/meals", token, ""); w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}

	if w := doRequest(router, "POST", "/api/logout", token, ""); w.Code != http.StatusNoContent {
		t.Errorf("logout: expected 204, got %d", w.Code)
	}
	if w := doRequest(router, "GET", "/api/meals", token, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("after logout: expected 401, got %d", w.Code)
	}
}

/* ─── Logs and summary ───────────────────────────────────────────────── */

func TestCreateMeal_RefreshesSummary(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "POST", "/api/meals", token,
		`{"menu_name":"Chicken Rice","calories":650,"protein":42,"fat":12,"carbs":88,"timestamp":"2024-05-01T12:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	saved := decode[savedResponse](t, w)
	if saved.SummaryError != "" {
		t.Fatalf("unexpected summary error: %s", saved.SummaryError)
	}
	if len(saved.Summary) != 1 || saved.Summary[0].Intake != 650 {
		t.Fatalf("unexpected summary: %+v", saved.Summary)
	}

	w = doRequest(router, "GET", "/api/daily-summary", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	summary := decode[summaryResponse](t, w)
	if len(summary.Rows) != 1 || summary.Rows[0].Day != "2024-05-01" {
		t.Errorf("unexpected rows: %+v", summary.Rows)
	}
	if len(summary.Columns) != 9 || summary.Columns[0] != "day" {
		t.Errorf("unexpected columns: %v", summary.Columns)
	}
}

func TestCreateMeal_Validation(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "POST", "/api/meals", token, `{"menu_name":"","calories":100}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(router, "POST", "/api/meals", token, `{"menu_name":"Toast","calories":-5}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateWorkout_UsesProfileWeight(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "PUT", "/api/profile", token,
		`{"weight_kg":80,"height_cm":180,"age_years":35,"sex":"male","activity_level":"low"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	prof := decode[profileResponse](t, w)
	// 10*80 + 6.25*180 - 5*35 + 5 = 1755
	if prof.BMR != 1755 || math.Abs(prof.BaseMetabolism-2106) > 1e-9 {
		t.Errorf("unexpected profile figures: bmr=%v base=%v", prof.BMR, prof.BaseMetabolism)
	}

	w = doRequest(router, "POST", "/api/workouts", token,
		`{"exercise":"Squat","weight":100,"reps":5,"sets":3,"duration_minutes":60}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, "GET", "/api/workouts", token, "")
	list := decode[workoutListResponse](t, w)
	if len(list.Entries) != 1 {
		t.Fatalf("expected 1 workout, got %d", len(list.Entries))
	}
	// 6.0 MET * 80kg * 1h * 1.05
	if list.Entries[0].CaloriesBurned != 504 {
		t.Errorf("expected 504 kcal, got %v", list.Entries[0].CaloriesBurned)
	}
	if list.Entries[0].Volume != 1500 {
		t.Errorf("expected volume 1500, got %v", list.Entries[0].Volume)
	}

	w = doRequest(router, "GET", "/api/workouts/volume?exercise=squat", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("volume: expected 200, got %d", w.Code)
	}
}

func TestGetProfile_Defaults(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "GET", "/api/profile", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	prof := decode[profileResponse](t, w)
	if prof.Profile != tracker.DefaultProfile() {
		t.Errorf("expected default profile, got %+v", prof.Profile)
	}
}

func TestPutProfile_Invalid(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "PUT", "/api/profile", token,
		`{"weight_kg":80,"height_cm":180,"age_years":35,"sex":"male","activity_level":"very_active"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Session queue ──────────────────────────────────────────────────── */

func TestWorkoutQueue_FlushSavesBatch(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	for _, body := range []string{
		`{"exercise":"Bench","weight":60,"reps":10,"sets":1,"duration_minutes":5}`,
		`{"exercise":"Bench","weight":62.5,"reps":8,"sets":1,"duration_minutes":5}`,
	} {
		if w := doRequest(router, "POST", "/api/workouts/queue", token, body); w.Code != http.StatusCreated {
			t.Fatalf("queue: expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	// Queued sets are not in the log yet.
	w := doRequest(router, "GET", "/api/workouts", token, "")
	if got := decode[struct {
		Entries []any `json:"entries"`
	}](t, w); len(got.Entries) != 0 {
		t.Fatalf("expected empty log before flush, got %d", len(got.Entries))
	}

	// Another session does not see this queue.
	other := loginForTest(t, router)
	w = doRequest(router, "GET", "/api/workouts/queue", other, "")
	if got := decode[struct {
		Entries []any `json:"entries"`
	}](t, w); len(got.Entries) != 0 {
		t.Errorf("expected other session queue to be empty, got %d", len(got.Entries))
	}

	w = doRequest(router, "POST", "/api/workouts/queue/flush", token, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("flush: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, "GET", "/api/workouts", token, "")
	if got := decode[struct {
		Entries []any `json:"entries"`
	}](t, w); len(got.Entries) != 2 {
		t.Errorf("expected 2 workouts after flush, got %d", len(got.Entries))
	}

	w = doRequest(router, "POST", "/api/workouts/queue/flush", token, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("second flush: expected 400, got %d", w.Code)
	}
}

func TestWorkoutQueue_Clear(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	doRequest(router, "POST", "/api/workouts/queue", token, `{"exercise":"Row","duration_minutes":10}`)
	if w := doRequest(router, "DELETE", "/api/workouts/queue", token, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w := doRequest(router, "GET", "/api/workouts/queue", token, "")
	if got := decode[struct {
		Entries []any `json:"entries"`
	}](t, w); len(got.Entries) != 0 {
		t.Errorf("expected empty queue, got %d", len(got.Entries))
	}
}

func TestRefreshDailySummary_EmptyLogs(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "POST", "/api/daily-summary/refresh", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		Rows []any `json:"rows"`
	}](t, w)
	if got.Rows == nil || len(got.Rows) != 0 {
		t.Errorf("expected empty rows array, got %v", got.Rows)
	}
}
