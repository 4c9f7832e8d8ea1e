package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

// cliEnv pins the environment so a developer's .env or shell cannot leak in.
func cliEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "unused.db"))
	t.Setenv("ESTIMATOR_PROVIDER", "none")
	t.Setenv("SUMMARY_REFRESH_CRON", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	cliEnv(t)
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"summary", "workout", "meal", "profile", "bmr", "estimate"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output missing %q:\n%s", name, out)
		}
	}
}

func TestBMRDefaults(t *testing.T) {
	cliEnv(t)
	out, err := runCLI(t, "bmr")
	if err != nil {
		t.Fatalf("bmr: %v", err)
	}
	// 70kg, 170cm, 30y male: 10*70 + 6.25*170 - 5*30 + 5 = 1617.5
	if !strings.Contains(out, "BMR: 1617.50 kcal") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestBMRInvalidActivity(t *testing.T) {
	cliEnv(t)
	if _, err := runCLI(t, "bmr", "--activity", "extreme"); err == nil {
		t.Fatal("expected error for unknown activity level")
	}
}

func TestLogAndSummary(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "biolog.db")

	out, err := runCLI(t, "--sqlite", db, "workout", "add",
		"--exercise", "Squat", "--weight", "100", "--reps", "5", "--sets", "3", "--minutes", "60")
	if err != nil {
		t.Fatalf("workout add: %v", err)
	}
	if !strings.Contains(out, "Logged Squat") || !strings.Contains(out, "volume 1500") {
		t.Errorf("unexpected workout output:\n%s", out)
	}

	out, err = runCLI(t, "--sqlite", db, "meal", "add", "--name", "Oats", "--calories", "350", "--protein", "12")
	if err != nil {
		t.Fatalf("meal add: %v", err)
	}
	if !strings.Contains(out, "Logged Oats") {
		t.Errorf("unexpected meal output:\n%s", out)
	}

	out, err = runCLI(t, "--sqlite", db, "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "INTAKE") || !strings.Contains(out, "350") {
		t.Errorf("summary missing intake:\n%s", out)
	}

	out, err = runCLI(t, "--sqlite", db, "workout", "list")
	if err != nil {
		t.Fatalf("workout list: %v", err)
	}
	if !strings.Contains(out, "Squat") {
		t.Errorf("workout list missing entry:\n%s", out)
	}
}

func TestSummaryEmpty(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "biolog.db")
	out, err := runCLI(t, "--sqlite", db, "summary", "--refresh")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "No data yet.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWorkoutAddRequiresExercise(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "biolog.db")
	if _, err := runCLI(t, "--sqlite", db, "workout", "add", "--reps", "5"); err == nil {
		t.Fatal("expected error without --exercise")
	}
}

func TestProfileSetAndShow(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "biolog.db")
	if _, err := runCLI(t, "--sqlite", db, "profile", "set", "--weight", "80", "--activity", "moderate"); err != nil {
		t.Fatalf("profile set: %v", err)
	}
	out, err := runCLI(t, "--sqlite", db, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	// 10*80 + 6.25*170 - 5*30 + 5 = 1717.5; *1.375 = 2361.56
	if !strings.Contains(out, "BMR: 1717.50 kcal") || !strings.Contains(out, "2362 kcal/day") {
		t.Errorf("unexpected profile output:\n%s", out)
	}
}

func TestProfileSetKeepsUnchangedFields(t *testing.T) {
	cliEnv(t)
	db := filepath.Join(t.TempDir(), "biolog.db")
	if _, err := runCLI(t, "--sqlite", db, "profile", "set",
		"--weight", "60", "--height", "160", "--age", "45", "--sex", "female", "--activity", "high"); err != nil {
		t.Fatalf("profile set: %v", err)
	}
	if _, err := runCLI(t, "--sqlite", db, "profile", "set", "--weight", "62"); err != nil {
		t.Fatalf("profile set weight: %v", err)
	}
	out, err := runCLI(t, "--sqlite", db, "profile", "show")
	if err != nil {
		t.Fatalf("profile show: %v", err)
	}
	// 10*62 + 6.25*160 - 5*45 - 161 = 1234; *1.55 = 1912.7
	if !strings.Contains(out, "62.0 kg, 160 cm, 45 y, female, high activity") {
		t.Errorf("unchanged fields were reset:\n%s", out)
	}
	if !strings.Contains(out, "BMR: 1234.00 kcal") || !strings.Contains(out, "1913 kcal/day") {
		t.Errorf("unexpected energy figures:\n%s", out)
	}
}

func TestEstimateRequiresOneInput(t *testing.T) {
	cliEnv(t)
	if _, err := runCLI(t, "estimate"); err == nil {
		t.Fatal("expected error with neither --text nor --image")
	}
	if _, err := runCLI(t, "estimate", "--text", "rice", "--image", "x.jpg"); err == nil {
		t.Fatal("expected error with both --text and --image")
	}
}

func TestEstimateNotConfigured(t *testing.T) {
	cliEnv(t)
	if _, err := runCLI(t, "estimate", "--text", "rice"); err == nil {
		t.Fatal("expected error with ESTIMATOR_PROVIDER=none")
	}
}

func TestMealAddWithEstimate(t *testing.T) {
	cliEnv(t)
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"menu_name":"Ramen","calories":650,"protein":25,"fat":20,"carbs":85}`
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	defer mock.Close()
	t.Setenv("ESTIMATOR_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", mock.URL+"/v1/")

	db := filepath.Join(t.TempDir(), "biolog.db")
	out, err := runCLI(t, "--sqlite", db, "meal", "add", "--estimate", "a bowl of ramen")
	if err != nil {
		t.Fatalf("meal add: %v", err)
	}
	if !strings.Contains(out, "Logged Ramen") || !strings.Contains(out, "650 kcal") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
