package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/katsunarinishio0430-cmd/biolog-app/estimator"
)

// setupSuggestTest creates a router whose estimator talks to a mock OpenAI
// server and returns a function to set the mock response.
func setupSuggestTest(t *testing.T) (*gin.Engine, string, func(int, interface{})) {
	t.Helper()
	var mockStatus int
	var mockBody interface{}

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))
	t.Cleanup(mockOpenAI.Close)

	router, h := setupHandlerTest(t)
	est, err := estimator.New(estimator.Config{
		Provider: estimator.ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  mockOpenAI.URL + "/v1/",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("estimator: %v", err)
	}
	h.est = est
	h.coach = est

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}
	return router, loginForTest(t, router), setMock
}

// openAIChatResponse wraps a content string in the OpenAI chat completions
// response shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func TestEstimateMeal_Success(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`{"menu_name":"Chicken Breast and Rice","calories":580,"protein":52,"fat":6,"carbs":70}`))

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"chicken breast 200g, white rice 150g"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[estimator.Estimate](t, w)
	if resp.MenuName != "Chicken Breast and Rice" {
		t.Errorf("expected menu_name 'Chicken Breast and Rice', got '%s'", resp.MenuName)
	}
	if resp.Calories != 580 || resp.Protein != 52 {
		t.Errorf("unexpected nutrition: %+v", resp)
	}
}

func TestEstimateMeal_Unrecognized(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`{"error":"unrecognized"}`))

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"asdfghjkl"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]string](t, w)
	if resp["error"] != "unrecognized" {
		t.Errorf("expected error 'unrecognized', got '%s'", resp["error"])
	}
}

func TestEstimateMeal_ProviderError500(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)
	setMock(http.StatusInternalServerError, map[string]interface{}{"error": map[string]string{"message": "server error"}})

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"banana"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimateMeal_MalformedJSON(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`not valid json at all`))

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"banana"}`)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimateMeal_EmptyDescription(t *testing.T) {
	router, token, _ := setupSuggestTest(t)

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"  "}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimateMeal_NotConfigured(t *testing.T) {
	router, _ := setupHandlerTest(t)
	token := loginForTest(t, router)

	w := doRequest(router, "POST", "/api/meals/estimate", token, `{"description":"banana"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	w = doRequest(router, "POST", "/api/coach", token, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("coach: expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEstimateMealImage_Success(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)
	setMock(http.StatusOK, openAIChatResponse(`{"menu_name":"Salmon Bowl","calories":640,"protein":38,"fat":22,"carbs":70}`))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "lunch.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/meals/estimate-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decode[estimator.Estimate](t, w); resp.MenuName != "Salmon Bowl" {
		t.Errorf("expected 'Salmon Bowl', got '%s'", resp.MenuName)
	}
}

func TestEstimateMealImage_MissingFile(t *testing.T) {
	router, token, _ := setupSuggestTest(t)

	w := doRequest(router, "POST", "/api/meals/estimate-image", token, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCoachReport(t *testing.T) {
	router, token, setMock := setupSuggestTest(t)

	// No summary yet.
	w := doRequest(router, "POST", "/api/coach", token, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before any data, got %d: %s", w.Code, w.Body.String())
	}

	doRequest(router, "POST", "/api/meals", token, `{"menu_name":"Oats","calories":350,"protein":12,"fat":6,"carbs":60}`)
	setMock(http.StatusOK, openAIChatResponse("Add a protein source to breakfast."))

	w = doRequest(router, "POST", "/api/coach", token, `{"days":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]interface{}](t, w)
	if !strings.Contains(resp["report"].(string), "protein") {
		t.Errorf("unexpected report: %v", resp["report"])
	}
	if resp["days"].(float64) != 1 {
		t.Errorf("expected 1 day, got %v", resp["days"])
	}
}
