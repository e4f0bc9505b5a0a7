package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/habmon/habmon/internal/api/types"
)

func TestWriteJSON_Unencodable(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"autonomy": math.Inf(1)})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp types.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body is not json: %v", err)
	}
	if resp.Success || resp.Error == nil {
		t.Errorf("expected an error response, got %+v", resp)
	}
}
