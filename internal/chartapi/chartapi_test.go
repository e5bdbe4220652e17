package chartapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bms-hero/internal/bmsparse"
	"bms-hero/internal/bmstime"
	"bms-hero/internal/cbms"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	chart := cbms.Compile([]cbms.ChannelCommandSet{
		{Measure: 0, Channel: 1, Args: cbms.IndexRange{Start: 0, End: 2}},
		{Measure: 0, Channel: 2, Args: cbms.IndexRange{Start: 2, End: 5}},
		{Measure: 2, Channel: 1, Args: cbms.IndexRange{Start: 5, End: 6}},
	}, []uint32{10, 20, 30, 40, 50, 60})
	tl, err := bmstime.SingleTempo(120, 4)
	if err != nil {
		t.Fatal(err)
	}
	res := []bmsparse.Resource{{Index: 1, Path: "kick.wav"}, {Index: 36, Path: "hat.ogg"}}
	return NewServer(Meta{Title: "t", BPM: 120}, chart, tl, res).Router()
}

func get(t *testing.T, r *gin.Engine, url string, v any) int {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	if v != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
			t.Fatalf("%s: decode %q: %v", url, w.Body.String(), err)
		}
	}
	return w.Code
}

func TestGetChart(t *testing.T) {
	r := newTestServer(t)
	var body struct {
		Meta     Meta    `json:"meta"`
		BarCount int     `json:"barCount"`
		Commands int     `json:"commands"`
		Seconds  float64 `json:"seconds"`
	}
	if code := get(t, r, "/api/chart", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body.BarCount != 3 || body.Commands != 6 || body.Meta.Title != "t" || body.Seconds != 6 {
		t.Fatalf("body = %+v", body)
	}
}

func TestGetBar(t *testing.T) {
	r := newTestServer(t)
	var body struct {
		Empty bool       `json:"empty"`
		Slots []slotJSON `json:"slots"`
	}
	if code := get(t, r, "/api/bars/0", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if body.Empty || len(body.Slots) != 6 {
		t.Fatalf("bar 0 = %+v", body)
	}
	if len(body.Slots[0].Commands) != 2 || body.Slots[4].Commands[0] != (commandJSON{2, 50}) {
		t.Fatalf("bar 0 slots = %+v", body.Slots)
	}

	body.Slots = nil
	if code := get(t, r, "/api/bars/1", &body); code != http.StatusOK || !body.Empty || len(body.Slots) != 0 {
		t.Fatalf("bar 1: status %d body %+v", code, body)
	}

	tests := []struct {
		url  string
		want int
	}{
		{"/api/bars/3", http.StatusNotFound},
		{"/api/bars/-1", http.StatusNotFound},
		{"/api/bars/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if code := get(t, r, tt.url, nil); code != tt.want {
			t.Errorf("%s: status %d, want %d", tt.url, code, tt.want)
		}
	}
}

func TestGetTimed(t *testing.T) {
	r := newTestServer(t)
	var body []timedJSON
	if code := get(t, r, "/api/timed", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(body) != 6 {
		t.Fatalf("got %d commands, want 6", len(body))
	}
	last := body[len(body)-1]
	if last.Bar != 2 || last.Seconds != 4 || last.Value != 60 {
		t.Fatalf("last = %+v", last)
	}
}

func TestGetTime(t *testing.T) {
	r := newTestServer(t)
	var body struct {
		Bar     float64 `json:"bar"`
		Seconds float64 `json:"seconds"`
	}
	if code := get(t, r, "/api/time?bar=1.5", &body); code != http.StatusOK || body.Seconds != 3 {
		t.Fatalf("bar=1.5: status %d body %+v", code, body)
	}
	if code := get(t, r, "/api/time?seconds=5", &body); code != http.StatusOK || body.Bar != 2.5 {
		t.Fatalf("seconds=5: status %d body %+v", code, body)
	}
	if code := get(t, r, "/api/time", nil); code != http.StatusBadRequest {
		t.Fatalf("no query: status %d", code)
	}
	if code := get(t, r, "/api/time?bar=abc", nil); code != http.StatusBadRequest {
		t.Fatalf("bad bar: status %d", code)
	}
}

func TestGetResources(t *testing.T) {
	r := newTestServer(t)
	var body []resourceJSON
	if code := get(t, r, "/api/resources", &body); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	want := []resourceJSON{{1, "kick.wav"}, {36, "hat.ogg"}}
	if len(body) != len(want) {
		t.Fatalf("got %+v, want %+v", body, want)
	}
	for i := range want {
		if body[i] != want[i] {
			t.Errorf("resource %d = %+v, want %+v", i, body[i], want[i])
		}
	}
}

func TestGetResourcesEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tl, _ := bmstime.SingleTempo(120, 4)
	r := NewServer(Meta{}, cbms.Compile(nil, nil), tl, nil).Router()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resources", nil))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("status %d body %q, want 200 []", w.Code, w.Body.String())
	}
}
