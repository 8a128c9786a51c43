package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pbaille/tasks/internal/slot"
	"github.com/pbaille/tasks/internal/taskstore"
)

func newTestServer(t *testing.T) (http.Handler, *taskstore.Store) {
	t.Helper()
	st := taskstore.Open(slot.NewMemory())
	return New(st, ":0", nil).Handler(), st
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, TasksResponse) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp TasksResponse
	if rec.Code < 400 && strings.HasPrefix(path, "/tasks") && method != http.MethodOptions {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	rec, _ := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAddListAndSearch(t *testing.T) {
	h, _ := newTestServer(t)

	rec, resp := do(t, h, http.MethodPost, "/tasks", `{"text":"  buy milk "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if resp.Total != 1 || resp.Tasks[0].Text != "buy milk" {
		t.Fatalf("unexpected add response %+v", resp)
	}
	do(t, h, http.MethodPost, "/tasks", `{"text":"walk dog"}`)

	_, resp = do(t, h, http.MethodGet, "/tasks", "")
	if resp.Total != 2 || resp.Tasks[0].Text != "walk dog" {
		t.Fatalf("expected newest first, got %+v", resp.Tasks)
	}

	_, resp = do(t, h, http.MethodGet, "/tasks?q=MILK", "")
	if len(resp.Tasks) != 1 || resp.Tasks[0].Text != "buy milk" || resp.Total != 2 || resp.Query != "MILK" {
		t.Fatalf("unexpected search response %+v", resp)
	}

	_, resp = do(t, h, http.MethodGet, "/tasks?q=mi", "")
	if len(resp.Tasks) != 2 {
		t.Fatalf("short query should not filter, got %+v", resp.Tasks)
	}
}

func TestAddBlankIsNoop(t *testing.T) {
	h, st := newTestServer(t)
	rec, resp := do(t, h, http.MethodPost, "/tasks", `{"text":"   "}`)
	if rec.Code != http.StatusCreated || resp.Total != 0 || st.Len() != 0 {
		t.Fatalf("expected blank add to be ignored, got %d %+v", rec.Code, resp)
	}
}

func TestToggleEditRemove(t *testing.T) {
	h, st := newTestServer(t)
	_ = st.Add("buy milk")
	id := string(st.Tasks()[0].ID)

	_, resp := do(t, h, http.MethodPost, "/tasks/"+id+"/toggle", "")
	if !resp.Tasks[0].Completed || resp.Done != 1 {
		t.Fatalf("expected toggled task, got %+v", resp)
	}

	_, resp = do(t, h, http.MethodPatch, "/tasks/"+id, `{"text":"buy oat milk"}`)
	if resp.Tasks[0].Text != "buy oat milk" {
		t.Fatalf("expected edited text, got %+v", resp.Tasks[0])
	}

	_, resp = do(t, h, http.MethodPatch, "/tasks/"+id, `{"text":""}`)
	if resp.Tasks[0].Text != "buy oat milk" {
		t.Fatalf("blank edit must not change text, got %+v", resp.Tasks[0])
	}

	_, resp = do(t, h, http.MethodDelete, "/tasks/"+id, "")
	if resp.Total != 0 {
		t.Fatalf("expected empty collection, got %+v", resp)
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	h, st := newTestServer(t)
	_ = st.Add("a")

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/tasks/missing/toggle", ""},
		{http.MethodPatch, "/tasks/missing", `{"text":"x"}`},
		{http.MethodDelete, "/tasks/missing", ""},
	} {
		rec, resp := do(t, h, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusOK || resp.Total != 1 || resp.Tasks[0].Text != "a" {
			t.Fatalf("%s %s: expected no-op, got %d %+v", tc.method, tc.path, rec.Code, resp)
		}
	}
}

func TestBadBody(t *testing.T) {
	h, _ := newTestServer(t)
	for _, body := range []string{"{", `{"text":"a","extra":1}`, `{"text":"a"}{"text":"b"}`} {
		rec, _ := do(t, h, http.MethodPost, "/tasks", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

type brokenSlot struct{}

func (brokenSlot) Get(string) (string, error) { return "", slot.ErrNotFound }
func (brokenSlot) Set(string, string) error   { return errors.New("disk full") }

func TestPersistFailureIs500(t *testing.T) {
	h := New(taskstore.Open(brokenSlot{}), ":0", nil).Handler()
	rec, _ := do(t, h, http.MethodPost, "/tasks", `{"text":"a"}`)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "disk full") {
		t.Fatalf("expected 500 with cause, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)
	rec, _ := do(t, h, http.MethodOptions, "/tasks", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}
