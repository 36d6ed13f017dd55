package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicecode/generator"
	"voicecode/workspace"
)

func newTestServer(t *testing.T, llm generator.LLMClient) (*Server, string) {
	t.Helper()
	agent, err := generator.NewAgent(llm, nil)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	root := t.TempDir()
	srv, err := New(agent, Options{WorkspaceRoot: root})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, root
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type genBody struct {
	SessionID string `json:"session_id"`
	Files     []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	} `json:"files"`
	IsEdit   bool `json:"isEdit"`
	Warnings []struct {
		Kind string `json:"kind"`
	} `json:"warnings"`
	Changes []struct {
		Name string `json:"name"`
	} `json:"changes"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	rec := do(t, srv.Routes(), http.MethodGet, "/api/code/ping", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing cors header")
	}
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	rec := do(t, srv.Routes(), http.MethodOptions, "/api/code/generate", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestDefaultGenerateThenEdit(t *testing.T) {
	srv, root := newTestServer(t, generator.MockLLM{})
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/api/code/generate", `{"prompt":"a page with a button"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status %d: %s", rec.Code, rec.Body.String())
	}
	gen := decode[genBody](t, rec)
	if gen.IsEdit || len(gen.Files) != 3 {
		t.Fatalf("unexpected generate response: %+v", gen)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultSessionID, "index.html")); err != nil {
		t.Fatalf("index.html not on disk: %v", err)
	}

	rec = do(t, h, http.MethodPost, "/api/code/generate", `{"prompt":"make the button red","isEdit":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status %d: %s", rec.Code, rec.Body.String())
	}
	edit := decode[genBody](t, rec)
	if !edit.IsEdit || len(edit.Warnings) != 0 {
		t.Fatalf("unexpected edit response: %+v", edit)
	}
	if len(edit.Changes) != 1 || edit.Changes[0].Name != "style.css" {
		t.Fatalf("unexpected changes: %+v", edit.Changes)
	}
	css, err := os.ReadFile(filepath.Join(root, DefaultSessionID, "style.css"))
	if err != nil {
		t.Fatalf("read style.css: %v", err)
	}
	if !strings.Contains(string(css), "background: red") || !strings.Contains(string(css), "font-family: sans-serif") {
		t.Fatalf("unexpected style.css:\n%s", css)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/code/generate", `{"prompt":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	body := decode[errorBody](t, rec)
	if body.Code != "prompt_required" {
		t.Fatalf("code %q", body.Code)
	}
}

func TestGenerateRejectsBadJSON(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/code/generate", `{`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

type replyLLM struct {
	reply string
	err   error
}

func (r replyLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return r.reply, r.err
}

func TestGenerateErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		llm    generator.LLMClient
		status int
		code   string
	}{
		{"no json", replyLLM{reply: "sorry, I cannot help"}, http.StatusBadGateway, "extraction_failed"},
		{"malformed", replyLLM{reply: "```json\n{\"files\": [}\n```"}, http.StatusBadGateway, "malformed_payload"},
		{"empty", replyLLM{reply: `{"explain":"nothing"}`}, http.StatusBadGateway, "empty_result"},
		{"transport", replyLLM{err: errors.New("connection refused")}, http.StatusBadGateway, "model_unavailable"},
		{"timeout", replyLLM{err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "model_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, root := newTestServer(t, tt.llm)
			rec := do(t, srv.Routes(), http.MethodPost, "/api/code/generate", `{"prompt":"x"}`)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if body := decode[errorBody](t, rec); body.Code != tt.code {
				t.Fatalf("code %q, want %q", body.Code, tt.code)
			}
			entries, _ := os.ReadDir(filepath.Join(root, DefaultSessionID))
			if len(entries) != 0 {
				t.Fatalf("workspace modified: %d entries", len(entries))
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d", rec.Code)
	}
	created := decode[sessionResp](t, rec)
	if created.SessionID == "" {
		t.Fatalf("missing session id")
	}
	base := "/api/sessions/" + created.SessionID

	rec = do(t, h, http.MethodGet, base+"/preview", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("preview before generate: status %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, base+"/generate", `{"prompt":"a page"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[genBody](t, rec); got.SessionID != created.SessionID {
		t.Fatalf("session id %q", got.SessionID)
	}

	rec = do(t, h, http.MethodGet, base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}
	got := decode[sessionResp](t, rec)
	if len(got.Files) != 3 || len(got.History) != 1 || got.History[0].Mode != "generate" {
		t.Fatalf("unexpected session: %+v", got)
	}

	rec = do(t, h, http.MethodGet, base+"/preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status %d", rec.Code)
	}
	page := rec.Body.String()
	if !strings.Contains(page, "<style>") || !strings.Contains(page, "<script>") {
		t.Fatalf("preview not inlined:\n%s", page)
	}
}

func TestSessionReopenedFromDisk(t *testing.T) {
	srv, root := newTestServer(t, generator.MockLLM{})
	h := srv.Routes()
	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	id := decode[sessionResp](t, rec).SessionID
	if rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/generate", `{"prompt":"a page"}`); rec.Code != http.StatusOK {
		t.Fatalf("generate status %d", rec.Code)
	}

	agent, _ := generator.NewAgent(generator.MockLLM{}, nil)
	fresh, err := New(agent, Options{WorkspaceRoot: root})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	rec = do(t, fresh.Routes(), http.MethodGet, "/api/sessions/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := decode[sessionResp](t, rec); len(got.Files) != 3 {
		t.Fatalf("expected files from disk, got %+v", got)
	}
}

func TestCreatedSessionSurvivesRestart(t *testing.T) {
	srv, root := newTestServer(t, generator.MockLLM{})
	rec := do(t, srv.Routes(), http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d", rec.Code)
	}
	id := decode[sessionResp](t, rec).SessionID
	if info, err := os.Stat(filepath.Join(root, id)); err != nil || !info.IsDir() {
		t.Fatalf("workspace directory not created: %v", err)
	}

	agent, _ := generator.NewAgent(generator.MockLLM{}, nil)
	fresh, err := New(agent, Options{WorkspaceRoot: root})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	rec = do(t, fresh.Routes(), http.MethodPost, "/api/sessions/"+id+"/generate", `{"prompt":"a page"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate after restart: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t, generator.MockLLM{})
	h := srv.Routes()
	for _, path := range []string{"/api/sessions/not-a-uuid", "/api/sessions/0b7c5f4e-5d7e-4e0c-9a53-8f7a3a1b2c3d"} {
		if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodPost, "/api/sessions/../generate", `{"prompt":"x"}`); rec.Code == http.StatusOK {
		t.Fatalf("path traversal accepted")
	}
}

func TestClassifyStorage(t *testing.T) {
	err := &workspace.StorageError{Op: "write", Name: "a.css", Err: errors.New("disk full")}
	if status, code := classify(err); status != http.StatusInternalServerError || code != "storage_failure" {
		t.Fatalf("got %d %s", status, code)
	}
}
