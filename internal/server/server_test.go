package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jorge-barreto/pipecraft/internal/doctor"
	"github.com/jorge-barreto/pipecraft/internal/editor"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
	"github.com/jorge-barreto/pipecraft/internal/simulate"
)

// syncBuffer guards log output written by server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testServer struct {
	t    *testing.T
	srv  *httptest.Server
	logs *syncBuffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	n := 0
	session := editor.NewSession(
		editor.WithIDs(func() string { n++; return fmt.Sprintf("s%d", n) }),
		editor.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := New(session, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testServer{t: t, srv: ts, logs: &logs}
}

func (ts *testServer) do(method, path, body string) (int, []byte) {
	ts.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, r)
	if err != nil {
		ts.t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatal(err)
	}
	return resp.StatusCode, data
}

func (ts *testServer) mustDo(method, path, body string, want int, out any) {
	ts.t.Helper()
	status, data := ts.do(method, path, body)
	if status != want {
		ts.t.Fatalf("%s %s: status %d, want %d: %s", method, path, status, want, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			ts.t.Fatalf("%s %s: decoding %q: %v", method, path, data, err)
		}
	}
}

func errorBody(t *testing.T, data []byte) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("error body is not JSON: %q", data)
	}
	return body["error"]
}

func TestPipeline_NoneYet(t *testing.T) {
	ts := newTestServer(t)
	status, data := ts.do("GET", "/pipeline", "")
	if status != http.StatusNotFound {
		t.Fatalf("status %d", status)
	}
	if !strings.Contains(errorBody(t, data), "no pipeline") {
		t.Fatalf("got %s", data)
	}
}

func TestPipeline_CreateAndEdit(t *testing.T) {
	ts := newTestServer(t)

	var p pipeline.Pipeline
	ts.mustDo("POST", "/pipeline", `{"name":"web","language":"go"}`, http.StatusCreated, &p)
	if p.Platform != pipeline.GitHubActions || p.DeploymentTarget != pipeline.TargetCustom {
		t.Fatalf("defaults not applied: %+v", p)
	}

	var checkout, deploy pipeline.Stage
	ts.mustDo("POST", "/pipeline/stages",
		`{"name":"Checkout","type":"build","commands":["uses: actions/checkout@v3"]}`,
		http.StatusCreated, &checkout)
	ts.mustDo("POST", "/pipeline/stages",
		fmt.Sprintf(`{"name":"Deploy","type":"deploy","commands":["run: ./deploy.sh"],"dependencies":[%q]}`, checkout.ID),
		http.StatusCreated, &deploy)

	var updated pipeline.Stage
	ts.mustDo("PATCH", "/pipeline/stages/"+deploy.ID, `{"name":"Ship it"}`, http.StatusOK, &updated)
	if updated.Name != "Ship it" || len(updated.Dependencies) != 1 {
		t.Fatalf("got %+v", updated)
	}

	status, yml := ts.do("GET", "/pipeline/files/github-actions.yml", "")
	if status != http.StatusOK {
		t.Fatalf("status %d: %s", status, yml)
	}
	if !strings.Contains(string(yml), "needs: ["+checkout.ID+"]") {
		t.Fatalf("workflow missing needs:\n%s", yml)
	}

	var files map[string]string
	ts.mustDo("GET", "/pipeline/files", "", http.StatusOK, &files)
	if _, ok := files["Dockerfile"]; !ok || len(files) != 2 {
		t.Fatalf("files: %v", files)
	}

	ts.mustDo("POST", "/pipeline/stages/reorder", `{"from":0,"to":1}`, http.StatusOK, &p)
	if p.Stages[0].ID != deploy.ID {
		t.Fatalf("reorder not applied: %v", p.Stages)
	}

	var removed pipeline.Stage
	ts.mustDo("DELETE", "/pipeline/stages/"+checkout.ID, "", http.StatusOK, &removed)
	ts.mustDo("GET", "/pipeline", "", http.StatusOK, &p)
	if len(p.Stages) != 1 || len(p.Stages[0].Dependencies) != 0 {
		t.Fatalf("dependency not pruned: %+v", p.Stages)
	}

	ts.mustDo("DELETE", "/pipeline", "", http.StatusNoContent, nil)
	if status, _ := ts.do("GET", "/pipeline", ""); status != http.StatusNotFound {
		t.Fatalf("after reset: status %d", status)
	}
}

func TestErrors_StatusMapping(t *testing.T) {
	ts := newTestServer(t)
	ts.mustDo("POST", "/pipeline", `{"name":"web"}`, http.StatusCreated, nil)

	var a, b pipeline.Stage
	ts.mustDo("POST", "/pipeline/stages", `{"name":"a","commands":["run: a"]}`, http.StatusCreated, &a)
	ts.mustDo("POST", "/pipeline/stages", fmt.Sprintf(`{"name":"b","commands":["run: b"],"dependencies":[%q]}`, a.ID), http.StatusCreated, &b)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		substr string
	}{
		{"unknown stage", "DELETE", "/pipeline/stages/ghost", "", http.StatusNotFound, "stage not found"},
		{"unknown dependency", "POST", "/pipeline/stages", `{"name":"c","commands":["run: c"],"dependencies":["ghost"]}`, http.StatusBadRequest, "unknown stage"},
		{"no commands", "POST", "/pipeline/stages", `{"name":"c"}`, http.StatusBadRequest, "command"},
		{"cycle", "PATCH", "/pipeline/stages/" + a.ID, fmt.Sprintf(`{"dependencies":[%q]}`, b.ID), http.StatusUnprocessableEntity, "cycle"},
		{"bad index", "POST", "/pipeline/stages/reorder", `{"from":0,"to":9}`, http.StatusBadRequest, "out of range"},
		{"missing index", "POST", "/pipeline/stages/reorder", `{"from":0}`, http.StatusBadRequest, "required"},
		{"unknown field", "POST", "/pipeline/stages", `{"nme":"x"}`, http.StatusBadRequest, "invalid JSON"},
		{"bad stage id", "PUT", "/pipeline", `{"name":"x","stages":[{"id":"9a:b","name":"a","commands":["run: a"]}]}`, http.StatusBadRequest, "must start with a letter"},
		{"bad platform", "POST", "/pipeline", `{"name":"x","platform":"travis"}`, http.StatusBadRequest, "unknown platform"},
		{"unknown template", "POST", "/templates/nope/load", "", http.StatusNotFound, "unknown template"},
		{"unknown file", "GET", "/pipeline/files/nope", "", http.StatusNotFound, "no generated file"},
		{"unknown route", "GET", "/nope", "", http.StatusNotFound, "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := ts.do(tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Fatalf("status %d, want %d: %s", status, tt.want, data)
			}
			if msg := errorBody(t, data); !strings.Contains(msg, tt.substr) {
				t.Fatalf("error %q does not contain %q", msg, tt.substr)
			}
		})
	}
}

func TestLoadPipeline_RejectsCycle(t *testing.T) {
	ts := newTestServer(t)
	body := `{"name":"x","stages":[
		{"id":"a","name":"a","type":"build","commands":["run: a"],"dependencies":["b"]},
		{"id":"b","name":"b","type":"build","commands":["run: b"],"dependencies":["a"]}]}`
	status, data := ts.do("PUT", "/pipeline", body)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", status, data)
	}

	body = strings.Replace(body, `"dependencies":["a"]`, `"dependencies":[]`, 1)
	var p pipeline.Pipeline
	ts.mustDo("PUT", "/pipeline", body, http.StatusOK, &p)
	if p.ID != "s1" || len(p.Stages) != 2 {
		t.Fatalf("got %+v", p)
	}
}

func TestCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.mustDo("POST", "/pipeline", `{"name":"web","language":"go"}`, http.StatusCreated, nil)

	var findings []doctor.Finding
	ts.mustDo("GET", "/pipeline/check", "", http.StatusOK, &findings)
	if len(findings) != 1 || findings[0].Message != "pipeline has no stages" {
		t.Fatalf("got %+v", findings)
	}

	ts.mustDo("POST", "/pipeline/stages", `{"name":"build","commands":["run: make"]}`, http.StatusCreated, nil)
	ts.mustDo("GET", "/pipeline/check", "", http.StatusOK, &findings)
	if len(findings) != 0 {
		t.Fatalf("got %+v", findings)
	}
}

func TestTemplates(t *testing.T) {
	ts := newTestServer(t)
	var templates []pipeline.Template
	ts.mustDo("GET", "/templates", "", http.StatusOK, &templates)
	if len(templates) != 4 {
		t.Fatalf("got %d templates", len(templates))
	}

	var p pipeline.Pipeline
	ts.mustDo("POST", "/templates/python-gcp/load", "", http.StatusOK, &p)
	if p.Language != pipeline.Python || len(p.Stages) != 6 {
		t.Fatalf("got %+v", p)
	}
}

func TestDockerfile(t *testing.T) {
	ts := newTestServer(t)
	status, data := ts.do("GET", "/dockerfile/python", "")
	if status != http.StatusOK || !strings.HasPrefix(string(data), "FROM python:3.9-slim") {
		t.Fatalf("status %d: %s", status, data)
	}
	_, data = ts.do("GET", "/dockerfile/cobol", "")
	if !strings.Contains(string(data), "Please specify a programming language") {
		t.Fatalf("unknown language should get the placeholder, got %s", data)
	}
}

func TestSimulate_Seeded(t *testing.T) {
	ts := newTestServer(t)
	var first, second simulate.Run
	ts.mustDo("POST", "/simulate?seed=7", "", http.StatusOK, &first)
	ts.mustDo("POST", "/simulate?seed=7", "", http.StatusOK, &second)
	if first.Status == "" || len(first.Steps) != 6 {
		t.Fatalf("got %+v", first)
	}
	opts := cmp.FilterPath(func(p cmp.Path) bool {
		last := p.Last().String()
		return last == ".ID" || last == ".Started" || last == ".Finished"
	}, cmp.Ignore())
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Fatalf("same seed gave different runs (-first +second):\n%s", diff)
	}

	status, _ := ts.do("POST", "/simulate?seed=abc", "")
	if status != http.StatusBadRequest {
		t.Fatalf("status %d", status)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	ts := newTestServer(t)
	ts.do("GET", "/templates", "")
	out := ts.logs.String()
	if !strings.Contains(out, "http request") || !strings.Contains(out, "path=/templates") || !strings.Contains(out, "request_id=") {
		t.Fatalf("got %q", out)
	}
}
