package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/sandbox"
	"github.com/conneroisu/showcase/internal/services"
	"github.com/conneroisu/showcase/internal/sources"
)

const fooComponent = `@Component({ selector: 'app-foo' })
export class FooComponent {}
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           8080,
			AllowedOrigins: []string{"http://docs.example.com"},
		},
		Demos: map[string]config.DemoConfig{
			"foo":    {Title: "Foo Demo", Pattern: "a/"},
			"empty":  {Title: "Empty", Pattern: "nothing/"},
			"broken": {Title: "Broken", Pattern: "b/"},
		},
		Sandbox: config.SandboxConfig{
			Endpoint:  sandbox.DefaultEndpoint,
			Template:  sandbox.DefaultTemplate,
			Root:      "src/",
			NewWindow: true,
		},
	}
}

func testServer(t *testing.T) (*PreviewServer, *registry.Registry) {
	t.Helper()
	reg := registry.New(sources.MustNewStore([]sources.Entry{
		{Path: "a/x.component.ts", Content: fooComponent},
		{Path: "a/x.component.html", Content: "<div></div>"},
		{Path: "b/y.ts", Content: "export class Y {}"},
	}))
	cfg := testConfig()
	demos := services.NewDemoService(cfg, reg)
	return New(cfg, demos, nil), reg
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "version")
}

func TestHandleDemos(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Demos []services.DemoSummary `json:"demos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Demos, 3)
	assert.Equal(t, "broken", body.Demos[0].Name)
	assert.Equal(t, "Foo Demo", body.Demos[2].Title)
}

func TestHandleDemo(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos/foo")
	require.Equal(t, http.StatusOK, w.Code)

	var result registry.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "x.component.ts", result.Entries[0].FileName)
	assert.Equal(t, "TypeScript", result.Entries[0].Label)
	assert.Equal(t, "tab-0", result.Entries[0].OrdinalID)
	assert.Equal(t, "HTML", result.Entries[1].Label)
	require.NotNil(t, result.Primary)
	assert.Equal(t, "a/x.component.ts", result.Primary.Path)
}

func TestHandleDemoOriginalCasing(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos/Foo")
	require.Equal(t, http.StatusOK, w.Code)

	var result registry.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Entries, 2)
}

func TestHandleDemoEmptyIsNotAnError(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos/empty")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[]}`, w.Body.String())
}

func TestHandleErrors(t *testing.T) {
	srv, _ := testServer(t)

	testCases := []struct {
		target string
		status int
		code   string
	}{
		{"/api/demos/missing", http.StatusNotFound, "ERR_UNKNOWN_DEMO"},
		{"/api/demos/empty/project", http.StatusConflict, "ERR_NO_PRIMARY"},
		{"/api/demos/broken/project", http.StatusUnprocessableEntity, "ERR_DECLARATION_NOT_FOUND"},
		{"/api/demos/broken/launch", http.StatusUnprocessableEntity, "ERR_DECLARATION_NOT_FOUND"},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			w := get(t, srv.Handler(), tc.target)
			assert.Equal(t, tc.status, w.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
		})
	}

	w := get(t, srv.Handler(), "/api/demos/bad.name")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleProject(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos/foo/project")
	require.Equal(t, http.StatusOK, w.Code)

	var export services.Export
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &export))
	assert.Equal(t, "foo", export.Demo)
	assert.Equal(t, "Foo Demo", export.Project.Title)
	assert.Contains(t, export.Project.Files, "src/x.component.ts")
	assert.Contains(t, export.Project.Files["src/index.html"], "<app-foo>")
	assert.Equal(t, sandbox.Options{OpenFile: "src/x.component.ts", NewWindow: true}, export.Options)
}

func TestHandleLaunch(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv.Handler(), "/api/demos/foo/launch")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	page := w.Body.String()
	assert.Contains(t, page, `action="https://stackblitz.com/run?file=src%2Fx.component.ts"`)
	assert.Contains(t, page, `target="_blank"`)
	assert.Contains(t, page, `name="project[files][src/x.component.html]"`)
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/demos", nil)
	req.Header.Set("Origin", "http://docs.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "http://docs.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/demos", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/demos", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCheckOrigin(t *testing.T) {
	srv, _ := testServer(t)

	testCases := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "localhost:8080", false},
		{"http://localhost:8080", "localhost:8080", true},
		{"http://127.0.0.1:8080", "localhost:8080", true},
		{"http://localhost:3000", "localhost:8080", false},
		{"http://docs.example.com", "localhost:8080", true},
		{"http://preview.internal:9000", "preview.internal:9000", true},
		{"file:///tmp/x.html", "localhost:8080", false},
		{"http://evil.example.com", "localhost:8080", false},
	}

	for _, tc := range testCases {
		t.Run(tc.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			assert.Equal(t, tc.want, srv.checkOrigin(req))
		})
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebSocketReceivesSourcesChanged(t *testing.T) {
	srv, reg := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	reg.Swap(sources.MustNewStore([]sources.Entry{{Path: "a/z.ts", Content: "z"}}))

	_, data, err := conn.Read(dialCtx)
	require.NoError(t, err)

	var msg UpdateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageSourcesChanged, msg.Type)
	assert.Equal(t, 1, msg.Entries)
}

func TestWebSocketIdleClientStaysConnected(t *testing.T) {
	srv, reg := testServer(t)
	srv.pingPeriod = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{ts.URL}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The client never writes; reading answers the server's pings.
	messages := make(chan []byte, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			messages <- data
		}
	}()

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(10 * srv.pingPeriod)
	assert.Equal(t, 1, srv.ClientCount())

	reg.Swap(sources.MustNewStore([]sources.Entry{{Path: "a/z.ts", Content: "z"}}))

	select {
	case data := <-messages:
		var msg UpdateMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageSourcesChanged, msg.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received by idle client")
	}
}
