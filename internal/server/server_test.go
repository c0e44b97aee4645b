package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrinter struct {
	mu    sync.Mutex
	pages []string
}

func (p *fakePrinter) PrintPDF(_ context.Context, html string, _ export.PageSettings) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, html)
	return []byte("%PDF-1.4 fake"), nil
}

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) GenerateJSON(context.Context, string, llm.ModelTier) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake" }

func (f *fakeLLM) Close() error { return nil }

const intakeReply = `{
  "personalInfo": {"fullName": "Grace Hopper", "email": "grace@example.com"},
  "profileSummary": "Compiler pioneer.",
  "workExperience": [{"company": "US Navy", "position": "Rear Admiral"}],
  "hardSkills": ["COBOL"],
  "languages": [{"name": "English", "proficiency": "native"}]
}`

type testEnv struct {
	server  *Server
	http    *httptest.Server
	kv      store.KV
	printer *fakePrinter
}

func newTestEnv(t *testing.T, client llm.Client, limits *ratelimit.Config) *testEnv {
	t.Helper()
	return newTestEnvKV(t, db.NewMemoryKV(), client, limits)
}

func newTestEnvKV(t *testing.T, kv store.KV, client llm.Client, limits *ratelimit.Config) *testEnv {
	t.Helper()
	if limits == nil {
		limits = &ratelimit.Config{Enabled: false}
	}
	printer := &fakePrinter{}

	s, err := New(Config{
		Port:          "0",
		Template:      "modern",
		Session:       testSessionConfig(),
		RateLimit:     limits,
		IntakeTimeout: 5 * time.Second,
	}, Deps{KV: kv, LLM: client, Printer: printer})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return &testEnv{server: s, http: ts, kv: kv, printer: printer}
}

// browser returns a client that keeps its session cookie.
func (e *testEnv) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func (e *testEnv) do(t *testing.T, c *http.Client, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp := env.do(t, env.browser(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["ai_enabled"])
}

func TestPages(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), `href="/builder"`)

	resp = env.do(t, c, http.MethodGet, "/builder?template=classic&theme=dark", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(page), `data-theme="dark"`)
	assert.Contains(t, string(page), `<option value="classic" selected>Classic</option>`)
	assert.Contains(t, string(page), "AI intake is not configured")

	resp = env.do(t, c, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSession_CookieKeepsWorkspace(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodPut, "/api/personal/fullName", `{"value": "Ada Lovelace"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "first request starts a session")
	assert.True(t, cookie.HttpOnly)

	rec := decode[types.Record](t, env.do(t, c, http.MethodGet, "/api/record", ""))
	assert.Equal(t, "Ada Lovelace", rec.PersonalInfo.FullName)

	// A second browser gets its own record.
	other := decode[types.Record](t, env.do(t, env.browser(t), http.MethodGet, "/api/record", ""))
	assert.Empty(t, other.PersonalInfo.FullName)
	assert.Equal(t, 2, env.server.workspaces.Len())
}

func TestSession_PersistsUnderSessionKey(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	env.do(t, c, http.MethodPut, "/api/summary", `{"value": "Analyst."}`)

	var found bool
	for id := range env.server.workspaces.items {
		data, err := env.kv.Get(context.Background(), env.server.workspaces.Key(id))
		require.NoError(t, err)
		if strings.Contains(string(data), "Analyst.") {
			found = true
		}
		assert.True(t, strings.HasPrefix(env.server.workspaces.Key(id), "cvData:"))
	}
	assert.True(t, found)
}

func TestPersonal_UnknownField(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	resp := env.do(t, env.browser(t), http.MethodPut, "/api/personal/nickname", `{"value": "x"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, resp)["error"], "unknown field")
}

func TestValueRequired(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodPut, "/api/summary", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodPut, "/api/summary", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHeading(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodPut, "/api/headings/workExperience", `{"value": "Career"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[types.Record](t, resp)
	assert.Equal(t, "Career", rec.SectionHeadings[types.SectionExperience])

	resp = env.do(t, c, http.MethodPut, "/api/headings/hobbies", `{"value": "Fun"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSections_Lifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodPost, "/api/sections/languages", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct {
		ID     string       `json:"id"`
		Record types.Record `json:"record"`
	}](t, resp)
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Record.Languages, 1)
	assert.Equal(t, types.ProficiencyBasic, created.Record.Languages[0].Proficiency)

	path := "/api/sections/languages/" + created.ID
	resp = env.do(t, c, http.MethodPatch, path, `{"field": "name", "value": "French"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "French", decode[types.Record](t, resp).Languages[0].Name)

	resp = env.do(t, c, http.MethodPatch, path, `{"field": "proficiency", "value": "Fluent"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodPatch, path, `{"field": "proficiency", "value": "Native"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.ProficiencyNative, decode[types.Record](t, resp).Languages[0].Proficiency)

	resp = env.do(t, c, http.MethodPatch, path, `{"value": "x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[types.Record](t, resp).Languages)

	resp = env.do(t, c, http.MethodPost, "/api/sections/hobbies", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSkills(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	type skillResponse struct {
		Changed bool         `json:"changed"`
		Record  types.Record `json:"record"`
	}

	res := decode[skillResponse](t, env.do(t, c, http.MethodPost, "/api/skills/hardSkills", `{"value": " Go "}`))
	assert.True(t, res.Changed)
	assert.Equal(t, []string{"Go"}, res.Record.HardSkills)

	res = decode[skillResponse](t, env.do(t, c, http.MethodPost, "/api/skills/hardSkills", `{"value": "Go"}`))
	assert.False(t, res.Changed, "duplicates are ignored")

	res = decode[skillResponse](t, env.do(t, c, http.MethodPost, "/api/skills/hardSkills", `{"value": "   "}`))
	assert.False(t, res.Changed, "blank skills are ignored")

	res = decode[skillResponse](t, env.do(t, c, http.MethodDelete, "/api/skills/hardSkills?value=Go", ""))
	assert.True(t, res.Changed)
	assert.Empty(t, res.Record.HardSkills)

	resp := env.do(t, c, http.MethodPost, "/api/skills/otherSkills", `{"value": "x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInline(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	resp := env.do(t, c, http.MethodPost, "/api/inline", `{"kind": "skills", "section": "softSkills", "value": "Writing | Teaching"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Writing", "Teaching"}, decode[types.Record](t, resp).SoftSkills, "server default template is modern")

	resp = env.do(t, c, http.MethodPost, "/api/inline", `{"kind": "personal", "field": "phone", "value": "555"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "555", decode[types.Record](t, resp).PersonalInfo.Phone)

	resp = env.do(t, c, http.MethodPost, "/api/inline", `{"kind": "banner", "value": "x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)
	env.do(t, c, http.MethodPut, "/api/personal/fullName", `{"value": "Ada Lovelace"}`)

	resp := env.do(t, c, http.MethodGet, "/preview?template=classic", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "Ada Lovelace")
	assert.Contains(t, string(page), `id="cv-preview"`)
	assert.NotContains(t, string(page), "contenteditable")

	resp = env.do(t, c, http.MethodGet, "/preview?editable=true", "")
	page, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(page), `contenteditable="true"`)
	assert.Contains(t, string(page), `\/api\/inline`)
}

func TestPreview_RevalidatesUntilTheRecordChanges(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)
	env.do(t, c, http.MethodPut, "/api/personal/fullName", `{"value": "Ada Lovelace"}`)

	preview := func(etag string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, env.http.URL+"/preview", nil)
		require.NoError(t, err)
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}
		resp, err := c.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	first := preview("")
	require.Equal(t, http.StatusOK, first.StatusCode)
	etag := first.Header.Get("ETag")
	require.NotEmpty(t, etag)
	assert.Equal(t, "no-cache", first.Header.Get("Cache-Control"))

	assert.Equal(t, http.StatusNotModified, preview(etag).StatusCode)

	// A no-op edit leaves the revision alone.
	env.do(t, c, http.MethodPut, "/api/personal/fullName", `{"value": "Ada Lovelace"}`)
	assert.Equal(t, http.StatusNotModified, preview(etag).StatusCode)

	env.do(t, c, http.MethodPut, "/api/summary", `{"value": "Analyst."}`)
	changed := preview(etag)
	require.Equal(t, http.StatusOK, changed.StatusCode)
	assert.NotEqual(t, etag, changed.Header.Get("ETag"))
	page, _ := io.ReadAll(changed.Body)
	assert.Contains(t, string(page), "Analyst.")
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)
	env.do(t, c, http.MethodPut, "/api/personal/fullName", `{"value": "Ada Lovelace"}`)

	resp := env.do(t, c, http.MethodGet, "/export.pdf?template=minimal", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Ada Lovelace.pdf"`, resp.Header.Get("Content-Disposition"))

	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 fake", string(data))

	require.Len(t, env.printer.pages, 1)
	assert.Contains(t, env.printer.pages[0], "Ada Lovelace")
	assert.NotContains(t, env.printer.pages[0], "<script")
}

func TestIntake_WithoutCredential(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	c := env.browser(t)

	status := decode[map[string]any](t, env.do(t, c, http.MethodPost, "/api/intake/open", ""))
	assert.Equal(t, true, status["open"])
	assert.Equal(t, false, status["available"])

	resp := env.do(t, c, http.MethodPost, "/api/intake",
		`{"fullName": "Grace", "position": "Admiral", "background": "Navy"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBuilder_IntakeSubmitLocksWhilePending(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{reply: intakeReply}, nil)
	resp := env.do(t, env.browser(t), http.MethodGet, "/builder", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ := io.ReadAll(resp.Body)

	script := string(page)
	assert.Contains(t, script, `var submit = form.querySelector("button[type=submit]");`)
	lock := strings.Index(script, "submit.disabled = true;")
	send := strings.Index(script, `api("POST", "/api/intake", data)`)
	require.NotEqual(t, -1, lock)
	require.NotEqual(t, -1, send)
	assert.Less(t, lock, send, "the button is disabled before the request goes out")
	assert.Equal(t, 3, strings.Count(script, "submit.disabled = false;"), "reopen, success and failure re-enable it")
}

func TestIntake_Flow(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{reply: intakeReply}, nil)
	c := env.browser(t)
	answers := `{"fullName": "Grace Hopper", "position": "Admiral", "background": "Navy"}`

	resp := env.do(t, c, http.MethodPost, "/api/intake", answers)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "dialog must be opened first")

	env.do(t, c, http.MethodPost, "/api/intake/open", "")

	resp = env.do(t, c, http.MethodPost, "/api/intake", `{"fullName": "Grace"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, c, http.MethodPost, "/api/intake", answers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[struct {
		Record types.Record   `json:"record"`
		Status map[string]any `json:"status"`
	}](t, resp)
	assert.Equal(t, "Grace Hopper", body.Record.PersonalInfo.FullName)
	assert.Equal(t, false, body.Status["open"], "dialog closes after a successful commit")

	rec := decode[types.Record](t, env.do(t, c, http.MethodGet, "/api/record", ""))
	assert.Equal(t, "Compiler pioneer.", rec.ProfileSummary)
	require.Len(t, rec.Languages, 1)
	assert.Equal(t, types.ProficiencyNative, rec.Languages[0].Proficiency)
}

func TestIntake_BadReplyKeepsRecord(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{reply: "I can't help with that."}, nil)
	c := env.browser(t)

	env.do(t, c, http.MethodPut, "/api/summary", `{"value": "Keep me."}`)
	env.do(t, c, http.MethodPost, "/api/intake/open", "")

	resp := env.do(t, c, http.MethodPost, "/api/intake",
		`{"position": "Admiral", "background": "Navy"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	status := decode[map[string]any](t, env.do(t, c, http.MethodGet, "/api/intake", ""))
	assert.Equal(t, true, status["open"])
	assert.Contains(t, status["lastError"], "no JSON object")

	rec := decode[types.Record](t, env.do(t, c, http.MethodGet, "/api/record", ""))
	assert.Equal(t, "Keep me.", rec.ProfileSummary)

	status = decode[map[string]any](t, env.do(t, c, http.MethodDelete, "/api/intake", ""))
	assert.Equal(t, false, status["open"])
}

func TestIntake_EventStream(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{reply: intakeReply}, nil)
	c := env.browser(t)
	env.do(t, c, http.MethodPost, "/api/intake/open", "")

	req, err := http.NewRequest(http.MethodPost, env.http.URL+"/api/intake",
		strings.NewReader(`{"position": "Admiral", "background": "Navy"}`))
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
			events = append(events, name)
		}
	}
	assert.Equal(t, []string{EventPending, EventRecord}, events)
}

func TestRateLimit_Intake(t *testing.T) {
	limits := &ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(1),
	}
	env := newTestEnv(t, nil, limits)
	c := env.browser(t)
	env.do(t, c, http.MethodPost, "/api/intake/open", "")

	body := `{"position": "Admiral", "background": "Navy"}`
	codes := []int{}
	for i := 0; i < 3; i++ {
		resp := env.do(t, c, http.MethodPost, "/api/intake", body)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusTooManyRequests}, codes)

	resp := env.do(t, c, http.MethodPost, "/api/intake", body)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}
