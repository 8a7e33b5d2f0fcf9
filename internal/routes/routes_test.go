package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"premises-access-control/internal/access"
	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
	"premises-access-control/internal/report"
	"premises-access-control/internal/storage"
)

type fakeProvider struct {
	byCode map[string]*credential.Credential
	byID   map[int64]*credential.Credential
	events []access.Event
	people map[person.Ref]bool
	nextID int64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		byCode: make(map[string]*credential.Credential),
		byID:   make(map[int64]*credential.Credential),
		people: map[person.Ref]bool{
			person.Employee(1): true,
			person.Visitor(7):  true,
		},
	}
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) InsertCredential(ctx context.Context, c *credential.Credential) error {
	if _, exists := f.byCode[c.Code]; exists {
		return credential.ErrDuplicateCode
	}
	f.nextID++
	c.ID = f.nextID
	stored := *c
	f.byCode[c.Code] = &stored
	f.byID[c.ID] = &stored
	return nil
}

func (f *fakeProvider) FindCredentialByCode(ctx context.Context, code string) (*credential.Credential, error) {
	c, ok := f.byCode[code]
	if !ok {
		return nil, credential.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeProvider) FindCredentialByID(ctx context.Context, id int64) (*credential.Credential, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, credential.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeProvider) InsertAccessEvent(ctx context.Context, e *access.Event) error {
	f.nextID++
	e.ID = f.nextID
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeProvider) FindAccessEventsInRange(ctx context.Context, start, end time.Time) ([]access.Event, error) {
	var out []access.Event
	for _, e := range f.events {
		if !e.Time.Before(start) && !e.Time.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeProvider) ListAccessEvents(ctx context.Context, workday string, limit, offset int) ([]access.Event, error) {
	var out []access.Event
	for _, e := range f.events {
		if workday != "" && e.WorkdayDate != workday {
			continue
		}
		out = append(out, e)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProvider) PersonExists(ctx context.Context, ref person.Ref) (bool, error) {
	return f.people[ref], nil
}

type fakeSink struct {
	delivered  int
	recipients []string
}

func (s *fakeSink) Deliver(ctx context.Context, r *report.Weekly, recipients []string) error {
	s.delivered++
	s.recipients = recipients
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeProvider, *fakeSink, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fp := newFakeProvider()
	sink := &fakeSink{}
	cfg := &config.Config{
		CredentialValidityHours: 24,
		Timezone:                "UTC",
	}

	app := &App{
		Config:     cfg,
		Provider:   fp,
		Issuer:     credential.NewIssuer(fp, storage.Directory(fp)),
		Scanner:    access.NewScanner(credential.NewValidator(fp), access.NewRecorder(fp, time.UTC)),
		Aggregator: report.NewAggregator(fp, time.UTC),
		Sink:       sink,
		Decoder:    access.TextDecoder{},
	}

	r := gin.New()
	r.Use(ErrorHandler())
	RegisterRoutes(r, app)
	return r, fp, sink, cfg
}

func doRequest(r *gin.Engine, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	var reader = bytes.NewReader(body)
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "pong" {
		t.Errorf("message = %v, want pong", body["message"])
	}
}

func TestIssueCredentialEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/credentials/employee/1", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["person_type"] != "employee" {
		t.Errorf("person_type = %v, want employee", body["person_type"])
	}
	if body["person_id"] != float64(1) {
		t.Errorf("person_id = %v, want 1", body["person_id"])
	}
	if body["code"] == "" {
		t.Error("code missing from response")
	}
	if body["expires_at"] == nil {
		t.Error("expires_at missing, default validity should apply")
	}
}

func TestIssueCredentialUnknownPerson(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/credentials/employee/999", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	codes, _ := body["code"].([]any)
	if len(codes) == 0 || codes[0] != "PERSON_NOT_FOUND" {
		t.Errorf("stop codes = %v, want PERSON_NOT_FOUND", body["code"])
	}
}

func TestIssueCredentialCustomValidity(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	payload := []byte(`{"validity_hours": 0}`)
	w := doRequest(r, http.MethodPost, "/api/credentials/visitor/7", payload, "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["expires_at"] != nil {
		t.Errorf("expires_at = %v, want absent for zero validity", body["expires_at"])
	}
}

func issueFor(t *testing.T, r *gin.Engine, path string) (int64, string) {
	t.Helper()
	w := doRequest(r, http.MethodPost, path, nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("issuing credential failed: %d %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	return int64(body["id"].(float64)), body["code"].(string)
}

func TestScanEndpoint(t *testing.T) {
	r, fp, _, _ := newTestRouter(t)
	_, code := issueFor(t, r, "/api/credentials/employee/1")

	payload := []byte(fmt.Sprintf(`{"code": %q, "access_type": "entry"}`, code))
	w := doRequest(r, http.MethodPost, "/api/scan", payload, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["access_granted"] != true {
		t.Error("access_granted should be true")
	}
	if body["message"] != "Access entry registered successfully" {
		t.Errorf("message = %v", body["message"])
	}
	event, _ := body["event"].(map[string]any)
	if event["person_type"] != "employee" || event["access_type"] != "entry" {
		t.Errorf("unexpected event payload: %v", event)
	}

	if len(fp.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(fp.events))
	}
}

func TestScanInvalidType(t *testing.T) {
	r, fp, _, _ := newTestRouter(t)
	_, code := issueFor(t, r, "/api/credentials/employee/1")

	payload := []byte(fmt.Sprintf(`{"code": %q, "access_type": "sideways"}`, code))
	w := doRequest(r, http.MethodPost, "/api/scan", payload, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	codes, _ := body["code"].([]any)
	if len(codes) == 0 || codes[0] != "INVALID_ACCESS_TYPE" {
		t.Errorf("stop codes = %v, want INVALID_ACCESS_TYPE", body["code"])
	}
	if len(fp.events) != 0 {
		t.Error("invalid scan must not record an event")
	}
}

func TestScanUnknownCode(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	payload := []byte(`{"code": "nope", "access_type": "entry"}`)
	w := doRequest(r, http.MethodPost, "/api/scan", payload, "application/json")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestScanImageEndpoint(t *testing.T) {
	r, fp, _, _ := newTestRouter(t)
	_, code := issueFor(t, r, "/api/credentials/visitor/7")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "scan.txt")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, code)
	mw.WriteField("access_type", "entry")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/scan/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if len(fp.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(fp.events))
	}
}

func TestScanImageEmptyUpload(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "scan.txt")
	fmt.Fprint(fw, "   ")
	mw.WriteField("access_type", "entry")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/scan/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	codes, _ := body["code"].([]any)
	if len(codes) == 0 || codes[0] != "NO_CREDENTIAL_DATA" {
		t.Errorf("stop codes = %v, want NO_CREDENTIAL_DATA", body["code"])
	}
}

func TestCredentialImageEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)
	id, _ := issueFor(t, r, "/api/credentials/employee/1")

	w := doRequest(r, http.MethodGet, fmt.Sprintf("/api/credentials/%d/image", id), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	// PNG signature
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("response is not a PNG image")
	}
}

func TestCredentialImageExpired(t *testing.T) {
	r, fp, _, _ := newTestRouter(t)

	past := time.Now().Add(-time.Hour)
	cred := &credential.Credential{
		Code:      "stale",
		Owner:     person.Employee(1),
		IsActive:  true,
		CreatedAt: past.Add(-24 * time.Hour),
		ExpiresAt: &past,
	}
	if err := fp.InsertCredential(context.Background(), cred); err != nil {
		t.Fatal(err)
	}

	w := doRequest(r, http.MethodGet, fmt.Sprintf("/api/credentials/%d/image", cred.ID), nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestAccessLogsEndpoint(t *testing.T) {
	r, fp, _, _ := newTestRouter(t)
	_, code := issueFor(t, r, "/api/credentials/employee/1")

	for _, typ := range []string{"entry", "exit"} {
		payload := []byte(fmt.Sprintf(`{"code": %q, "access_type": %q}`, code, typ))
		if w := doRequest(r, http.MethodPost, "/api/scan", payload, "application/json"); w.Code != http.StatusOK {
			t.Fatalf("scan failed: %d", w.Code)
		}
	}

	w := doRequest(r, http.MethodGet, "/api/access-logs", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}

	workday := fp.events[0].WorkdayDate
	w = doRequest(r, http.MethodGet, "/api/access-logs?workday_date="+workday, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("filtered status = %d, want 200", w.Code)
	}
	if body := decodeBody(t, w); body["count"] != float64(2) {
		t.Errorf("filtered count = %v, want 2", body["count"])
	}
}

func TestAccessLogsValidation(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	cases := []string{
		"/api/access-logs?workday_date=06.01.2025",
		"/api/access-logs?limit=0",
		"/api/access-logs?limit=notanumber",
		"/api/access-logs?offset=-1",
	}
	for _, path := range cases {
		if w := doRequest(r, http.MethodGet, path, nil, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestWeeklyReportEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)
	_, code := issueFor(t, r, "/api/credentials/visitor/7")

	payload := []byte(fmt.Sprintf(`{"code": %q, "access_type": "entry"}`, code))
	if w := doRequest(r, http.MethodPost, "/api/scan", payload, "application/json"); w.Code != http.StatusOK {
		t.Fatalf("scan failed: %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/reports/weekly", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var weekly report.Weekly
	if err := json.Unmarshal(w.Body.Bytes(), &weekly); err != nil {
		t.Fatalf("invalid report JSON: %v", err)
	}
	if weekly.Totals.Entries != 1 {
		t.Errorf("total entries = %d, want 1", weekly.Totals.Entries)
	}
	if weekly.ByPersonType[person.KindVisitor].Entries != 1 {
		t.Errorf("visitor entries = %d, want 1", weekly.ByPersonType[person.KindVisitor].Entries)
	}
}

func TestWeeklyReportHTMLEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/reports/weekly.html", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Weekly Access Report") {
		t.Error("HTML report missing title")
	}
}

func TestSendReportEndpoint(t *testing.T) {
	r, _, sink, cfg := newTestRouter(t)

	path := filepath.Join(t.TempDir(), "recipients.yaml")
	content := "recipients:\n  - facilities@example.com\n  - security@example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Report.RecipientsFile = path

	w := doRequest(r, http.MethodPost, "/api/reports/weekly/send", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if sink.delivered != 1 {
		t.Errorf("sink delivered %d times, want 1", sink.delivered)
	}
	if len(sink.recipients) != 2 {
		t.Errorf("recipients = %v, want 2 addresses", sink.recipients)
	}
}

func TestSendReportNoRecipients(t *testing.T) {
	r, _, sink, cfg := newTestRouter(t)

	path := filepath.Join(t.TempDir(), "recipients.yaml")
	if err := os.WriteFile(path, []byte("recipients: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Report.RecipientsFile = path

	w := doRequest(r, http.MethodPost, "/api/reports/weekly/send", nil, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", w.Code, w.Body.String())
	}
	if sink.delivered != 0 {
		t.Error("sink must not be called without recipients")
	}
}
