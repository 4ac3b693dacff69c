package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DevangRnd/fota-backend/internal/config"
	"github.com/DevangRnd/fota-backend/internal/database"
	"github.com/DevangRnd/fota-backend/internal/middleware"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t      *testing.T
	router *Router
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		NodeEnv:    "test",
		JWTSecret:  "handler-test-secret",
		CORSOrigin: "*",
		Firmware:   config.FirmwareConfig{MaxUploadMB: 4},
	}
	ts := &testServer{t: t, router: NewRouter(db.DB, cfg, nil)}
	ts.token = ts.login("operator", "hunter22")
	return ts
}

// login registers the account and returns a session token
func (ts *testServer) login(username, password string) string {
	creds := map[string]string{"username": username, "password": password}
	if rec := ts.do(http.MethodPost, "/api/register", jsonBody(creds), "application/json", false); rec.Code != http.StatusCreated {
		ts.t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	rec := ts.do(http.MethodPost, "/api/login", jsonBody(creds), "application/json", false)
	if rec.Code != http.StatusOK {
		ts.t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decode(ts.t, rec, &body)
	return body.Token
}

func (ts *testServer) do(method, path string, body io.Reader, contentType string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postJSON(path string, v interface{}) *httptest.ResponseRecorder {
	return ts.do(http.MethodPost, path, jsonBody(v), "application/json", true)
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(http.MethodGet, path, nil, "", true)
}

// upload posts a multipart form with one file field
func (ts *testServer) upload(path, field, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			ts.t.Fatal(err)
		}
		fw.Write(content)
	}
	mw.Close()
	return ts.do(http.MethodPost, path, &buf, mw.FormDataContentType(), true)
}

func (ts *testServer) uploadFirmware(name, content string) {
	rec := ts.upload("/api/upload-firmware", "firmware", name, []byte(content), map[string]string{"name": name})
	if rec.Code != http.StatusOK {
		ts.t.Fatalf("upload firmware: %d %s", rec.Code, rec.Body.String())
	}
}

func (ts *testServer) importCSV(path, csv string) *httptest.ResponseRecorder {
	return ts.upload(path, "file", "devices.csv", []byte(csv), nil)
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

const deviceCSV = "DeviceId,Vendor,District,Block,Panchayat\n" +
	"D1,Acme,Pune,Haveli,Wagholi\n" +
	"D2,Acme,Pune,Haveli,Lohegaon\n"

func TestHealthIsOpen(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", nil, "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" || body["commit"] != "dev" || body["startedAt"] == "" {
		t.Errorf("health body = %v", body)
	}
}

func TestOperatorRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/devices", "/api/firmwares", "/api/get-projects", "/api/check-auth"} {
		if rec := ts.do(http.MethodGet, path, nil, "", false); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	creds := map[string]string{"username": "operator", "password": "hunter22"}
	if rec := ts.do(http.MethodPost, "/api/register", jsonBody(creds), "application/json", false); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status = %d, want 400", rec.Code)
	}

	bad := map[string]string{"username": "operator", "password": "nope"}
	if rec := ts.do(http.MethodPost, "/api/login", jsonBody(bad), "application/json", false); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", rec.Code)
	}

	rec := ts.do(http.MethodPost, "/api/login", jsonBody(creds), "application/json", false)
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Value == "" {
		t.Fatalf("session cookie missing or not HttpOnly: %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/check-auth", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	ts.router.Handler().ServeHTTP(out, req)
	if out.Code != http.StatusOK || !strings.Contains(out.Body.String(), `"username":"operator"`) {
		t.Errorf("check-auth via cookie: %d %s", out.Code, out.Body.String())
	}

	rec = ts.do(http.MethodPost, "/api/logout", nil, "", false)
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should expire the session cookie")
	}
}

func TestImportDevicesUnscoped(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.importCSV("/api/add-device", deviceCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		AddedDevices []string `json:"addedDevices"`
		Errors       []string `json:"errors"`
		Message      string   `json:"message"`
	}
	decode(t, rec, &body)
	if len(body.AddedDevices) != 2 || len(body.Errors) != 0 || body.Message != "All devices added successfully" {
		t.Errorf("body = %+v", body)
	}

	// Same file again: every row already exists.
	rec = ts.importCSV("/api/add-device", deviceCSV)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("re-import status = %d, want 422", rec.Code)
	}
	decode(t, rec, &body)
	if len(body.AddedDevices) != 0 || len(body.Errors) != 2 || body.Errors[0] != "D1: device already exists" {
		t.Errorf("re-import body = %+v", body)
	}

	// Partial: one new, one duplicate.
	rec = ts.importCSV("/api/add-device", "DeviceId,Vendor,District,Block,Panchayat\nD3,Acme,P,H,W\nD1,Acme,P,H,W\n")
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("partial status = %d, want 207", rec.Code)
	}

	rec = ts.get("/api/devices")
	var list struct {
		AllDevices []map[string]interface{} `json:"allDevices"`
	}
	decode(t, rec, &list)
	if len(list.AllDevices) != 3 {
		t.Fatalf("got %d devices, want 3", len(list.AllDevices))
	}
	if list.AllDevices[0]["firmwareStatus"] != "Null" {
		t.Errorf("firmwareStatus = %v, want Null", list.AllDevices[0]["firmwareStatus"])
	}

	rec = ts.get("/api/imports")
	var reports struct {
		Imports []map[string]interface{} `json:"imports"`
	}
	decode(t, rec, &reports)
	if len(reports.Imports) != 3 {
		t.Errorf("got %d import reports, want 3", len(reports.Imports))
	}
}

func TestImportRejectsBadUploads(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.upload("/api/add-device", "", "", nil, map[string]string{"x": "y"}); rec.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d, want 400", rec.Code)
	}
	if rec := ts.upload("/api/add-device", "file", "devices.xlsx", []byte("garbage"), nil); rec.Code != http.StatusBadRequest {
		t.Errorf("corrupt workbook: status = %d, want 400", rec.Code)
	}
	if rec := ts.postJSON("/api/add-device", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Errorf("json body: status = %d, want 400", rec.Code)
	}
}

func seedVendor(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.postJSON("/api/create-project", map[string]string{"name": "Jal Jeevan"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: %d %s", rec.Code, rec.Body.String())
	}
	var p struct {
		NewProject struct {
			ID string `json:"_id"`
		} `json:"newProject"`
	}
	decode(t, rec, &p)

	rec = ts.postJSON("/api/project/"+p.NewProject.ID+"/create-vendor", map[string]string{"vendorName": "Acme"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create vendor: %d %s", rec.Code, rec.Body.String())
	}
	var v struct {
		NewVendor struct {
			ID string `json:"_id"`
		} `json:"newVendor"`
	}
	decode(t, rec, &v)
	return v.NewVendor.ID
}

func TestImportDevicesForVendor(t *testing.T) {
	ts := newTestServer(t)
	vendorID := seedVendor(t, ts)

	if rec := ts.importCSV("/api/vendor/missing/add-device", deviceCSV); rec.Code != http.StatusNotFound {
		t.Errorf("unknown vendor: status = %d, want 404", rec.Code)
	}

	rec := ts.get("/api/vendor/" + vendorID + "/devices")
	if !strings.Contains(rec.Body.String(), "No devices found") {
		t.Errorf("empty vendor body = %s", rec.Body.String())
	}

	// No Vendor column: scoped imports do not need it.
	csv := "DeviceId,District,Block,Panchayat\nV1,Pune,Haveli,Wagholi\nV2,Pune,Haveli,\n"
	rec = ts.importCSV("/api/vendor/"+vendorID+"/add-device", csv)
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "V2: missing required fields") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = ts.get("/api/vendor/" + vendorID + "/devices")
	var body struct {
		Devices []struct {
			DeviceID string `json:"deviceId"`
			Vendor   string `json:"vendor"`
		} `json:"devices"`
	}
	decode(t, rec, &body)
	if len(body.Devices) != 1 || body.Devices[0].DeviceID != "V1" || body.Devices[0].Vendor != vendorID {
		t.Errorf("vendor devices = %+v", body.Devices)
	}

	if rec := ts.get("/api/vendor/missing/devices"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown vendor listing: status = %d, want 404", rec.Code)
	}
}

func TestProjectRoutes(t *testing.T) {
	ts := newTestServer(t)
	seedVendor(t, ts)

	if rec := ts.postJSON("/api/create-project", map[string]string{"name": "Jal Jeevan"}); rec.Code != http.StatusConflict {
		t.Errorf("duplicate project: status = %d, want 409", rec.Code)
	}
	if rec := ts.postJSON("/api/project/missing/create-vendor", map[string]string{"vendorName": "X"}); rec.Code != http.StatusNotFound {
		t.Errorf("vendor on missing project: status = %d, want 404", rec.Code)
	}
	if rec := ts.get("/api/project/missing/all-vendors"); rec.Code != http.StatusNotFound {
		t.Errorf("vendors of missing project: status = %d, want 404", rec.Code)
	}

	rec := ts.get("/api/get-projects")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Acme"`) {
		t.Errorf("projects = %d %s", rec.Code, rec.Body.String())
	}
}
