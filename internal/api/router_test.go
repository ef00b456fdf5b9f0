package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plataforma-eventos/server/internal/config"
	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T) (*httptest.Server, *Router) {
	t.Helper()

	cfg := config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		Storage: config.StorageConfig{
			DataDir:    t.TempDir(),
			UploadsDir: t.TempDir(),
		},
		Auth: config.AuthConfig{
			SessionSecret: "router-test-secret-0123456789",
			SessionExpiry: time.Hour,
		},
		RateLimit: config.RateLimitConfig{
			PublicPerMinute: 600,
			LoginPerMinute:  60,
			AdminPerMinute:  600,
		},
		Environment: "development",
	}

	router, err := NewRouter(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	srv := httptest.NewServer(router.Handler)
	t.Cleanup(srv.Close)
	return srv, router
}

// apiClient is a cookie-aware test client that tracks the CSRF token from
// response headers the way the frontend does.
type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
	csrf string
}

func newAPIClient(t *testing.T, srv *httptest.Server) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &apiClient{
		t:    t,
		base: srv.URL,
		http: &http.Client{Jar: jar},
	}
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set("X-CSRF-Token", c.csrf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	if token := resp.Header.Get("X-CSRF-Token"); token != "" {
		c.csrf = token
	}
	return resp
}

func (c *apiClient) get(path string) *http.Response {
	return c.do(http.MethodGet, path, nil)
}

func (c *apiClient) post(path string, body any) *http.Response {
	return c.do(http.MethodPost, path, body)
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s: status = %d, want %d", resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func sampleEventBody() map[string]any {
	return map[string]any{
		"sector":           "Educación",
		"categoria":        "Taller",
		"titulo":           "Taller de robótica",
		"descripcion":      "Introducción a la robótica educativa",
		"contactos":        []map[string]string{{"nombre": "Ana", "telefono": "123456"}},
		"fecha":            "2026-09-15",
		"horaInicio":       "10:00",
		"horaFin":          "12:00",
		"ubicacion":        "Centro Cultural",
		"numeroConvocados": 40,
	}
}

func TestFullUserJourney(t *testing.T) {
	srv, router := newTestRouter(t)
	client := newAPIClient(t, srv)

	// Pick up the CSRF token before the first mutation.
	resp := client.get("/healthz")
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.post("/api/v1/auth/register", map[string]any{
		"nombre":   "Laura",
		"apellido": "Méndez",
		"email":    "laura@eventos.com",
		"celular":  "555-0101",
		"sector":   "Educación",
		"password": "segura-12345",
	})
	expectStatus(t, resp, http.StatusCreated)
	var registered struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &registered)
	if registered.ID == "" {
		t.Fatal("register response missing id")
	}

	// Unapproved accounts cannot log in yet.
	resp = client.post("/api/v1/auth/login", map[string]string{
		"email":    "laura@eventos.com",
		"password": "segura-12345",
	})
	expectStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	if err := router.Users.EnsureAdmin(context.Background(), "Admin", "Sistema", "admin@eventos.com", "admin-secret-1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	resp = client.post("/api/v1/auth/login", map[string]string{
		"email":    "admin@eventos.com",
		"password": "admin-secret-1",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.get("/api/v1/auth/session")
	expectStatus(t, resp, http.StatusOK)
	var session struct {
		Email string `json:"email"`
		Rol   string `json:"rol"`
	}
	decodeBody(t, resp, &session)
	if session.Email != "admin@eventos.com" || session.Rol != "admin" {
		t.Fatalf("session = %+v", session)
	}

	resp = client.post(fmt.Sprintf("/api/v1/admin/usuarios/%s/aprobar", registered.ID), nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// The approved collaborator takes over the client.
	resp = client.post("/api/v1/auth/login", map[string]string{
		"email":    "laura@eventos.com",
		"password": "segura-12345",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.post("/api/v1/eventos", sampleEventBody())
	expectStatus(t, resp, http.StatusCreated)
	var event struct {
		ID         string `json:"id"`
		Finalizado bool   `json:"finalizado"`
	}
	decodeBody(t, resp, &event)
	if event.ID == "" || event.Finalizado {
		t.Fatalf("created event = %+v", event)
	}

	// Finalization needs a complete report first.
	resp = client.post(fmt.Sprintf("/api/v1/eventos/%s/finalizar", event.ID), nil)
	expectStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	resp = client.get(fmt.Sprintf("/api/v1/eventos/%s/public", event.ID))
	expectStatus(t, resp, http.StatusOK)
	var public map[string]any
	decodeBody(t, resp, &public)
	if _, leaked := public["creadoPor"]; leaked {
		t.Error("public projection leaks creadoPor")
	}

	resp = client.post(fmt.Sprintf("/api/v1/eventos/%s/preguntas", event.ID), map[string]string{
		"nombre":   "Pedro",
		"pregunta": "¿Hace falta inscribirse?",
	})
	expectStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = client.get(fmt.Sprintf("/api/v1/eventos/%s/preguntas", event.ID))
	expectStatus(t, resp, http.StatusOK)
	var preguntas []map[string]any
	decodeBody(t, resp, &preguntas)
	if len(preguntas) != 1 {
		t.Fatalf("preguntas = %d, want 1", len(preguntas))
	}

	resp = client.post("/api/v1/auth/logout", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.get("/api/v1/auth/session")
	expectStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestReportUploadAndZipDownload(t *testing.T) {
	srv, router := newTestRouter(t)
	client := newAPIClient(t, srv)

	if err := router.Users.EnsureAdmin(context.Background(), "Admin", "Sistema", "admin@eventos.com", "admin-secret-1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	resp := client.get("/healthz")
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.post("/api/v1/auth/login", map[string]string{
		"email":    "admin@eventos.com",
		"password": "admin-secret-1",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.post("/api/v1/eventos", sampleEventBody())
	expectStatus(t, resp, http.StatusCreated)
	var event struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &event)

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	if err := mw.WriteField("resumen", "Asistieron cuarenta personas."); err != nil {
		t.Fatalf("write resumen: %v", err)
	}
	part, err := mw.CreateFormFile("imagenes", "foto.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/eventos/"+event.ID+"/informe", &form)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-CSRF-Token", client.csrf)

	resp, err = client.http.Do(req)
	if err != nil {
		t.Fatalf("upload informe: %v", err)
	}
	expectStatus(t, resp, http.StatusCreated)
	var informe struct {
		Resumen  string   `json:"resumen"`
		Imagenes []string `json:"imagenes"`
	}
	decodeBody(t, resp, &informe)
	if len(informe.Imagenes) != 1 {
		t.Fatalf("informe imagenes = %v", informe.Imagenes)
	}

	resp = client.post("/api/v1/eventos/"+event.ID+"/finalizar", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.get("/api/v1/eventos/" + event.ID + "/informe/descargar-zip")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type = %q", ct)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["resumen.txt"] || !names["imagen_1.png"] {
		t.Errorf("zip entries = %v", names)
	}
}

func TestCSRFTokenRequired(t *testing.T) {
	srv, _ := newTestRouter(t)
	client := newAPIClient(t, srv)

	// No prior safe request, so no token and no csrf cookie.
	resp := client.post("/api/v1/auth/register", map[string]string{"email": "x@x.com"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	srv, _ := newTestRouter(t)
	client := newAPIClient(t, srv)

	resp := client.get("/api/v1/eventos")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminRoutesRejectCollaborators(t *testing.T) {
	srv, router := newTestRouter(t)
	client := newAPIClient(t, srv)

	if err := router.Users.EnsureAdmin(context.Background(), "Admin", "Sistema", "admin@eventos.com", "admin-secret-1"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	resp := client.get("/healthz")
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = client.post("/api/v1/auth/register", map[string]any{
		"nombre":   "Nico",
		"apellido": "Suárez",
		"email":    "nico@eventos.com",
		"celular":  "555-0102",
		"sector":   "Salud",
		"password": "clave-123456",
	})
	expectStatus(t, resp, http.StatusCreated)
	var registered struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &registered)

	// Approve through the service, then log in as the collaborator.
	if _, err := router.Users.Approve(context.Background(), registered.ID, "admin@eventos.com"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	resp = client.post("/api/v1/auth/login", map[string]string{
		"email":    "nico@eventos.com",
		"password": "clave-123456",
	})
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	for _, path := range []string{
		"/api/v1/admin/usuarios",
		"/api/v1/admin/logs",
		"/api/v1/admin/dashboard",
	} {
		resp := client.get(path)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestRouter(t)
	client := newAPIClient(t, srv)

	resp := client.do(http.MethodPatch, "/api/v1/eventos", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestRouter(t)
	client := newAPIClient(t, srv)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := client.get(path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := client.get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics: status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}
