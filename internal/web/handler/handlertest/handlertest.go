// Package handlertest wires handlers to an in-memory database for tests.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/session"
)

// Sender records every email instead of sending it.
type Sender struct {
	mu        sync.Mutex
	Addresses []string
}

// Send implements alert.Sender.
func (s *Sender) Send(_ context.Context, _ *models.Notification, address, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Addresses = append(s.Addresses, address)

	return nil
}

// Sent returns the recorded addresses.
func (s *Sender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.Addresses...)
}

// Config returns a valid configuration for tests.
func Config() *config.Config {
	return &config.Config{
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Alerts:   config.Alerts{TimeZone: "UTC", LookaheadDays: 366, DedupWindow: 24 * time.Hour},
		Dispatch: config.Dispatch{BatchSize: 50},
		Cron:     config.Cron{Secret: "cron-secret"},
	}
}

// NewEnv returns handler dependencies over a fresh database and session store.
func NewEnv(t *testing.T) (*handler.Env, *Sender) {
	t.Helper()

	session.Init(session.NewMemoryStorage())

	db := dbtest.New(t)
	cfg := Config()
	store := alert.NewGormStore(db)
	resolver := alert.NewResolver(store)
	sender := &Sender{}

	return &handler.Env{
		Cfg:      cfg,
		DB:       db,
		Policy:   auth.DefaultPolicy(),
		Resolver: resolver,
		Scanner:  alert.NewScanner(store, resolver, cfg.Alerts),
		Worker:   alert.NewWorker(store, resolver, sender, cfg.Dispatch, nil),
	}, sender
}

// NewApp returns a fiber app resolving session cookies, with the given handlers initialised.
func NewApp(t *testing.T, env *handler.Env, services ...handler.Service) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(auth.Authenticate(env.DB))

	for _, s := range services {
		require.NoError(t, s.Init(app, env))
	}

	return app
}

// Login stores a session for u and returns its id.
func Login(t *testing.T, u models.User) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{User: u}).Write(id, time.Minute))

	return id
}

// Request describes one test request.
type Request struct {
	Method  string
	Path    string
	Body    any
	Session string
	Header  map[string]string
}

// Do runs r against app and returns the status code and the response body.
func Do(t *testing.T, app *fiber.App, r Request) (int, []byte) {
	t.Helper()

	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		require.NoError(t, err)

		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	for k, v := range r.Header {
		req.Header.Set(k, v)
	}

	if r.Session != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: r.Session})
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, out
}

// Decode unmarshals a JSON response body into v.
func Decode(t *testing.T, body []byte, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, v), string(body))
}
