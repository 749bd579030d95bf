package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/tubeworks/accounts/pkg/cryptox"
	"github.com/tubeworks/accounts/pkg/httpx"
	"github.com/tubeworks/accounts/pkg/jwtx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "accounts-http-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// fakeUploader satisfies media.Uploader without an object store. Keys whose
// prefix matches failPrefix error out, which lets tests exercise upload
// failure paths. Successful uploads are recorded so tests can assert nothing
// was stored on rejected requests.
type fakeUploader struct {
	failPrefix string
	keys       []string
}

func (f *fakeUploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.failPrefix != "" && strings.HasPrefix(key, f.failPrefix) {
		return "", io.ErrUnexpectedEOF
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "https://media.test/" + key, nil
}

type testServer struct {
	*httptest.Server

	store    store.Store
	uploader *fakeUploader
	tokens   *service.TokenService
	users    *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	access, err := jwtx.NewHS256("test-access-secret", "test-issuer", 15*time.Minute)
	require.NoError(t, err)
	refresh, err := jwtx.NewHS256("test-refresh-secret", "test-issuer", 7*24*time.Hour)
	require.NoError(t, err)

	tokens := &service.TokenService{Access: access, Refresh: refresh, Store: st}
	users := &service.UserService{Store: st}
	uploader := &fakeUploader{}

	logger := slogx.New(slogx.Config{
		Service: "accounts-test",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	router := NewRouter("test", st, uploader, logger)
	router.TokenService = tokens
	router.UserService = users
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:   srv,
		store:    st,
		uploader: uploader,
		tokens:   tokens,
		users:    users,
	}
}

// multipartBody builds a multipart form with text fields and in-memory files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func registerForm(username, email string) map[string]string {
	return map[string]string{
		"fullName": "Test User",
		"email":    email,
		"username": username,
		"password": "P@ss1",
	}
}

func (ts *testServer) register(t *testing.T, fields map[string]string, files map[string][]byte) *http.Response {
	t.Helper()

	body, contentType := multipartBody(t, fields, files)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/users/register", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func (ts *testServer) doJSON(t *testing.T, method, path string, payload any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, data any) httpx.Envelope {
	t.Helper()
	defer resp.Body.Close()

	var env struct {
		Status  int             `json:"status"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Success bool            `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	if data != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}

	return httpx.Envelope{
		Status:  env.Status,
		Data:    nil,
		Message: env.Message,
		Success: env.Success,
	}
}

func cookieByName(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
