package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreyvit/wdb"
)

func do(t *testing.T, h http.Handler, method, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHTTP_GetSet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	h := NewHandler(svc, nil)

	code, body := do(t, h, http.MethodGet, "/get/0/0/a")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Hello", body)

	code, body = do(t, h, http.MethodGet, "/set/0/0/b/World")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok: set b", body)

	code, body = do(t, h, http.MethodGet, "/get/0/0/b")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "World", body)

	code, _ = do(t, h, http.MethodGet, "/delete/0/0/b")
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodGet, "/get/0/0/b")
	require.Equal(t, http.StatusNotFound, code)
}

func TestHTTP_Errors(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	svc.Write(func(w *wdb.World) error {
		c, err := w.Collection(0, 0)
		require.NoError(t, err)
		return c.Add("n", wdb.U8(11))
	})
	h := NewHandler(svc, nil)

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/get/5/0/a", http.StatusNotFound, msgDatabaseNotFound},
		{"/get/0/7/a", http.StatusNotFound, msgCollectionNotFound},
		{"/get/0/0/zzz", http.StatusNotFound, msgKeyNotFound},
		{"/get/0/0/n", http.StatusConflict, msgNotString},
		{"/get/256/0/a", http.StatusBadRequest, "invalid db index \"256\""},
		{"/get/x/0/a", http.StatusBadRequest, "invalid db index \"x\""},
		{"/set/0/9/k/v", http.StatusNotFound, msgCollectionNotFound},
		{"/nope", http.StatusNotFound, "unknown endpoint"},
	}
	for _, tt := range tests {
		code, body := do(t, h, http.MethodGet, tt.path)
		require.Equal(t, tt.code, code, tt.path)
		require.Equal(t, tt.body+"\n", body, tt.path)
	}
}

func TestHTTP_AddNodesAndSnapshot(t *testing.T) {
	t.Parallel()

	svc := New(nil, Options{})
	h := NewHandler(svc, []string{"*"})

	code, body := do(t, h, http.MethodPost, "/db/hello")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0", body)

	code, body = do(t, h, http.MethodPost, "/db/0/coll/test")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0", body)

	code, _ = do(t, h, http.MethodPost, "/db/3/coll/test")
	require.Equal(t, http.StatusNotFound, code)

	for _, p := range []string{"/set/0/0/a/Hello", "/set/0/0/c/Github"} {
		code, _ = do(t, h, http.MethodGet, p)
		require.Equal(t, http.StatusOK, code)
	}

	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	want, err := wdb.DemoWorld().MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, want, rec.Body.Bytes())

	code, body = do(t, h, http.MethodGet, "/dump")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `"c" = "Github"`)
}

func TestHTTP_CORS(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestService(t), []string{"http://example.com"})
	req := httptest.NewRequest(http.MethodGet, "/get/0/0/a", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
