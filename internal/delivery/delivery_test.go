package delivery

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Vovarama1992/braille_bridge/internal/auth"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/files"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
	"github.com/Vovarama1992/braille_bridge/internal/workflow"
)

// newGateway wires the router against a fake upstream.
func newGateway(t *testing.T, upstream http.HandlerFunc) http.Handler {
	return newLoggedGateway(t, upstream, nil)
}

func newLoggedGateway(t *testing.T, upstream http.HandlerFunc, log *logger.ZapLogger) http.Handler {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	b := backend.NewClient(srv.URL, nil, nil)
	r := chi.NewRouter()
	RegisterRoutes(r,
		NewAuthHandler(auth.NewService(b, nil, nil)),
		NewConvertHandler(b, nil, log),
		NewFilesHandler(files.NewService(b, nil, nil)),
	)
	return r
}

func do(h http.Handler, method, path, token, ct string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := do(h, http.MethodGet, "/ping", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	for _, path := range []string{"/convert/braille", "/convert/tts"} {
		rec := do(h, http.MethodPost, path, "", "application/json", []byte(`{"text":"hi"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Contains(t, rec.Body.String(), MsgLoginFirst)
	}
	rec := do(h, http.MethodGet, "/files", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConvertBrailleText(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/files/upload":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"_id":"abc"}`))
		case "/api/convert/braille/abc":
			w.Write([]byte(`{"unicodeText":"⠓⠑⠇⠇⠕"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	rec := do(h, http.MethodPost, "/convert/braille", "tok", "application/json", []byte(`{"text":"hello"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap workflow.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, workflow.StateSucceeded, snap.State)
	assert.Equal(t, "⠓⠑⠇⠇⠕", snap.Result.Text)
}

func TestConvertBlankTextIsBadRequest(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called")
	})

	rec := do(h, http.MethodPost, "/convert/tts", "tok", "application/json", []byte(`{"text":"   "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var snap workflow.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, workflow.StateFailed, snap.State)
	assert.Equal(t, "Please enter some text to convert.", snap.Error)
}

func TestConvertSpeechFile(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files/upload":
			f, hdr, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			assert.Equal(t, "talk.txt", hdr.Filename)
			w.Write([]byte(`{"_id":"f1"}`))
		case "/api/convert/tts/f1":
			w.Write([]byte(`{"tts_url":"https://cdn/a.mp3"}`))
		}
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "talk.txt")
	require.NoError(t, err)
	fw.Write([]byte("good morning"))
	require.NoError(t, mw.Close())

	rec := do(h, http.MethodPost, "/convert/tts", "tok", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap workflow.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, ports.TabFile, snap.Tab)
	assert.Equal(t, "https://cdn/a.mp3", snap.Result.AudioURL)
}

func TestConvertUpstreamFailureIsBadGateway(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	rec := do(h, http.MethodPost, "/convert/braille", "tok", "application/json", []byte(`{"text":"hello"}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload failed")
}

func TestConvertFailureLogCarriesService(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := newLoggedGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}, logger.NewZapLogger(zap.New(core).Sugar()))

	rec := do(h, http.MethodPost, "/convert/braille", "tok", "application/json", []byte(`{"text":"hello"}`))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	entries := logs.FilterMessageSnippet("conversion failed:").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "braille_bridge", entries[0].ContextMap()["service"])
}

func TestLoginHandler(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Wrong password"}`))
			return
		}
		w.Write([]byte(`{"token":"jwt","name":"Ann","email":"ann@example.com"}`))
	})

	rec := do(h, http.MethodPost, "/auth/login", "", "application/json", []byte(`{"email":"ann@example.com","password":"secret1"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"jwt"`)

	rec = do(h, http.MethodPost, "/auth/login", "", "application/json", []byte(`{"email":"ann@example.com","password":"nope"}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password")

	rec = do(h, http.MethodPost, "/auth/login", "", "application/json", []byte(`{"email":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.MsgFieldsRequired)
}

func TestPasswordStrengthHandler(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := do(h, http.MethodGet, "/auth/password-strength?password=abcdefghijk", "", "", nil)
	assert.JSONEq(t, `{"strength":"strong"}`, rec.Body.String())
}

func TestFilesRoutes(t *testing.T) {
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/files":
			w.Write([]byte(`[{"_id":"1","filename":"a.txt","createdAt":"2025-05-01T10:00:00Z"}]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/files/1":
			w.Write([]byte(`{"message":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rec := do(h, http.MethodGet, "/files", "tok", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"filename":"a.txt"`)

	rec = do(h, http.MethodDelete, "/files/1", "tok", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), files.MsgDeleted))
}

func TestDownloadStreamsOwnedArtifact(t *testing.T) {
	var artifactHits int
	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Unauthorized"}`))
				return
			}
			w.Write([]byte(`[{"_id":"1","filename":"a.txt","createdAt":"2025-05-01T10:00:00Z",
				"convertedType":"braille","converted_url":"http://` + r.Host + `/cdn/a.brf"}]`))
		case "/cdn/a.brf":
			artifactHits++
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("BRF"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	// the record url is built from the upstream host; learn it from a listing
	rec := do(h, http.MethodGet, "/files", "tok", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recs []ports.FileRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	artifact := recs[0].ConvertedURL

	body, _ := json.Marshal(map[string]string{"url": artifact, "filename": "notes"})
	rec = do(h, http.MethodPost, "/files/download", "tok", "application/json", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "BRF", rec.Body.String())
	assert.Equal(t, `attachment; filename=notes.brf`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, 1, artifactHits)
}

func TestDownloadRefusesForeignURLAndBadToken(t *testing.T) {
	var internalHits int
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internalHits++
		w.Write([]byte("secret"))
	}))
	defer internal.Close()

	h := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		w.Write([]byte(`[]`))
	})

	body, _ := json.Marshal(map[string]string{"url": internal.URL + "/x.txt", "filename": "x"})

	rec := do(h, http.MethodPost, "/files/download", "not-a-real-token", "application/json", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/files/download", "tok", "application/json", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), files.MsgNotOwned)

	assert.Zero(t, internalHits)
}
