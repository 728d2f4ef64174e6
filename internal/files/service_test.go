package files

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/export"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

var sess = ports.Session{Token: "tok"}

func newService(t *testing.T, h http.HandlerFunc) (Service, string, string) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	return NewService(backend.NewClient(srv.URL, nil, nil), export.NewLocalSink(dir), nil), srv.URL, dir
}

func TestListRequiresSession(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := svc.List(context.Background(), ports.Session{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestList(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/files", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"_id":"1","filename":"notes.txt","cloudinary_url":"https://cdn/notes.txt","createdAt":"2025-05-01T10:00:00.000Z",
			 "convertedType":"braille","converted_url":"https://cdn/notes.brf","braille_unicode_url":"https://cdn/notes.txt"},
			{"_id":"2","filename":"talk.txt","createdAt":"2025-05-02T10:00:00Z","convertedType":"tts","converted_url":"https://cdn/talk.mp3"},
			{"_id":"3","filename":"raw.pdf","createdAt":"2025-05-03T10:00:00Z"}
		]`))
	})

	recs, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "notes.txt", recs[0].Filename)
	assert.Equal(t, 2025, recs[0].CreatedAt.Year())
	assert.Equal(t, []ports.Artifact{{Label: "brf", URL: "https://cdn/notes.brf"}, {Label: "txt", URL: "https://cdn/notes.txt"}}, recs[0].Artifacts())
	assert.Equal(t, []ports.Artifact{{Label: "audio", URL: "https://cdn/talk.mp3"}}, recs[1].Artifacts())
	assert.False(t, recs[2].Converted())
	assert.Empty(t, recs[2].Artifacts())
}

func TestListKeepsRecordWithOddDate(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"1","filename":"a.txt","createdAt":"2025-05-01T10:00:00Z"},
			{"_id":"2","filename":"b.txt","createdAt":"yesterday"}]`))
	})

	recs, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b.txt", recs[1].Filename)
	assert.True(t, recs[1].CreatedAt.IsZero())
}

func TestListFailure(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := svc.List(context.Background(), sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgFetchFailed)
	assert.ErrorIs(t, err, apperr.AuthRejected)
}

func TestDelete(t *testing.T) {
	svc, _, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/api/files/ok":
			w.Write([]byte(`{"message":"deleted"}`))
		case "/api/files/gone":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"File not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{}`))
		}
	})

	msg, err := svc.Delete(context.Background(), sess, "ok")
	require.NoError(t, err)
	assert.Equal(t, MsgDeleted, msg)

	_, err = svc.Delete(context.Background(), sess, "gone")
	assert.EqualError(t, err, "Failed to delete file: File not found")

	_, err = svc.Delete(context.Background(), sess, "other")
	assert.EqualError(t, err, "Failed to delete file: Failed to delete file")
}

// artifactServer lists one record whose converted url lives on the same server.
func artifactServer(t *testing.T, listStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/files":
			if r.Header.Get("Authorization") != "Bearer tok" || listStatus != http.StatusOK {
				w.WriteHeader(listStatus)
				w.Write([]byte(`{"message":"Unauthorized"}`))
				return
			}
			url := "http://" + r.Host + "/cdn/talk.mp3?sig=1"
			w.Write([]byte(`[{"_id":"1","filename":"talk.txt","createdAt":"2025-05-02T10:00:00Z",
				"convertedType":"tts","converted_url":"` + url + `"}]`))
		case "/cdn/talk.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3"))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestFetchOwnedArtifact(t *testing.T) {
	svc, base, _ := newService(t, artifactServer(t, http.StatusOK))

	blob, err := svc.Fetch(context.Background(), sess, base+"/cdn/talk.mp3?sig=1", "talk")
	require.NoError(t, err)
	assert.Equal(t, Blob{Name: "talk.mp3", ContentType: "audio/mpeg", Data: []byte("ID3")}, blob)
}

func TestFetchRejectsForeignURL(t *testing.T) {
	var hits int
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("secret"))
	}))
	defer internal.Close()

	svc, _, _ := newService(t, artifactServer(t, http.StatusOK))

	_, err := svc.Fetch(context.Background(), sess, internal.URL+"/x.txt", "x")
	assert.ErrorIs(t, err, ErrNotOwned)
	assert.Zero(t, hits)
}

func TestFetchRejectedToken(t *testing.T) {
	svc, base, _ := newService(t, artifactServer(t, http.StatusUnauthorized))

	_, err := svc.Fetch(context.Background(), ports.Session{Token: "not-a-real-token"}, base+"/cdn/talk.mp3?sig=1", "talk")
	assert.ErrorIs(t, err, apperr.AuthRejected)

	_, err = svc.Fetch(context.Background(), ports.Session{}, base+"/cdn/talk.mp3", "talk")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestDownload(t *testing.T) {
	svc, base, dir := newService(t, artifactServer(t, http.StatusOK))

	loc, err := svc.Download(context.Background(), sess, base+"/cdn/talk.mp3?sig=1", "talk")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "talk.mp3"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))

	_, err = svc.Download(context.Background(), sess, "", "x")
	assert.EqualError(t, err, MsgNoPreview)
}

func TestDownloadWithoutSink(t *testing.T) {
	srv := httptest.NewServer(artifactServer(t, http.StatusOK))
	defer srv.Close()
	svc := NewService(backend.NewClient(srv.URL, nil, nil), nil, nil)

	_, err := svc.Download(context.Background(), sess, srv.URL+"/cdn/talk.mp3?sig=1", "talk")
	assert.EqualError(t, err, MsgDownloadFailed)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "mp3", Extension("https://res.cloudinary.com/a/b/speech.mp3"))
	assert.Equal(t, "txt", Extension("https://cdn/x.txt?token=abc"))
	assert.Equal(t, "pdf", Extension("https://cdn/x.y.pdf"))
}

func TestView(t *testing.T) {
	_, err := View("")
	assert.EqualError(t, err, MsgNoPreview)

	_, err = ViewOriginal(ports.FileRecord{})
	assert.EqualError(t, err, MsgNoOriginal)

	u, err := View("https://cdn/x")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x", u)
}
