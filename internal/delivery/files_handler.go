package delivery

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/files"
	"github.com/Vovarama1992/braille_bridge/internal/session"
)

type FilesHandler struct {
	files files.Service
}

func NewFilesHandler(svc files.Service) *FilesHandler {
	return &FilesHandler{files: svc}
}

// GET /files
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	items, err := h.files.List(r.Context(), sess)
	if err != nil {
		h.fail(w, err, files.MsgFetchFailed)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// DELETE /files/{id}
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	msg, err := h.files.Delete(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, files.MsgDeleteFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// POST /files/download {"url","filename"}: streams the artifact back as an
// attachment, only for urls found among the caller's records
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, _ := session.FromContext(r.Context())

	blob, err := h.files.Fetch(r.Context(), sess, req.URL, req.Filename)
	if err != nil {
		h.fail(w, err, files.MsgDownloadFailed)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": blob.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

func (h *FilesHandler) fail(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, files.ErrNotLoggedIn) {
		writeError(w, http.StatusUnauthorized, MsgLoginFirst)
		return
	}
	if errors.Is(err, files.ErrNotOwned) {
		writeError(w, http.StatusNotFound, files.MsgNotOwned)
		return
	}
	writeError(w, statusFor(err), apperr.Message(err, fallback))
}
