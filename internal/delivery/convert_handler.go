package delivery

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
	"github.com/Vovarama1992/braille_bridge/internal/session"
	"github.com/Vovarama1992/braille_bridge/internal/workflow"
)

// multipart overhead on top of the file limit
const formSlack = 1 << 20

type ConvertHandler struct {
	backend ports.Backend
	notify  ports.Notifier
	log     *logger.ZapLogger
}

func NewConvertHandler(b ports.Backend, notify ports.Notifier, log *logger.ZapLogger) *ConvertHandler {
	return &ConvertHandler{backend: b, notify: notify, log: log}
}

// POST /convert/braille
func (h *ConvertHandler) Braille(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, ports.TargetBraille)
}

// POST /convert/tts
func (h *ConvertHandler) Speech(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, ports.TargetTTS)
}

// Each request is its own page: request-scoped state, cancelled with the
// request context.
func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request, target ports.Target) {
	sess, _ := session.FromContext(r.Context())

	page := workflow.NewPage(target, h.backend, h.notify, h.log)
	defer page.Close()

	if err := fillPage(w, r, page); err != nil {
		writeError(w, statusFor(err), apperr.Message(err, page.Messages().Fallback))
		return
	}

	snap, err := page.Convert(r.Context(), sess)
	if err != nil {
		if errors.Is(err, workflow.ErrAttemptInFlight) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if h.log != nil && apperr.KindOf(err) != apperr.KindPrecondition {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "conversion failed: " + snap.Error, Service: "braille_bridge", Error: err})
		}
		writeJSON(w, statusFor(err), snap)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// fillPage reads either a multipart form (field "file", or "text") or a
// JSON body {"tab","text"}.
func fillPage(w http.ResponseWriter, r *http.Request, page *workflow.Page) error {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, ports.MaxFileSize+formSlack)
		if err := r.ParseMultipartForm(formSlack); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return apperr.New(apperr.KindPrecondition, page.Messages().FileTooLarge)
			}
			return apperr.Wrap(apperr.KindPrecondition, "invalid multipart: "+err.Error(), err)
		}

		if f, hdr, err := r.FormFile(backend.UploadField); err == nil {
			defer f.Close()
			if hdr.Size > ports.MaxFileSize {
				return apperr.New(apperr.KindPrecondition, page.Messages().FileTooLarge)
			}
			data, err := io.ReadAll(f)
			if err != nil {
				return apperr.Wrap(apperr.KindPrecondition, "failed to read file", err)
			}
			page.SetTab(ports.TabFile)
			return page.SelectFile(ports.SourceFile{
				Name:        hdr.Filename,
				ContentType: hdr.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		page.SetTab(tabOf(r.FormValue("tab")))
		page.SetText(r.FormValue("text"))
		return nil
	}

	var req struct {
		Tab  string `json:"tab"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindPrecondition, "invalid json", err)
	}
	page.SetTab(tabOf(req.Tab))
	page.SetText(req.Text)
	return nil
}

func tabOf(s string) ports.Tab {
	if ports.Tab(s) == ports.TabFile {
		return ports.TabFile
	}
	return ports.TabText
}
