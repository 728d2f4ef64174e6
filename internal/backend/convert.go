package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

// UploadField: multipart field name the backend expects
const UploadField = "file"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload: POST /api/files/upload, single-part multipart body
func (c *Client) Upload(ctx context.Context, token string, file ports.SourceFile) (ports.RawBody, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return ports.RawBody{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/upload", token, body)
	if err != nil {
		return ports.RawBody{}, err
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req)
}

// Convert: GET /api/convert/{target}/{id}, no body
func (c *Client) Convert(ctx context.Context, token string, target ports.Target, id string) (ports.RawBody, error) {
	path := fmt.Sprintf("/api/convert/%s/%s", target, url.PathEscape(id))

	req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return ports.RawBody{}, err
	}
	return c.do(req)
}

func multipartBody(file ports.SourceFile) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadField, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return buf, mw.FormDataContentType(), nil
}
