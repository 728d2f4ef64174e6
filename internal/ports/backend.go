package ports

import "context"

// RawBody: first stage of every backend response: status + whole body as text
type RawBody struct {
	StatusCode int
	Text       string
}

func (b RawBody) OK() bool {
	return b.StatusCode >= 200 && b.StatusCode < 300
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Backend: the external conversion service. Only transport failures are errors;
// status and body are for the caller to interpret.
type Backend interface {
	Upload(ctx context.Context, token string, file SourceFile) (RawBody, error)
	Convert(ctx context.Context, token string, target Target, id string) (RawBody, error)

	ListFiles(ctx context.Context, token string) (RawBody, error)
	DeleteFile(ctx context.Context, token, id string) (RawBody, error)

	Login(ctx context.Context, in LoginInput) (RawBody, error)
	Register(ctx context.Context, in RegisterInput) (RawBody, error)

	// Fetch: plain GET of an artifact URL, no credential
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// ArtifactSink stores a downloaded or produced artifact and returns where it went.
type ArtifactSink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
