package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(
	r chi.Router,
	hAuth *AuthHandler,
	hConv *ConvertHandler,
	hFiles *FilesHandler,
) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// --- auth ---
	r.Group(func(pub chi.Router) {
		pub.Use(httputil.RecoverMiddleware)

		pub.Post("/auth/login", hAuth.Login)
		pub.Post("/auth/register", hAuth.Register)
		pub.Get("/auth/password-strength", hAuth.PasswordStrength)
	})

	// --- protected ---
	r.Group(func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			AuthMiddleware,
		)

		// --- conversion ---
		pr.Post("/convert/braille", hConv.Braille)
		pr.Post("/convert/tts", hConv.Speech)

		// --- files ---
		pr.Get("/files", hFiles.List)
		pr.Delete("/files/{id}", hFiles.Delete)
		pr.Post("/files/download", hFiles.Download)
	})
}
