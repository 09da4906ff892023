package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/middleware"
)

// Routes holds everything the HTTP surface is assembled from.
type Routes struct {
	Auth     *AuthHandler
	Listings *ListingHandler
	Verifier middleware.TokenVerifier
	// Observer receives per-request outcomes. Nil disables it.
	Observer middleware.RequestObserver
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	// Uploads, when set, serves stored files read-only so local locators
	// resolve as URLs.
	Uploads *Uploads
}

// Uploads maps the public path of stored files to their directory.
type Uploads struct {
	Dir        string
	PublicPath string
}

// NewRouter wires the API routes.
func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Observe(rt.Observer))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if rt.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.Metrics)
	}
	if rt.Uploads != nil {
		prefix := "/" + media.CleanPublicPath(rt.Uploads.PublicPath) + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(filesOnly{http.Dir(rt.Uploads.Dir)})))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", rt.Auth.HandleRegister)
		r.Post("/login", rt.Auth.HandleLogin)
		r.With(middleware.JWTAuth(rt.Verifier)).Get("/me", rt.Auth.HandleMe)
	})

	r.Route("/properties", func(r chi.Router) {
		r.Post("/create", rt.Listings.HandleCreate)
		r.Get("/", rt.Listings.HandleList)
		r.Get("/search/{term}", rt.Listings.HandleSearch)
		r.Get("/{listingId}", rt.Listings.HandleGet)
	})

	return r
}

// filesOnly hides directories so the upload folder cannot be listed.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
