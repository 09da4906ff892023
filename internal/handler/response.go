package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// memoryLimit is the share of a multipart body kept in memory; the rest
// spills to temporary files.
const memoryLimit = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// parseMultipart reads a multipart body of at most limit bytes. The caller
// must call RemoveAll on the returned request's MultipartForm.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	return r.ParseMultipartForm(memoryLimit)
}

func removeForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}
