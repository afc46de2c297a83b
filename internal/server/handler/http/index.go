package http

import (
	_ "embed"
	"net/http"
)

//go:embed templates/index.html
var indexPage []byte

// Index serves the single-page client.
func Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}
