// Package site serves the embedded upload page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the upload page and its assets at / on mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
