// Package web embeds the page templates and the assets under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS

// Static is StaticFS rooted at static/, ready for http.FileServer.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFS, "static")
	if err != nil {
		// Only reachable with an invalid directory name.
		panic(err)
	}
	return sub
}
