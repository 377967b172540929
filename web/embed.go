// Package web embeds the static report page served at "/".
package web

import (
	"embed"
	"io/fs"
)

//go:embed public
var content embed.FS

// Public returns the embedded public/ directory as the site root.
func Public() fs.FS {
	sub, err := fs.Sub(content, "public")
	if err != nil {
		panic(err)
	}
	return sub
}
