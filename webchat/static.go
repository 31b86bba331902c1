package webchat

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// staticFS returns the chat page assets rooted at the static directory.
func staticFS() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("webchat: missing embedded static directory: " + err.Error())
	}
	return sub
}
