package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

const SourceExt = ".lox"

func UriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	pth, err := url.PathUnescape(u.Path)
	if err != nil {
		return ""
	}
	return filepath.FromSlash(pth)
}

// IsSource reports whether uri names a source file the server analyzes.
func IsSource(uri string) bool {
	return strings.HasSuffix(strings.ToLower(uri), SourceExt)
}
