package server

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed static/*
var staticFiles embed.FS

// assetModTime is reported for every embedded asset so conditional requests work across restarts
var assetModTime = time.Now().UTC().Truncate(time.Second)

func StaticFilesFS() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create static sub filesystem: " + err.Error())
	}

	return subFS
}

// StreamFile serves one embedded asset, answering HEAD, Range and If-Modified-Since requests
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	name := path.Clean(strings.TrimPrefix(fileName, "/"))
	if !fs.ValidPath(name) || name == "." {
		return fmt.Errorf("invalid asset path %q", fileName)
	}

	data, err := fs.ReadFile(StaticFilesFS(), name)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	http.ServeContent(w, r, name, assetModTime, bytes.NewReader(data))
	return nil
}
