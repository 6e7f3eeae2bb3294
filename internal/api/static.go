package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/wire"
)

const (
	staticPrefix  = "/static/"
	indexTemplate = "login.html"
)

var notFoundPage = []byte("<h1>404 Not Found</h1>")

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// StaticStage serves asset files and HTML pages ahead of the API routes.
// Only GET requests are considered.
type StaticStage struct {
	staticRoot   string
	templateRoot string
	log          zerolog.Logger
}

func NewStaticStage(staticRoot, templateRoot string, log zerolog.Logger) *StaticStage {
	return &StaticStage{staticRoot: staticRoot, templateRoot: templateRoot, log: log}
}

// Serve reports whether the request was answered here. Any GET under /static/
// is answered, with an HTML 404 when the file is missing. Other paths are
// answered only when a matching template exists.
func (s *StaticStage) Serve(req *wire.Request) (*wire.Response, bool) {
	if req.Method != wire.MethodGet {
		return nil, false
	}
	if strings.HasPrefix(req.Path, staticPrefix) {
		return s.asset(strings.TrimPrefix(req.Path, staticPrefix)), true
	}
	return s.template(req.Path)
}

func (s *StaticStage) asset(rel string) *wire.Response {
	file, ok := resolveUnder(s.staticRoot, rel)
	if !ok {
		return notFound()
	}
	content, err := os.ReadFile(file)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("file", file).Msg("static file unreadable")
		}
		return notFound()
	}

	s.log.Debug().
		Str("file", file).
		Str("size", humanize.Bytes(uint64(len(content)))).
		Msg("static file served")

	return &wire.Response{
		Status: http.StatusOK,
		Headers: []wire.Header{
			{Name: "Content-Type", Value: contentTypeFor(file)},
			{Name: "Content-Length", Value: strconv.Itoa(len(content))},
		},
		Body: content,
	}
}

func (s *StaticStage) template(path string) (*wire.Response, bool) {
	name := strings.TrimPrefix(path, "/")
	if path == "/" {
		name = indexTemplate
	}
	file, ok := resolveUnder(s.templateRoot, name)
	if !ok {
		return nil, false
	}
	if _, err := os.Stat(file); err != nil {
		return nil, false
	}

	content, err := os.ReadFile(file)
	if err != nil {
		s.log.Warn().Err(err).Str("template", file).Msg("template unreadable")
		return notFound(), true
	}
	return wire.HTML(http.StatusOK, content), true
}

func notFound() *wire.Response {
	return wire.HTML(http.StatusNotFound, notFoundPage)
}

// resolveUnder joins a slash-separated request path onto root. Paths with a
// ".." segment, and empty paths, are refused.
func resolveUnder(root, rel string) (string, bool) {
	if rel == "" {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return filepath.Join(root, filepath.FromSlash(rel)), true
}

func contentTypeFor(file string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(file))]; ok {
		return ct
	}
	return "application/octet-stream"
}
