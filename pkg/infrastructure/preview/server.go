// Package preview serves generated blog posts over HTTP for local review.
// Posts are shown as raw Markdown; rendering is left to the publishing
// pipeline that consumes the files.
package preview

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/sse"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

//go:embed templates/*
var templatesFS embed.FS

// PostInfo describes one generated post on disk.
type PostInfo struct {
	Slug       string
	Filename   string
	SizeBytes  int64
	ModifiedAt time.Time
}

// IndexData holds data for the index template.
type IndexData struct {
	Title       string
	Description string
	OutputDir   string
	Posts       []PostInfo
	Error       string
}

// PostData holds data for the post template.
type PostData struct {
	Title   string
	Slug    string
	Content string
}

// Server is the preview HTTP server.
type Server struct {
	addr        string
	outputDir   string
	description string
	events      *sse.SSEHandler
	server      *http.Server
	tmpl        *template.Template
}

// NewServer creates a preview server for the posts in outputDir. The
// publisher may be nil, in which case /events is not served.
func NewServer(addr, outputDir string, publisher *storage.InMemoryEventPublisher) (*Server, error) {
	funcMap := template.FuncMap{
		"formatTime":  formatTime,
		"formatBytes": formatBytes,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	var events *sse.SSEHandler
	if publisher != nil {
		events = sse.NewSSEHandler(publisher)
	}

	return &Server{
		addr:      addr,
		outputDir: outputDir,
		events:    events,
		tmpl:      tmpl,
	}, nil
}

// SetDescription sets the collection description shown on the index page,
// typically the source repository's GitHub description.
func (s *Server) SetDescription(description string) {
	s.description = description
}

// Start starts the preview server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		// No write timeout; /events streams for as long as the client stays.
		ReadTimeout: 15 * time.Second,
	}

	log.Printf("Preview server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Handler returns the route table without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /posts/{slug}", s.handlePost)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.events != nil {
		mux.Handle("GET /events", s.events)
	}

	return mux
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexData{Title: "Generated Posts", Description: s.description, OutputDir: s.outputDir}

	posts, err := s.listPosts()
	if err != nil {
		data.Error = err.Error()
	} else {
		data.Posts = posts
	}

	s.render(w, "index.html", data)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" || slug != filepath.Base(slug) || strings.HasPrefix(slug, ".") {
		http.Error(w, "invalid slug", http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.outputDir, slug+".md")
	content, err := os.ReadFile(path) // #nosec G304 -- slug is reduced to a base name inside the output directory
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to read post", http.StatusInternalServerError)
		return
	}

	s.render(w, "post.html", PostData{Title: slug, Slug: slug, Content: string(content)})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// listPosts returns the Markdown files in the output directory. A missing
// directory is an empty preview, not an error.
func (s *Server) listPosts() ([]PostInfo, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []PostInfo{}, nil
		}
		return nil, err
	}

	posts := []PostInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		posts = append(posts, PostInfo{
			Slug:       strings.TrimSuffix(entry.Name(), ".md"),
			Filename:   entry.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].Slug < posts[j].Slug })
	return posts, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTP"[exp])
}
