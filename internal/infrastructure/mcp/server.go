// Package mcp exposes ccblogger over the Model Context Protocol so AI
// assistants can list tasks, generate posts, and read the results.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

const defaultRepoURL = "https://github.com/runwhen-contrib/rw-cli-codecollection"
const defaultOutputDir = "blog_posts"
const defaultLimit = 5

type Server struct {
	mcpServer *mcp.Server
	fetchSvc  *application.FetchService
	blogSvc   *application.BlogService
	usageSvc  *application.UsageService
	repo      *storage.FilesystemStore
	root      string
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root)
	if services == nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := services.Workspace.Repo.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize application directory: %w", err)
	}
	return NewServerWithServices(root, services), nil
}

// NewServerWithServices wires a server around pre-built services.
func NewServerWithServices(root string, services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "ccblogger",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("CCBlogger MCP Server"),
			mcp.WithDescription("ccblogger turns RunWhen CodeCollection troubleshooting tasks into technical blog posts."),
			mcp.WithWebsiteURL("https://github.com/runwhen-contrib/ccblogger"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to list extracted tasks, generate blog posts, and read the generated Markdown."),
		),
		fetchSvc: services.Fetch,
		blogSvc:  services.Blog,
		usageSvc: services.Usage,
		repo:     services.Workspace.Repo,
		root:     root,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

type ListTasksArgs struct {
	RepoURL string `json:"repo_url,omitempty" jsonschema:"description=CodeCollection repository URL (defaults to rw-cli-codecollection)"`
	Tag     string `json:"tag,omitempty" jsonschema:"description=Only return tasks carrying this tag"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"description=Bypass the task cache and re-clone the repository"`
}

type GenerateArgs struct {
	RepoURL   string `json:"repo_url,omitempty" jsonschema:"description=CodeCollection repository URL (defaults to rw-cli-codecollection)"`
	OutputDir string `json:"output_dir,omitempty" jsonschema:"description=Directory the posts are written to (defaults to blog_posts)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Maximum number of posts to generate (defaults to 5)"`
	Tag       string `json:"tag,omitempty" jsonschema:"description=Only generate posts for tasks carrying this tag"`
}

type GetPostArgs struct {
	Slug      string `json:"slug" jsonschema:"description=The post slug, its output filename without the .md suffix"`
	OutputDir string `json:"output_dir,omitempty" jsonschema:"description=Directory holding the generated posts (defaults to blog_posts)"`
}

// TaskSummary is the trimmed task view returned to MCP clients. The full
// task record carries runbook source and supporting scripts, which would
// flood a model context.
type TaskSummary struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Bundle        string   `json:"bundle,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
}

func (s *Server) registerTools() {
	// Tool: ccblogger_list_tasks
	s.mcpServer.Tool("ccblogger_list_tasks").
		Description("List the troubleshooting tasks extracted from a CodeCollection repository").
		Handler(s.handleListTasks)

	// Tool: ccblogger_generate
	s.mcpServer.Tool("ccblogger_generate").
		Description("Generate blog posts for the tasks in a CodeCollection repository").
		Handler(s.handleGenerate)

	// Tool: ccblogger_get_post
	s.mcpServer.Tool("ccblogger_get_post").
		Description("Read a generated blog post as raw Markdown").
		Handler(s.handleGetPost)

	// Tool: ccblogger_cache_info
	s.mcpServer.Tool("ccblogger_cache_info").
		Description("Show the cached task sets and their sizes").
		Handler(s.handleCacheInfo)

	// Tool: ccblogger_usage
	s.mcpServer.Tool("ccblogger_usage").
		Description("Retrieve run and AI token usage statistics").
		Handler(s.handleUsage)
}

func (s *Server) handleListTasks(ctx context.Context, args ListTasksArgs) (any, error) {
	repoURL := args.RepoURL
	if repoURL == "" {
		repoURL = defaultRepoURL
	}

	tasks, err := s.fetchSvc.GetAllTasks(ctx, repoURL, !args.NoCache)
	if err != nil {
		return nil, mcpErr("Failed to fetch tasks. Check the repository URL and that git is installed.")
	}
	if args.Tag != "" {
		tasks = collection.FilterByTag(tasks, args.Tag)
	}

	summaries := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		summaries = append(summaries, TaskSummary{
			Name:          t.Name,
			Slug:          t.Slug(),
			Bundle:        t.Bundle,
			Tags:          t.Tags,
			Documentation: t.Documentation,
		})
	}
	return summaries, nil
}

func (s *Server) handleGenerate(ctx context.Context, args GenerateArgs) (string, error) {
	repoURL := args.RepoURL
	if repoURL == "" {
		repoURL = defaultRepoURL
	}
	outputDir := args.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	limit := args.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	tasks, err := s.fetchSvc.GetAllTasks(ctx, repoURL, true)
	if err != nil {
		return "", mcpErr("Failed to fetch tasks. Check the repository URL and that git is installed.")
	}
	if args.Tag != "" {
		tasks = collection.FilterByTag(tasks, args.Tag)
	}
	if limit > 0 && len(tasks) > limit {
		tasks = collection.Limit(tasks, limit)
	}

	paths, err := s.blogSvc.GeneratePosts(ctx, tasks, outputDir)
	if err != nil {
		return "", mcpErr("Post generation failed. Check your AI provider configuration and API keys.")
	}
	return fmt.Sprintf("Generated %d blog posts in %s", len(paths), outputDir), nil
}

func (s *Server) handleGetPost(ctx context.Context, args GetPostArgs) (string, error) {
	if args.Slug == "" {
		return "", mcpErr("A slug is required.")
	}
	if args.Slug != filepath.Base(args.Slug) {
		return "", mcpErr("Invalid slug.")
	}
	outputDir := args.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}

	content, err := os.ReadFile(filepath.Join(outputDir, args.Slug+".md")) // #nosec G304 -- slug is reduced to a base name inside the output directory
	if err != nil {
		return "", mcpErr("Post not found. Generate posts first with the ccblogger_generate tool.")
	}
	return string(content), nil
}

func (s *Server) handleCacheInfo(ctx context.Context, args struct{}) (any, error) {
	entries, err := s.repo.CacheEntries()
	if err != nil {
		return nil, mcpErr("Failed to read the task cache.")
	}
	return entries, nil
}

func (s *Server) handleUsage(ctx context.Context, args struct{}) (any, error) {
	stats, err := s.usageSvc.GetUsage()
	if err != nil {
		return nil, mcpErr("Failed to retrieve usage data.")
	}
	return stats, nil
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) StartWebSocket(addr string) error {
	return s.ServeWebSocket(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
