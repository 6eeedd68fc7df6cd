package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
)

// Client is a typed Go client for the ccblogger MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.timeout)),
		timeout: o.timeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

// textResult extracts Content[0].Text from a tool result.
func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// --- Schema ---

// GetSchema reads the ccblogger://schema resource from the server.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, "ccblogger://schema")
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible checks if the server schema is compatible with this SDK version.
// Returns nil if compatible, error with details if not.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	serverMajor := majorVersion(info.SchemaVersion)
	if serverMajor != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, serverMajor, SupportedSchemaMajor)
	}
	return nil
}

// majorVersion extracts the major version from a semver string.
func majorVersion(v string) string {
	for i, ch := range v {
		if ch == '.' {
			return v[:i]
		}
	}
	return v
}

// --- Tasks ---

// ListTasks lists the troubleshooting tasks in a code collection. An empty
// repoURL lets the server fall back to its default repository.
func (c *Client) ListTasks(ctx context.Context, repoURL string) ([]TaskSummary, error) {
	return c.ListTasksWith(ctx, ListTasksRequest{RepoURL: repoURL})
}

// --- Generation ---

// Generate renders blog posts for a code collection into outputDir on the
// server and returns the server's completion message.
func (c *Client) Generate(ctx context.Context, repoURL, outputDir string) (string, error) {
	return c.GenerateWith(ctx, GenerateRequest{RepoURL: repoURL, OutputDir: outputDir})
}

// GetPost reads a generated blog post as raw Markdown from the server's
// default output directory.
func (c *Client) GetPost(ctx context.Context, slug string) (string, error) {
	return c.GetPostIn(ctx, slug, "")
}

// GetPostIn reads a generated blog post from a specific output directory.
func (c *Client) GetPostIn(ctx context.Context, slug, outputDir string) (string, error) {
	args := map[string]any{"slug": slug}
	if outputDir != "" {
		args["output_dir"] = outputDir
	}
	res, err := c.call(ctx, "ccblogger_get_post", args)
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// --- Telemetry ---

// CacheInfo describes the cached task sets on the server.
func (c *Client) CacheInfo(ctx context.Context) ([]CacheEntry, error) {
	res, err := c.call(ctx, "ccblogger_cache_info", nil)
	if err != nil {
		return nil, err
	}
	entries, err := unmarshalText[[]CacheEntry](res)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// Usage retrieves run and AI token usage statistics.
func (c *Client) Usage(ctx context.Context) (*UsageStats, error) {
	res, err := c.call(ctx, "ccblogger_usage", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[UsageStats](res)
}
