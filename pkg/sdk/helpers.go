package sdk

import "context"

// ListTasksRequest provides the full parameter set for ListTasks.
type ListTasksRequest struct {
	RepoURL string `json:"repo_url,omitempty"`
	Tag     string `json:"tag,omitempty"`
	NoCache bool   `json:"no_cache,omitempty"`
}

// ListTasksWith lists tasks using every list_tasks parameter.
func (c *Client) ListTasksWith(ctx context.Context, req ListTasksRequest) ([]TaskSummary, error) {
	args := map[string]any{}
	if req.RepoURL != "" {
		args["repo_url"] = req.RepoURL
	}
	if req.Tag != "" {
		args["tag"] = req.Tag
	}
	if req.NoCache {
		args["no_cache"] = true
	}
	res, err := c.call(ctx, "ccblogger_list_tasks", args)
	if err != nil {
		return nil, err
	}
	summaries, err := unmarshalText[[]TaskSummary](res)
	if err != nil {
		return nil, err
	}
	return *summaries, nil
}

// GenerateRequest provides the full parameter set for Generate.
type GenerateRequest struct {
	RepoURL   string `json:"repo_url,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Tag       string `json:"tag,omitempty"`
}

// GenerateWith generates posts using every generate parameter.
func (c *Client) GenerateWith(ctx context.Context, req GenerateRequest) (string, error) {
	args := map[string]any{}
	if req.RepoURL != "" {
		args["repo_url"] = req.RepoURL
	}
	if req.OutputDir != "" {
		args["output_dir"] = req.OutputDir
	}
	if req.Limit > 0 {
		args["limit"] = req.Limit
	}
	if req.Tag != "" {
		args["tag"] = req.Tag
	}
	res, err := c.call(ctx, "ccblogger_generate", args)
	if err != nil {
		return "", err
	}
	return textResult(res)
}
