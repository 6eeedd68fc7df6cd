package application

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/ai"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/pipeline"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/post"
)

// BlogServiceConfig tunes a generation run.
type BlogServiceConfig struct {
	// Temperature is forwarded to every completion request.
	Temperature float32
	// MaxTokensPerRun aborts the run once the combined input and output
	// token count crosses the budget. Zero means no budget.
	MaxTokensPerRun int
}

func DefaultBlogServiceConfig() BlogServiceConfig {
	return BlogServiceConfig{Temperature: 0.7}
}

// BlogService drives each task through the post pipeline: intro, scenario,
// and issue sections from the AI provider, then rendering and saving.
type BlogService struct {
	repo      domain.Repository
	provider  ai.Provider
	audit     domain.AuditLogger
	usage     *UsageService
	publisher events.Publisher
	cfg       BlogServiceConfig
}

func NewBlogService(repo domain.Repository, provider ai.Provider, audit domain.AuditLogger, usage *UsageService, publisher events.Publisher, cfg BlogServiceConfig) *BlogService {
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultBlogServiceConfig().Temperature
	}
	return &BlogService{
		repo:      repo,
		provider:  provider,
		audit:     audit,
		usage:     usage,
		publisher: publisher,
		cfg:       cfg,
	}
}

const introSystemPrompt = `You are a technical writer creating engaging blog post introductions.`

const introPromptTemplate = `You are a technical writer creating a blog post about a Kubernetes automation task.
Write an engaging introduction paragraph that consists of three parts:

1. A hook that describes a common support ticket, alert, incident, or help request that this automation task helps solve
2. Context that explains the problem space
3. A value proposition that explains why this automation is valuable

The task details are:
- Name: %s
- Documentation: %s
- Tags: %s

Format your response as a JSON object with these exact keys: "hook", "context", "value_proposition"
Each value should be a single sentence string.

Example format:
{
    "hook": "'Our GCE ingress is throwing 502 errors and we're getting flooded with customer complaints' - a common late-night support ticket that no SRE wants to see.",
    "context": "GCE Ingress controllers can sometimes experience issues that aren't immediately visible, leading to potential service disruptions.",
    "value_proposition": "Our automated health check solution helps you proactively identify and resolve ingress issues before they impact your users."
}`

const scenarioSystemPrompt = `You are an experienced SRE describing real-world scenarios where Kubernetes automation tasks are valuable.`

const scenarioPromptTemplate = `Analyze this Kubernetes automation task and describe scenarios where it would be valuable:

Task Name: %s
Task Documentation: %s
Task Tags: %s

Provide descriptions and examples for three types of scenarios where this automation would be helpful:
1. Datadog alerts that might trigger
2. Support tickets that might be filed
3. Slack conversations in operational channels

Format your response as a JSON object with these exact keys:
- "atc_overview": A technical overview (1-2 sentences) that demonstrates deep SRE expertise. Reference specific monitoring metrics, infrastructure components, failure modes, and operational impact. Use precise technical terminology and explain how this automation fits into a broader observability and incident response strategy.
- "alert_description": A description of relevant Datadog alert types
- "alert_example": A specific example alert message
- "ticket_description": A description of relevant support ticket types
- "ticket_example": A specific example ticket title and description
- "chat_description": A description of relevant Slack conversations
- "chat_example": A specific example chat message thread

Example format:
{
    "atc_overview": "This automation addresses a critical observability gap in GCP's load balancer infrastructure by proactively monitoring backend service health metrics (loadBalancing.googleapis.com/https/backend_latencies) and ingress controller events. It's particularly valuable during rolling deployments or network policy changes when backend health check failures can cascade into customer-facing 5xx errors, providing early detection before traditional endpoint monitoring would trigger.",
    "alert_description": "High latency alerts from GCE load balancers, particularly focusing on 5xx errors and backend health check failures",
    "alert_example": "[ALERT] High rate of 502 Bad Gateway responses (>5%%) detected for ingress frontend-prod-ingress in last 5 minutes",
    "ticket_description": "Urgent tickets about service unavailability or intermittent errors in production services exposed via GCE ingress",
    "ticket_example": "URGENT: Production API returning 502 errors - Multiple customers affected\nCustomers reporting intermittent API failures. Initial investigation shows potential ingress health check issues.",
    "chat_description": "DevOps channel discussions about service health and customer-impacting issues",
    "chat_example": "@sre-team seeing elevated error rates on the checkout API. Health checks failing for multiple backends. Anyone available to investigate?"
}`

const identifySystemPrompt = `You are an expert in Robot Framework and Kubernetes automation.
Your task is to analyze Robot Framework test code and identify potential issues that would be raised,
focusing on set_issue_title and set_issue_details patterns.`

const identifyIssuesPromptTemplate = `Analyze this Robot Framework test code and identify the issues that would be raised.
Focus on lines containing 'set_issue_title' and 'set_issue_details' to understand what issues this automation detects.

Task Name: %s
Task Documentation: %s

Source Code:
` + "```robotframework\n%s\n```" + `

Format your response as a JSON object with an "issues" key containing an array of objects with these exact keys:
- "title": The pattern used in set_issue_title
- "details": The pattern used in set_issue_details
- "trigger_condition": A clear description of when this issue would be raised
- "severity": The severity level (extract from set_severity_level if present, otherwise "unknown")

Example format:
{
    "issues": [
        {
            "title": "Unhealthy GCE ingress backend detected in namespace",
            "details": "The following backend services are reporting unhealthy status",
            "trigger_condition": "When the health check response indicates an unhealthy backend service",
            "severity": "3"
        }
    ]
}`

const enrichSystemPrompt = `You are a technical writer specializing in Kubernetes and cloud infrastructure. Your task is to analyze issues and write clear, informative paragraphs about them.`

const enrichIssuePromptTemplate = `Analyze this Kubernetes automation issue and provide detailed insights.

Issue Title: %s
Issue Details: %s
Issue Trigger Condition: %s
Issue Severity: %s

Format your response as a JSON object with these exact keys:
1. "problem_statement": A clear 1-2 sentence explanation of when the issue may occur
2. "impact": A 1-2 sentence description of why this issue matters and its potential impact
3. "resolution": A 1-2 sentence summary of how to resolve or prevent this issue if it does occur
4. "revised_title": A revised title that frames this as an issue that may possibly occur in the future, removing any of the template tags ("${...}")
Example format:
{
    "problem_statement": "The unhealthy GCE ingress backend issue could occur when the Google Cloud Load Balancer cannot successfully communicate with your Kubernetes service endpoints.",
    "impact": "This can lead to service disruption for end users, as traffic may not be properly routed to healthy backend pods. In production environments, this directly affects application availability and user experience.",
    "resolution": "To resolve this, verify that the GCP health check configuration matches your Kubernetes service's readiness probe settings, and ensure network policies allow health check requests. Regular monitoring using this automation task can help catch potential issues early.",
    "revised_title": "Unhealthy GCE ingress backend may be detected in namespace"
}`

const introSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["hook", "context", "value_proposition"],
  "properties": {
    "hook": { "type": "string" },
    "context": { "type": "string" },
    "value_proposition": { "type": "string" }
  }
}`

const scenarioSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["atc_overview", "alert_description", "alert_example", "ticket_description", "ticket_example", "chat_description", "chat_example"],
  "properties": {
    "atc_overview": { "type": "string" },
    "alert_description": { "type": "string" },
    "alert_example": { "type": "string" },
    "ticket_description": { "type": "string" },
    "ticket_example": { "type": "string" },
    "chat_description": { "type": "string" },
    "chat_example": { "type": "string" }
  }
}`

const issueListSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["issues"],
  "properties": {
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "trigger_condition"],
        "properties": {
          "title": { "type": "string" },
          "details": { "type": "string" },
          "trigger_condition": { "type": "string" },
          "severity": { "type": "string" }
        }
      }
    }
  }
}`

const enrichedIssueSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["problem_statement", "impact", "resolution", "revised_title"],
  "properties": {
    "problem_statement": { "type": "string" },
    "impact": { "type": "string" },
    "resolution": { "type": "string" },
    "revised_title": { "type": "string" }
  }
}`

var (
	introSchemaLoader         = gojsonschema.NewStringLoader(introSchemaJSON)
	scenarioSchemaLoader      = gojsonschema.NewStringLoader(scenarioSchemaJSON)
	issueListSchemaLoader     = gojsonschema.NewStringLoader(issueListSchemaJSON)
	enrichedIssueSchemaLoader = gojsonschema.NewStringLoader(enrichedIssueSchemaJSON)
)

type introResponse struct {
	Hook             string `json:"hook"`
	Context          string `json:"context"`
	ValueProposition string `json:"value_proposition"`
}

type scenarioResponse struct {
	Overview          string `json:"atc_overview"`
	AlertDescription  string `json:"alert_description"`
	AlertExample      string `json:"alert_example"`
	TicketDescription string `json:"ticket_description"`
	TicketExample     string `json:"ticket_example"`
	ChatDescription   string `json:"chat_description"`
	ChatExample       string `json:"chat_example"`
}

type rawIssue struct {
	Title            string `json:"title"`
	Details          string `json:"details"`
	TriggerCondition string `json:"trigger_condition"`
	Severity         string `json:"severity"`
}

type issueListResponse struct {
	Issues []rawIssue `json:"issues"`
}

type enrichedIssue struct {
	ProblemStatement string `json:"problem_statement"`
	Impact           string `json:"impact"`
	Resolution       string `json:"resolution"`
	RevisedTitle     string `json:"revised_title"`
	TriggerCondition string `json:"-"`
}

// GeneratePosts runs the pipeline for every task and returns the paths of
// the written posts. A failed section is skipped with a warning; a failed
// save or a cancelled context aborts the run, returning the paths written
// so far alongside the error.
func (s *BlogService) GeneratePosts(ctx context.Context, tasks []collection.Task, outputDir string) ([]string, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no AI provider configured")
	}

	paths := []string{}
	runTokens := 0

	for _, task := range tasks {
		if s.cfg.MaxTokensPerRun > 0 && runTokens >= s.cfg.MaxTokensPerRun {
			return paths, fmt.Errorf("AI token budget for this run reached (%d/%d)", runTokens, s.cfg.MaxTokensPerRun)
		}

		path, tokens, err := s.generateAndSave(ctx, task, outputDir)
		runTokens += tokens
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if s.audit != nil {
		_ = s.audit.Log(domain.ActionRunCompleted, "generator", map[string]interface{}{
			"output_dir": outputDir,
			"posts":      len(paths),
			"tokens":     runTokens,
		})
	}
	if s.usage != nil {
		if err := s.usage.RecordRun(len(paths)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record usage: %v\n", err)
		}
	}

	return paths, nil
}

func (s *BlogService) generateAndSave(ctx context.Context, task collection.Task, outputDir string) (string, int, error) {
	p := post.New(task, time.Now())
	tokens := 0

	fsm, err := pipeline.NewPostStateMachine(pipeline.StatePending, p.Slug, func(string, string) bool {
		return s.provider != nil
	})
	if err != nil {
		return "", 0, err
	}

	s.publish(events.PostStarted(task.Name, p.Slug))

	if err := fsm.Transition(pipeline.EventAdvance); err != nil {
		return "", 0, err
	}

	writers := []func(context.Context, *post.Post) (int, error){
		s.writeIntro,
		s.writeScenarios,
		s.writeIssues,
	}

	for _, write := range writers {
		stage := fsm.Current()

		used, err := write(ctx, p)
		tokens += used
		if err != nil {
			if ctx.Err() != nil {
				s.failPost(fsm, p.Slug, err)
				return "", tokens, err
			}
			fmt.Fprintf(os.Stderr, "Warning: skipping %s section for %s: %v\n", stage, p.Slug, err)
			if s.audit != nil {
				_ = s.audit.Log(domain.ActionSectionFailed, "generator", map[string]interface{}{
					"slug":    p.Slug,
					"section": stage,
					"reason":  err.Error(),
				})
			}
		} else {
			s.publish(events.PostSection(p.Slug, stage))
		}

		if err := fsm.Transition(pipeline.EventAdvance); err != nil {
			return "", tokens, err
		}
	}

	content := p.Render()
	if err := fsm.Transition(pipeline.EventAdvance); err != nil {
		return "", tokens, err
	}

	path, err := s.repo.WritePost(outputDir, p.Filename(), content)
	if err != nil {
		s.failPost(fsm, p.Slug, err)
		return "", tokens, fmt.Errorf("failed to write post for %s: %w", p.Slug, err)
	}
	if err := fsm.Transition(pipeline.EventAdvance); err != nil {
		return "", tokens, err
	}

	s.publish(events.PostCompleted(p.Slug, path))
	if s.audit != nil {
		_ = s.audit.Log(domain.ActionGenerate, "generator", map[string]interface{}{
			"slug": p.Slug,
			"task": task.Name,
			"path": path,
		})
	}

	return path, tokens, nil
}

func (s *BlogService) failPost(fsm *pipeline.PostStateMachine, slug string, cause error) {
	_ = fsm.Transition(pipeline.EventFail)
	s.publish(events.PostFailed(slug, cause.Error()))
}

func (s *BlogService) publish(e *events.BaseEvent) {
	if s.publisher != nil {
		_ = s.publisher.Publish(e)
	}
}

// complete sends one JSON completion request and records its token usage.
func (s *BlogService) complete(ctx context.Context, system, prompt string) (*ai.CompletionResponse, int, error) {
	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:       prompt,
		System:       system,
		Temperature:  s.cfg.Temperature,
		JSONResponse: true,
	})
	if err != nil {
		return nil, 0, err
	}

	tokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	if s.usage != nil {
		if err := s.usage.RecordTokenUsage(resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record token usage: %v\n", err)
		}
	}

	return resp, tokens, nil
}

func (s *BlogService) writeIntro(ctx context.Context, p *post.Post) (int, error) {
	task := p.Task
	prompt := fmt.Sprintf(introPromptTemplate, task.Name, task.Documentation, strings.Join(task.Tags, ", "))

	resp, tokens, err := s.complete(ctx, introSystemPrompt, prompt)
	if err != nil {
		return tokens, err
	}

	var intro introResponse
	if err := decodeSectionJSON(introSchemaLoader, resp.Text, &intro); err != nil {
		return tokens, err
	}
	if intro.Hook == "" || intro.Context == "" || intro.ValueProposition == "" {
		return tokens, fmt.Errorf("introduction response is missing required keys")
	}

	p.Append(post.Section{
		Kind:   post.KindIntro,
		Header: "Overview",
		Body:   intro.Hook + " " + intro.Context + " " + intro.ValueProposition,
	})
	return tokens, nil
}

func (s *BlogService) writeScenarios(ctx context.Context, p *post.Post) (int, error) {
	task := p.Task
	prompt := fmt.Sprintf(scenarioPromptTemplate, task.Name, task.Documentation, strings.Join(task.Tags, ", "))

	resp, tokens, err := s.complete(ctx, scenarioSystemPrompt, prompt)
	if err != nil {
		return tokens, err
	}

	var sc scenarioResponse
	if err := decodeSectionJSON(scenarioSchemaLoader, resp.Text, &sc); err != nil {
		return tokens, err
	}
	if sc.Overview == "" || sc.AlertDescription == "" || sc.AlertExample == "" ||
		sc.TicketDescription == "" || sc.TicketExample == "" ||
		sc.ChatDescription == "" || sc.ChatExample == "" {
		return tokens, fmt.Errorf("scenario response is missing required keys")
	}

	p.Append(post.Section{Kind: post.KindIssue, Header: "Operational Context", Body: sc.Overview})

	table := []string{
		"| Scenario | Description | Example |",
		"|----------|-------------|---------|",
		fmt.Sprintf("| 🔔 Alerts | %s | %s |", sc.AlertDescription, sc.AlertExample),
		fmt.Sprintf("| 🎫 Tickets | %s | %s |", sc.TicketDescription, sc.TicketExample),
		fmt.Sprintf("| 💬 Chat | %s | %s |", sc.ChatDescription, sc.ChatExample),
	}
	p.Append(post.Section{Kind: post.KindIssue, Header: "Common Scenarios", Body: strings.Join(table, "\n")})
	return tokens, nil
}

func (s *BlogService) writeIssues(ctx context.Context, p *post.Post) (int, error) {
	issues, tokens, err := s.identifyIssues(ctx, p.Task)
	if err != nil {
		return tokens, err
	}
	if len(issues) == 0 {
		return tokens, nil
	}

	var enriched []enrichedIssue
	for _, issue := range issues {
		e, used, err := s.enrichIssue(ctx, issue)
		tokens += used
		if err != nil {
			if ctx.Err() != nil {
				return tokens, err
			}
			fmt.Fprintf(os.Stderr, "Warning: failed to enrich issue %q: %v\n", issue.Title, err)
			continue
		}
		enriched = append(enriched, *e)
	}
	if len(enriched) == 0 {
		return tokens, nil
	}

	p.Append(post.Section{Kind: post.KindIssue, Header: "Issues Summary", Body: issuesTable(enriched)})
	for _, e := range enriched {
		p.Append(post.Section{Kind: post.KindIssue, Header: "Problem: " + e.RevisedTitle, Body: e.ProblemStatement})
		p.Append(post.Section{Kind: post.KindIssue, Header: "Impact", Body: e.Impact})
		p.Append(post.Section{Kind: post.KindIssue, Header: "Resolution", Body: e.Resolution})
	}
	return tokens, nil
}

func (s *BlogService) identifyIssues(ctx context.Context, task collection.Task) ([]rawIssue, int, error) {
	prompt := fmt.Sprintf(identifyIssuesPromptTemplate, task.Name, task.Documentation, task.SourceCode)

	resp, tokens, err := s.complete(ctx, identifySystemPrompt, prompt)
	if err != nil {
		return nil, tokens, err
	}

	var list issueListResponse
	if err := decodeSectionJSON(issueListSchemaLoader, resp.Text, &list); err != nil {
		return nil, tokens, err
	}

	issues := make([]rawIssue, 0, len(list.Issues))
	for _, issue := range list.Issues {
		if issue.Title == "" {
			continue
		}
		if issue.Severity == "" {
			issue.Severity = "unknown"
		}
		issues = append(issues, issue)
	}
	return issues, tokens, nil
}

func (s *BlogService) enrichIssue(ctx context.Context, issue rawIssue) (*enrichedIssue, int, error) {
	prompt := fmt.Sprintf(enrichIssuePromptTemplate, issue.Title, issue.Details, issue.TriggerCondition, issue.Severity)

	resp, tokens, err := s.complete(ctx, enrichSystemPrompt, prompt)
	if err != nil {
		return nil, tokens, err
	}

	var e enrichedIssue
	if err := decodeSectionJSON(enrichedIssueSchemaLoader, resp.Text, &e); err != nil {
		return nil, tokens, err
	}
	if e.ProblemStatement == "" || e.Impact == "" || e.Resolution == "" {
		return nil, tokens, fmt.Errorf("enrichment response is missing required keys")
	}
	if e.RevisedTitle == "" {
		e.RevisedTitle = issue.Title
	}
	e.TriggerCondition = issue.TriggerCondition
	return &e, tokens, nil
}

// issuesTable builds the summary table. Cell text is pipe-escaped so titles
// cannot break the table layout.
func issuesTable(issues []enrichedIssue) string {
	rows := []string{
		"| Issue | Trigger Condition |",
		"|-------|-------------------|",
	}
	for _, issue := range issues {
		title := strings.ReplaceAll(issue.RevisedTitle, "|", "\\|")
		trigger := strings.ReplaceAll(issue.TriggerCondition, "|", "\\|")
		rows = append(rows, fmt.Sprintf("| %s | %s |", title, trigger))
	}
	return strings.Join(rows, "\n")
}

// decodeSectionJSON extracts the JSON payload from a completion, reports any
// schema mismatch when CCBLOGGER_AI_DEBUG is set, and decodes it. Schema
// validation is advisory; callers check the fields they require.
func decodeSectionJSON(schema gojsonschema.JSONLoader, raw string, out interface{}) error {
	clean := extractJSONPayload(raw)
	if os.Getenv("CCBLOGGER_AI_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "AI raw response: %s\n", raw)
		fmt.Fprintf(os.Stderr, "AI extracted JSON: %s\n", clean)
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(clean))
	if os.Getenv("CCBLOGGER_AI_DEBUG") != "" {
		if err != nil {
			fmt.Fprintf(os.Stderr, "AI JSON schema validation error: %v\n", err)
		} else if !result.Valid() {
			for _, desc := range result.Errors() {
				fmt.Fprintf(os.Stderr, "AI JSON schema issue: %s\n", desc)
			}
		}
	}

	if err := json.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("failed to parse AI response: %w", err)
	}
	return nil
}

func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return clean
	}

	// If the response includes extra text, attempt to extract the first JSON array/object.
	startArray := strings.Index(clean, "[")
	startObject := strings.Index(clean, "{")
	start := -1
	if startArray == -1 {
		start = startObject
	} else if startObject == -1 || startArray < startObject {
		start = startArray
	} else {
		start = startObject
	}
	if start == -1 {
		return clean
	}

	endArray := strings.LastIndex(clean, "]")
	endObject := strings.LastIndex(clean, "}")
	end := -1
	if endArray == -1 {
		end = endObject
	} else if endObject == -1 || endArray > endObject {
		end = endArray
	} else {
		end = endObject
	}
	if end == -1 || end <= start {
		return clean
	}

	return strings.TrimSpace(clean[start : end+1])
}
