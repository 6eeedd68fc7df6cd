package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/config"
	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	dashboardRepoURL   string
	dashboardOutputDir string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard of cached tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("CCBLOGGER_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardRepoURL, "repo-url", DefaultRepoURL, "CodeCollection repository whose cached tasks are shown")
	dashboardCmd.Flags().StringVar(&dashboardOutputDir, "output-dir", "blog_posts", "Directory checked for generated posts")
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

type model struct {
	table    table.Model
	repoURL  string
	provider string
	runs     int
	posts    int
	tokens   int
	err      error
}

func initialModel() model {
	root, err := storage.DefaultRoot()
	if err != nil {
		return model{err: err}
	}
	repo := storage.NewFilesystemStore(root)

	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.Default()
	}

	// Load Data
	key := application.CacheKey(dashboardRepoURL)
	tasks := []collection.Task{}
	if repo.HasCachedTasks(key) {
		cached, err := repo.LoadCachedTasks(key)
		if err != nil {
			return model{err: err}
		}
		tasks = cached
	}

	stats, _ := repo.LoadUsage()
	runs, posts, tokens := 0, 0, 0
	if stats != nil {
		runs = stats.TotalRuns
		posts = stats.PostsGenerated
		tokens = stats.InputTokens + stats.OutputTokens
	}

	// Setup Table
	columns := []table.Column{
		{Title: "Post", Width: 6},
		{Title: "Bundle", Width: 22},
		{Title: "Task", Width: 44},
		{Title: "Tags", Width: 24},
	}

	rows := []table.Row{}
	for _, t := range tasks {
		written := "-"
		if _, err := os.Stat(filepath.Join(dashboardOutputDir, t.Slug()+".md")); err == nil {
			written = "yes"
		}
		rows = append(rows, table.Row{written, t.Bundle, t.Name, strings.Join(t.Tags, ", ")})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	return model{
		table:    t,
		repoURL:  dashboardRepoURL,
		provider: cfg.Provider + ":" + cfg.Model,
		runs:     runs,
		posts:    posts,
		tokens:   tokens,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("ccblogger  %s", m.repoURL))
	statsLine := fmt.Sprintf("Provider: %s   Runs: %d   Posts: %d   Tokens: %d",
		m.provider, m.runs, m.posts, m.tokens)

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			statsLine,
			"\nCached Tasks:",
			m.table.View(),
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
