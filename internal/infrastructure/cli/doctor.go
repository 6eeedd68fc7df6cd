package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	aifactory "github.com/runwhen-contrib/ccblogger/internal/infrastructure/ai"
	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var doctorOutputDir string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of the ccblogger environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running ccblogger doctor...")

		root, err := appRoot()
		if err != nil {
			return err
		}
		workspace := wiring.NewWorkspace(root)
		repo := workspace.Repo

		hasIssues := false
		check := func(name string, fn func() error) {
			fmt.Printf("Checking %s... ", name)
			if err := fn(); err != nil {
				fmt.Printf("FAIL\n  Error: %v\n", err)
				hasIssues = true
			} else {
				fmt.Printf("PASS\n")
			}
		}

		check("Git Binary", func() error {
			if _, err := exec.LookPath("git"); err != nil {
				return fmt.Errorf("git not found on PATH")
			}
			return nil
		})

		check("API Key", func() error {
			switch workspace.Config.Provider {
			case "anthropic":
				if os.Getenv("ANTHROPIC_API_KEY") == "" {
					return fmt.Errorf("ANTHROPIC_API_KEY is not set")
				}
			case "gemini":
				if os.Getenv("GEMINI_API_KEY") == "" {
					return fmt.Errorf("GEMINI_API_KEY is not set")
				}
			case "ollama", "mock":
				// No key needed.
			default:
				if os.Getenv("OPENAI_API_KEY") == "" {
					return fmt.Errorf("OPENAI_API_KEY is not set")
				}
			}
			return nil
		})

		// A missing GITHUB_PAT is a warning, not a failure. Public
		// repositories clone without it.
		fmt.Printf("Checking GitHub Token... ")
		if os.Getenv("GITHUB_PAT") == "" {
			fmt.Printf("WARN\n  GITHUB_PAT is not set; private repositories will not clone and API rate limits apply\n")
		} else {
			fmt.Printf("PASS\n")
		}

		check("App Directory", func() error {
			if err := repo.Initialize(); err != nil {
				return err
			}
			probe := filepath.Join(repo.AppDir(), ".doctor-probe")
			if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
				return err
			}
			return os.Remove(probe)
		})

		check("Output Directory", func() error {
			_, statErr := os.Stat(doctorOutputDir)
			existed := statErr == nil
			if err := os.MkdirAll(doctorOutputDir, 0750); err != nil {
				return err
			}
			probe := filepath.Join(doctorOutputDir, ".doctor-probe")
			if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
				return err
			}
			if err := os.Remove(probe); err != nil {
				return err
			}
			if !existed {
				return os.Remove(doctorOutputDir)
			}
			return nil
		})

		check("AI Provider", func() error {
			provider, err := aifactory.GetDefaultProvider(workspace.Config.Provider, workspace.Config.Model)
			if err != nil {
				return err
			}
			fmt.Printf("(%s) ", provider.ID())
			return nil
		})

		check("Audit Integrity", func() error {
			violations, err := workspace.Audit.VerifyIntegrity()
			if err != nil {
				return err
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d integrity violations found (run 'ccblogger history --verify')", len(violations))
			}
			return nil
		})

		if hasIssues {
			fmt.Println("\nissues found! Please fix them before continuing.")
			return fmt.Errorf("doctor found issues")
		}
		fmt.Println("\nEverything looks good!")
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorOutputDir, "output-dir", "blog_posts", "Output directory to probe for writability")
	RootCmd.AddCommand(doctorCmd)
}
