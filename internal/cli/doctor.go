package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/autumnbrown/kimi-coder-mcp/internal/config"
	"github.com/autumnbrown/kimi-coder-mcp/internal/kimi"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the Kimi CLI and configuration are usable",
	Long: `Check the environment this server depends on: configuration loads and
validates, the Kimi CLI is installed and reports a version, an API key
is available, and the workspace directory exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		ok := true
		pass := color.New(color.FgGreen).SprintFunc()
		fail := color.New(color.FgRed).SprintFunc()
		warn := color.New(color.FgYellow).SprintFunc()

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("%s configuration: %v\n", fail("✗"), err)
			return fmt.Errorf("configuration is not usable")
		}
		fmt.Printf("%s configuration loaded (mode=%s, timeout=%ds)\n", pass("✓"), cfg.Mode, cfg.Timeout)

		runner, err := kimi.NewRunner(cfg.Mode, kimi.Options{Command: cfg.KimiCmd, Args: cfg.KimiArgs})
		if err != nil {
			fmt.Printf("%s runner: %v\n", fail("✗"), err)
			return err
		}

		if err := runner.Validate(); err != nil {
			fmt.Printf("%s kimi CLI: %v\n", fail("✗"), err)
			ok = false
		} else {
			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " querying kimi version..."
			sp.Start()
			version, err := runner.Version()
			sp.Stop()
			if err != nil {
				fmt.Printf("%s kimi CLI found but version check failed: %v\n", warn("!"), err)
			} else {
				fmt.Printf("%s kimi CLI %s\n", pass("✓"), version)
			}
		}

		if cfg.APIKey == "" {
			fmt.Printf("%s no API key configured (set MOONSHOT_API_KEY or KIMI_API_KEY); kimi must already be authenticated\n", warn("!"))
		} else {
			fmt.Printf("%s API key configured\n", pass("✓"))
		}

		if info, err := os.Stat(cfg.Workspace); err != nil || !info.IsDir() {
			fmt.Printf("%s workspace %q is not a directory\n", fail("✗"), cfg.Workspace)
			ok = false
		} else {
			fmt.Printf("%s workspace %s\n", pass("✓"), cfg.Workspace)
			reportGitState(cfg.Workspace, pass, warn)
		}

		if !ok {
			return fmt.Errorf("environment is not ready; fix the failed checks above")
		}
		return nil
	},
}

// reportGitState prints the workspace's git branch when it is a
// repository. Purely informational; a non-repo workspace is fine.
func reportGitState(dir string, pass, warn func(a ...interface{}) string) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		fmt.Printf("%s workspace is not a git repository; changes Kimi makes will not be diffable via git\n", warn("!"))
		return
	}
	head, err := repo.Head()
	if err != nil {
		fmt.Printf("%s workspace is a git repository (no commits yet)\n", pass("✓"))
		return
	}
	fmt.Printf("%s workspace is a git repository on %s\n", pass("✓"), head.Name().Short())
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
