package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/gotrs-smoke/internal/browser"
	"github.com/gotrs-io/gotrs-smoke/internal/config"
	"github.com/gotrs-io/gotrs-smoke/internal/scenario"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configFileFlag string

var rootCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Page smoke scenarios - browser setup and scenario tooling",
	Long: `Smoke scenario tooling

Scenarios themselves run under go test (go test ./tests/e2e/...).
This CLI installs browsers, lists the built-in catalog and validates
scenario files.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var installCmd = &cobra.Command{
	Use:   "install [browser...]",
	Short: "Install the Playwright driver and browsers",
	Long: `Install downloads the Playwright driver and the named browsers.
Without arguments the browser from the configuration is installed.`,
	RunE: runInstall,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in scenarios and those from the configured scenarios file",
	RunE:  runList,
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate scenario files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE:  runConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smoke %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "Path to a YAML config file (default ./smoke.yaml if present)")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func runInstall(cmd *cobra.Command, args []string) error {
	browsers := args
	if len(browsers) == 0 {
		cfg, err := config.Load(configFileFlag)
		if err != nil {
			return err
		}
		browsers = []string{cfg.Browser}
	}

	fmt.Fprintln(cmd.OutOrStdout(), color.CyanString("Installing Playwright with %v", browsers))
	if err := browser.Install(browsers...); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Browsers installed"))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFileFlag)
	if err != nil {
		return err
	}

	scenarios := scenario.Catalog()
	if cfg.ScenariosFile != "" {
		extra, err := scenario.LoadFile(cfg.ScenariosFile)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, extra...)
	}

	return printScenarios(cmd.OutOrStdout(), cfg.BaseURL, scenarios)
}

func printScenarios(out io.Writer, baseURL string, scenarios []scenario.Scenario) error {
	fmt.Fprintln(out, color.CyanString("Target: %s", baseURL))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tURL\tTITLE\tSTEPS\tOUTCOME")
	for _, s := range scenarios {
		outcome := color.GreenString("pass")
		if s.ExpectFailure {
			outcome = color.YellowString("fail (intentional)")
		}
		fmt.Fprintf(w, "%s\t%s\t/%s/\t%d\t%s\n", s.Name, s.URL, s.Title, len(s.Steps), outcome)
	}
	return w.Flush()
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		scenarios, err := scenario.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintln(out, color.RedString("✗ %s", path))
			var verr *scenario.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Fprintln(out, color.YellowString("    %s", p))
				}
			} else {
				fmt.Fprintln(out, color.YellowString("    %v", err))
			}
			continue
		}
		fmt.Fprintln(out, color.GreenString("✓ %s (%d scenarios)", path, len(scenarios)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFileFlag)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(configView(cfg)); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func configView(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"base_url":         cfg.BaseURL,
		"browser":          cfg.Browser,
		"headless":         cfg.Headless,
		"slow_mo":          cfg.SlowMo,
		"timeout":          cfg.Timeout.String(),
		"screenshots":      cfg.Screenshots,
		"artifacts_dir":    cfg.ArtifactsDir,
		"install_browsers": cfg.InstallBrowsers,
		"scenarios_file":   cfg.ScenariosFile,
		"viewport": map[string]int{
			"width":  cfg.Viewport.Width,
			"height": cfg.Viewport.Height,
		},
	}
}
