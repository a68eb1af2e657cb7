// Package main provides the CLI entrypoint for ghuls.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/ghuls/internal/colors"
	"github.com/verte-zerg/ghuls/internal/config"
	"github.com/verte-zerg/ghuls/internal/discovery"
	"github.com/verte-zerg/ghuls/internal/github"
	"github.com/verte-zerg/ghuls/internal/model"
	"github.com/verte-zerg/ghuls/internal/progress"
	"github.com/verte-zerg/ghuls/internal/stats"
)

const defaultTop = 0

var (
	configPath string

	reportGet         string
	reportRandom      bool
	reportToken       string
	reportUser        string
	reportPass        string
	reportDebug       bool
	reportVerbose     bool
	reportNoOrgs      bool
	reportNoCalendar  bool
	reportNoIssues    bool
	reportMaxAttempts int
	reportTop         int
	reportColor       bool
	reportAPIURL      string
	reportGraphQLURL  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ghuls",
		Short:         "GitHub user language and repository statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runReportCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.Flags().StringVarP(&reportGet, "get", "g", "", "user or organization to analyze")
	rootCmd.Flags().BoolVarP(&reportRandom, "random", "r", false, "analyze a random user")
	rootCmd.Flags().StringVarP(&reportToken, "token", "t", "", "API token (preferred over user/pass)")
	rootCmd.Flags().StringVarP(&reportUser, "user", "u", "", "username to log in as")
	rootCmd.Flags().StringVarP(&reportPass, "pass", "p", "", "password or token for --user")
	rootCmd.Flags().BoolVarP(&reportDebug, "debug", "d", false, "show a progress bar while fetching")
	rootCmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&reportNoOrgs, "no-orgs", false, "skip organization languages")
	rootCmd.Flags().BoolVar(&reportNoCalendar, "no-calendar", false, "skip the contribution calendar")
	rootCmd.Flags().BoolVar(&reportNoIssues, "no-issues", false, "skip issue and pull request counts")
	rootCmd.Flags().IntVar(&reportMaxAttempts, "max-attempts", discovery.DefaultMaxAttempts, "random user lookup attempts")
	rootCmd.Flags().IntVar(&reportTop, "top", defaultTop, "languages per table, the rest is grouped as Other (0 = all)")
	rootCmd.Flags().BoolVar(&reportColor, "color", false, "force colored output")
	rootCmd.Flags().StringVar(&reportAPIURL, "api-url", "", "REST API base URL (GitHub Enterprise)")
	rootCmd.Flags().StringVar(&reportGraphQLURL, "graphql-url", "", "GraphQL endpoint (GitHub Enterprise)")
	rootCmd.MarkFlagsMutuallyExclusive("get", "random")
	rootCmd.MarkFlagsOneRequired("get", "random")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newColorsCmd())

	return rootCmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := newLogger(cmd.ErrOrStderr(), reportVerbose).WithField("cmd", "ghuls")

	if err := config.LoadEnv(".env", config.DefaultEnvPath()); err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "no-orgs", &reportNoOrgs, negate(fileCfg.Report.Orgs))
	applyBoolConfig(cmd, "no-calendar", &reportNoCalendar, negate(fileCfg.Report.Calendar))
	applyBoolConfig(cmd, "no-issues", &reportNoIssues, negate(fileCfg.Report.Issues))
	applyIntConfig(cmd, "max-attempts", &reportMaxAttempts, fileCfg.Discovery.MaxAttempts)
	applyIntConfig(cmd, "top", &reportTop, fileCfg.Report.Top)

	cfg := model.ReportConfig{
		Subject:     strings.TrimSpace(reportGet),
		Orgs:        !reportNoOrgs,
		Calendar:    !reportNoCalendar,
		Issues:      !reportNoIssues,
		MaxAttempts: reportMaxAttempts,
		MaxID:       discovery.DefaultMaxID,
	}
	if fileCfg.Discovery.MaxID != nil {
		cfg.MaxID = *fileCfg.Discovery.MaxID
	}
	if err := validateConfig(cfg, reportTop); err != nil {
		return err
	}

	resolver, err := loadResolver(fileCfg.Colors)
	if err != nil {
		return err
	}
	creds, err := config.ResolveCredentials(ctx, config.Credentials{
		Token: reportToken,
		User:  reportUser,
		Pass:  reportPass,
	}, fileCfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}
	client, err := github.New(github.Options{
		Token:      creds.Token,
		User:       creds.User,
		Pass:       creds.Pass,
		BaseURL:    reportAPIURL,
		GraphQLURL: reportGraphQLURL,
		Log:        log.WithField("type", "github"),
	})
	if err != nil {
		return err
	}
	if creds.Source == config.SourceNone {
		log.Warn("no credentials configured; using anonymous API access")
	} else {
		login, err := client.Authenticate(ctx)
		if err != nil {
			return fmt.Errorf("check your username/password or token: %w", err)
		}
		log.WithField("source", creds.Source).Debugf("authenticated as %s", login)
	}

	var tracker stats.Tracker
	var bar *progress.Bar
	if reportDebug {
		bar = progress.Start(ctx, cmd.ErrOrStderr(), stats.ReportSteps)
		tracker = bar
	}
	report, err := stats.BuildReport(ctx, client, cfg, stats.Options{
		Log:     log,
		Tracker: tracker,
	})
	if bar != nil {
		if stopErr := bar.Stop(); stopErr != nil {
			log.Debugf("progress bar: %v", stopErr)
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, stats.ErrSubjectNotFound):
			return fmt.Errorf("could not find anyone named %q: %w", cfg.Subject, err)
		case errors.Is(err, discovery.ErrDiscoveryExhausted):
			return fmt.Errorf("could not find a random user, try again: %w", err)
		}
		return err
	}

	return stats.RenderReport(cmd.OutOrStdout(), report, stats.RenderOptions{
		Resolver:     resolver,
		ForceColor:   reportColor,
		TopLanguages: reportTop,
	})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newColorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors [language...]",
		Short: "List language colors or resolve the given languages",
		RunE:  runColorsCmd,
	}
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored output")
	return cmd
}

func runColorsCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	table, err := loadTable(fileCfg.Colors)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = table.Names()
	}
	if err := stats.RenderColors(cmd.OutOrStdout(), colors.NewResolver(table), names, stats.RenderOptions{ForceColor: reportColor}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func loadResolver(cfg config.ColorsConfig) (*colors.Resolver, error) {
	table, err := loadTable(cfg)
	if err != nil {
		return nil, err
	}
	return colors.NewResolver(table), nil
}

func loadTable(cfg config.ColorsConfig) (colors.Table, error) {
	table, err := colors.DefaultTable()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in colors: %w", err)
	}
	if cfg.File != nil && *cfg.File != "" {
		f, err := os.Open(*cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open color file: %w", err)
		}
		defer f.Close()
		if table, err = colors.LoadTable(f); err != nil {
			return nil, fmt.Errorf("failed to load color file %s: %w", *cfg.File, err)
		}
	}
	if len(cfg.Overrides) > 0 {
		if table, err = table.With(cfg.Overrides); err != nil {
			return nil, fmt.Errorf("invalid color override: %w", err)
		}
	}
	return table, nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func negate(value *bool) *bool {
	if value == nil {
		return nil
	}
	v := !*value
	return &v
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# ghuls configuration
# Uncomment a value to enable it. CLI flags override config values.
[auth]
# token = ""              # API token; GHULS_TOKEN or GITHUB_TOKEN also work
# user = ""               # Username for basic authentication
# pass = ""               # Password or token for basic authentication
# secret = ""             # AWS Secrets Manager secret with {"github_token": "..."}
# secret-region = ""      # AWS region of the secret

[report]
# orgs = true             # Include organization languages
# calendar = true         # Include the contribution calendar
# issues = true           # Include issue and pull request counts
# top = %d                 # Languages per table (0 = all)

[discovery]
# max-attempts = %d       # Random user lookup attempts
# max-id = %d      # Largest account id probed

[colors]
# file = ""               # JSON object of language name to color
# [colors.overrides]
# Go = "#00ADD8"
`,
		defaultTop,
		discovery.DefaultMaxAttempts,
		discovery.DefaultMaxID,
	)
}

func validateConfig(cfg model.ReportConfig, top int) error {
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("--max-attempts must be >= 1")
	}
	if cfg.MaxID < 1 {
		return fmt.Errorf("discovery max-id must be >= 1")
	}
	if top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	return nil
}
