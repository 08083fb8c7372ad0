package main

import (
	"fmt"
	"os"
	"time"

	"filelens/internal/analysis"
	"filelens/internal/config"
	"filelens/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dirFlag    string
	demoFlag   bool
	modelFlag  string

	// Resolved once per invocation by PersistentPreRunE
	cfg       *config.Config
	startedAt time.Time

	// Logger for the headless subcommands
	logger *zap.Logger
)

// rootCmd launches the interactive explorer
var rootCmd = &cobra.Command{
	Use:   "filelens",
	Short: "filelens - browse files and ask Gemini about them",
	Long: `filelens is a terminal file explorer with an AI analysis panel.

Browse the built-in demo tree or a local directory, select a file to view
its content, and ask Gemini a question about it.

Run without arguments to start the interactive explorer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		cfg = loaded

		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		startedAt = time.Now()
		logging.SetAuditSession(uuid.NewString())
		logging.Audit(logging.CategoryBoot).SessionStart(cmd.Name())
		logging.Boot("filelens starting: command=%s model=%s", cmd.Name(), cfg.LLM.Model)

		// The interactive explorer owns the terminal
		if !cmd.HasParent() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stderr"}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Audit(logging.CategoryBoot).SessionEnd(cmd.Name(), time.Since(startedAt).Milliseconds())
		logging.CloseAll()
	},
	RunE: runInteractive,
}

// treeCmd prints a directory the way the navigator shows it
var treeCmd = &cobra.Command{
	Use:   "tree [dir]",
	Short: "Print a directory tree in navigator order",
	Long: `Prints the tree the explorer would show, directories first and
alphabetical within each group.

Examples:
  filelens tree --demo
  filelens tree ./src --depth 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

// askCmd analyzes one file without the TUI
var askCmd = &cobra.Command{
	Use:   "ask [file] [question]",
	Short: "Ask Gemini a question about a single file",
	Long: `Reads a file under the same size and readability rules as the
explorer and prints Gemini's analysis.

Examples:
  filelens ask main.go "What does this program do?"
  filelens ask --demo documents/project_brief.txt "Summarize the brief"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Open this directory instead of showing the welcome screen")
	rootCmd.PersistentFlags().BoolVar(&demoFlag, "demo", false, "Start with the demo file system")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Gemini model (default: "+analysis.DefaultModel+")")

	treeCmd.Flags().IntVar(&treeDepth, "depth", 2, "Directory levels to expand")

	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlagOverrides layers command-line flags over the loaded config.
func applyFlagOverrides(c *config.Config) {
	if modelFlag != "" {
		c.LLM.Model = modelFlag
	}
	if verbose {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// newAnalyzer builds the Gemini client from the resolved config.
func newAnalyzer(cmd *cobra.Command) (*analysis.Client, error) {
	return analysis.NewClient(cmdContext(cmd), analysis.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.GetLLMTimeout(),
	})
}
