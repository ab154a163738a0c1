package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kbqa/internal/model"
	"kbqa/internal/pipeline"
)

var (
	dryRun    bool
	authorCap int
	subdomain string
	timeout   time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch recently edited articles and file QA review tickets",
	Long: `Run executes one QA review cycle:
- Compute the current period tag and edit cutoff
- Load QA tickets already created this period (dedup set)
- Fetch recently edited articles across active, non-excluded brands
- Filter out excluded authors and already-ticketed articles
- Sample at most the per-author cap and file tickets on their behalf

Example:
  kbqa run
  kbqa run --dry-run
  kbqa run --cap 3 --subdomain acme -v`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report selections without creating tickets")
	runCmd.Flags().IntVar(&authorCap, "cap", 0, "max tickets per author per run (overrides config)")
	runCmd.Flags().StringVar(&subdomain, "subdomain", "", "helpdesk instance subdomain (overrides config)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request HTTP timeout")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Build configuration: defaults < config file / env < flags
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if dryRun {
		cfg.Tickets.ReadOnly = true
	}
	if authorCap > 0 {
		cfg.Tickets.PerAuthorCap = authorCap
	}
	if subdomain != "" {
		cfg.Zendesk.Subdomain = subdomain
	}
	if cmd.Flags().Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	cfg.Output.Verbose = verbose

	// Fatal configuration errors abort before any fetching begins.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Instance:   %s.zendesk.com\n", cfg.Zendesk.Subdomain)
		fmt.Fprintf(os.Stderr, "Window:     %d %s\n", cfg.Window.Value, cfg.Window.Unit)
		fmt.Fprintf(os.Stderr, "Author cap: %d\n", cfg.Tickets.PerAuthorCap)
		if cfg.Tickets.ReadOnly {
			fmt.Fprintf(os.Stderr, "Mode:       read-only\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.New(cfg)
	report, err := p.Run(context.Background())
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	pipeline.RenderSummary(os.Stdout, report)
	return nil
}
