// Command analyzer runs a one-shot sponsorship analysis from the terminal:
// it classifies a video's comments or a channel's uploads, prints progress
// as items finalize, and ends with a ranked summary.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ytlens/sponsorlens/internal/aggregate"
	"github.com/ytlens/sponsorlens/internal/bootstrap"
	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/runs"
)

var (
	useAI    bool
	maxItems int
	byDim    string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "analyzer <video-or-channel-ref>",
	Short: "Analyze YouTube comments or videos for sponsorship disclosures",
	Long: `Analyze classifies the comments of a video, or the upload descriptions
of a channel, as sponsored or not. The reference may be a URL, a bare
video ID, a UC... channel ID, or an @handle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&useAI, "ai", false, "classify with Gemini instead of the keyword heuristic")
	rootCmd.Flags().IntVar(&maxItems, "max", 0, "cap the number of items analyzed (0 = configured default)")
	rootCmd.Flags().StringVar(&byDim, "by", "sponsorship", "summary dimension: sponsorship, advertiser, country, or keyword")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "abort the run after this long")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("analyzer: %v", err)
		os.Exit(1)
	}
}

func analyze(ctx context.Context, sourceRef string) error {
	selector, ok := selectorFor(byDim)
	if !ok {
		return fmt.Errorf("unknown summary dimension %q", byDim)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Keep service logs out of the terminal output unless debugging.
	if !cfg.Service.Debug {
		cfg.Logging.Level = "error"
	}

	appLog, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	comps, err := bootstrap.NewComponents(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer comps.Close()

	view, err := comps.Manager.Start(runs.Request{
		SourceRef: sourceRef,
		UseAI:     useAI,
		MaxItems:  maxItems,
	})
	if err != nil {
		return err
	}

	snapshots, cleanup, err := comps.Manager.Subscribe(view.ID)
	if err != nil {
		return err
	}
	defer cleanup()

	var items []domain.ClassifiedItem
	for snap := range snapshots {
		if snap.Total > 0 {
			fmt.Printf("\rclassified %d/%d", snap.Completed, snap.Total)
		}
		items = snap.Items
	}
	fmt.Println()

	final, err := comps.Manager.Get(view.ID)
	if err != nil {
		return err
	}
	if final.Status == runs.StatusFailed {
		return fmt.Errorf("run failed: %s", final.Error)
	}
	if final.Status == runs.StatusCanceled {
		fmt.Println("run canceled; showing partial results")
	}

	printSummary(byDim, aggregate.Aggregate(items, selector))
	printErrored(items)
	return nil
}

func printSummary(dimension string, summary domain.Summary) {
	fmt.Printf("\n%s summary (%d labeled, %d without data",
		dimension, summary.TotalWithData, summary.TotalWithoutData)
	if summary.TotalWithoutData > 0 {
		fmt.Printf(", %.1f%% of all items", summary.WithoutDataPercentage)
	}
	fmt.Println(")")

	for _, bucket := range summary.Ranked {
		fmt.Printf("  %-40s %5d  %5.1f%%\n", bucket.Label, bucket.Count, bucket.Percentage)
	}
	if len(summary.Ranked) == 0 {
		fmt.Println("  (no labeled items)")
	}
}

func printErrored(items []domain.ClassifiedItem) {
	errored := 0
	for _, item := range items {
		if item.Classified && item.AnalysisError != "" {
			errored++
		}
	}
	if errored > 0 {
		fmt.Printf("\n%d of %d items carry an analysis error; inspect them via the API before trusting the totals\n",
			errored, len(items))
	}
}

func selectorFor(by string) (aggregate.LabelSelector, bool) {
	switch by {
	case "sponsorship":
		return aggregate.BySponsorship, true
	case "advertiser":
		return aggregate.ByAdvertiser, true
	case "country":
		return aggregate.ByCountry, true
	case "keyword":
		return aggregate.ByKeyword, true
	default:
		return nil, false
	}
}
