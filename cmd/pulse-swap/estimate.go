package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate <amount> <from-token> [to] <to-token>",
	Short: "Conservative output estimate across all routers",
	Long: `Estimate a cautious output for a swap. Every router is queried on the best
quoted path and the highest output is discounted by a safety factor that grows
with path length. When no router answers, one third of the input is shown as a
worst-case floor.

Examples:
  pulse-swap estimate 1000 HEX USDC
  pulse-swap estimate 1 PLS to DAI --json`,
	Args: cobra.RangeArgs(3, 4),
	Run:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	amount, fromRef, toRef, err := parseTrade(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx, cancel := commandContext()
	defer cancel()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.Close()

	req, err := buildQuoteRequest(a, amount, fromRef, toRef, "")
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Querying routers..."
		s.Start()
	}

	// The best quoted path is the one worth estimating; without one fall back
	// to the direct pair so the estimate can still degrade visibly.
	wrapped := a.Config.WrappedNative()
	path := entities.Path{req.FromToken.RoutingAddress(wrapped), req.ToToken.RoutingAddress(wrapped)}
	quote := a.Quotes.GetSwapQuote(ctx, req)
	if quote.IsFound() {
		path = quote.Quote.Path
	}

	decIn := a.Decimals.Resolve(ctx, req.FromToken)
	decOut := a.Decimals.Resolve(ctx, req.ToToken)
	amountIn, err := entities.ParseUnits(amount, decIn)
	if err != nil {
		if !jsonOutput {
			s.Stop()
		}
		printError(err)
		os.Exit(1)
	}

	est := a.Estimator.ConservativeEstimate(ctx, path, amountIn)
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printJSON(est)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                 CONSERVATIVE ESTIMATE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  From:              %s %s\n", amount, color.YellowString(req.FromToken.Symbol))
	fmt.Printf("  Path:              %s\n", path)

	switch est.Status {
	case entities.QuoteFound:
		fmt.Printf("  At least:          %s %s\n", entities.FormatUnits(est.OutputAmount, decOut), color.YellowString(req.ToToken.Symbol))
		fmt.Printf("  Safety factor:     %.3f\n", est.SafetyFactor)
		fmt.Printf("  Best router:       %s\n", color.CyanString(est.RouterAddress.Hex()))
	case entities.QuoteDegraded:
		color.Yellow("  Estimate unavailable, showing conservative floor")
		// the floor is a third of the input, in input units
		fmt.Printf("  Floor:             %s (input units)\n", entities.FormatUnits(est.OutputAmount, decIn))
	default:
		color.Red("  %s", est.Reason)
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
