package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/pulse-swap/internal/app"
	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/domain/services"
)

var (
	compareRouters bool
	quoteSlippage  string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from-token> [to] <to-token>",
	Short: "Get the best swap quote",
	Long: `Quote a swap through the designated PulseX router, trying the direct pool,
then WPLS, then the stable token as intermediary.

Examples:
  pulse-swap quote 100 PLS to USDC
  pulse-swap quote 5000 PLSX HEX --compare`,
	Args: cobra.RangeArgs(3, 4),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().BoolVar(&compareRouters, "compare", false, "Query every router and keep the best output")
	quoteCmd.Flags().StringVar(&quoteSlippage, "slippage", "", "Slippage tolerance in percent (default from config)")
}

func runQuote(cmd *cobra.Command, args []string) {
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

	req, err := buildQuoteRequest(a, amount, fromRef, toRef, quoteSlippage)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	var result entities.QuoteResult
	if compareRouters {
		result = a.Quotes.CompareRouters(ctx, req)
	} else {
		result = a.Quotes.GetSwapQuote(ctx, req)
	}
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	displayQuote(req, result)
	if !result.IsFound() {
		os.Exit(2)
	}
}

func buildQuoteRequest(a *app.App, amount, fromRef, toRef, slippage string) (services.QuoteRequest, error) {
	from, err := services.ResolveToken(a.Tokens, fromRef)
	if err != nil {
		return services.QuoteRequest{}, fmt.Errorf("from token: %w", err)
	}
	to, err := services.ResolveToken(a.Tokens, toRef)
	if err != nil {
		return services.QuoteRequest{}, fmt.Errorf("to token: %w", err)
	}

	slippageBps := a.Config.DefaultSlippageBps
	if slippage != "" {
		slippageBps, err = entities.SlippagePercentToBps(slippage)
		if err != nil {
			return services.QuoteRequest{}, err
		}
	}

	return services.QuoteRequest{
		FromToken:   from,
		ToToken:     to,
		Amount:      amount,
		SlippageBps: slippageBps,
	}, nil
}

func displayQuote(req services.QuoteRequest, result entities.QuoteResult) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	q := result.Quote
	fmt.Printf("\n  From:              %s %s\n", req.Amount, color.YellowString(req.FromToken.Symbol))

	if !result.IsFound() {
		fmt.Printf("  To:                %s\n", color.RedString("no route found"))
		if result.Reason != "" {
			fmt.Printf("  Reason:            %s\n", result.Reason)
		}
		fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
		return
	}

	fmt.Printf("  To:                ~%s %s\n", entities.FormatUnits(q.OutputAmount, q.OutputDecimals), color.YellowString(req.ToToken.Symbol))
	fmt.Printf("  Minimum received:  %s %s (%s slippage)\n",
		entities.FormatUnits(q.MinAmountOut, q.OutputDecimals), req.ToToken.Symbol, bpsPercent(q.SlippageBps))
	fmt.Printf("  Rate:              1 %s = %.6g %s\n", req.FromToken.Symbol, q.ExecutionPrice, req.ToToken.Symbol)
	fmt.Printf("  Price impact:      %s\n", impactString(q.PriceImpactPercent))
	fmt.Printf("  Route:             %s\n", q.RouteDescription)
	fmt.Printf("  Router:            %s\n", color.CyanString(q.RouterAddress.Hex()))

	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}

func impactString(p float64) string {
	s := fmt.Sprintf("%.2f%%", p)
	switch {
	case p >= 3:
		return color.RedString(s)
	case p >= 1:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func bpsPercent(bps uint64) string {
	return entities.FormatUnits(new(big.Int).SetUint64(bps), 2) + "%"
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
