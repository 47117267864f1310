package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimakw/pulse-swap/internal/app"
	"github.com/bimakw/pulse-swap/internal/config"
	"github.com/bimakw/pulse-swap/internal/logging"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "pulse-swap",
	Short: "Quote and execute PulseX swaps on PulseChain",
	Long: `pulse-swap finds the best realizable route for a token swap across the
PulseX routers and can execute it with a locally held key.

Tokens are given by symbol (PLS, WPLS, USDC, ...) or by 0x address.

Examples:
  pulse-swap quote 100 PLS to USDC
  pulse-swap estimate 1000 HEX USDC
  pulse-swap swap 1.5 WPLS to DAI --slippage 1
  pulse-swap tokens --testnet`,
	Version: version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("testnet", false, "Use PulseChain testnet v4")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// commandContext is cancelled on Ctrl-C
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	network := ""
	if testnet, _ := cmd.Flags().GetBool("testnet"); testnet {
		network = config.Testnet
	}
	cfg, err := config.Load(network)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger := logging.New(level, "console")

	return app.New(ctx, cfg, logger)
}

// parseTrade accepts "<amount> <from> <to>" and "<amount> <from> to <to>"
func parseTrade(args []string) (amount, from, to string, err error) {
	switch {
	case len(args) == 3:
		return args[0], args[1], args[2], nil
	case len(args) == 4 && strings.EqualFold(args[2], "to"):
		return args[0], args[1], args[3], nil
	default:
		return "", "", "", fmt.Errorf("expected <amount> <from> [to] <to>, got %q", strings.Join(args, " "))
	}
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
