package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/pulse-swap/internal/config"
	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List the configured tokens",
	Long: `List the tokens known for the selected network. A custom list can be
configured with token_list (PULSE_SWAP_TOKEN_LIST).

Examples:
  pulse-swap tokens
  pulse-swap tokens --symbol PLSX`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	network := ""
	if testnet, _ := cmd.Flags().GetBool("testnet"); testnet {
		network = config.Testnet
	}
	cfg, err := config.Load(network)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Listing needs no chain connection
	tokens, err := cfg.Tokens()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	var filtered []entities.Token
	for _, t := range tokens.GetAll() {
		if filterSymbol != "" && !strings.Contains(strings.ToUpper(t.Symbol), strings.ToUpper(filterSymbol)) {
			continue
		}
		filtered = append(filtered, t)
	}

	if jsonOutput {
		printJSON(filtered)
		return
	}

	fmt.Printf("\nTokens on %s (%d):\n\n", color.CyanString(cfg.Network.Name), len(filtered))
	for _, t := range filtered {
		decimals := "?"
		if t.Decimals > 0 || t.IsNative() {
			decimals = fmt.Sprintf("%d", t.Decimals)
		}
		fmt.Printf("  %-8s %-44s %3s  %s\n", color.YellowString(t.Symbol), t.Address, decimals, t.Name)
	}
	fmt.Println()
}
