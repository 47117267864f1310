package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	ethclient "github.com/bimakw/pulse-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/pulse-swap/internal/infrastructure/wallet"
)

var (
	swapSlippage string
	noConfirm    bool
	recipient    string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <from-token> [to] <to-token>",
	Short: "Quote and execute a swap",
	Long: `Quote a swap and execute it through the quoted router, signing with the key
in PULSE_SWAP_PRIVATE_KEY. ERC20 inputs are approved for an unbounded amount
first when the current allowance is too low.

IMPORTANT:
  - Each transaction is shown for confirmation unless --yes is given
  - Giving up on a pending transaction does not cancel it; it may still be mined

Examples:
  pulse-swap swap 100 PLS to USDC
  pulse-swap swap 2500 PLSX HEX --slippage 1 --yes`,
	Args: cobra.RangeArgs(3, 4),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapSlippage, "slippage", "", "Slippage tolerance in percent (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompts")
	swapCmd.Flags().StringVar(&recipient, "recipient", "", "Address receiving the output (default: signer)")
}

func runSwap(cmd *cobra.Command, args []string) {
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

	if a.Config.PrivateKey == "" {
		printError(fmt.Errorf("no signing key: set PULSE_SWAP_PRIVATE_KEY"))
		os.Exit(1)
	}

	req, err := buildQuoteRequest(a, amount, fromRef, toRef, swapSlippage)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if entities.ShapeOf(req.FromToken, req.ToToken) == entities.ShapeInvalid {
		printError(entities.NewSwapError(entities.KindInvalidSwap, "validate", fmt.Errorf("cannot swap %s to itself", req.FromToken.Symbol)))
		os.Exit(1)
	}

	opts := []wallet.Option{}
	if !noConfirm && !jsonOutput {
		opts = append(opts, wallet.WithConfirm(confirmTransaction))
	}
	tx, err := wallet.NewTransactor(a.Client, a.Config.PrivateKey, opts...)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	intent := entities.SwapIntent{
		FromToken:   req.FromToken,
		ToToken:     req.ToToken,
		AmountIn:    req.Amount,
		SlippageBps: req.SlippageBps,
		UserAddress: tx.From(),
	}
	if recipient != "" {
		addr, err := ethclient.ParseAddress(recipient)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		intent.UserAddress = addr
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}
	result := a.Quotes.GetSwapQuote(ctx, req)
	if !jsonOutput {
		s.Stop()
	}

	if !result.IsFound() {
		if jsonOutput {
			printJSON(result)
		} else {
			displayQuote(req, result)
		}
		os.Exit(2)
	}

	if !jsonOutput {
		displayQuote(req, result)
		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
		color.Yellow("\nExecuting swap from %s...\n", tx.From().Hex())
	}

	swapResult, err := a.Executor(tx).Execute(ctx, intent, result.Quote)
	if jsonOutput {
		out := map[string]interface{}{"result": swapResult}
		if err != nil {
			out["error"] = err.Error()
			out["kind"] = entities.ErrorKind(err)
		}
		printJSON(out)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if swapResult != nil && swapResult.ApprovalTxHash != nil {
		fmt.Printf("  Approval tx:       %s\n", swapResult.ApprovalTxHash.Hex())
	}
	if err != nil {
		color.Red("\nSwap failed (%s): %v\n", entities.ErrorKind(err), err)
		if swapResult != nil && swapResult.TxHash != (common.Hash{}) {
			fmt.Printf("  Swap tx:           %s\n", swapResult.TxHash.Hex())
		}
		os.Exit(1)
	}

	color.Green("\nSwap confirmed in block %d", swapResult.BlockNumber)
	fmt.Printf("  Swap tx:           %s\n\n", color.CyanString(swapResult.TxHash.Hex()))
}

// confirmTransaction is asked before every signature
func confirmTransaction(ctx context.Context, req wallet.TxRequest) bool {
	fmt.Printf("\n  Sign transaction to %s (value %s wei, gas %d)? (y/N): ", req.To.Hex(), req.Value, req.Gas)
	return readYes()
}

func confirmSwap() bool {
	fmt.Print("\nProceed with swap? (y/N): ")
	return readYes()
}

func readYes() bool {
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
