package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

// DefaultReadTimeout bounds a single read call when the caller has no opinion
const DefaultReadTimeout = 10 * time.Second

// Client wraps the go-ethereum client with timeouts and error classification.
// It only ever talks to raw addresses; there is no name resolution layer.
type Client struct {
	client  *ethclient.Client
	rpcURL  string
	chainID *big.Int
	mu      sync.RWMutex
}

// NewClient dials the RPC endpoint and verifies it serves the expected chain.
// expectedChainID may be nil to skip the check.
func NewClient(ctx context.Context, rpcURL string, expectedChainID *big.Int) (*Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	var chainID *big.Int
	err = WithTimeout(ctx, DefaultReadTimeout, func(ctx context.Context) error {
		var err error
		chainID, err = client.ChainID(ctx)
		return err
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	if expectedChainID != nil && chainID.Cmp(expectedChainID) != 0 {
		client.Close()
		return nil, fmt.Errorf("rpc %s serves chain %s, expected %s", rpcURL, chainID, expectedChainID)
	}

	return &Client{
		client:  client,
		rpcURL:  rpcURL,
		chainID: chainID,
	}, nil
}

// Close closes the underlying client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client.Close()
}

// ChainID returns the chain ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// CallContract executes a contract call against the latest block
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, err := c.client.CallContract(ctx, msg, nil)
	return out, ClassifyCallError(ctx, err)
}

// CodeAt returns the deployed bytecode at addr
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out, err := c.client.CodeAt(ctx, addr, nil)
	return out, ClassifyCallError(ctx, err)
}

// BlockNumber returns the current block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client.BlockNumber(ctx)
}

// EstimateGas estimates the gas required for a transaction
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	gas, err := c.client.EstimateGas(ctx, msg)
	return gas, ClassifyCallError(ctx, err)
}

// SuggestGasPrice suggests a gas price based on recent blocks
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client.SuggestGasPrice(ctx)
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client.PendingNonceAt(ctx, account)
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClassifyCallError(ctx, c.client.SendTransaction(ctx, tx))
}

// TransactionReceipt returns the receipt of a mined transaction, or
// ethereum.NotFound while it is pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client.TransactionReceipt(ctx, hash)
}

// WithTimeout runs fn under a derived deadline. A deadline hit is reported as
// entities.ErrTimeout; the call is not retried.
func WithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		d = DefaultReadTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, entities.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", entities.ErrTimeout, d, err)
	}
	return err
}

// ClassifyCallError maps transport errors onto entities.ErrTimeout and
// entities.ErrReverted so callers can tell a slow node from a failing contract.
func ClassifyCallError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %v", entities.ErrTimeout, err)
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) || strings.Contains(strings.ToLower(err.Error()), "revert") {
		return fmt.Errorf("%w: %v", entities.ErrReverted, err)
	}
	return err
}

// ParseAddress accepts only raw 0x-prefixed hex addresses. Name-like inputs
// such as "vitalik.eth" are rejected instead of being resolved.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q is not a 0x-prefixed hex address", entities.ErrInvalidAddress, s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", entities.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ValidateTokenAddress accepts a raw hex address or the native sentinel
func ValidateTokenAddress(s string) error {
	if entities.IsNativeAddress(s) {
		return nil
	}
	_, err := ParseAddress(s)
	return err
}

// Common addresses
var (
	ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")
)
