// Package dextest provides an in-memory chain that speaks the router and
// ERC20 ABIs, for tests that need realistic calldata round trips.
package dextest

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
	"github.com/bimakw/pulse-swap/internal/infrastructure/dex"
)

// SentTx is a transaction recorded by Chain.Send
type SentTx struct {
	Hash   common.Hash
	To     common.Address
	Value  *big.Int
	Data   []byte
	Method string
}

// Chain is a fake PulseChain node. Zero value is not usable, use NewChain.
type Chain struct {
	mu sync.Mutex

	from       common.Address
	pools      map[common.Address]map[string]*entities.Pair
	decimals   map[common.Address]uint8
	allowances map[string]*big.Int
	code       map[common.Address][]byte
	routerErr  map[common.Address]error
	routerWait map[common.Address]time.Duration

	sent     []SentTx
	receipts map[common.Hash]*types.Receipt
	reads    int

	// SwapRevertReason makes swap submissions fail pre-flight with this revert reason
	SwapRevertReason string
	// ApproveRevertReason makes approve submissions fail pre-flight
	ApproveRevertReason string
	// SendErr is returned by every Send, e.g. a user rejection
	SendErr error
	// FailMined marks mined swap transactions as reverted (status 0)
	FailMined bool
	// NeverMine leaves transactions pending until the wait context ends
	NeverMine bool
}

func NewChain(from common.Address) *Chain {
	return &Chain{
		from:       from,
		pools:      make(map[common.Address]map[string]*entities.Pair),
		decimals:   make(map[common.Address]uint8),
		allowances: make(map[string]*big.Int),
		code:       make(map[common.Address][]byte),
		routerErr:  make(map[common.Address]error),
		routerWait: make(map[common.Address]time.Duration),
		receipts:   make(map[common.Hash]*types.Receipt),
	}
}

func pairKey(a, b common.Address) string {
	if a.Hex() < b.Hex() {
		return a.Hex() + "-" + b.Hex()
	}
	return b.Hex() + "-" + a.Hex()
}

func allowanceKey(token, owner, spender common.Address) string {
	return token.Hex() + owner.Hex() + spender.Hex()
}

// AddPool registers a constant-product pool between a and b on router with 0.29% fee.
// Reserves are in smallest units.
func (c *Chain) AddPool(router, a, b common.Address, reserveA, reserveB *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pools[router] == nil {
		c.pools[router] = make(map[string]*entities.Pair)
	}
	c.code[router] = []byte{0x60, 0x80}
	c.pools[router][pairKey(a, b)] = &entities.Pair{
		Token0:   a,
		Token1:   b,
		Reserve0: reserveA,
		Reserve1: reserveB,
		Fee:      29,
	}
}

// SetCode marks addr as a contract (or clears it with nil)
func (c *Chain) SetCode(addr common.Address, code []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[addr] = code
}

func (c *Chain) SetDecimals(token common.Address, decimals uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decimals[token] = decimals
}

func (c *Chain) SetAllowance(token, owner, spender common.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowances[allowanceKey(token, owner, spender)] = amount
}

// FailRouter makes every call against router fail with err
func (c *Chain) FailRouter(router common.Address, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routerErr[router] = err
}

// StallRouter delays every call against router by d (or until ctx ends)
func (c *Chain) StallRouter(router common.Address, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routerWait[router] = d
}

// Reads returns the number of CallContract/CodeAt calls served
func (c *Chain) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Sent returns a copy of the submitted transactions
func (c *Chain) Sent() []SentTx {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentTx, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *Chain) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	c.mu.Lock()
	c.reads++
	code := c.code[addr]
	c.mu.Unlock()
	return code, nil
}

func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("bad call")
	}
	to := *msg.To

	c.mu.Lock()
	c.reads++
	wait := c.routerWait[to]
	routerErr := c.routerErr[to]
	c.mu.Unlock()

	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if routerErr != nil {
		return nil, routerErr
	}

	if method, err := dex.RouterABI.MethodById(msg.Data[:4]); err == nil {
		args, err := method.Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		if method.Name != "getAmountsOut" {
			return nil, fmt.Errorf("execution reverted: %s is not a view", method.Name)
		}
		amounts, err := c.amountsOut(to, args[0].(*big.Int), args[1].([]common.Address))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(amounts)
	}

	method, err := dex.ERC20ABI.MethodById(msg.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted")
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch method.Name {
	case "decimals":
		d, ok := c.decimals[to]
		if !ok {
			return nil, fmt.Errorf("%w: decimals not implemented", entities.ErrReverted)
		}
		return method.Outputs.Pack(d)
	case "allowance":
		a := c.allowances[allowanceKey(to, args[0].(common.Address), args[1].(common.Address))]
		if a == nil {
			a = big.NewInt(0)
		}
		return method.Outputs.Pack(a)
	}
	return nil, fmt.Errorf("execution reverted")
}

func (c *Chain) amountsOut(router common.Address, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	amounts := []*big.Int{amountIn}
	current := amountIn
	for i := 1; i < len(path); i++ {
		pair, ok := c.pools[router][pairKey(path[i-1], path[i])]
		if !ok {
			return nil, fmt.Errorf("%w: PulseXLibrary: INSUFFICIENT_LIQUIDITY", entities.ErrReverted)
		}
		current = pair.GetAmountOut(current, path[i-1])
		amounts = append(amounts, current)
	}
	return amounts, nil
}

// From implements the executor's transactor
func (c *Chain) From() common.Address {
	return c.from
}

func (c *Chain) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	if c.SendErr != nil {
		return common.Hash{}, c.SendErr
	}

	methodName := ""
	if len(data) >= 4 {
		if m, err := dex.RouterABI.MethodById(data[:4]); err == nil {
			methodName = m.Name
		} else if m, err := dex.ERC20ABI.MethodById(data[:4]); err == nil {
			methodName = m.Name
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch methodName {
	case "approve":
		if c.ApproveRevertReason != "" {
			return common.Hash{}, fmt.Errorf("%w: %s", entities.ErrReverted, c.ApproveRevertReason)
		}
		args, err := dex.ERC20ABI.Methods["approve"].Inputs.Unpack(data[4:])
		if err != nil {
			return common.Hash{}, err
		}
		c.allowances[allowanceKey(to, c.from, args[0].(common.Address))] = args[1].(*big.Int)
	case "swapExactTokensForTokens", "swapExactTokensForETH":
		if c.SwapRevertReason != "" {
			return common.Hash{}, fmt.Errorf("%w: %s", entities.ErrReverted, c.SwapRevertReason)
		}
		args, err := dex.RouterABI.Methods[methodName].Inputs.Unpack(data[4:])
		if err != nil {
			return common.Hash{}, err
		}
		path := args[2].([]common.Address)
		allowance := c.allowances[allowanceKey(path[0], c.from, to)]
		if allowance == nil || allowance.Cmp(args[0].(*big.Int)) < 0 {
			return common.Hash{}, fmt.Errorf("%w: TransferHelper: TRANSFER_FROM_FAILED", entities.ErrReverted)
		}
	case "swapExactETHForTokens":
		if c.SwapRevertReason != "" {
			return common.Hash{}, fmt.Errorf("%w: %s", entities.ErrReverted, c.SwapRevertReason)
		}
	}

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], uint64(len(c.sent)))
	hash := crypto.Keccak256Hash(nonce[:], data)

	c.sent = append(c.sent, SentTx{Hash: hash, To: to, Value: value, Data: data, Method: methodName})

	status := types.ReceiptStatusSuccessful
	if c.FailMined && methodName != "approve" {
		status = types.ReceiptStatusFailed
	}
	c.receipts[hash] = &types.Receipt{
		Status:      status,
		TxHash:      hash,
		BlockNumber: big.NewInt(int64(100 + len(c.sent))),
	}
	return hash, nil
}

func (c *Chain) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.NeverMine {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}
