package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bimakw/pulse-swap/internal/domain/entities"
)

// Backend is the write side of the chain gateway
type Backend interface {
	ChainID() *big.Int
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// TxRequest describes a transaction awaiting the user's signature
type TxRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// ConfirmFunc lets the front-end approve each transaction before it is signed.
// Returning false rejects the transaction.
type ConfirmFunc func(ctx context.Context, req TxRequest) bool

// Transactor signs transactions with a local key and submits them
type Transactor struct {
	backend      Backend
	key          *ecdsa.PrivateKey
	from         common.Address
	confirm      ConfirmFunc
	gasBufferPct uint64
	pollInterval time.Duration
}

// Option configures Transactor
type Option func(*Transactor)

// WithConfirm installs a per-transaction confirmation hook
func WithConfirm(fn ConfirmFunc) Option {
	return func(t *Transactor) {
		t.confirm = fn
	}
}

// WithPollInterval sets how often receipts are polled
func WithPollInterval(d time.Duration) Option {
	return func(t *Transactor) {
		t.pollInterval = d
	}
}

// NewTransactor parses a hex private key (with or without 0x)
func NewTransactor(backend Backend, hexKey string, opts ...Option) (*Transactor, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	t := &Transactor{
		backend:      backend,
		key:          key,
		from:         crypto.PubkeyToAddress(key.PublicKey),
		gasBufferPct: 20,
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// From returns the signing address
func (t *Transactor) From() common.Address {
	return t.from
}

// Send estimates gas, asks for confirmation, signs and submits a transaction.
// Gas estimation runs the call first, so a transaction that would revert
// fails here with the revert reason.
func (t *Transactor) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (common.Hash, error) {
	if value == nil {
		value = big.NewInt(0)
	}

	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  t.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas = gas * (100 + t.gasBufferPct) / 100

	if t.confirm != nil && !t.confirm(ctx, TxRequest{From: t.from, To: to, Value: value, Data: data, Gas: gas}) {
		return common.Hash{}, entities.NewSwapError(entities.KindUserRejected, "sign", errors.New("transaction rejected"))
	}

	nonce, err := t.backend.PendingNonceAt(ctx, t.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.backend.ChainID()), t.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return signed.Hash(), nil
}

// WaitMined polls for the receipt until it appears or ctx ends. Giving up does
// not cancel the transaction; it may still be mined later.
func (t *Transactor) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to fetch receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for %s: %v", entities.ErrTimeout, hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
