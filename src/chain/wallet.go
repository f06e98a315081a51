package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/stake-plus/ecp-share/src/comments"
)

// receiptPollInterval matches the cadence bind.WaitMined uses.
const receiptPollInterval = time.Second

// WriteRequest describes a state-changing contract call.
type WriteRequest struct {
	Address common.Address
	ABI     *abi.ABI
	Method  string
	Args    []any
	Value   *big.Int
}

// Wallet is the account that signs and sends transactions.
type Wallet interface {
	// Address returns the connected account, false when none is connected.
	Address() (common.Address, bool)
	ChainID() uint64
	SwitchChain(ctx context.Context, chainID uint64) error
	WriteContract(ctx context.Context, req WriteRequest) (common.Hash, error)
}

// Reader performs read-only chain access.
type Reader interface {
	ReadContract(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any) ([]any, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Client is a Reader backed by a JSON-RPC endpoint.
type Client struct {
	eth *ethclient.Client
}

// dialRPC is how wallets open connections; tests swap it for in-process nodes.
var dialRPC = Dial

// Dial connects to rawurl.
func Dial(ctx context.Context, rawurl string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, classifyRPCError(err, "dial rpc")
	}
	return &Client{eth: eth}, nil
}

// ChainID asks the node which chain it serves.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, classifyRPCError(err, "chain id")
	}
	return id.Uint64(), nil
}

// ReadContract performs an eth_call and unpacks the outputs.
func (c *Client) ReadContract(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, classifyRPCError(err, "call "+method)
	}
	return contractABI.Unpack(method, out)
}

// WaitForReceipt polls until the transaction is mined. A reverted
// transaction is returned together with a KindConfirmation error.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, comments.Errorf(comments.KindConfirmation, "transaction %s reverted", hash.Hex())
			}
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyRPCError(err, "receipt")
		}
		select {
		case <-ctx.Done():
			return nil, comments.Wrap(comments.KindConfirmation, ctx.Err(), "waiting for receipt")
		case <-ticker.C:
		}
	}
}

// Close releases the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// Confirmer approves each write before it is signed. Returning false rejects
// the request, the same way a browser wallet prompt can be dismissed.
type Confirmer func(req WriteRequest) bool

// KeyedWallet signs with a local private key. One RPC endpoint is known per
// chain; switching chains selects another endpoint.
type KeyedWallet struct {
	key       *ecdsa.PrivateKey
	address   common.Address
	endpoints map[uint64]string
	confirm   Confirmer
	logger    *log.Logger

	mu      sync.Mutex
	chainID uint64
	client  *Client
}

// NewKeyedWallet connects to the first endpoint in order and uses it as the
// active chain.
func NewKeyedWallet(ctx context.Context, key *ecdsa.PrivateKey, rpcURLs []string, confirm Confirmer, logger *log.Logger) (*KeyedWallet, error) {
	if logger == nil {
		logger = log.Default()
	}
	w := &KeyedWallet{
		key:       key,
		address:   crypto.PubkeyToAddress(key.PublicKey),
		endpoints: make(map[uint64]string),
		confirm:   confirm,
		logger:    logger,
	}
	for i, u := range rpcURLs {
		c, err := dialRPC(ctx, u)
		if err != nil {
			w.Close()
			return nil, err
		}
		id, err := c.ChainID(ctx)
		if err != nil {
			c.Close()
			w.Close()
			return nil, err
		}
		w.endpoints[id] = u
		if i == 0 {
			w.chainID, w.client = id, c
		} else {
			c.Close()
		}
	}
	if w.client == nil {
		return nil, comments.Errorf(comments.KindNoWallet, "no rpc endpoint configured")
	}
	return w, nil
}

// Address implements Wallet.
func (w *KeyedWallet) Address() (common.Address, bool) {
	return w.address, w.key != nil
}

// ChainID implements Wallet.
func (w *KeyedWallet) ChainID() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

// Reader returns the client for the active chain.
func (w *KeyedWallet) Reader() *Client {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client
}

// ReadContract implements Reader on the active chain.
func (w *KeyedWallet) ReadContract(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, args ...any) ([]any, error) {
	return w.Reader().ReadContract(ctx, to, contractABI, method, args...)
}

// WaitForReceipt implements Reader on the active chain.
func (w *KeyedWallet) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return w.Reader().WaitForReceipt(ctx, hash)
}

// Close releases the active connection.
func (w *KeyedWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Close()
	}
}

// SwitchChain implements Wallet.
func (w *KeyedWallet) SwitchChain(ctx context.Context, chainID uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if chainID == w.chainID {
		return nil
	}
	u, ok := w.endpoints[chainID]
	if !ok {
		return comments.Errorf(comments.KindWrongChain, "no rpc endpoint for chain %d", chainID)
	}
	c, err := dialRPC(ctx, u)
	if err != nil {
		return err
	}
	w.client.Close()
	w.client, w.chainID = c, chainID
	w.logger.Printf("wallet: switched to chain %d", chainID)
	return nil
}

// WriteContract implements Wallet.
func (w *KeyedWallet) WriteContract(ctx context.Context, req WriteRequest) (common.Hash, error) {
	if w.confirm != nil && !w.confirm(req) {
		return common.Hash{}, comments.Errorf(comments.KindUserRejected, "user rejected the request")
	}

	w.mu.Lock()
	client, chainID := w.client, w.chainID
	w.mu.Unlock()

	opts, err := bind.NewKeyedTransactorWithChainID(w.key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, fmt.Errorf("transactor: %w", err)
	}
	opts.Context = ctx
	opts.Value = req.Value

	contract := bind.NewBoundContract(req.Address, *req.ABI, client.eth, client.eth, client.eth)
	tx, err := contract.Transact(opts, req.Method, req.Args...)
	if err != nil {
		return common.Hash{}, classifyRPCError(err, req.Method)
	}
	w.logger.Printf("wallet: sent %s to %s (tx %s)", req.Method, req.Address.Hex(), tx.Hash().Hex())
	return tx.Hash(), nil
}

// classifyRPCError tags a node or transport failure with its kind. This is the
// only place node error text is inspected.
func classifyRPCError(err error, op string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return comments.Wrap(comments.KindInsufficientFunds, err, op)
	case strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied"):
		return comments.Wrap(comments.KindUserRejected, err, op)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return comments.Wrap(comments.KindRPC, err, op)
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return comments.Wrap(comments.KindNetwork, err, op)
	}
	return comments.Wrap(comments.KindWriteFailed, err, op)
}
