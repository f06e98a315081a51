package chain

import (
	"context"
	"errors"
	"io"
	"log"
	"math/big"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/ecp-share/src/comments"
)

type codedError struct{ code int }

func (e codedError) Error() string  { return "execution reverted" }
func (e codedError) ErrorCode() int { return e.code }

func TestClassifyRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want comments.Kind
	}{
		{"funds", errors.New("insufficient funds for gas * price + value"), comments.KindInsufficientFunds},
		{"rejected", errors.New("User denied transaction signature"), comments.KindUserRejected},
		{"rpc range", codedError{code: -32000}, comments.KindRPC},
		{"transport", &url.Error{Op: "Post", URL: "http://rpc", Err: errors.New("connection refused")}, comments.KindNetwork},
		{"other", errors.New("abi: cannot use"), comments.KindWriteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, comments.KindOf(classifyRPCError(tt.err, "op")))
		})
	}
	assert.Nil(t, classifyRPCError(nil, "op"))
}

type chainIDService struct{ id int64 }

func (s chainIDService) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(s.id)) }

// useInProcNodes routes dialRPC to in-process servers keyed by URL and
// records every client it hands out.
func useInProcNodes(t *testing.T, nodes map[string]*rpc.Server) *[]*Client {
	t.Helper()
	var opened []*Client
	dialRPC = func(_ context.Context, u string) (*Client, error) {
		srv, ok := nodes[u]
		if !ok {
			return nil, comments.Errorf(comments.KindNetwork, "dial rpc: connection refused")
		}
		c := &Client{eth: ethclient.NewClient(rpc.DialInProc(srv))}
		opened = append(opened, c)
		return c, nil
	}
	t.Cleanup(func() { dialRPC = Dial })
	return &opened
}

func newNode(t *testing.T, services map[string]any) *rpc.Server {
	t.Helper()
	srv := rpc.NewServer()
	for name, svc := range services {
		require.NoError(t, srv.RegisterName(name, svc))
	}
	t.Cleanup(srv.Stop)
	return srv
}

func TestNewKeyedWallet(t *testing.T) {
	base := newNode(t, map[string]any{"eth": chainIDService{id: 8453}})
	mainnet := newNode(t, map[string]any{"eth": chainIDService{id: 1}})
	useInProcNodes(t, map[string]*rpc.Server{"base": base, "mainnet": mainnet})

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	w, err := NewKeyedWallet(context.Background(), key, []string{"base", "mainnet"}, nil, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint64(8453), w.ChainID())
	addr, ok := w.Address()
	assert.True(t, ok)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)
	require.NoError(t, w.SwitchChain(context.Background(), 1))
	assert.Equal(t, uint64(1), w.ChainID())
	assert.Equal(t, comments.KindWrongChain, comments.KindOf(w.SwitchChain(context.Background(), 10)))
}

func TestNewKeyedWalletClosesFirstClientOnLaterFailure(t *testing.T) {
	base := newNode(t, map[string]any{"eth": chainIDService{id: 8453}})
	silent := newNode(t, nil)

	tests := []struct {
		name string
		urls []string
	}{
		{"dial fails", []string{"base", "down"}},
		{"chain id fails", []string{"base", "silent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opened := useInProcNodes(t, map[string]*rpc.Server{"base": base, "silent": silent})
			key, err := crypto.GenerateKey()
			require.NoError(t, err)

			_, err = NewKeyedWallet(context.Background(), key, tt.urls, nil, log.New(io.Discard, "", 0))
			require.Error(t, err)
			require.NotEmpty(t, *opened)
			_, err = (*opened)[0].ChainID(context.Background())
			assert.Error(t, err, "first client should be closed")
		})
	}
}

func TestNewKeyedWalletNoEndpoints(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = NewKeyedWallet(context.Background(), key, nil, nil, log.New(io.Discard, "", 0))
	assert.Equal(t, comments.KindNoWallet, comments.KindOf(err))
}
