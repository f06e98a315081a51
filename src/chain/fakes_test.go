package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type fakeReader struct {
	allowance *big.Int
	receipts  map[common.Hash]*types.Receipt
	waited    []common.Hash
	reads     []string
}

func (f *fakeReader) ReadContract(_ context.Context, _ common.Address, _ *abi.ABI, method string, _ ...any) ([]any, error) {
	f.reads = append(f.reads, method)
	return []any{f.allowance}, nil
}

func (f *fakeReader) WaitForReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.waited = append(f.waited, hash)
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful}, nil
}

type fakeWallet struct {
	writes []WriteRequest
}

func (f *fakeWallet) Address() (common.Address, bool)           { return common.Address{1}, true }
func (f *fakeWallet) ChainID() uint64                           { return 8453 }
func (f *fakeWallet) SwitchChain(context.Context, uint64) error { return nil }

func (f *fakeWallet) WriteContract(_ context.Context, req WriteRequest) (common.Hash, error) {
	f.writes = append(f.writes, req)
	return common.Hash{0xaa}, nil
}
