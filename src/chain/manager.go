package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PostComment submits a signed comment to the comment manager.
func PostComment(ctx context.Context, w Wallet, manager common.Address, data CreateComment, appSignature []byte, value *big.Int) (common.Hash, error) {
	return w.WriteContract(ctx, WriteRequest{
		Address: manager,
		ABI:     CommentManagerABI,
		Method:  "postComment",
		Args:    []any{data, appSignature},
		Value:   value,
	})
}

// GetCommentID asks the comment manager for the identifier data will get.
func GetCommentID(ctx context.Context, r Reader, manager common.Address, data CreateComment) (common.Hash, error) {
	out, err := r.ReadContract(ctx, manager, CommentManagerABI, "getCommentId", data)
	if err != nil {
		return common.Hash{}, err
	}
	if len(out) != 1 {
		return common.Hash{}, fmt.Errorf("getCommentId: unexpected output count %d", len(out))
	}
	id, ok := out[0].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("getCommentId: unexpected output type %T", out[0])
	}
	return common.Hash(id), nil
}

// WaitForComment waits for txHash and returns the receipt together with the
// identifier decoded from the CommentAdded event, when one was emitted.
func WaitForComment(ctx context.Context, r Reader, manager common.Address, txHash common.Hash) (*types.Receipt, *common.Hash, error) {
	receipt, err := r.WaitForReceipt(ctx, txHash)
	if err != nil {
		return receipt, nil, err
	}
	return receipt, DecodeCommentAdded(receipt, manager), nil
}

// DecodeCommentAdded finds the CommentAdded event emitted by manager and
// returns its comment identifier.
func DecodeCommentAdded(receipt *types.Receipt, manager common.Address) *common.Hash {
	if receipt == nil {
		return nil
	}
	event := CommentManagerABI.Events["CommentAdded"]
	for _, lg := range receipt.Logs {
		if lg.Address != manager || len(lg.Topics) < 2 || lg.Topics[0] != event.ID {
			continue
		}
		if _, err := event.Inputs.NonIndexed().Unpack(lg.Data); err != nil {
			continue
		}
		id := lg.Topics[1]
		return &id
	}
	return nil
}

// ScanLogsForCommentID returns the second topic of the first log emitted by
// manager. It does not check the event signature, so it also picks up
// identifiers from events DecodeCommentAdded could not decode.
func ScanLogsForCommentID(receipt *types.Receipt, manager common.Address) *common.Hash {
	if receipt == nil {
		return nil
	}
	for _, lg := range receipt.Logs {
		if lg.Address != manager || len(lg.Topics) < 2 {
			continue
		}
		id := lg.Topics[1]
		if id == (common.Hash{}) {
			continue
		}
		return &id
	}
	return nil
}
