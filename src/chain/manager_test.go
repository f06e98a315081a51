package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/ecp-share/src/comments"
)

var manager = common.HexToAddress("0xb262C9278fBcac384Ef59Fc49E24d800152E19b1")

func sampleComment() CreateComment {
	return CreateComment{
		Author:    common.Address{0x01},
		App:       common.Address{0x02},
		ChannelId: big.NewInt(0),
		Deadline:  big.NewInt(1700000000),
		Content:   "hello",
		Metadata:  []MetadataEntry{{Key: [32]byte{'s'}, Value: []byte("v")}},
		TargetUri: "https://example.com",
	}
}

func commentAddedLog(t *testing.T, id common.Hash) *types.Log {
	t.Helper()
	event := CommentManagerABI.Events["CommentAdded"]
	data, err := event.Inputs.NonIndexed().Pack(
		big.NewInt(0), [32]byte{}, big.NewInt(1), "hello", "https://example.com", uint8(0), uint8(1), []MetadataEntry{},
	)
	require.NoError(t, err)
	return &types.Log{
		Address: manager,
		Topics:  []common.Hash{event.ID, id, common.BytesToHash([]byte{1}), common.BytesToHash([]byte{2})},
		Data:    data,
	}
}

func TestCreateCommentPacks(t *testing.T) {
	_, err := CommentManagerABI.Pack("postComment", sampleComment(), []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = CommentManagerABI.Pack("getCommentId", sampleComment())
	require.NoError(t, err)
}

func TestNewCreateComment(t *testing.T) {
	data := comments.CommentData{
		Author:    common.Address{0x01},
		ChannelID: comments.NewBigInt(big.NewInt(9)),
		Content:   "x",
		Metadata:  []comments.EncodedMetadata{{Key: common.Hash{0x03}, Value: []byte("v")}},
	}
	cc := NewCreateComment(data)
	assert.Equal(t, int64(9), cc.ChannelId.Int64())
	assert.Equal(t, int64(0), cc.Deadline.Int64())
	require.Len(t, cc.Metadata, 1)
	assert.Equal(t, byte(0x03), cc.Metadata[0].Key[0])
}

func TestDecodeCommentAdded(t *testing.T) {
	id := common.HexToHash("0x1234")
	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: common.Address{0x99}, Topics: []common.Hash{{1}, {2}}},
		commentAddedLog(t, id),
	}}

	got := DecodeCommentAdded(receipt, manager)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)

	assert.Nil(t, DecodeCommentAdded(receipt, common.Address{0x42}))
	assert.Nil(t, DecodeCommentAdded(nil, manager))
}

func TestScanLogsForCommentID(t *testing.T) {
	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: manager, Topics: []common.Hash{{0x01}}},
		{Address: manager, Topics: []common.Hash{{0x0f}, {0xbe, 0xef}}},
	}}
	got := ScanLogsForCommentID(receipt, manager)
	require.NotNil(t, got)
	assert.Equal(t, common.Hash{0xbe, 0xef}, *got)

	assert.Nil(t, ScanLogsForCommentID(&types.Receipt{}, manager))
}

type idReader struct {
	fakeReader
	out []any
	err error
}

func (r *idReader) ReadContract(context.Context, common.Address, *abi.ABI, string, ...any) ([]any, error) {
	return r.out, r.err
}

func TestGetCommentID(t *testing.T) {
	r := &idReader{out: []any{[32]byte{0x77}}}
	id, err := GetCommentID(context.Background(), r, manager, sampleComment())
	require.NoError(t, err)
	assert.Equal(t, common.Hash{0x77}, id)

	r = &idReader{err: errors.New("execution reverted")}
	_, err = GetCommentID(context.Background(), r, manager, sampleComment())
	assert.Error(t, err)
}

func TestWaitForComment(t *testing.T) {
	id := common.HexToHash("0xabc")
	tx := common.Hash{0x10}
	r := &fakeReader{receipts: map[common.Hash]*types.Receipt{
		tx: {Status: types.ReceiptStatusSuccessful, Logs: []*types.Log{commentAddedLog(t, id)}},
	}}
	receipt, got, err := WaitForComment(context.Background(), r, manager, tx)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestPostComment(t *testing.T) {
	w := &fakeWallet{}
	hash, err := PostComment(context.Background(), w, manager, sampleComment(), []byte{1}, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, common.Hash{0xaa}, hash)
	require.Len(t, w.writes, 1)
	assert.Equal(t, "postComment", w.writes[0].Method)
	assert.Equal(t, manager, w.writes[0].Address)
	assert.Equal(t, big.NewInt(3), w.writes[0].Value)
}
