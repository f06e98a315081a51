package chain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/stake-plus/ecp-share/src/comments"
)

const createCommentTuple = `{
	"name": "commentData", "type": "tuple", "components": [
		{"name": "author", "type": "address"},
		{"name": "app", "type": "address"},
		{"name": "channelId", "type": "uint256"},
		{"name": "deadline", "type": "uint256"},
		{"name": "parentId", "type": "bytes32"},
		{"name": "commentType", "type": "uint8"},
		{"name": "content", "type": "string"},
		{"name": "metadata", "type": "tuple[]", "components": [
			{"name": "key", "type": "bytes32"},
			{"name": "value", "type": "bytes"}
		]},
		{"name": "targetUri", "type": "string"}
	]
}`

const commentManagerJSON = `[
	{
		"type": "function", "name": "postComment", "stateMutability": "payable",
		"inputs": [` + createCommentTuple + `, {"name": "appSignature", "type": "bytes"}],
		"outputs": [{"name": "commentId", "type": "bytes32"}]
	},
	{
		"type": "function", "name": "getCommentId", "stateMutability": "view",
		"inputs": [` + createCommentTuple + `],
		"outputs": [{"name": "", "type": "bytes32"}]
	},
	{
		"type": "event", "name": "CommentAdded", "anonymous": false,
		"inputs": [
			{"name": "commentId", "type": "bytes32", "indexed": true},
			{"name": "author", "type": "address", "indexed": true},
			{"name": "app", "type": "address", "indexed": true},
			{"name": "channelId", "type": "uint256", "indexed": false},
			{"name": "parentId", "type": "bytes32", "indexed": false},
			{"name": "createdAt", "type": "uint96", "indexed": false},
			{"name": "content", "type": "string", "indexed": false},
			{"name": "targetUri", "type": "string", "indexed": false},
			{"name": "commentType", "type": "uint8", "indexed": false},
			{"name": "authMethod", "type": "uint8", "indexed": false},
			{"name": "metadata", "type": "tuple[]", "indexed": false, "components": [
				{"name": "key", "type": "bytes32"},
				{"name": "value", "type": "bytes"}
			]}
		]
	}
]`

const erc20JSON = `[
	{
		"type": "function", "name": "allowance", "stateMutability": "view",
		"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function", "name": "approve", "stateMutability": "nonpayable",
		"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bool"}]
	}
]`

var (
	CommentManagerABI = mustParseABI(commentManagerJSON)
	ERC20ABI          = mustParseABI(erc20JSON)
)

func mustParseABI(raw string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return &parsed
}

// MetadataEntry mirrors the on-chain metadata tuple.
type MetadataEntry struct {
	Key   [32]byte
	Value []byte
}

// CreateComment mirrors the on-chain comment tuple.
type CreateComment struct {
	Author      common.Address
	App         common.Address
	ChannelId   *big.Int
	Deadline    *big.Int
	ParentId    [32]byte
	CommentType uint8
	Content     string
	Metadata    []MetadataEntry
	TargetUri   string
}

// NewCreateComment converts a signed payload into its ABI form.
func NewCreateComment(d comments.CommentData) CreateComment {
	md := make([]MetadataEntry, 0, len(d.Metadata))
	for _, m := range d.Metadata {
		md = append(md, MetadataEntry{Key: m.Key, Value: m.Value})
	}
	return CreateComment{
		Author:      d.Author,
		App:         d.App,
		ChannelId:   d.ChannelID.Big(),
		Deadline:    d.Deadline.Big(),
		ParentId:    d.ParentID,
		CommentType: d.CommentType,
		Content:     d.Content,
		Metadata:    md,
		TargetUri:   d.TargetURI,
	}
}
