package comments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// HomeChannelName is the channel promoted to the top of the directory.
const HomeChannelName = "home"

// Channel is a posting destination as listed by the indexer.
type Channel struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       string            `json:"owner"`
	Hook        *string           `json:"hook"`
	CreatedAt   *string           `json:"createdAt"`
	UpdatedAt   *string           `json:"updatedAt"`
	Metadata    []ChannelMetadata `json:"metadata"`
	ChainID     uint64            `json:"chainId"`
}

// ChannelMetadata is a raw key/value pair attached to a channel.
type ChannelMetadata struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IsHome reports whether c is the distinguished home channel.
func (c Channel) IsHome() bool {
	return strings.EqualFold(c.Name, HomeChannelName)
}

// HookAddress returns the channel hook, if it has one.
func (c Channel) HookAddress() (common.Address, bool) {
	if c.Hook == nil || !common.IsHexAddress(*c.Hook) {
		return common.Address{}, false
	}
	addr := common.HexToAddress(*c.Hook)
	if addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

// Draft is the serialisable part of the comment form.
type Draft struct {
	TargetURI string          `json:"targetUri"`
	ChannelID string          `json:"channelId"`
	Content   string          `json:"content"`
	Metadata  []MetadataEntry `json:"metadata"`
}

// CommentData is the payload returned by the signer service, ready to be
// posted to the comment manager.
type CommentData struct {
	Author      common.Address    `json:"author"`
	App         common.Address    `json:"app"`
	ChannelID   BigInt            `json:"channelId"`
	Deadline    BigInt            `json:"deadline"`
	ParentID    common.Hash       `json:"parentId"`
	CommentType uint8             `json:"commentType"`
	Content     string            `json:"content"`
	Metadata    []EncodedMetadata `json:"metadata"`
	TargetURI   string            `json:"targetUri"`
}

// BigInt accepts quoted decimal or hex strings as well as bare JSON numbers.
type BigInt struct {
	big.Int
}

// NewBigInt copies v.
func NewBigInt(v *big.Int) BigInt {
	var b BigInt
	if v != nil {
		b.Set(v)
	}
	return b
}

// Big returns a copy usable as an ABI argument.
func (b *BigInt) Big() *big.Int {
	return new(big.Int).Set(&b.Int)
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Int.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		b.SetInt64(0)
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		b.SetInt64(0)
		return nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, ok := b.SetString(s[2:], 16); !ok {
			return fmt.Errorf("bigint %q: not a hex number", s)
		}
		return nil
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("bigint %q: not a number", s)
	}
	return nil
}
