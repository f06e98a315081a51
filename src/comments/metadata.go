package comments

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MetadataType is the Solidity type a metadata value is encoded as.
type MetadataType string

const (
	MetadataString  MetadataType = "string"
	MetadataUint256 MetadataType = "uint256"
	MetadataInt256  MetadataType = "int256"
	MetadataAddress MetadataType = "address"
	MetadataBool    MetadataType = "bool"
	MetadataBytes   MetadataType = "bytes"
	MetadataBytes32 MetadataType = "bytes32"
)

// MetadataTypes lists every supported type in display order.
var MetadataTypes = []MetadataType{
	MetadataString, MetadataUint256, MetadataInt256, MetadataAddress,
	MetadataBool, MetadataBytes, MetadataBytes32,
}

// ParseMetadataType resolves s, defaulting to string when s is empty.
func ParseMetadataType(s string) (MetadataType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MetadataString, true
	}
	for _, t := range MetadataTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// MetadataEntry is a typed key/value pair as edited in the form.
type MetadataEntry struct {
	Key   string       `json:"key"`
	Value string       `json:"value"`
	Type  MetadataType `json:"type"`
}

// Usable reports whether the entry survives submission and share links.
func (m MetadataEntry) Usable() bool {
	return strings.TrimSpace(m.Key) != "" && strings.TrimSpace(m.Value) != ""
}

// EncodedMetadata is the protocol representation of a metadata entry.
type EncodedMetadata struct {
	Key   common.Hash   `json:"key"`
	Value hexutil.Bytes `json:"value"`
}

// UsableMetadata drops entries with a blank key or value, keeping order.
func UsableMetadata(entries []MetadataEntry) []MetadataEntry {
	out := make([]MetadataEntry, 0, len(entries))
	for _, e := range entries {
		if e.Usable() {
			out = append(out, e)
		}
	}
	return out
}

// DuplicateKeys returns the indexes of entries whose trimmed key is shared
// with another entry. Duplicates are reported, never removed.
func DuplicateKeys(entries []MetadataEntry) []int {
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if k := strings.TrimSpace(e.Key); k != "" {
			seen[k]++
		}
	}
	var dups []int
	for i, e := range entries {
		if seen[strings.TrimSpace(e.Key)] > 1 {
			dups = append(dups, i)
		}
	}
	return dups
}

// NormalizeMetadata converts the usable entries of a draft into the protocol
// encoding.
func NormalizeMetadata(entries []MetadataEntry) ([]EncodedMetadata, error) {
	usable := UsableMetadata(entries)
	out := make([]EncodedMetadata, 0, len(usable))
	for _, e := range usable {
		enc, err := EncodeMetadataEntry(e.Key, e.Type, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// EncodeMetadataEntry encodes a single entry.
func EncodeMetadataEntry(key string, typ MetadataType, value string) (EncodedMetadata, error) {
	if typ == "" {
		typ = MetadataString
	}
	if _, ok := ParseMetadataType(string(typ)); !ok {
		return EncodedMetadata{}, &Error{
			Kind:   KindInvalidMetadata,
			Msg:    "invalid metadata type",
			Fields: map[string][]string{"metadata." + key: {fmt.Sprintf("unsupported type %q", typ)}},
		}
	}
	k, err := MetadataKey(key, typ)
	if err != nil {
		return EncodedMetadata{}, err
	}
	v, err := EncodeMetadataValue(typ, value)
	if err != nil {
		return EncodedMetadata{}, &Error{
			Kind:   KindInvalidMetadata,
			Msg:    "invalid metadata value",
			Fields: map[string][]string{"metadata." + key: {err.Error()}},
		}
	}
	return EncodedMetadata{Key: k, Value: v}, nil
}

// MetadataKey packs "<type> <key>" left-aligned into 32 bytes.
func MetadataKey(key string, typ MetadataType) (common.Hash, error) {
	raw := string(typ) + " " + key
	if len(raw) > common.HashLength {
		return common.Hash{}, &Error{
			Kind:   KindInvalidMetadata,
			Msg:    "invalid metadata key",
			Fields: map[string][]string{"metadata." + key: {fmt.Sprintf("key and type must fit in %d bytes", common.HashLength)}},
		}
	}
	var h common.Hash
	copy(h[:], raw)
	return h, nil
}

// EncodeMetadataValue ABI-encodes value according to typ.
func EncodeMetadataValue(typ MetadataType, value string) ([]byte, error) {
	switch typ {
	case MetadataString:
		return []byte(value), nil
	case MetadataBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%q is not a bool", value)
		}
		return packSingle("bool", b)
	case MetadataUint256:
		n, ok := new(big.Int).SetString(strings.TrimSpace(value), 0)
		if !ok || n.Sign() < 0 || n.BitLen() > 256 {
			return nil, fmt.Errorf("%q is not a uint256", value)
		}
		return packSingle("uint256", n)
	case MetadataInt256:
		n, ok := new(big.Int).SetString(strings.TrimSpace(value), 0)
		if !ok || n.Cmp(minInt256) < 0 || n.Cmp(maxInt256) > 0 {
			return nil, fmt.Errorf("%q is not an int256", value)
		}
		return packSingle("int256", n)
	case MetadataAddress:
		v := strings.TrimSpace(value)
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("%q is not an address", value)
		}
		return packSingle("address", common.HexToAddress(v))
	case MetadataBytes:
		v := strings.TrimSpace(value)
		if has0x(v) {
			b, err := hexutil.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("%q is not hex bytes", value)
			}
			return b, nil
		}
		return []byte(value), nil
	case MetadataBytes32:
		v := strings.TrimSpace(value)
		var raw []byte
		if has0x(v) {
			b, err := hexutil.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("%q is not hex bytes", value)
			}
			raw = b
		} else {
			raw = []byte(v)
		}
		if len(raw) > 32 {
			return nil, fmt.Errorf("%q is longer than 32 bytes", value)
		}
		out := make([]byte, 32)
		copy(out, raw)
		return out, nil
	}
	return nil, fmt.Errorf("unsupported metadata type %q", typ)
}

var (
	maxInt256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minInt256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

func packSingle(solType string, v any) ([]byte, error) {
	t, err := abi.NewType(solType, "", nil)
	if err != nil {
		return nil, err
	}
	return abi.Arguments{{Type: t}}.Pack(v)
}

func has0x(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
