package comments

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMetadataDropsBlankEntries(t *testing.T) {
	entries := []MetadataEntry{
		{Key: "category", Value: "review", Type: MetadataString},
		{Key: "", Value: "orphan", Type: MetadataString},
		{Key: "rating", Value: "5", Type: MetadataUint256},
		{Key: "empty", Value: "   ", Type: MetadataString},
	}

	out, err := NormalizeMetadata(entries)
	require.NoError(t, err)
	require.Len(t, out, 2)

	wantKey, err := MetadataKey("category", MetadataString)
	require.NoError(t, err)
	assert.Equal(t, wantKey, out[0].Key)
	assert.Equal(t, []byte("review"), []byte(out[0].Value))

	assert.Len(t, []byte(out[1].Value), 32)
	assert.Equal(t, int64(5), new(big.Int).SetBytes(out[1].Value).Int64())
}

func TestMetadataKeyLayout(t *testing.T) {
	key, err := MetadataKey("title", MetadataString)
	require.NoError(t, err)
	assert.Equal(t, []byte("string title"), key[:len("string title")])
	assert.Equal(t, make([]byte, 32-len("string title")), key[len("string title"):])

	_, err = MetadataKey("a-key-that-is-far-too-long-to-fit", MetadataString)
	require.Error(t, err)
	assert.Equal(t, KindInvalidMetadata, KindOf(err))
}

func TestEncodeMetadataValue(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		v, err := EncodeMetadataValue(MetadataBool, "true")
		require.NoError(t, err)
		assert.Equal(t, byte(1), v[31])
	})

	t.Run("address", func(t *testing.T) {
		addr := "0x00000000000000000000000000000000000000aa"
		v, err := EncodeMetadataValue(MetadataAddress, addr)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(addr).Bytes(), v[12:])
	})

	t.Run("bytes32 pads right", func(t *testing.T) {
		v, err := EncodeMetadataValue(MetadataBytes32, "0x0102")
		require.NoError(t, err)
		require.Len(t, v, 32)
		assert.Equal(t, []byte{1, 2, 0}, v[:3])
	})

	t.Run("negative uint rejected", func(t *testing.T) {
		_, err := EncodeMetadataValue(MetadataUint256, "-1")
		assert.Error(t, err)
	})

	t.Run("int256 accepts negatives", func(t *testing.T) {
		v, err := EncodeMetadataValue(MetadataInt256, "-1")
		require.NoError(t, err)
		assert.Equal(t, byte(0xff), v[0])
	})
}

func TestEncodeMetadataEntryInvalidValue(t *testing.T) {
	_, err := EncodeMetadataEntry("flag", MetadataBool, "maybe")
	require.Error(t, err)
	assert.Equal(t, KindInvalidMetadata, KindOf(err))
	assert.True(t, IsValidation(err))
}

func TestDuplicateKeys(t *testing.T) {
	entries := []MetadataEntry{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: " a ", Value: "3"},
		{Key: "", Value: "4"},
		{Key: "", Value: "5"},
	}
	assert.Equal(t, []int{0, 2}, DuplicateKeys(entries))
}

func TestParseMetadataType(t *testing.T) {
	typ, ok := ParseMetadataType("")
	assert.True(t, ok)
	assert.Equal(t, MetadataString, typ)

	typ, ok = ParseMetadataType("bytes32")
	assert.True(t, ok)
	assert.Equal(t, MetadataBytes32, typ)

	_, ok = ParseMetadataType("float")
	assert.False(t, ok)
}

func TestNormalizeMetadataRejectsUnknownType(t *testing.T) {
	_, err := NormalizeMetadata([]MetadataEntry{{Key: "amount", Value: "5", Type: MetadataType("uint")}})
	require.Error(t, err)
	assert.Equal(t, KindInvalidMetadata, KindOf(err))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), `unsupported type "uint"`)
}

func TestEncodeMetadataValueInt256Bounds(t *testing.T) {
	lo := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))

	v, err := EncodeMetadataValue(MetadataInt256, lo.String())
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), v[0])

	_, err = EncodeMetadataValue(MetadataInt256, hi.String())
	require.NoError(t, err)

	_, err = EncodeMetadataValue(MetadataInt256, new(big.Int).Sub(lo, big.NewInt(1)).String())
	assert.Error(t, err)
	_, err = EncodeMetadataValue(MetadataInt256, new(big.Int).Add(hi, big.NewInt(1)).String())
	assert.Error(t, err)
}
