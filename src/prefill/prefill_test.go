package prefill

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/ecp-share/src/comments"
)

func TestParse(t *testing.T) {
	q, err := url.ParseQuery("targetUri=https%3A%2F%2Fexample.com&channelId=123&content=Great%20article!" +
		"&metadata=category:review:string,rating:5:uint256,broken,::,notype:x&__dev=true")
	require.NoError(t, err)

	p := Parse(q)
	assert.Equal(t, "https://example.com", p.TargetURI)
	assert.Equal(t, "123", p.ChannelID)
	assert.Equal(t, "Great article!", p.Content)
	assert.True(t, p.Dev)
	assert.Equal(t, []comments.MetadataEntry{
		{Key: "category", Value: "review", Type: comments.MetadataString},
		{Key: "rating", Value: "5", Type: comments.MetadataUint256},
		{Key: "notype", Value: "x", Type: comments.MetadataString},
	}, p.Metadata)
}

func TestParseDevFlagIsLiteral(t *testing.T) {
	assert.False(t, Parse(url.Values{ParamDev: {"1"}}).Dev)
	assert.False(t, Parse(url.Values{}).Dev)
}

func TestParseKeepsDuplicates(t *testing.T) {
	p := Parse(url.Values{ParamMetadata: {"a:1,a:2"}})
	require.Len(t, p.Metadata, 2)
	assert.Equal(t, "1", p.Metadata[0].Value)
	assert.Equal(t, "2", p.Metadata[1].Value)
}

func TestShareLinkRoundTrip(t *testing.T) {
	draft := comments.Draft{
		TargetURI: "https://example.com/post?id=1&x=a b",
		ChannelID: "42",
		Content:   "Hello, world: 100% + more\nsecond line",
		Metadata: []comments.MetadataEntry{
			{Key: "tag:with,separators", Value: "v:1,2", Type: comments.MetadataString},
			{Key: "", Value: "dropped", Type: comments.MetadataString},
			{Key: "blank", Value: "", Type: comments.MetadataBool},
			{Key: "n", Value: "7", Type: comments.MetadataUint256},
			{Key: "n", Value: "8", Type: comments.MetadataUint256},
		},
	}

	link := ShareURL("https://share.example/", draft)
	u, err := url.Parse(link)
	require.NoError(t, err)

	got := Parse(u.Query())
	assert.Equal(t, draft.TargetURI, got.TargetURI)
	assert.Equal(t, draft.ChannelID, got.ChannelID)
	assert.Equal(t, draft.Content, got.Content)
	assert.Equal(t, comments.UsableMetadata(draft.Metadata), got.Metadata)
	assert.False(t, got.Dev)
}

func TestEncodeMetadataDropsBlankEntries(t *testing.T) {
	encoded := EncodeMetadata([]comments.MetadataEntry{
		{Key: "a", Value: "1"},
		{Key: " ", Value: "2"},
		{Key: "c", Value: ""},
	})
	assert.Equal(t, "a:1:string", encoded)
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	assert.Empty(t, Encode(comments.Draft{}))
}

func TestParseKeepsUnknownType(t *testing.T) {
	p := Parse(url.Values{ParamMetadata: {"amount:5:uint"}})
	require.Len(t, p.Metadata, 1)
	assert.Equal(t, comments.MetadataType("uint"), p.Metadata[0].Type)

	_, err := comments.NormalizeMetadata(p.Metadata)
	assert.Equal(t, comments.KindInvalidMetadata, comments.KindOf(err))

	q, err := url.ParseQuery(Encode(p.Draft()).Encode())
	require.NoError(t, err)
	assert.Equal(t, p.Metadata, Parse(q).Metadata)
}
