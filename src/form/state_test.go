package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/prefill"
)

func channels(names ...string) []comments.Channel {
	out := make([]comments.Channel, len(names))
	for i, n := range names {
		out[i] = comments.Channel{ID: n + "-id", Name: n}
	}
	return out
}

func TestPendingChannelWaitsForNonEmptyList(t *testing.T) {
	s := New()
	s.ApplyPrefill(prefill.Prefill{ChannelID: "b-id"})
	assert.Empty(t, s.ChannelID())

	s.ChannelsLoaded(nil)
	assert.Empty(t, s.ChannelID())

	s.ChannelsLoaded(channels("home", "b"))
	assert.Equal(t, "b-id", s.ChannelID())

	// taken once: a later load keeps the user's choice
	s.SetChannelID("home-id")
	s.ChannelsLoaded(channels("home", "b"))
	assert.Equal(t, "home-id", s.ChannelID())
}

func TestChannelsLoadedSelectsDefault(t *testing.T) {
	s := New()
	s.ChannelsLoaded(channels("home", "a"))
	assert.Equal(t, "home-id", s.ChannelID())

	ch, ok := s.Channel()
	require.True(t, ok)
	assert.Equal(t, "home", ch.Name)
}

func TestPrefillAfterChannelsAppliesImmediately(t *testing.T) {
	s := New()
	s.ChannelsLoaded(channels("home", "a"))
	s.ApplyPrefill(prefill.Prefill{ChannelID: "a-id"})
	assert.Equal(t, "a-id", s.ChannelID())
}

func TestPendingContentWaitsForEditor(t *testing.T) {
	s := New()
	s.ApplyPrefill(prefill.Prefill{Content: "Great article!"})
	assert.Equal(t, "Great article!", s.Draft().Content)

	ed := editor.New()
	s.AttachEditor(ed)
	assert.Equal(t, "Great article!", ed.Content())

	ed.SetContent("edited")
	s.AttachEditor(ed)
	assert.Equal(t, "edited", ed.Content())
}

func TestApplyPrefillFields(t *testing.T) {
	s := New()
	s.ApplyPrefill(prefill.Prefill{
		TargetURI: "https://example.com",
		Metadata:  []comments.MetadataEntry{{Key: "a", Value: "1", Type: comments.MetadataString}},
		Dev:       true,
	})
	assert.Equal(t, "https://example.com", s.TargetURI())
	assert.Len(t, s.Metadata(), 1)
	assert.True(t, s.DevMode())
}

func TestAddMetadataDefaultsType(t *testing.T) {
	s := New()
	s.AddMetadata(comments.MetadataEntry{Key: "k", Value: "v"})
	s.AddMetadata(comments.MetadataEntry{Key: "k", Value: "w"})
	assert.Equal(t, comments.MetadataString, s.Metadata()[0].Type)
	assert.Equal(t, []int{0, 1}, s.DuplicateKeys())
}

func TestResetKeepsChannel(t *testing.T) {
	s := New()
	ed := editor.New()
	s.AttachEditor(ed)
	s.ChannelsLoaded(channels("home"))
	s.SetTargetURI("https://example.com")
	s.AddMetadata(comments.MetadataEntry{Key: "k", Value: "v"})
	ed.SetContent("<p>hi</p>")

	s.Reset()
	assert.Empty(t, s.TargetURI())
	assert.Empty(t, s.Metadata())
	assert.Empty(t, ed.Content())
	assert.Equal(t, "home-id", s.ChannelID())
}

func TestPhase(t *testing.T) {
	s := New()
	assert.Equal(t, PhaseIdle, s.Phase())
	s.SetPhase(PhasePosting)
	assert.Equal(t, PhasePosting, s.Phase())
}
