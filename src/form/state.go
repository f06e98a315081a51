// Package form holds the state of one comment form: the draft fields, the
// channel list, the editor and the values a deep link asked for before their
// targets were ready.
package form

import (
	"slices"
	"sync"

	"github.com/stake-plus/ecp-share/src/comments"
	"github.com/stake-plus/ecp-share/src/editor"
	"github.com/stake-plus/ecp-share/src/indexer"
	"github.com/stake-plus/ecp-share/src/prefill"
)

// Phase drives the submit button only.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePosting Phase = "posting"
)

// deferred holds a value until the thing it applies to is ready. It is taken
// at most once.
type deferred[T any] struct {
	value T
	set   bool
}

func (d *deferred[T]) offer(v T) {
	d.value, d.set = v, true
}

func (d *deferred[T]) take() (T, bool) {
	v, ok := d.value, d.set
	var zero T
	d.value, d.set = zero, false
	return v, ok
}

// State is safe for concurrent use.
type State struct {
	mu        sync.Mutex
	targetURI string
	channelID string
	metadata  []comments.MetadataEntry
	channels  []comments.Channel
	editor    *editor.Editor
	phase     Phase
	dev       bool

	pendingChannel deferred[string]
	pendingContent deferred[string]
}

// New returns an empty, idle form.
func New() *State {
	return &State{phase: PhaseIdle}
}

// ApplyPrefill seeds the form from a deep link. The target URI and metadata
// apply immediately; the channel waits for a non-empty channel list and the
// content waits for the editor.
func (s *State) ApplyPrefill(p prefill.Prefill) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dev = p.Dev
	if p.TargetURI != "" {
		s.targetURI = p.TargetURI
	}
	if len(p.Metadata) > 0 {
		s.metadata = slices.Clone(p.Metadata)
	}
	if p.ChannelID != "" {
		s.pendingChannel.offer(p.ChannelID)
		if len(s.channels) > 0 {
			s.applyPendingChannel()
		}
	}
	if p.Content != "" {
		s.pendingContent.offer(p.Content)
		if s.editor != nil {
			s.applyPendingContent()
		}
	}
}

// ChannelsLoaded installs a freshly loaded, already ordered channel list. When
// no channel is selected the default is chosen, then a pending deep-link
// channel overrides it.
func (s *State) ChannelsLoaded(channels []comments.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = slices.Clone(channels)
	if len(channels) == 0 {
		return
	}
	if s.channelID == "" {
		s.channelID = indexer.DefaultChannelID(channels)
	}
	s.applyPendingChannel()
}

// AttachEditor makes ed the form's editor and hands it any pending content.
func (s *State) AttachEditor(ed *editor.Editor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor = ed
	if ed != nil {
		s.applyPendingContent()
	}
}

func (s *State) applyPendingChannel() {
	if id, ok := s.pendingChannel.take(); ok {
		s.channelID = id
	}
}

func (s *State) applyPendingContent() {
	if content, ok := s.pendingContent.take(); ok {
		s.editor.SetContent(content)
	}
}

// Editor returns the attached editor, nil before AttachEditor.
func (s *State) Editor() *editor.Editor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor
}

func (s *State) TargetURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetURI
}

func (s *State) SetTargetURI(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetURI = v
}

func (s *State) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

func (s *State) SetChannelID(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = v
}

// Channel returns the selected channel when it is in the loaded list.
func (s *State) Channel() (comments.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.channels {
		if ch.ID == s.channelID {
			return ch, true
		}
	}
	return comments.Channel{}, false
}

// Channels returns the loaded channel list.
func (s *State) Channels() []comments.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.channels)
}

func (s *State) Metadata() []comments.MetadataEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.metadata)
}

func (s *State) SetMetadata(entries []comments.MetadataEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = slices.Clone(entries)
}

// AddMetadata appends an entry, defaulting its type to string.
func (s *State) AddMetadata(e comments.MetadataEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Type == "" {
		e.Type = comments.MetadataString
	}
	s.metadata = append(s.metadata, e)
}

// DuplicateKeys returns the metadata rows to flag as duplicates.
func (s *State) DuplicateKeys() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return comments.DuplicateKeys(s.metadata)
}

// DevMode reports whether the deep link asked for the share-link builder.
func (s *State) DevMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) SetPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// Draft snapshots the serialisable fields. Content comes from the editor, or
// from a deep link still waiting for one.
func (s *State) Draft() comments.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := comments.Draft{
		TargetURI: s.targetURI,
		ChannelID: s.channelID,
		Metadata:  slices.Clone(s.metadata),
	}
	if s.editor != nil {
		d.Content = s.editor.Content()
	} else if s.pendingContent.set {
		d.Content = s.pendingContent.value
	}
	if d.ChannelID == "" && s.pendingChannel.set {
		d.ChannelID = s.pendingChannel.value
	}
	return d
}

// Reset clears what a successful submission consumed. The channel selection
// is kept.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor != nil {
		s.editor.Clear()
	}
	s.targetURI = ""
	s.metadata = nil
}
