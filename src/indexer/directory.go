package indexer

import (
	"context"
	"log"
	"sync"

	"github.com/stake-plus/ecp-share/src/comments"
)

// OrderChannels puts the home channel first and reverses the rest relative to
// their fetch order.
func OrderChannels(fetched []comments.Channel) []comments.Channel {
	out := make([]comments.Channel, 0, len(fetched))
	rest := make([]comments.Channel, 0, len(fetched))
	homeFound := false
	for _, ch := range fetched {
		if !homeFound && ch.IsHome() {
			out = append(out, ch)
			homeFound = true
			continue
		}
		rest = append(rest, ch)
	}
	for i := len(rest) - 1; i >= 0; i-- {
		out = append(out, rest[i])
	}
	return out
}

// DefaultChannelID picks home when present, otherwise the first channel.
func DefaultChannelID(ordered []comments.Channel) string {
	for _, ch := range ordered {
		if ch.IsHome() {
			return ch.ID
		}
	}
	if len(ordered) > 0 {
		return ordered[0].ID
	}
	return ""
}

type channelSource interface {
	Channels(ctx context.Context, q ChannelQuery) ([]comments.Channel, error)
}

// Directory holds the ordered channel list for one chain.
//
// Loads are not serialised: when two overlap, whichever response lands last
// replaces the list.
type Directory struct {
	source  channelSource
	query   ChannelQuery
	logger  *log.Logger
	mu      sync.RWMutex
	loading bool
	list    []comments.Channel
}

// NewDirectory creates a directory for chainID.
func NewDirectory(source channelSource, chainID uint64, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.Default()
	}
	return &Directory{
		source:  source,
		query:   ChannelQuery{ChainID: chainID, Limit: DefaultChannelLimit, Sort: DefaultChannelSort},
		logger:  logger,
		loading: true,
	}
}

// Load fetches and orders the channels. On failure the previous list is kept
// and the error is returned after being logged.
func (d *Directory) Load(ctx context.Context) ([]comments.Channel, error) {
	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	fetched, err := d.source.Channels(ctx, d.query)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.logger.Printf("indexer: error fetching channels: %v", err)
		return d.snapshot(), err
	}
	d.list = OrderChannels(fetched)
	return d.snapshot(), nil
}

// Channels returns the last loaded list.
func (d *Directory) Channels() []comments.Channel {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot()
}

// Loading reports whether no load has completed since the last Load call.
func (d *Directory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

func (d *Directory) snapshot() []comments.Channel {
	out := make([]comments.Channel, len(d.list))
	copy(out, d.list)
	return out
}
