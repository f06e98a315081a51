// Package prefill maps between deep-link query parameters and a comment draft.
package prefill

import (
	"net/url"
	"strings"

	"github.com/stake-plus/ecp-share/src/comments"
)

// Query parameter names shared by Parse and Encode.
const (
	ParamTargetURI = "targetUri"
	ParamChannelID = "channelId"
	ParamContent   = "content"
	ParamMetadata  = "metadata"
	ParamDev       = "__dev"
)

// Prefill is what a deep link asks the form to start with. Empty strings mean
// the parameter was absent.
type Prefill struct {
	TargetURI string
	ChannelID string
	Content   string
	Metadata  []comments.MetadataEntry
	Dev       bool
}

// Draft returns the prefill as a draft.
func (p Prefill) Draft() comments.Draft {
	return comments.Draft{
		TargetURI: p.TargetURI,
		ChannelID: p.ChannelID,
		Content:   p.Content,
		Metadata:  p.Metadata,
	}
}

// Parse reads the deep-link parameters from q.
func Parse(q url.Values) Prefill {
	p := Prefill{
		TargetURI: decodeComponent(q.Get(ParamTargetURI)),
		ChannelID: q.Get(ParamChannelID),
		Content:   decodeComponent(q.Get(ParamContent)),
		Dev:       q.Get(ParamDev) == "true",
	}
	if raw := q.Get(ParamMetadata); raw != "" {
		p.Metadata = ParseMetadata(raw)
	}
	return p
}

// ParseMetadata splits "key:value:type,..." into entries. Entries without a
// key or value are dropped; duplicates are kept.
func ParseMetadata(raw string) []comments.MetadataEntry {
	var out []comments.MetadataEntry
	for _, item := range strings.Split(raw, ",") {
		parts := strings.Split(item, ":")
		if len(parts) < 2 {
			continue
		}
		key := decodeComponent(parts[0])
		value := decodeComponent(parts[1])
		if key == "" || value == "" {
			continue
		}
		// Unknown types are kept so submission can reject them.
		typ := comments.MetadataString
		if len(parts) > 2 {
			if raw := strings.TrimSpace(decodeComponent(parts[2])); raw != "" {
				typ = comments.MetadataType(raw)
			}
		}
		out = append(out, comments.MetadataEntry{Key: key, Value: value, Type: typ})
	}
	return out
}

// Encode is the inverse of Parse for the draft fields.
func Encode(d comments.Draft) url.Values {
	q := url.Values{}
	if d.TargetURI != "" {
		q.Set(ParamTargetURI, encodeComponent(d.TargetURI))
	}
	if d.ChannelID != "" {
		q.Set(ParamChannelID, d.ChannelID)
	}
	if d.Content != "" {
		q.Set(ParamContent, encodeComponent(d.Content))
	}
	if m := EncodeMetadata(d.Metadata); m != "" {
		q.Set(ParamMetadata, m)
	}
	return q
}

// EncodeMetadata joins the usable entries as "key:value:type,...".
func EncodeMetadata(entries []comments.MetadataEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range comments.UsableMetadata(entries) {
		typ := e.Type
		if typ == "" {
			typ = comments.MetadataString
		}
		parts = append(parts, encodeComponent(e.Key)+":"+encodeComponent(e.Value)+":"+encodeComponent(string(typ)))
	}
	return strings.Join(parts, ",")
}

// ShareURL appends the encoded draft to base, replacing any existing query.
func ShareURL(base string, d comments.Draft) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + Encode(d).Encode()
	}
	u.RawQuery = Encode(d).Encode()
	return u.String()
}

// encodeComponent escapes everything but unreserved characters, including
// the ':' and ',' separators.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// decodeComponent undoes encodeComponent. Malformed escapes are kept as-is.
func decodeComponent(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
