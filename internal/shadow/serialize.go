package shadow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"shadowlist/internal/textwidth"
)

// Serialize renders the playlist back to its shadow file text: title line,
// playlist comment, id line, timestamp line, then one block per item. The
// four item columns are padded to a shared display width per column; padding
// is recomputed on every write and never treated as data.
func (p *Playlist) Serialize() string {
	var b strings.Builder

	b.WriteString(encodeJSON(p.Title))
	b.WriteByte('\n')
	for _, c := range p.PlaylistComment {
		b.WriteString(c)
		b.WriteByte('\n')
	}
	b.WriteString(encodeJSON(p.ID))
	b.WriteByte('\n')
	b.WriteString(encodeJSON(p.Time))
	b.WriteByte('\n')

	cols := [4][]string{}
	for _, it := range p.Items {
		cols[0] = append(cols[0], encodeJSON(it.Title))
		if it.Channel == nil {
			cols[1] = append(cols[1], "null")
		} else {
			cols[1] = append(cols[1], encodeJSON(*it.Channel))
		}
		cols[2] = append(cols[2], encodeJSON(it.VideoID))
		cols[3] = append(cols[3], encodeJSON(it.Fingerprint))
	}
	for i := range cols {
		textwidth.LeftAlign(cols[i])
	}

	for i, it := range p.Items {
		for _, c := range it.LeadingComment {
			b.WriteString(c)
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s, %s, %s, %s]", cols[0][i], cols[1][i], cols[2][i], cols[3][i])
		if it.Inline.Text() != "" {
			b.WriteString(it.Inline.Text())
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// encodeJSON marshals v without HTML escaping, so titles with & or < survive
// round trips unmangled.
func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Only strings and floats reach here; neither can fail to encode.
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
