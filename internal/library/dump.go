package library

import (
	"bytes"
	"encoding/json"
	"strings"

	"shadowlist/internal/remote"
	"shadowlist/internal/textwidth"
)

// fullDump renders the untruncated mirror of a remote snapshot. Unlike the
// friendly shadow it keeps full-length titles and channels and carries the
// remote playlist-item ids, so position pushes can be reconstructed even if
// the friendly file is lost. Full dumps are write-only output, never parsed
// back.
func fullDump(pl *remote.Playlist, items []*remote.Item) string {
	var b strings.Builder
	b.WriteString(dumpJSON(pl.Title))
	b.WriteString("\n")
	b.WriteString(dumpJSON(map[string]any{
		"playlist_id": pl.ID,
		"item_count":  len(items),
	}))
	b.WriteString("\n")

	titles := make([]string, len(items))
	channels := make([]string, len(items))
	videoIDs := make([]string, len(items))
	itemIDs := make([]string, len(items))
	for i, it := range items {
		titles[i] = dumpJSON(it.Title) + ","
		if it.Channel == nil {
			channels[i] = "null,"
		} else {
			channels[i] = dumpJSON(*it.Channel) + ","
		}
		videoIDs[i] = dumpJSON(it.VideoID) + ","
		itemIDs[i] = dumpJSON(it.ID)
	}
	textwidth.LeftAlign(titles)
	textwidth.LeftAlign(channels)
	textwidth.LeftAlign(videoIDs)

	for i := range items {
		b.WriteString("[")
		b.WriteString(titles[i])
		b.WriteString(" ")
		b.WriteString(channels[i])
		b.WriteString(" ")
		b.WriteString(videoIDs[i])
		b.WriteString(" ")
		b.WriteString(itemIDs[i])
		b.WriteString("]\n")
	}
	return b.String()
}

func dumpJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
