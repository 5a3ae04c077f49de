package shadow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse reports shadow text that violates the grammar. Callers are
// expected to treat this as non-fatal: discard the shadow and rebuild it from
// the remote source.
var ErrParse = errors.New("malformed shadow text")

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}

// Parse reads the full text of a shadow file. Blank lines are skipped
// everywhere; comment lines above the title or directly after it become the
// playlist comment; comment lines above an item line become that item's
// leading comment. Any structural violation returns an error wrapping
// ErrParse.
func Parse(text string) (*Playlist, error) {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	p := &Playlist{}
	i := 0

	var pending []string
	titleLine := ""
	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, CommentMarker) {
			pending = append(pending, ln)
			continue
		}
		titleLine = ln
		i++
		break
	}
	if titleLine == "" {
		return nil, parseErrorf("missing title line")
	}
	title, err := decodeString(titleLine, "title")
	if err != nil {
		return nil, err
	}
	p.Title = title

	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, CommentMarker) {
			pending = append(pending, ln)
			continue
		}
		break
	}
	p.PlaylistComment = pending

	idLine, ok := nextDataLine(lines, &i)
	if !ok {
		return nil, parseErrorf("missing id line")
	}
	id, err := decodeString(idLine, "id")
	if err != nil {
		return nil, err
	}
	p.ID = id

	timeLine, ok := nextDataLine(lines, &i)
	if !ok {
		return nil, parseErrorf("missing timestamp line")
	}
	ts, err := decodeNumber(timeLine, "timestamp")
	if err != nil {
		return nil, err
	}
	p.Time = ts

	var leading []string
	for ; i < len(lines); i++ {
		ln := lines[i]
		if ln == "" {
			continue
		}
		if strings.HasPrefix(ln, CommentMarker) {
			leading = append(leading, ln)
			continue
		}
		item, err := parseItemLine(ln, leading)
		if err != nil {
			return nil, err
		}
		p.Items = append(p.Items, item)
		leading = nil
	}

	return p, nil
}

// nextDataLine advances past blank lines and returns the next line verbatim.
// Comment lines are not skipped here: the id and timestamp slots admit no
// comments, and a comment line will fail JSON decoding with a parse error.
func nextDataLine(lines []string, i *int) (string, bool) {
	for ; *i < len(lines); *i++ {
		if lines[*i] == "" {
			continue
		}
		ln := lines[*i]
		*i++
		return ln, true
	}
	return "", false
}

func decodeString(line, what string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(line), &s); err != nil {
		return "", parseErrorf("%s must be a JSON string: %v", what, err)
	}
	return s, nil
}

func decodeNumber(line, what string) (float64, error) {
	var n float64
	if err := json.Unmarshal([]byte(line), &n); err != nil {
		return 0, parseErrorf("%s must be a JSON number: %v", what, err)
	}
	return n, nil
}

// parseItemLine decodes one item record: a four-element JSON array optionally
// followed by inline comment text on the same physical line. Whitespace after
// the array means a confirmed-absent inline comment; text starting with the
// comment marker is kept verbatim; anything else is a parse error.
func parseItemLine(line string, leading []string) (*Item, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	var fields []any
	if err := dec.Decode(&fields); err != nil {
		return nil, parseErrorf("item line %q: %v", line, err)
	}
	if len(fields) != 4 {
		return nil, parseErrorf("item line %q: want 4 fields, got %d", line, len(fields))
	}

	title, ok := fields[0].(string)
	if !ok {
		return nil, parseErrorf("item line %q: title must be a string", line)
	}
	var channel *string
	switch c := fields[1].(type) {
	case nil:
	case string:
		channel = &c
	default:
		return nil, parseErrorf("item line %q: channel must be a string or null", line)
	}
	videoID, ok := fields[2].(string)
	if !ok {
		return nil, parseErrorf("item line %q: video id must be a string", line)
	}
	fingerprint, ok := fields[3].(string)
	if !ok {
		return nil, parseErrorf("item line %q: fingerprint must be a string", line)
	}

	rest := line[dec.InputOffset():]
	var inline InlineComment
	switch trimmed := strings.TrimSpace(rest); {
	case trimmed == "":
		inline = NoInlineComment()
	case strings.HasPrefix(trimmed, CommentMarker):
		inline = NewInlineComment(rest)
	default:
		return nil, parseErrorf("unexpected text %q after %q", trimmed, title)
	}

	return &Item{
		Title:          title,
		Channel:        channel,
		VideoID:        videoID,
		Fingerprint:    fingerprint,
		LeadingComment: leading,
		Inline:         inline,
	}, nil
}
