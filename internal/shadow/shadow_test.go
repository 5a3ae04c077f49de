package shadow_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"shadowlist/internal/identity"
	"shadowlist/internal/remote"
	"shadowlist/internal/shadow"
)

func TestParsePlaylist(t *testing.T) {
	text := `"My Great Playlist"
// Check those shoes out playa
"I hope you kept the receipt"
11102.0
["Aris Rage (Protect Your Ears)", "BasedMonster", "zbsbcKfqtSQ", "PTZI4WR47P"]
`
	p, err := shadow.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Title != "My Great Playlist" {
		t.Errorf("title = %q", p.Title)
	}
	if !reflect.DeepEqual(p.PlaylistComment, []string{"// Check those shoes out playa"}) {
		t.Errorf("playlist comment = %v", p.PlaylistComment)
	}
	if p.ID != "I hope you kept the receipt" {
		t.Errorf("id = %q", p.ID)
	}
	if p.Time != 11102.0 {
		t.Errorf("time = %v", p.Time)
	}
	if len(p.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(p.Items))
	}
	it := p.Items[0]
	if it.Title != "Aris Rage (Protect Your Ears)" {
		t.Errorf("item title = %q", it.Title)
	}
	if it.Channel == nil || *it.Channel != "BasedMonster" {
		t.Errorf("item channel = %v", it.Channel)
	}
	if it.VideoID != "zbsbcKfqtSQ" || it.Fingerprint != "PTZI4WR47P" {
		t.Errorf("item ids = %q %q", it.VideoID, it.Fingerprint)
	}
	if !it.Inline.Known() || it.Inline.Text() != "" {
		t.Errorf("inline comment should be confirmed absent, got %+v", it.Inline)
	}
}

func TestParseCommentStates(t *testing.T) {
	text := `"P"
"id"
1.5
// above the first item
// second comment line
["A", null, "v1", "F1"] // keep this one
["B", "Chan", "v2", "F2"]
`
	p, err := shadow.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(p.Items))
	}

	first := p.Items[0]
	want := []string{"// above the first item", "// second comment line"}
	if !reflect.DeepEqual(first.LeadingComment, want) {
		t.Errorf("leading comment = %v, want %v", first.LeadingComment, want)
	}
	if first.Channel != nil {
		t.Errorf("channel should be nil, got %q", *first.Channel)
	}
	if first.Inline.Text() != " // keep this one" {
		t.Errorf("inline comment = %q", first.Inline.Text())
	}

	second := p.Items[1]
	if len(second.LeadingComment) != 0 {
		t.Errorf("second item leading comment = %v", second.LeadingComment)
	}
	if !second.Inline.Known() || second.Inline.Text() != "" {
		t.Errorf("second item inline should be confirmed absent")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"title not a string", "42\n\"id\"\n1.0\n"},
		{"missing id", `"P"` + "\n"},
		{"missing timestamp", "\"P\"\n\"id\"\n"},
		{"timestamp not a number", "\"P\"\n\"id\"\n\"soon\"\n"},
		{"comment in timestamp slot", "\"P\"\n\"id\"\n// nope\n1.0\n"},
		{"short item array", "\"P\"\n\"id\"\n1.0\n[\"A\", \"B\", \"c\"]\n"},
		{"trailing garbage", "\"P\"\n\"id\"\n1.0\n[\"A\", null, \"v\", \"F\"] stray\n"},
		{"bad json item", "\"P\"\n\"id\"\n1.0\n[\"A\", null, \"v\",\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := shadow.Parse(tc.text)
			if !errors.Is(err, shadow.ErrParse) {
				t.Fatalf("want ErrParse, got %v", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	chan1 := "BasedMonster"
	p := &shadow.Playlist{
		Title:           "Mix & Match <3",
		PlaylistComment: []string{"// curated with love"},
		ID:              "PLkO4zZQGMOEj",
		Time:            1755555555.25,
		Items: []*shadow.Item{
			{
				Title:          "Aris Rage (Protect Your Ears)",
				Channel:        &chan1,
				VideoID:        "zbsbcKfqtSQ",
				Fingerprint:    "PTZI4WR47P",
				LeadingComment: []string{"// banger"},
				Inline:         shadow.NewInlineComment(" // don't move this"),
			},
			{
				Title:       "日本語のタイトルです",
				Channel:     nil,
				VideoID:     "aaaabbbbccc",
				Fingerprint: "AAAAAAAAAA",
				Inline:      shadow.NoInlineComment(),
			},
		},
	}

	text := p.Serialize()
	got, err := shadow.Parse(text)
	if err != nil {
		t.Fatalf("Parse(Serialize): %v\ntext:\n%s", err, text)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip mismatch\nwant %#v\ngot  %#v\ntext:\n%s", p, got, text)
	}

	// A second pass must be byte-stable.
	if again := got.Serialize(); again != text {
		t.Fatalf("serialization not stable:\n%s\nvs\n%s", text, again)
	}
}

func TestSerializeSkipsUnknownInline(t *testing.T) {
	p := &shadow.Playlist{
		Title: "P", ID: "id", Time: 1,
		Items: []*shadow.Item{
			{Title: "A", VideoID: "v", Fingerprint: "F", Inline: shadow.UnknownInlineComment()},
		},
	}
	text := p.Serialize()
	if strings.Contains(text, shadow.CommentMarker) {
		t.Fatalf("unknown inline comment leaked into output:\n%s", text)
	}
}

func TestItemFromRemote(t *testing.T) {
	topic := "Some Artist - Topic"
	it := shadow.ItemFromRemote(&remote.Item{
		ID:      "playlist-item-id-1",
		Title:   strings.Repeat("Very Long Title ", 5),
		Channel: &topic,
		VideoID: "vid123",
	})
	if w := len([]rune(it.Title)); w > shadow.MaxTitleWidth {
		t.Errorf("title not truncated: %q", it.Title)
	}
	if !strings.HasSuffix(it.Title, "…") {
		t.Errorf("truncated title lacks ellipsis: %q", it.Title)
	}
	if it.Channel == nil || *it.Channel != "Some Artist" {
		t.Errorf("topic suffix not stripped: %v", it.Channel)
	}
	if it.Fingerprint != identity.Fingerprint("playlist-item-id-1") {
		t.Errorf("fingerprint mismatch: %q", it.Fingerprint)
	}
	if it.Inline.Known() {
		t.Errorf("inline comment of a remote-built item must be unknown")
	}
}

func TestInsertItem(t *testing.T) {
	p := &shadow.Playlist{Items: []*shadow.Item{
		{Fingerprint: "A"}, {Fingerprint: "C"},
	}}
	p.InsertItem(1, &shadow.Item{Fingerprint: "B"})
	p.InsertItem(99, &shadow.Item{Fingerprint: "D"})
	var got []string
	for _, it := range p.Items {
		got = append(got, it.Fingerprint)
	}
	if !reflect.DeepEqual(got, []string{"A", "B", "C", "D"}) {
		t.Fatalf("order after insert = %v", got)
	}
}
