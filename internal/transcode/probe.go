package transcode

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Metadata is what an audio file's tags say about a song.
type Metadata struct {
	Title    string
	Creators []string
	Artwork  []byte
}

// Probe reads the tags of path. Files without tags yield the file name as
// title and no creators.
func Probe(path string) (Metadata, error) {
	md := Metadata{Title: stem(path)}

	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return md, nil //nolint:nilerr // untagged files are fine
	}
	if title := strings.TrimSpace(m.Title()); title != "" {
		md.Title = title
	}
	md.Creators = SplitCreators(m.Artist())
	if len(md.Creators) == 0 {
		md.Creators = SplitCreators(m.AlbumArtist())
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		md.Artwork = pic.Data
	}
	return md, nil
}

var creatorSeparators = []string{";", " feat. ", " ft. ", " & ", ", ", " · "}

// SplitCreators breaks a tag's artist string into individual names.
func SplitCreators(s string) []string {
	parts := []string{s}
	for _, sep := range creatorSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
