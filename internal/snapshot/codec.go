// Package snapshot persists the whole catalog as a single serialized
// snapshot, either as a JSON file or as one row of a SQLite database.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/llehouerou/artistmusic/internal/catalog"
)

// Encode serializes the ordered artist list. Absent blobs encode as null
// and empty ones as "", so both survive a round trip.
func Encode(artists []catalog.Artist) ([]byte, error) {
	if artists == nil {
		artists = []catalog.Artist{}
	}
	data, err := json.Marshal(artists)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) ([]catalog.Artist, error) {
	var artists []catalog.Artist
	if err := json.Unmarshal(data, &artists); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return artists, nil
}
