package memory

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

const (
	// Magic bytes identifying the snapshot file format
	MagicBytes = "GDOC"
	// Current snapshot format version
	FormatVersion = 1
	// File extension for snapshot files
	FileExtension = ".gdoc"
)

// FileHeader is the fixed-size header at the start of a snapshot file.
type FileHeader struct {
	Magic    [4]byte // "GDOC"
	Version  uint8
	Flags    uint8   // Reserved for future use
	Reserved [2]byte // Reserved for future use
}

// WriteHeader writes the snapshot header to the given writer.
func WriteHeader(w io.Writer) error {
	header := FileHeader{
		Magic:   [4]byte{'G', 'D', 'O', 'C'},
		Version: FormatVersion,
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the snapshot header.
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}
	return &header, nil
}

// SnapshotData is the msgpack-encoded payload of a snapshot file. Index
// inverted maps are not persisted; they are rebuilt from the documents on
// load, so only the definitions travel.
type SnapshotData struct {
	Collections map[string]map[string]domain.Document `msgpack:"collections"`
	Indexes     map[string][]string                   `msgpack:"indexes,omitempty"`
	Metadata    map[string]interface{}                `msgpack:"metadata,omitempty"`
}

// NewSnapshotData creates an empty snapshot payload.
func NewSnapshotData() *SnapshotData {
	return &SnapshotData{
		Collections: make(map[string]map[string]domain.Document),
		Indexes:     make(map[string][]string),
		Metadata:    make(map[string]interface{}),
	}
}
