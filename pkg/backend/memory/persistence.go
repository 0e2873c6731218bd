package memory

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/go-docstore/pkg/domain"
)

// SaveToFile writes every collection plus the index definitions to a single
// msgpack+lz4 snapshot file. The write goes through a temporary file and a
// rename so a crash mid-save cannot corrupt the previous snapshot.
func (e *Engine) SaveToFile(filename string) error {
	e.mu.RLock()
	snapshot := NewSnapshotData()
	for name, docs := range e.data {
		out := make(map[string]domain.Document, len(docs))
		for key, doc := range docs {
			out[key] = doc.Clone()
		}
		snapshot.Collections[name] = out
	}
	snapshot.Indexes = e.indexes.Export()
	e.mu.RUnlock()

	payload, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(payload)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(payload, compressed, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	compressed = compressed[:n]

	var buf bytes.Buffer
	if err := WriteHeader(&buf); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := buf.Write(compressed); err != nil {
		return fmt.Errorf("failed to write compressed data: %w", err)
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	tempFile := filename + ".tmp"
	if err := os.WriteFile(tempFile, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	e.mu.Lock()
	for _, info := range e.infos {
		info.Dirty = false
	}
	e.mu.Unlock()

	log.Printf("DEBUG: Saved snapshot to %s (%d bytes compressed)", filename, len(compressed))
	return nil
}

// LoadFromFile replaces the engine's contents with a snapshot previously
// written by SaveToFile and rebuilds the indexes it declares. A missing file
// is not an error; the engine simply starts empty.
func (e *Engine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	if _, err := ReadHeader(file); err != nil {
		return fmt.Errorf("invalid snapshot header: %w", err)
	}

	compressed, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read compressed data: %w", err)
	}
	payload, err := decompress(compressed)
	if err != nil {
		return err
	}

	var snapshot SnapshotData
	if err := msgpack.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = make(map[string]map[string]domain.Document, len(snapshot.Collections))
	e.infos = make(map[string]*CollectionInfo, len(snapshot.Collections))
	for name, docs := range snapshot.Collections {
		if docs == nil {
			docs = make(map[string]domain.Document)
		}
		e.data[name] = docs
		e.infos[name] = &CollectionInfo{
			Name:          name,
			DocumentCount: int64(len(docs)),
			LastModified:  time.Now(),
		}
	}
	if len(snapshot.Indexes) > 0 {
		e.indexes.Import(snapshot.Indexes, e.data)
	}

	log.Printf("INFO: Loaded snapshot from %s (%d collections)", filename, len(e.data))
	return nil
}

// decompress grows the destination buffer until the lz4 block fits; block
// compression does not record the decompressed size.
func decompress(compressed []byte) ([]byte, error) {
	size := len(compressed) * 4
	for attempts := 0; attempts < 8; attempts++ {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(compressed, dst)
		if err == nil {
			return dst[:n], nil
		}
		size *= 4
	}
	return nil, fmt.Errorf("failed to decompress snapshot data")
}
