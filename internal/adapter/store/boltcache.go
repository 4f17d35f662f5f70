package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"docquery/internal/domain"
)

var (
	bucketDocuments = []byte("documents")
	bucketChunks    = []byte("chunks")
)

// ChunkStore persists chunked documents on disk so a restarted process does
// not re-download and re-chunk documents it has already seen. It is an
// optional second cache tier behind the in-memory DocumentCache.
type ChunkStore struct {
	db *bbolt.DB
}

type docRecord struct {
	Reference string `json:"reference"`
	ChunkedAt int64  `json:"chunked_at"`
	Chunks    int    `json:"chunks"`
}

type chunkRecord struct {
	ID        int    `json:"chunk_id"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	CharCount int    `json:"char_count"`
}

func NewChunkStore(path string) (*ChunkStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocuments, bucketChunks} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &ChunkStore{db: db}, nil
}

// PutChunks stores a document's chunks under its reference.
func (s *ChunkStore) PutChunks(ref string, chunks []domain.Chunk) error {
	records := make([]chunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = chunkRecord{
			ID:        c.ID,
			Content:   c.Content,
			WordCount: c.WordCount,
			CharCount: c.CharCount,
		}
	}

	chunkData, err := json.Marshal(records)
	if err != nil {
		return err
	}
	docData, err := json.Marshal(docRecord{
		Reference: ref,
		ChunkedAt: time.Now().Unix(),
		Chunks:    len(chunks),
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDocuments).Put([]byte(ref), docData); err != nil {
			return err
		}
		return tx.Bucket(bucketChunks).Put([]byte(ref), chunkData)
	})
}

// GetChunks loads a document's chunks by reference. The boolean is false
// when the document has never been stored.
func (s *ChunkStore) GetChunks(ref string) ([]domain.Chunk, bool, error) {
	var chunks []domain.Chunk
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(ref))
		if data == nil {
			return nil
		}
		var records []chunkRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		chunks = make([]domain.Chunk, len(records))
		for i, r := range records {
			chunks[i] = domain.Chunk{
				ID:        r.ID,
				Content:   r.Content,
				WordCount: r.WordCount,
				CharCount: r.CharCount,
			}
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return chunks, found, nil
}

// Documents returns the number of persisted documents.
func (s *ChunkStore) Documents() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return count, err
}

func (s *ChunkStore) Close() error {
	return s.db.Close()
}
