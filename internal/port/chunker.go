package port

import "docquery/internal/domain"

type Chunker interface {
	Chunk(text string) ([]domain.Chunk, error)
}
