package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"docquery/internal/adapter/cache"
	"docquery/internal/adapter/store"
	"docquery/internal/domain"
	"docquery/internal/port"
)

const errorAnswer = "Error processing request"

// QueryEngine orchestrates multi-question answering over one remote
// document: cache lookup, extraction and chunking on miss, retrieval store
// population, per-question context assembly, and answer generation with a
// batch-size-dependent concurrency policy.
type QueryEngine struct {
	extractor port.Extractor
	chunker   port.Chunker
	store     *store.RetrievalStore
	generator port.AnswerGenerator
	memCache  *cache.DocumentCache
	diskCache *store.ChunkStore // optional second cache tier, may be nil

	topK                int
	sequentialThreshold int
	log                 *slog.Logger
}

// Options wires a QueryEngine.
type Options struct {
	Extractor           port.Extractor
	Chunker             port.Chunker
	Store               *store.RetrievalStore
	Generator           port.AnswerGenerator
	MemCache            *cache.DocumentCache
	DiskCache           *store.ChunkStore
	TopK                int
	SequentialThreshold int
	Log                 *slog.Logger
}

func NewQueryEngine(opts Options) *QueryEngine {
	topK := opts.TopK
	if topK <= 0 {
		topK = 3
	}
	threshold := opts.SequentialThreshold
	if threshold <= 0 {
		threshold = 3
	}
	return &QueryEngine{
		extractor:           opts.Extractor,
		chunker:             opts.Chunker,
		store:               opts.Store,
		generator:           opts.Generator,
		memCache:            opts.MemCache,
		diskCache:           opts.DiskCache,
		topK:                topK,
		sequentialThreshold: threshold,
		log:                 opts.Log,
	}
}

// Process answers every question in the request against the referenced
// document. It never fails to the caller: unrecoverable errors produce a
// response whose answers are uniform error placeholders, and the answers
// slice is always positionally aligned with the questions.
func (e *QueryEngine) Process(req domain.QueryRequest) (resp domain.QueryResponse) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("query processing panicked", "panic", r)
			resp = uniformErrorResponse(len(req.Questions))
		}
	}()

	answers, err := e.process(req)
	if err != nil {
		e.log.Error("query processing failed", "document", req.Documents, "error", err)
		return uniformErrorResponse(len(req.Questions))
	}
	return domain.QueryResponse{Answers: answers}
}

func (e *QueryEngine) process(req domain.QueryRequest) ([]string, error) {
	chunks, err := e.chunksFor(req.Documents)
	if err != nil {
		return nil, err
	}

	// Safe to repeat for cached documents: the store absorbs duplicates and
	// a degraded store re-populates its fallback from the same chunk set.
	e.store.Store(chunks)

	contexts := make([]string, len(req.Questions))
	for i, question := range req.Questions {
		results, err := e.store.Search(question, e.topK)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		parts := make([]string, 0, len(results))
		for _, r := range results {
			parts = append(parts, r.Content)
		}
		contexts[i] = strings.Join(parts, "\n\n")
	}

	if len(req.Questions) <= e.sequentialThreshold {
		return e.answerSequential(req.Questions, contexts), nil
	}
	return e.answerConcurrent(req.Questions, contexts), nil
}

// chunksFor resolves a document reference to chunks: memory cache, then the
// optional persistent store, then extraction and chunking.
func (e *QueryEngine) chunksFor(ref string) ([]domain.Chunk, error) {
	if chunks, ok := e.memCache.Get(ref); ok {
		e.log.Debug("document cache hit", "document", ref)
		return chunks, nil
	}

	if e.diskCache != nil {
		chunks, found, err := e.diskCache.GetChunks(ref)
		if err != nil {
			e.log.Warn("persistent cache read failed", "error", err)
		} else if found {
			e.memCache.Put(ref, chunks)
			return chunks, nil
		}
	}

	text, err := e.extractor.ExtractText(ref)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	chunks, err := e.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("chunking failed: %w", err)
	}
	e.log.Info("document processed", "document", ref, "chunks", len(chunks))

	e.memCache.Put(ref, chunks)
	if e.diskCache != nil {
		if err := e.diskCache.PutChunks(ref, chunks); err != nil {
			e.log.Warn("persistent cache write failed", "error", err)
		}
	}
	return chunks, nil
}

// answerSequential generates answers one at a time, awaiting each before
// starting the next. Chosen for small batches.
func (e *QueryEngine) answerSequential(questions, contexts []string) []string {
	answers := make([]string, len(questions))
	for i, question := range questions {
		answer, err := e.generator.GenerateAnswer(question, contexts[i])
		if err != nil {
			answers[i] = fmt.Sprintf("Error generating answer: %v", err)
			continue
		}
		answers[i] = answer
	}
	return answers
}

// answerConcurrent fans all question/context pairs out at once and collects
// results in input order. Individual failures become per-item error strings.
func (e *QueryEngine) answerConcurrent(questions, contexts []string) []string {
	answers := make([]string, len(questions))
	var wg sync.WaitGroup

	for i := range questions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answer, err := e.generator.GenerateAnswer(questions[i], contexts[i])
			if err != nil {
				answers[i] = fmt.Sprintf("Error: %v", err)
				return
			}
			answers[i] = answer
		}(i)
	}

	wg.Wait()
	return answers
}

// Health reports backend and cache status.
func (e *QueryEngine) Health() domain.Health {
	return domain.Health{
		Status:            "healthy",
		LLMAvailable:      e.generator.Available(),
		SimilarityBackend: e.store.BackendReachable(),
		LexicalFallback:   e.store.Degraded(),
		CachedDocuments:   e.memCache.Size(),
	}
}

// CachedRefs lists the documents currently held in the in-memory cache.
func (e *QueryEngine) CachedRefs() []string {
	return e.memCache.Refs()
}

func uniformErrorResponse(n int) domain.QueryResponse {
	answers := make([]string, n)
	for i := range answers {
		answers[i] = errorAnswer
	}
	return domain.QueryResponse{Answers: answers}
}
