package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"docquery/config"
	"docquery/internal/adapter/cache"
	"docquery/internal/adapter/chunker"
	"docquery/internal/adapter/embedding"
	"docquery/internal/adapter/extract"
	"docquery/internal/adapter/llm"
	"docquery/internal/adapter/retriever"
	"docquery/internal/adapter/store"
	"docquery/internal/adapter/vectorindex"
	"docquery/internal/port"
	"docquery/internal/usecase"
)

// buildEngine wires a query engine from configuration. Missing credentials
// are not fatal: the similarity backend and answer providers are optional
// and the engine degrades per component.
func buildEngine(cfg *config.Config, log *slog.Logger) (*usecase.QueryEngine, func(), error) {
	downloader := extract.NewDownloader(
		cfg.Document.MaxSizeBytes,
		cfg.Document.URLPatterns,
		time.Duration(cfg.Document.TimeoutSecs)*time.Second,
	)
	processor := extract.NewProcessor(downloader)

	wordChunker := chunker.NewWordChunker(cfg.Document.ChunkSize, cfg.Document.ChunkOverlap)
	fallback := retriever.NewLexicalScorer(scorerOptions(cfg.Retrieval.Scorer))

	var embedder port.Embedder
	if e, err := embedding.NewClient(embedding.Options{
		Model:     cfg.Embedding.Model,
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Dimension: cfg.Embedding.Dimension,
		BatchSize: cfg.Embedding.BatchSize,
	}); err != nil {
		log.Warn("embeddings not configured, lexical fallback only", "error", err)
	} else {
		embedder = e
	}

	var index port.VectorIndex
	if idx, err := vectorindex.NewPineconeIndex(vectorindex.Options{
		APIKeyEnv: cfg.Pinecone.APIKeyEnv,
		IndexHost: cfg.Pinecone.IndexHost,
		Namespace: cfg.Pinecone.Namespace,
		Timeout:   time.Duration(cfg.Pinecone.TimeoutSecs) * time.Second,
	}); err != nil {
		log.Warn("similarity backend not configured, lexical fallback only", "error", err)
	} else {
		index = idx
	}

	retrievalStore := store.NewRetrievalStore(index, embedder, fallback, log)

	var providers []llm.Completer
	if groq, err := llm.NewGroqClient(llm.ChatOptions{
		Model:       cfg.LLM.GroqModel,
		APIKeyEnv:   cfg.LLM.GroqAPIKeyEnv,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}); err != nil {
		log.Warn("groq not configured", "error", err)
	} else {
		providers = append(providers, groq)
	}
	if openai, err := llm.NewOpenAIClient(llm.ChatOptions{
		Model:       cfg.LLM.OpenAIModel,
		APIKeyEnv:   cfg.LLM.OpenAIAPIKeyEnv,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}); err != nil {
		log.Warn("openai not configured", "error", err)
	} else {
		providers = append(providers, openai)
	}
	chain := llm.NewChain(log, cfg.LLM.MaxContextChars, providers...)
	if !chain.Available() {
		log.Warn("no answer provider configured, responses will carry a notice")
	}

	memCache := cache.NewDocumentCache(cfg.Cache.MaxEntries, cfg.Cache.TTL())

	cleanup := func() {}
	var diskCache *store.ChunkStore
	if cfg.Cache.BoltPath != "" {
		cs, err := store.NewChunkStore(cfg.Cache.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open chunk cache: %w", err)
		}
		diskCache = cs
		cleanup = func() { cs.Close() }
	}

	engine := usecase.NewQueryEngine(usecase.Options{
		Extractor:           processor,
		Chunker:             wordChunker,
		Store:               retrievalStore,
		Generator:           chain,
		MemCache:            memCache,
		DiskCache:           diskCache,
		TopK:                cfg.Retrieval.TopK,
		SequentialThreshold: cfg.Retrieval.SequentialThreshold,
		Log:                 log,
	})

	return engine, cleanup, nil
}

// scorerOptions overlays configured scorer settings on the built-in table.
func scorerOptions(sc config.ScorerConfig) retriever.ScorerOptions {
	opts := retriever.DefaultScorerOptions()
	if len(sc.Categories) > 0 {
		opts.Categories = sc.Categories
	}
	if len(sc.DomainWords) > 0 {
		opts.DomainWords = sc.DomainWords
	}
	if sc.KeyPhrase != "" {
		opts.KeyPhrase = sc.KeyPhrase
	}
	if sc.OccurrenceWeight != 0 {
		opts.OccurrenceWeight = sc.OccurrenceWeight
	}
	if sc.QueryTermBonus != 0 {
		opts.QueryTermBonus = sc.QueryTermBonus
	}
	if sc.DomainWordBonus != 0 {
		opts.DomainWordBonus = sc.DomainWordBonus
	}
	if sc.KeyPhraseBonus != 0 {
		opts.KeyPhraseBonus = sc.KeyPhraseBonus
	}
	if sc.DefinitionBonus != 0 {
		opts.DefinitionBonus = sc.DefinitionBonus
	}
	return opts
}

// sanitizedConfig is the non-secret configuration echo for the API.
func sanitizedConfig(cfg *config.Config) map[string]any {
	return map[string]any{
		"llm_model":        cfg.LLM.OpenAIModel,
		"groq_model":       cfg.LLM.GroqModel,
		"embedding_model":  cfg.Embedding.Model,
		"chunk_size":       cfg.Document.ChunkSize,
		"max_tokens":       cfg.LLM.MaxTokens,
		"top_k":            cfg.Retrieval.TopK,
		"has_openai_key":   os.Getenv(cfg.LLM.OpenAIAPIKeyEnv) != "",
		"has_groq_key":     os.Getenv(cfg.LLM.GroqAPIKeyEnv) != "",
		"has_pinecone_key": os.Getenv(cfg.Pinecone.APIKeyEnv) != "",
	}
}
