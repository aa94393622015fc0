// Package service holds the long-lived question-answering service that the
// CLI and the TUI share.
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"heritage-rag/internal/domain"
	"heritage-rag/internal/generator"
	"heritage-rag/internal/ingest"
	"heritage-rag/internal/logger"
	"heritage-rag/internal/prompt"
	"heritage-rag/internal/scope"
	"heritage-rag/internal/vectorstore"
)

// Searcher retrieves ranked chunks for a question.
type Searcher interface {
	Search(ctx context.Context, question string) ([]domain.RetrievalResult, error)
	Inspect(ctx context.Context, question string) ([]domain.RetrievalResult, error)
}

// Rebuilder replaces the index contents from a corpus.
type Rebuilder interface {
	Rebuild(ctx context.Context, corpus fs.FS) (ingest.Report, error)
}

// Reason classifies how a generation attempt ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnavailable
	ReasonFailed
)

// Outcome is the typed result of a generation attempt. Text is the model
// output when Reason is ReasonNone, otherwise the error detail.
type Outcome struct {
	Text   string
	Reason Reason
}

// Answer renders the outcome as user-facing text.
func (o Outcome) Answer() string {
	switch o.Reason {
	case ReasonUnavailable:
		return UnavailableReply
	case ReasonFailed:
		return generationFailedPrefix + o.Text
	default:
		return o.Text
	}
}

type Config struct {
	Collection string
	Generation generator.Options
}

// RAGService answers questions. Queries hold a read lock while they touch
// the index and Reindex holds the write lock, so a query never sees the
// collection between its deletion and its recreation.
type RAGService struct {
	mu         sync.RWMutex
	classifier *scope.Classifier
	searcher   Searcher
	generator  generator.Generator
	rebuilder  Rebuilder
	index      vectorstore.Index
	cfg        Config
}

func NewRAGService(classifier *scope.Classifier, searcher Searcher, gen generator.Generator, rebuilder Rebuilder, index vectorstore.Index, cfg Config) *RAGService {
	return &RAGService{
		classifier: classifier,
		searcher:   searcher,
		generator:  gen,
		rebuilder:  rebuilder,
		index:      index,
		cfg:        cfg,
	}
}

// Ask runs one question through classification, retrieval and generation.
// Each call is independent of previous ones.
func (s *RAGService) Ask(ctx context.Context, question string) domain.QueryResult {
	logger.Debug("question: %s", question)
	res := domain.QueryResult{Question: question, Sources: []domain.RetrievalResult{}}

	switch s.classifier.Classify(question) {
	case scope.Greeting:
		res.Answer = GreetingReply
		return res
	case scope.OutOfDomain:
		res.Answer = OutOfScopeReply
		return res
	}

	sources, err := s.search(ctx, question)
	if err != nil {
		logger.Error("recherche impossible: %v", err)
	}
	if len(sources) == 0 {
		res.Answer = NoResultsReply
		return res
	}

	outcome := s.generate(ctx, prompt.Assemble(question, sources))
	res.Answer = outcome.Answer()
	res.Sources = sources
	res.HasSources = true
	return res
}

func (s *RAGService) search(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sources, err := s.searcher.Search(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		sims := make([]float64, len(sources))
		sites := make([]string, len(sources))
		for i, src := range sources {
			sims[i] = src.Similarity
			sites[i] = domain.Value(src.Metadata.Site, "N/A")
		}
		logger.Debug("%d documents pertinents, similarités %v, sites %v", len(sources), sims, sites)
	}
	return sources, nil
}

// generate checks that the model server answers before sending the prompt.
func (s *RAGService) generate(ctx context.Context, p string) Outcome {
	if err := s.generator.Ping(ctx); err != nil {
		logger.Warn("générateur non accessible: %v", err)
		return Outcome{Text: err.Error(), Reason: ReasonUnavailable}
	}
	text, err := s.generator.Generate(ctx, p, s.cfg.Generation)
	if errors.Is(err, generator.ErrUnavailable) {
		logger.Warn("générateur non accessible: %v", err)
		return Outcome{Text: err.Error(), Reason: ReasonUnavailable}
	}
	if err != nil {
		logger.Error("erreur de génération: %v", err)
		return Outcome{Text: err.Error(), Reason: ReasonFailed}
	}
	return Outcome{Text: text}
}

// Inspect returns the raw neighbours of a question without thresholding.
func (s *RAGService) Inspect(ctx context.Context, question string) ([]domain.RetrievalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searcher.Inspect(ctx, question)
}

// Reindex rebuilds the collection from corpus while blocking queries.
func (s *RAGService) Reindex(ctx context.Context, corpus fs.FS) (ingest.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuilder.Rebuild(ctx, corpus)
}

// Status describes the index and the generator.
type Status struct {
	Collection   string
	Indexed      bool
	Chunks       int
	Model        string
	GeneratorUp  bool
	GeneratorErr string
}

// Status reports whether the collection exists, its size, and whether the
// generator answers a liveness probe.
func (s *RAGService) Status(ctx context.Context) (Status, error) {
	st := Status{Collection: s.cfg.Collection, Model: s.generator.Model()}

	s.mu.RLock()
	coll, err := s.index.GetCollection(ctx, s.cfg.Collection)
	if err == nil {
		st.Chunks, err = coll.Count(ctx)
		st.Indexed = err == nil
	}
	s.mu.RUnlock()
	if err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return st, fmt.Errorf("reading index: %w", err)
	}

	if err := s.generator.Ping(ctx); err != nil {
		st.GeneratorErr = err.Error()
	} else {
		st.GeneratorUp = true
	}
	return st, nil
}
