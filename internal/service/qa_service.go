// Package service sequences the per-question flow: retrieve context, then
// generate an answer that cites it.
package service

import (
	"context"
	"errors"
	"fmt"

	"sustainability-qa/internal/domain"
)

// NoContextAnswer is shown when retrieval comes back empty. No model call is
// made in that case; there is nothing to ground an answer on.
const NoContextAnswer = "I couldn't find any relevant passages in the sustainability reports to answer that question."

// QAService implements domain.QAService over a retriever and a generator.
type QAService struct {
	retriever domain.Retriever
	generator domain.Generator
}

// NewQAService creates the question-answering service.
func NewQAService(retriever domain.Retriever, generator domain.Generator) *QAService {
	return &QAService{retriever: retriever, generator: generator}
}

// Retrieve returns the chunks most relevant to the question.
func (s *QAService) Retrieve(ctx context.Context, question string) (domain.RetrievalResult, error) {
	return s.retriever.Retrieve(ctx, question)
}

// Answer asks the hosted model to answer the question from the retrieved
// sources. An empty retrieval short-circuits to NoContextAnswer without
// spending API quota.
func (s *QAService) Answer(ctx context.Context, question string, sources domain.RetrievalResult) (domain.Answer, error) {
	if len(sources) == 0 {
		return domain.Answer{Text: NoContextAnswer}, nil
	}
	text, err := s.generator.Generate(ctx, question, sources)
	if err != nil {
		if errors.Is(err, domain.ErrGeneration) {
			return domain.Answer{}, err
		}
		return domain.Answer{}, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}
	return domain.Answer{Text: text, Sources: sources}, nil
}

// Ask runs both phases back to back. The TUI drives the phases separately to
// report progress; Ask exists for callers that do not need that.
func (s *QAService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	sources, err := s.Retrieve(ctx, question)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.Answer(ctx, question, sources)
}
