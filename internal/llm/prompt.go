// Package llm builds the prompt sent to the hosted language model.
package llm

import (
	"fmt"
	"strings"

	"sustainability-qa/internal/domain"
)

// BuildPrompt embeds the retrieved chunks and the user's question into a
// single grounded prompt. Chunk metadata rides along so the model can cite
// years and document types.
func BuildPrompt(question string, sources domain.RetrievalResult) string {
	var b strings.Builder

	b.WriteString("You are a sustainability reporting assistant. ")
	b.WriteString("Answer questions about the company's sustainability efforts using only the provided context. ")
	b.WriteString("Cite the source passages you relied on by their number. ")
	b.WriteString("If the answer is not in the context, say you do not have enough information in the sustainability reports to answer.\n\n")

	b.WriteString("Context from the sustainability reports:\n")
	for i, src := range sources {
		b.WriteString(fmt.Sprintf("[%d]", i+1))
		if meta := formatMetadata(src.Chunk.Metadata); meta != "" {
			b.WriteString(" (" + meta + ")")
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(src.Chunk.Text))
		b.WriteString("\n\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

func formatMetadata(meta domain.Metadata) string {
	if len(meta) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(meta))
	for _, k := range meta.Keys() {
		pairs = append(pairs, k+": "+meta.Get(k))
	}
	return strings.Join(pairs, ", ")
}
