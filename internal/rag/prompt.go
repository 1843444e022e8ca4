package rag

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/ragserve/internal/llm"
)

const systemPrompt = `You are a helpful assistant that answers questions using only the provided documents.
Cite the documents you use with bracketed numbers like [1] or [2], matching the document numbering.
If the documents do not contain the answer, say that you could not find the information. Do not invent facts.`

// noAnswerResponse is returned without calling the model when retrieval
// finds nothing above the similarity threshold.
const noAnswerResponse = "No relevant information found."

// BuildPrompt assembles the grounded completion messages: a fixed system
// instruction plus a user message holding the numbered document blocks and
// the question.
func BuildPrompt(query string, sources []Source) []llm.Message {
	var b strings.Builder
	b.WriteString("Documents:\n\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "Document %d", i+1)
		if src.Title != "" {
			fmt.Fprintf(&b, " (%s)", src.Title)
		}
		b.WriteString(":\n")
		b.WriteString(src.Content)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s", query)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
