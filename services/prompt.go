package services

import (
	"fmt"
	"strings"

	"github/itish2003/portfolio-rag/models"
)

// PromptConfig holds the fixed parts of every prompt.
type PromptConfig struct {
	CompanyName string
	Language    string
}

// PromptInput is everything that varies per request.
type PromptInput struct {
	Question    string
	Results     []models.SearchResult
	IsFirstTurn bool
	History     string
}

const (
	greetFirstTurn = "Greet the client, this is the first message of the conversation."
	greetNever     = "Do not greet the client again, the conversation is already under way."
)

// BuildContext renders search results as numbered source blocks. Numbering is
// 1-based in retrieval order and matches the order of the returned sources.
func BuildContext(results []models.SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("Source %d:\nTitle: %s\nURL: %s\nDescription: %s\nContent: %s\n",
			i+1, r.Metadata.Title, r.Metadata.URL, r.Metadata.Description, r.Content))
	}
	return strings.Join(parts, "\n")
}

// FormatHistory renders prior turns as a client/assistant transcript.
func FormatHistory(turns []models.Turn) string {
	lines := make([]string, 0, 2*len(turns))
	for _, t := range turns {
		lines = append(lines, "Client: "+t.Question)
		lines = append(lines, "Assistant: "+t.Answer)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt assembles the full prompt sent to the generative model.
func (c PromptConfig) BuildPrompt(in PromptInput) string {
	greeting := greetNever
	if in.IsFirstTurn {
		greeting = greetFirstTurn
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an assistant of %s, a company that builds solutions based on artificial intelligence.\n\n", c.CompanyName)

	if in.History != "" {
		fmt.Fprintf(&b, "CONVERSATION HISTORY (what has already been said):\n%s\n\n", in.History)
	}

	fmt.Fprintf(&b, "CONTEXT (what is known about %s projects):\n%s\n", c.CompanyName, BuildContext(in.Results))
	fmt.Fprintf(&b, "CURRENT CLIENT QUESTION: %s\n\n", in.Question)

	b.WriteString("INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "1. %s\n", greeting)
	b.WriteString("2. Be brief and specific, 2-3 paragraphs at most.\n")
	b.WriteString("3. Use the information from the context and take the conversation history into account.\n")
	b.WriteString("4. Give concrete examples of projects.\n")
	b.WriteString("5. If there is no relevant information, say so honestly.\n")
	b.WriteString("6. Answer naturally and in a friendly tone.\n")
	fmt.Fprintf(&b, "7. Answer in %s.\n\n", c.Language)
	b.WriteString("ANSWER:")
	return b.String()
}
