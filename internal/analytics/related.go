package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/menulens/menulens/internal/llm"
	"github.com/menulens/menulens/internal/query"
)

const maxRelatedQuestions = 5

var fallbackQuestions = []string{
	"What are the top-performing menu items by revenue?",
	"How do customer ratings vary by cuisine type?",
	"What are the peak ordering hours?",
	"Which restaurants have the highest customer retention?",
	"What's the average order value by customer age group?",
}

type RelatedQuestions struct {
	Questions []string `json:"questions"`
	Fallback  bool     `json:"fallback"`
}

func FallbackQuestions() RelatedQuestions {
	return RelatedQuestions{Questions: append([]string(nil), fallbackQuestions...), Fallback: true}
}

type RelatedGenerator struct {
	completer llm.Completer
}

func NewRelatedGenerator(completer llm.Completer) *RelatedGenerator {
	return &RelatedGenerator{completer: completer}
}

func (g *RelatedGenerator) Prompt(question string, result query.Result) string {
	columns := "No results"
	if len(result.Rows) > 0 && len(result.Columns) > 0 {
		columns = strings.Join(result.Columns, ", ")
	}
	return fmt.Sprintf(`Based on the following restaurant analytics question and its results, suggest 5 related questions that would provide additional insights.

Original Question: %s

Results columns: %s

Generate questions that:
1. Explore different aspects of the same topic
2. Drill down into specific details
3. Compare different time periods or segments
4. Identify trends or patterns
5. Focus on actionable business decisions

Return only the questions, one per line, without numbering.`, strings.TrimSpace(question), columns)
}

// Suggest never fails: on any client error, or a response without a usable
// line, the fixed fallback list is returned.
func (g *RelatedGenerator) Suggest(ctx context.Context, question string, result query.Result) RelatedQuestions {
	if g.completer == nil {
		return FallbackQuestions()
	}
	completion, err := g.completer.Complete(ctx, g.Prompt(question, result))
	if err != nil {
		return FallbackQuestions()
	}
	questions := ParseRelated(completion.Text)
	if len(questions) == 0 {
		return FallbackQuestions()
	}
	return RelatedQuestions{Questions: questions}
}

// ParseRelated keeps the first five non-empty trimmed lines. Numbering and
// bullets are left in place.
func ParseRelated(text string) []string {
	questions := make([]string, 0, maxRelatedQuestions)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == maxRelatedQuestions {
			break
		}
	}
	return questions
}
