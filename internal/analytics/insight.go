package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/menulens/menulens/internal/llm"
	"github.com/menulens/menulens/internal/query"
)

const NoDataInsight = "No data found for the given query."

// Insight is the narrative for a result table. Degraded marks text that
// reports a generation failure instead of a narrative.
type Insight struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

type InsightGenerator struct {
	completer llm.Completer
}

func NewInsightGenerator(completer llm.Completer) *InsightGenerator {
	return &InsightGenerator{completer: completer}
}

func (g *InsightGenerator) Prompt(question string, result query.Result) string {
	return fmt.Sprintf(`You are a restaurant business analyst. Based on the following query and results, provide actionable insights.

Original Question: %s

Query Results Summary:
%s

Please provide:
1. Key findings from the data
2. Business implications
3. Actionable recommendations

Keep the response concise and business-focused.`, strings.TrimSpace(question), BuildDigest(result))
}

// Summarize never fails. An empty result short-circuits without calling the
// model.
func (g *InsightGenerator) Summarize(ctx context.Context, question string, result query.Result) Insight {
	if len(result.Rows) == 0 {
		return Insight{Text: NoDataInsight}
	}
	if g.completer == nil {
		return degradedInsight(fmt.Errorf("text generation client is not configured"))
	}
	completion, err := g.completer.Complete(ctx, g.Prompt(question, result))
	if err != nil {
		return degradedInsight(err)
	}
	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return degradedInsight(fmt.Errorf("model returned empty text"))
	}
	return Insight{Text: text}
}

func degradedInsight(err error) Insight {
	return Insight{Text: "Error generating insights: " + err.Error(), Degraded: true}
}
