package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/menulens/menulens/internal/llm"
	"github.com/menulens/menulens/internal/schema"
)

const DefaultDialect = "SQLite"

// Generator turns a question into one SQL statement for the configured
// dialect.
type Generator struct {
	completer  llm.Completer
	descriptor schema.Descriptor
	dialect    string
}

func NewGenerator(completer llm.Completer, descriptor schema.Descriptor, dialect string) *Generator {
	dialect = strings.TrimSpace(dialect)
	if dialect == "" {
		dialect = DefaultDialect
	}
	return &Generator{completer: completer, descriptor: descriptor, dialect: dialect}
}

func (g *Generator) Dialect() string {
	return g.dialect
}

func (g *Generator) Prompt(question string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert SQL analyst for a restaurant analytics platform. ")
	sb.WriteString("Convert the following natural language question into a SQL query.\n\n")
	sb.WriteString(g.descriptor.Text())
	sb.WriteString("\nIMPORTANT RULES:\n")
	fmt.Fprintf(&sb, "1. Generate ONLY valid %s syntax\n", g.dialect)
	sb.WriteString("2. Use proper JOINs when accessing multiple tables\n")
	sb.WriteString("3. Include appropriate WHERE clauses for filtering\n")
	sb.WriteString("4. Use aggregate functions (COUNT, SUM, AVG) when appropriate\n")
	sb.WriteString("5. Limit results to reasonable numbers (use LIMIT clause)\n")
	sb.WriteString("6. Use proper date functions for time-based queries\n")
	sb.WriteString("7. Return only the SQL query, no explanations\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", strings.TrimSpace(question))
	sb.WriteString("SQL Query:")
	return sb.String()
}

// Generate returns a sanitized statement. Every failure is a *StageError
// matching ErrGeneration.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", generationError(fmt.Errorf("question is required"))
	}
	if g.completer == nil {
		return "", generationError(fmt.Errorf("text generation client is not configured"))
	}
	completion, err := g.completer.Complete(ctx, g.Prompt(question))
	if err != nil {
		return "", generationError(err)
	}
	statement := Sanitize(completion.Text)
	if isBlankStatement(statement) {
		return "", generationError(fmt.Errorf("model returned empty SQL"))
	}
	return statement, nil
}
