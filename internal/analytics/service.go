// Package analytics answers natural-language questions about the restaurant
// dataset: it generates one SQL statement, executes it and narrates the
// result. Generation and execution failures are returned as *StageError;
// insight and related-question failures degrade to marked fallback values.
package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/menulens/menulens/internal/llm"
	"github.com/menulens/menulens/internal/observability"
	"github.com/menulens/menulens/internal/query"
	"github.com/menulens/menulens/internal/schema"
)

type Config struct {
	Dialect           string
	GenerationTimeout time.Duration
	QueryTimeout      time.Duration
	MaxResultRows     int
}

type Answer struct {
	Question  string       `json:"question"`
	Statement string       `json:"sql_query"`
	Result    query.Result `json:"-"`
	Insight   Insight      `json:"insight"`
}

type Service struct {
	generator *Generator
	engine    query.Engine
	insights  *InsightGenerator
	related   *RelatedGenerator
	cfg       Config
	logger    *slog.Logger
}

func NewService(completer llm.Completer, engine query.Engine, descriptor schema.Descriptor, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		generator: NewGenerator(completer, descriptor, cfg.Dialect),
		engine:    engine,
		insights:  NewInsightGenerator(completer),
		related:   NewRelatedGenerator(completer),
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer runs generation, execution and summarization in order. The first
// two stages abort the call on failure.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	statement, err := s.generate(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	result, err := s.execute(ctx, statement)
	if err != nil {
		return Answer{}, err
	}

	insight := s.summarize(ctx, question, result)
	return Answer{
		Question:  question,
		Statement: statement,
		Result:    result,
		Insight:   insight,
	}, nil
}

func (s *Service) Related(ctx context.Context, question string, result query.Result) RelatedQuestions {
	ctx, cancel := withTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	related := s.related.Suggest(ctx, question, result)
	status := "ok"
	if related.Fallback {
		status = "fallback"
		observability.IncrementSoftFail("related")
		s.logger.WarnContext(ctx, "related questions fell back to defaults",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		)
	}
	observability.ObservePipelineStage("related", status, time.Since(start))
	return related
}

func (s *Service) IsSafe(statement string) bool {
	safe := IsSafe(statement)
	if !safe {
		observability.IncrementUnsafeStatement()
	}
	return safe
}

func (s *Service) Dialect() string {
	return s.generator.Dialect()
}

func (s *Service) generate(ctx context.Context, question string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	statement, err := s.generator.Generate(ctx, question)
	if err != nil {
		observability.ObservePipelineStage(string(StageGeneration), "error", time.Since(start))
		s.logger.WarnContext(ctx, "sql generation failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	observability.ObservePipelineStage(string(StageGeneration), "ok", time.Since(start))
	s.logger.DebugContext(ctx, "generated sql",
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.String("sql", statement),
	)
	return statement, nil
}

func (s *Service) execute(ctx context.Context, statement string) (query.Result, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.Execute(ctx, query.Request{SQL: statement, RowLimit: s.cfg.MaxResultRows})
	if err != nil {
		observability.ObservePipelineStage(string(StageExecution), "error", time.Since(start))
		s.logger.WarnContext(ctx, "sql execution failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("sql", statement),
			slog.String("error", err.Error()),
		)
		return query.Result{}, executionError(err)
	}
	observability.ObservePipelineStage(string(StageExecution), "ok", time.Since(start))
	observability.ObserveResultRows(len(result.Rows))
	return result, nil
}

func (s *Service) summarize(ctx context.Context, question string, result query.Result) Insight {
	ctx, cancel := withTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	start := time.Now()
	insight := s.insights.Summarize(ctx, question, result)
	status := "ok"
	if insight.Degraded {
		status = "degraded"
		observability.IncrementSoftFail("insight")
		s.logger.WarnContext(ctx, "insight generation degraded",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("insight", insight.Text),
		)
	}
	observability.ObservePipelineStage("insight", status, time.Since(start))
	return insight
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
