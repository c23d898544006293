package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/benvon/devotional/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/devotional/internal/services/ai"

// Operation names used in logs and spans
const (
	OpMentorReply       = "mentor_reply"
	OpExplainVerse      = "explain_verse"
	OpJournalReflection = "journal_reflection"
	OpDailyDevotional   = "daily_devotional"
	OpRestorationPlan   = "restoration_plan"
)

const reasonUnconfigured = "unconfigured"

// ErrUnconfigured is returned by strict variants when no generator is set
var ErrUnconfigured = errors.New("generative service not configured")

// VerseCache stores explanations that came back from the service
type VerseCache interface {
	Get(ctx context.Context, verse string) (models.VerseExplanation, bool, error)
	Set(ctx context.Context, verse string, exp models.VerseExplanation) error
}

// Gateway produces every kind of generated content. All operations are
// total: failures resolve to fallback content and never surface as errors.
type Gateway struct {
	gen    Generator
	cache  VerseCache
	logger *zap.Logger
	tracer trace.Tracer
}

// GatewayOption configures a Gateway
type GatewayOption func(*Gateway)

// WithVerseCache enables caching of verse explanations
func WithVerseCache(c VerseCache) GatewayOption {
	return func(g *Gateway) { g.cache = c }
}

// WithLogger sets the gateway logger
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway creates a gateway. A nil generator means no credential is
// configured and every call returns its offline fallback without network access.
func NewGateway(gen Generator, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		gen:    gen,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports whether a generator is available
func (g *Gateway) Configured() bool {
	return g.gen != nil
}

// MentorReply answers newMessage in the mentor persona given prior history
func (g *Gateway) MentorReply(ctx context.Context, history []models.ChatMessage, newMessage string) string {
	ctx, span := g.start(ctx, OpMentorReply)
	defer span.End()

	if !g.Configured() {
		g.fallback(ctx, span, OpMentorReply, reasonUnconfigured, nil)
		return MentorOfflineReply
	}

	temp := MentorTemperature
	text, err := g.gen.Generate(ctx, GenerationRequest{
		Operation:         OpMentorReply,
		SystemInstruction: mentorSystemInstruction,
		History:           history,
		Prompt:            newMessage,
		Temperature:       &temp,
		Format:            FormatText,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.Join(ErrMalformedResponse, errors.New("empty reply"))
	}
	if err != nil {
		g.fallback(ctx, span, OpMentorReply, failureReason(err), err)
		return MentorFailureReply
	}
	return strings.TrimSpace(text)
}

// ExplainVerse returns a four-part explanation of verse
func (g *Gateway) ExplainVerse(ctx context.Context, verse string) models.VerseExplanation {
	ctx, span := g.start(ctx, OpExplainVerse)
	defer span.End()

	if !g.Configured() {
		g.fallback(ctx, span, OpExplainVerse, reasonUnconfigured, nil)
		return VerseOfflineExplanation
	}

	if g.cache != nil {
		cached, ok, err := g.cache.Get(ctx, verse)
		if err != nil {
			g.logger.Warn("verse_cache_get_failed", zap.Error(err))
		} else if ok && ValidVerseExplanation(cached) {
			span.SetAttributes(attribute.Bool("devotional.cache_hit", true))
			return cached
		}
	}

	var exp models.VerseExplanation
	if err := g.generateJSON(ctx, GenerationRequest{
		Operation:         OpExplainVerse,
		SystemInstruction: jsonOnlyInstruction,
		Prompt:            buildVersePrompt(verse),
	}, &exp); err != nil {
		g.fallback(ctx, span, OpExplainVerse, failureReason(err), err)
		return VerseFailureExplanation
	}
	if !ValidVerseExplanation(exp) {
		g.fallback(ctx, span, OpExplainVerse, "invalid", nil)
		return VerseFailureExplanation
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, verse, exp); err != nil {
			g.logger.Warn("verse_cache_set_failed", zap.Error(err))
		}
	}
	return exp
}

// JournalReflection returns a short encouraging response to a journal entry.
// An empty string means no reflection should be shown.
func (g *Gateway) JournalReflection(ctx context.Context, entry string) string {
	ctx, span := g.start(ctx, OpJournalReflection)
	defer span.End()

	text, err := g.TryJournalReflection(ctx, entry)
	switch {
	case errors.Is(err, ErrUnconfigured):
		g.fallback(ctx, span, OpJournalReflection, reasonUnconfigured, nil)
		return JournalOfflineReflection
	case err != nil:
		g.fallback(ctx, span, OpJournalReflection, failureReason(err), err)
		return JournalFailureReflection
	}
	return text
}

// TryJournalReflection is JournalReflection without the fallback, for
// callers that retry and need to know why a call failed
func (g *Gateway) TryJournalReflection(ctx context.Context, entry string) (string, error) {
	if !g.Configured() {
		return "", ErrUnconfigured
	}
	text, err := g.gen.Generate(ctx, GenerationRequest{
		Operation: OpJournalReflection,
		Prompt:    buildJournalPrompt(entry),
		Format:    FormatText,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reflection", ErrMalformedResponse)
	}
	return text, nil
}

// DailyDevotional generates a devotional on one of themes
func (g *Gateway) DailyDevotional(ctx context.Context, themes []string) models.Devotional {
	ctx, span := g.start(ctx, OpDailyDevotional)
	defer span.End()

	if !g.Configured() {
		g.fallback(ctx, span, OpDailyDevotional, reasonUnconfigured, nil)
		return FallbackDevotional
	}

	var d models.Devotional
	if err := g.generateJSON(ctx, GenerationRequest{
		Operation:         OpDailyDevotional,
		SystemInstruction: jsonOnlyInstruction,
		Prompt:            buildDevotionalPrompt(themes),
	}, &d); err != nil {
		g.fallback(ctx, span, OpDailyDevotional, failureReason(err), err)
		return FallbackDevotional
	}
	if !ValidDevotional(d) {
		g.fallback(ctx, span, OpDailyDevotional, "invalid", nil)
		return FallbackDevotional
	}
	if strings.TrimSpace(d.Importance) == "" {
		d.Importance = DefaultImportance
	}
	return d
}

// RestorationPlan generates seven days of plan content focused on areas
func (g *Gateway) RestorationPlan(ctx context.Context, areas []string) models.PlanContent {
	ctx, span := g.start(ctx, OpRestorationPlan)
	defer span.End()

	if !g.Configured() {
		g.fallback(ctx, span, OpRestorationPlan, reasonUnconfigured, nil)
		return FallbackPlan()
	}

	var plan models.PlanContent
	if err := g.generateJSON(ctx, GenerationRequest{
		Operation:         OpRestorationPlan,
		SystemInstruction: jsonOnlyInstruction,
		Prompt:            buildPlanPrompt(areas),
	}, &plan); err != nil {
		g.fallback(ctx, span, OpRestorationPlan, failureReason(err), err)
		return FallbackPlan()
	}
	if !ValidPlan(plan) {
		g.fallback(ctx, span, OpRestorationPlan, "invalid", nil)
		return FallbackPlan()
	}
	for i := range plan.Days {
		plan.Days[i].Day = i + 1
		plan.Days[i].Completed = false
	}
	return plan
}

func (g *Gateway) generateJSON(ctx context.Context, req GenerationRequest, v any) error {
	req.Format = FormatJSON
	text, err := g.gen.Generate(ctx, req)
	if err != nil {
		return err
	}
	return decodeJSON(text, v)
}

func (g *Gateway) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := g.tracer.Start(ctx, "gateway."+op)
	span.SetAttributes(attribute.Bool("devotional.fallback", false))
	return ctx, span
}

func (g *Gateway) fallback(ctx context.Context, span trace.Span, op, reason string, err error) {
	span.SetAttributes(
		attribute.Bool("devotional.fallback", true),
		attribute.String("devotional.fallback_reason", reason),
	)
	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("reason", reason),
		zap.String("request_id", ExtractRequestID(ctx)),
	}
	if reason == reasonUnconfigured {
		g.logger.Debug("gateway_fallback", fields...)
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	g.logger.Warn("gateway_fallback", fields...)
}
