package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/benvon/devotional/internal/models"
)

type mockGenerator struct {
	mu           sync.Mutex
	calls        []GenerationRequest
	generateFunc func(ctx context.Context, req GenerationRequest) (string, error)
}

var _ Generator = (*mockGenerator)(nil)

func (m *mockGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return "", errors.New("not implemented")
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func replying(body string) *mockGenerator {
	return &mockGenerator{generateFunc: func(context.Context, GenerationRequest) (string, error) {
		return body, nil
	}}
}

func failing(err error) *mockGenerator {
	return &mockGenerator{generateFunc: func(context.Context, GenerationRequest) (string, error) {
		return "", err
	}}
}

type mapVerseCache struct {
	mu      sync.Mutex
	entries map[string]models.VerseExplanation
	sets    int
}

func newMapVerseCache() *mapVerseCache {
	return &mapVerseCache{entries: make(map[string]models.VerseExplanation)}
}

func (c *mapVerseCache) Get(_ context.Context, verse string) (models.VerseExplanation, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp, ok := c.entries[verse]
	return exp, ok, nil
}

func (c *mapVerseCache) Set(_ context.Context, verse string, exp models.VerseExplanation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[verse] = exp
	c.sets++
	return nil
}

const validDevotionalJSON = `{
  "title": "Força na Espera",
  "verse": "Isaías 40:31",
  "importance": "Esperar em Deus renova as forças.",
  "content": "Esperar no Senhor não é passividade; é confiança ativa em quem governa o tempo.",
  "prayer": "Senhor, ensina-me a esperar em Ti."
}`

const validVerseJSON = `{"explanation":"Deus sustenta.","context":"Escrito no exílio.","application":"Confie hoje.","related":"Salmos 46:1"}`

func planJSON(days int) string {
	var b strings.Builder
	b.WriteString(`{"days":[`)
	for i := 0; i < days; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"day":9,"title":"T","content":"C","task":"K","completed":true}`)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestGateway_Unconfigured_NoNetwork(t *testing.T) {
	t.Parallel()

	g := NewGateway(nil)
	ctx := context.Background()

	if g.Configured() {
		t.Fatal("gateway without generator should be unconfigured")
	}
	if got := g.MentorReply(ctx, nil, "oi"); got != MentorOfflineReply {
		t.Errorf("MentorReply = %q", got)
	}
	if got := g.ExplainVerse(ctx, "João 3:16"); got != VerseOfflineExplanation {
		t.Errorf("ExplainVerse = %+v", got)
	}
	if got := g.JournalReflection(ctx, "hoje orei"); got != JournalOfflineReflection {
		t.Errorf("JournalReflection = %q", got)
	}
	if got := g.DailyDevotional(ctx, []string{"Paz"}); got != FallbackDevotional {
		t.Errorf("DailyDevotional = %+v", got)
	}
	if got := g.RestorationPlan(ctx, []string{"Perdão"}); !ValidPlan(got) {
		t.Errorf("RestorationPlan fallback invalid: %+v", got)
	}
}

func TestGateway_TotalUnderFailure(t *testing.T) {
	t.Parallel()

	failures := map[string]*mockGenerator{
		"transport":  failing(errors.New("connection refused")),
		"rate limit": failing(&APIError{StatusCode: 429, Message: "slow down"}),
		"garbage":    replying("isto não é JSON"),
		"empty":      replying(""),
	}

	for name, gen := range failures {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewGateway(gen)
			ctx := context.Background()

			if got := g.MentorReply(ctx, nil, "oi"); got != MentorFailureReply && name != "garbage" {
				t.Errorf("MentorReply = %q", got)
			}
			if got := g.ExplainVerse(ctx, "Salmos 23:1"); !ValidVerseExplanation(got) {
				t.Errorf("ExplainVerse not complete: %+v", got)
			}
			if got := g.DailyDevotional(ctx, []string{"Paz"}); got != FallbackDevotional {
				t.Errorf("DailyDevotional = %+v", got)
			}
			plan := g.RestorationPlan(ctx, []string{"Perdão"})
			if !ValidPlan(plan) {
				t.Errorf("RestorationPlan not complete: %+v", plan)
			}
			_ = g.JournalReflection(ctx, "obrigado")
		})
	}
}

func TestGateway_JournalReflectionFailureIsEmpty(t *testing.T) {
	t.Parallel()

	g := NewGateway(failing(errors.New("timeout")))
	if got := g.JournalReflection(context.Background(), "hoje"); got != "" {
		t.Errorf("JournalReflection = %q, want empty", got)
	}

	g = NewGateway(replying("  Deus está contigo.  "))
	if got := g.JournalReflection(context.Background(), "hoje"); got != "Deus está contigo." {
		t.Errorf("JournalReflection = %q", got)
	}
}

func TestGateway_MentorReply(t *testing.T) {
	t.Parallel()

	gen := replying("Estou aqui com você.")
	g := NewGateway(gen)
	history := []models.ChatMessage{
		{Role: models.ChatRoleModel, Text: MentorGreeting},
		{Role: models.ChatRoleUser, Text: "estou ansioso"},
	}

	got := g.MentorReply(context.Background(), history, "pode orar comigo?")
	if got != "Estou aqui com você." {
		t.Errorf("MentorReply = %q", got)
	}

	req := gen.calls[0]
	if req.Temperature == nil || *req.Temperature != MentorTemperature {
		t.Errorf("Temperature = %v", req.Temperature)
	}
	if req.SystemInstruction == "" || len(req.History) != 2 || req.Prompt != "pode orar comigo?" {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Format != FormatText {
		t.Errorf("Format = %s", req.Format)
	}
}

func TestGateway_DevotionalValidityGate(t *testing.T) {
	t.Parallel()

	short := `{"title":"T","verse":"V","importance":"I","content":"curto demais","prayer":"P"}`
	if got := NewGateway(replying(short)).DailyDevotional(context.Background(), nil); got != FallbackDevotional {
		t.Errorf("short content accepted: %+v", got)
	}

	content := strings.Repeat("a", 60)
	ok := `{"title":"T","verse":"V","importance":"I","content":"` + content + `","prayer":"P"}`
	got := NewGateway(replying(ok)).DailyDevotional(context.Background(), nil)
	want := models.Devotional{Title: "T", Verse: "V", Importance: "I", Content: content, Prayer: "P"}
	if got != want {
		t.Errorf("DailyDevotional = %+v, want %+v", got, want)
	}
}

func TestGateway_DevotionalRecoversWrappedJSON(t *testing.T) {
	t.Parallel()

	body := "Claro! Aqui está:\n```json\n" + validDevotionalJSON + "\n```"
	gen := replying(body)
	got := NewGateway(gen).DailyDevotional(context.Background(), []string{"Esperança"})

	if got.Title != "Força na Espera" {
		t.Errorf("Title = %q", got.Title)
	}
	if gen.calls[0].Format != FormatJSON {
		t.Errorf("Format = %s", gen.calls[0].Format)
	}
	if !strings.Contains(gen.calls[0].Prompt, "Esperança") {
		t.Error("prompt should mention the themes")
	}
}

func TestGateway_DevotionalBackfillsImportance(t *testing.T) {
	t.Parallel()

	body := `{"title":"T","verse":"V","content":"` + strings.Repeat("b", 80) + `","prayer":"P"}`
	got := NewGateway(replying(body)).DailyDevotional(context.Background(), nil)
	if got.Importance != DefaultImportance {
		t.Errorf("Importance = %q", got.Importance)
	}
}

func TestGateway_ExplainVerse(t *testing.T) {
	t.Parallel()

	got := NewGateway(replying(validVerseJSON)).ExplainVerse(context.Background(), "Isaías 41:10")
	if got.Related != "Salmos 46:1" || got.Explanation != "Deus sustenta." {
		t.Errorf("ExplainVerse = %+v", got)
	}

	partial := `{"explanation":"só isso"}`
	if got := NewGateway(replying(partial)).ExplainVerse(context.Background(), "x"); got != VerseFailureExplanation {
		t.Errorf("partial explanation accepted: %+v", got)
	}
}

func TestGateway_ExplainVerseCache(t *testing.T) {
	t.Parallel()

	cache := newMapVerseCache()
	gen := replying(validVerseJSON)
	g := NewGateway(gen, WithVerseCache(cache))
	ctx := context.Background()

	first := g.ExplainVerse(ctx, "Isaías 41:10")
	second := g.ExplainVerse(ctx, "Isaías 41:10")

	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if gen.callCount() != 1 {
		t.Errorf("generator called %d times, want 1", gen.callCount())
	}

	failingGen := failing(errors.New("down"))
	g = NewGateway(failingGen, WithVerseCache(cache))
	g.ExplainVerse(ctx, "Romanos 8:28")
	if cache.sets != 1 {
		t.Errorf("fallback should not be cached, sets = %d", cache.sets)
	}
}

func TestGateway_RestorationPlan(t *testing.T) {
	t.Parallel()

	gen := replying(planJSON(7))
	plan := NewGateway(gen).RestorationPlan(context.Background(), []string{"Ansiedade", "Perdão"})

	if len(plan.Days) != 7 {
		t.Fatalf("len(Days) = %d", len(plan.Days))
	}
	for i, d := range plan.Days {
		if d.Day != i+1 || d.Completed {
			t.Errorf("day %d not normalized: %+v", i, d)
		}
	}
	if !strings.Contains(gen.calls[0].Prompt, "Ansiedade, Perdão") {
		t.Error("prompt should list the areas")
	}

	short := NewGateway(replying(planJSON(5))).RestorationPlan(context.Background(), []string{"Vício"})
	if short.Days[0].Title != "Reconhecendo o Lugar" {
		t.Errorf("five-day plan should fall back, got %+v", short.Days[0])
	}
}

func TestFallbackPlan_ReturnsCopy(t *testing.T) {
	t.Parallel()

	a := FallbackPlan()
	a.Days[0].Completed = true
	a.Days[0].Title = "mudado"

	b := FallbackPlan()
	if b.Days[0].Completed || b.Days[0].Title != "Reconhecendo o Lugar" {
		t.Error("FallbackPlan shares state between calls")
	}
}

func TestValidityGates(t *testing.T) {
	t.Parallel()

	if !ValidDevotional(FallbackDevotional) {
		t.Error("fallback devotional must pass its own gate")
	}
	if !ValidVerseExplanation(VerseOfflineExplanation) || !ValidVerseExplanation(VerseFailureExplanation) {
		t.Error("verse fallbacks must be complete")
	}
	if !ValidPlan(FallbackPlan()) {
		t.Error("fallback plan must be complete")
	}

	tenChars := models.Devotional{Title: "T", Verse: "V", Prayer: "P", Content: strings.Repeat("x", 10)}
	if ValidDevotional(tenChars) {
		t.Error("10 character content should be rejected")
	}
	accented := models.Devotional{Title: "T", Verse: "V", Prayer: "P", Content: strings.Repeat("é", 50)}
	if !ValidDevotional(accented) {
		t.Error("50 accented characters should be accepted")
	}
	untitled := accented
	untitled.Title = "  "
	if ValidDevotional(untitled) {
		t.Error("blank title should be rejected")
	}
}

func TestGateway_TryJournalReflection(t *testing.T) {
	t.Parallel()

	if _, err := NewGateway(nil).TryJournalReflection(context.Background(), "x"); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("unconfigured err = %v, want ErrUnconfigured", err)
	}

	quota := &APIError{StatusCode: 429, Code: "insufficient_quota", IsPermanent: true}
	if _, err := NewGateway(failing(quota)).TryJournalReflection(context.Background(), "x"); !IsQuotaError(err) {
		t.Errorf("err = %v, want quota error", err)
	}

	if _, err := NewGateway(replying("   ")).TryJournalReflection(context.Background(), "x"); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("blank reply err = %v, want ErrMalformedResponse", err)
	}

	got, err := NewGateway(replying(" Amém. ")).TryJournalReflection(context.Background(), "x")
	if err != nil || got != "Amém." {
		t.Errorf("TryJournalReflection = %q, %v", got, err)
	}
}
