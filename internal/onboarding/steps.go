// Package onboarding describes the first-run questionnaire as a fixed list of
// typed steps. Each answered step yields a patch; Assemble folds the patches
// into a complete profile, filling defaults for anything left unanswered.
package onboarding

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/benvon/devotional/internal/models"
)

var (
	ErrUnknownStep   = errors.New("unknown onboarding step")
	ErrInvalidAnswer = errors.New("invalid onboarding answer")
)

// Kind is the input type of a step
type Kind string

const (
	KindIntro        Kind = "intro"
	KindTextInput    Kind = "text_input"
	KindSingleSelect Kind = "single_select"
	KindMultiSelect  Kind = "multi_select"
	KindYesNo        Kind = "yes_no"
)

// Option is a selectable value with its display label
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Step is one screen of the questionnaire
type Step struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Options  []Option `json:"options,omitempty"`

	patch func(Answer) Patch
}

// Answer carries the user's input for one step. Only the field matching the
// step's kind is read.
type Answer struct {
	StepID  string   `json:"step_id"`
	Text    string   `json:"text,omitempty"`
	Choice  string   `json:"choice,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Yes     *bool    `json:"yes,omitempty"`
}

// Draft accumulates answers before assembly
type Draft struct {
	Name                 string
	Challenges           []string
	Frequency            models.BibleFrequency
	NewBeliever          bool
	Themes               []string
	DevotionalPreference models.DevotionalPreference
}

// Patch applies one answer to a draft
type Patch func(*Draft)

func options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

var steps = []Step{
	{
		ID:       "welcome",
		Kind:     KindIntro,
		Title:    "Bem-vindo ao\nVida com O Senhor",
		Subtitle: "O único aplicativo criado para transformar de verdade sua relação com Deus.",
	},
	{
		ID:    "name",
		Kind:  KindTextInput,
		Title: "Como você gostaria de ser chamado?",
		patch: func(a Answer) Patch {
			name := strings.TrimSpace(a.Text)
			return func(d *Draft) { d.Name = name }
		},
	},
	{
		ID:      "challenge",
		Kind:    KindMultiSelect,
		Title:   "Quais seus principais desafios espirituais hoje?",
		Options: options("Ansiedade", "Medo", "Falta de disciplina", "Compreensão bíblica", "Culpa", "Propósito", "Cansaço"),
		patch: func(a Answer) Patch {
			choices := slices.Clone(a.Choices)
			return func(d *Draft) { d.Challenges = choices }
		},
	},
	{
		ID:    "frequency",
		Kind:  KindSingleSelect,
		Title: "Com que frequência você lê a Bíblia?",
		Options: []Option{
			{Value: string(models.BibleFrequencyEveryDay), Label: "Todos os dias"},
			{Value: string(models.BibleFrequencySomeWeekdays), Label: "Algumas vezes na semana"},
			{Value: string(models.BibleFrequencyRarely), Label: "Raramente"},
			{Value: string(models.BibleFrequencyNever), Label: "Nunca li"},
		},
		patch: func(a Answer) Patch {
			f := models.BibleFrequency(a.Choice)
			return func(d *Draft) { d.Frequency = f }
		},
	},
	{
		ID:    "newBeliever",
		Kind:  KindYesNo,
		Title: "Você se considera novo na fé?",
		patch: func(a Answer) Patch {
			yes := *a.Yes
			return func(d *Draft) { d.NewBeliever = yes }
		},
	},
	{
		ID:      "themes",
		Kind:    KindMultiSelect,
		Title:   "Quais temas mais falam ao seu coração?",
		Options: options("Propósito", "Identidade", "Cura", "Decisões", "Família", "Espírito Santo", "Finanças"),
		patch: func(a Answer) Patch {
			choices := slices.Clone(a.Choices)
			return func(d *Draft) { d.Themes = choices }
		},
	},
	{
		ID:    "preference",
		Kind:  KindSingleSelect,
		Title: "Prefere devocionais curtos ou profundos?",
		Options: []Option{
			{Value: string(models.DevotionalPreferenceShort), Label: "Curtos e Diretos (2min)"},
			{Value: string(models.DevotionalPreferenceDeep), Label: "Profundos e Teológicos (10min)"},
		},
		patch: func(a Answer) Patch {
			p := models.DevotionalPreference(a.Choice)
			return func(d *Draft) { d.DevotionalPreference = p }
		},
	},
}

// Steps returns the questionnaire in order
func Steps() []Step {
	return slices.Clone(steps)
}

// Lookup finds a step by ID
func Lookup(id string) (Step, bool) {
	i := slices.IndexFunc(steps, func(s Step) bool { return s.ID == id })
	if i < 0 {
		return Step{}, false
	}
	return steps[i], true
}

// Apply validates an answer against the step and returns its patch.
// Intro steps accept any answer and yield a no-op patch.
func (s Step) Apply(a Answer) (Patch, error) {
	if err := s.validate(a); err != nil {
		return nil, fmt.Errorf("%w: step %s: %v", ErrInvalidAnswer, s.ID, err)
	}
	if s.patch == nil {
		return func(*Draft) {}, nil
	}
	if s.Kind == KindMultiSelect {
		a.Choices = distinct(a.Choices)
	}
	return s.patch(a), nil
}

// distinct keeps the first occurrence of each choice
func distinct(choices []string) []string {
	out := make([]string, 0, len(choices))
	for _, c := range choices {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (s Step) validate(a Answer) error {
	switch s.Kind {
	case KindIntro:
		return nil
	case KindTextInput:
		if strings.TrimSpace(a.Text) == "" {
			return errors.New("text is required")
		}
	case KindSingleSelect:
		if !s.hasOption(a.Choice) {
			return fmt.Errorf("unknown option %q", a.Choice)
		}
	case KindMultiSelect:
		for _, c := range a.Choices {
			if !s.hasOption(c) {
				return fmt.Errorf("unknown option %q", c)
			}
		}
	case KindYesNo:
		if a.Yes == nil {
			return errors.New("yes/no answer is required")
		}
	}
	return nil
}

func (s Step) hasOption(v string) bool {
	return slices.ContainsFunc(s.Options, func(o Option) bool { return o.Value == v })
}

// Run applies answers in questionnaire order, whatever order they arrive in,
// and assembles the profile. Steps without an answer keep their defaults.
func Run(answers []Answer) (models.UserProfile, error) {
	type indexed struct {
		step  int
		patch Patch
	}
	applied := make([]indexed, 0, len(answers))
	for _, a := range answers {
		i := slices.IndexFunc(steps, func(s Step) bool { return s.ID == a.StepID })
		if i < 0 {
			return models.UserProfile{}, fmt.Errorf("%w: %q", ErrUnknownStep, a.StepID)
		}
		p, err := steps[i].Apply(a)
		if err != nil {
			return models.UserProfile{}, err
		}
		applied = append(applied, indexed{step: i, patch: p})
	}
	slices.SortStableFunc(applied, func(a, b indexed) int { return a.step - b.step })

	patches := make([]Patch, len(applied))
	for i, a := range applied {
		patches[i] = a.patch
	}
	return Assemble(patches...), nil
}

// Assemble builds a complete, onboarded profile from patches
func Assemble(patches ...Patch) models.UserProfile {
	var d Draft
	for _, p := range patches {
		p(&d)
	}

	if d.Name == "" {
		d.Name = models.DefaultProfileName
	}
	if len(d.Challenges) == 0 {
		d.Challenges = []string{"Crescimento"}
	}
	if d.Frequency == "" {
		d.Frequency = models.BibleFrequencyRarely
	}
	if d.DevotionalPreference == "" {
		d.DevotionalPreference = models.DevotionalPreferenceShort
	}
	if d.Themes == nil {
		d.Themes = []string{}
	}

	return models.UserProfile{
		Name:                 d.Name,
		OnboardingComplete:   true,
		SpiritualChallenge:   d.Challenges,
		BibleFrequency:       d.Frequency,
		IsNewBeliever:        d.NewBeliever,
		DevotionalPreference: d.DevotionalPreference,
		InterestThemes:       d.Themes,
		Stats: models.Stats{
			Intimacy:      100,
			Comprehension: 10,
			Peace:         10,
		},
	}
}
