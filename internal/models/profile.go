package models

import (
	"slices"
	"time"
)

// DefaultProfileName is used when the user skips the name step
const DefaultProfileName = "Amado(a)"

// BibleFrequency represents how often the user reads the Bible
type BibleFrequency string

const (
	BibleFrequencyEveryDay     BibleFrequency = "every_day"
	BibleFrequencySomeWeekdays BibleFrequency = "some_weekdays"
	BibleFrequencyRarely       BibleFrequency = "rarely"
	BibleFrequencyNever        BibleFrequency = "never"
)

// DevotionalPreference represents the preferred devotional length
type DevotionalPreference string

const (
	DevotionalPreferenceShort DevotionalPreference = "short"
	DevotionalPreferenceDeep  DevotionalPreference = "deep"
)

// Stats holds the gamified progression counters of a profile.
// Intimacy never decreases and is the only input to level classification.
type Stats struct {
	Intimacy      int `json:"intimacy"`
	Reading       int `json:"reading"`
	Comprehension int `json:"comprehension"`
	Peace         int `json:"peace"`
	Consistency   int `json:"consistency"`
	Streak        int `json:"streak"`
}

// UserProfile is the persisted state of a single device's user
type UserProfile struct {
	Name                 string               `json:"name"`
	OnboardingComplete   bool                 `json:"onboarding_complete"`
	SpiritualChallenge   []string             `json:"spiritual_challenge"`
	BibleFrequency       BibleFrequency       `json:"bible_frequency"`
	IsNewBeliever        bool                 `json:"is_new_believer"`
	DevotionalPreference DevotionalPreference `json:"devotional_preference"`
	InterestThemes       []string             `json:"interest_themes"`
	LastDevotionalDate   *Date                `json:"last_devotional_date,omitempty"`
	RestorationPlan      *RestorationPlan     `json:"restoration_plan,omitempty"`
	Stats                Stats                `json:"stats"`
}

// Clone returns a deep copy so callers can mutate it without touching the original
func (p UserProfile) Clone() UserProfile {
	out := p
	out.SpiritualChallenge = slices.Clone(p.SpiritualChallenge)
	out.InterestThemes = slices.Clone(p.InterestThemes)
	if p.LastDevotionalDate != nil {
		d := *p.LastDevotionalDate
		out.LastDevotionalDate = &d
	}
	if p.RestorationPlan != nil {
		plan := p.RestorationPlan.Clone()
		out.RestorationPlan = &plan
	}
	return out
}

// DevotionalDoneOn reports whether the daily devotional was already credited on day
func (p UserProfile) DevotionalDoneOn(day Date) bool {
	return p.LastDevotionalDate != nil && *p.LastDevotionalDate == day
}

// Date is a calendar date in YYYY-MM-DD form
type Date string

const dateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Valid reports whether d parses as a calendar date
func (d Date) Valid() bool {
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}
