package models

import (
	"slices"
	"time"
)

// PlanLength is the number of days in a restoration plan
const PlanLength = 7

// PlanDay is one day of a restoration plan
type PlanDay struct {
	Day       int    `json:"day"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// RestorationPlan is a seven-day guided plan. Areas and StartDate are fixed
// at creation; only the Completed flag of each day changes afterwards.
type RestorationPlan struct {
	Active    bool      `json:"active"`
	StartDate time.Time `json:"start_date"`
	Areas     []string  `json:"areas"`
	Days      []PlanDay `json:"days"`
}

// Clone returns a deep copy of the plan
func (p RestorationPlan) Clone() RestorationPlan {
	out := p
	out.Areas = slices.Clone(p.Areas)
	out.Days = slices.Clone(p.Days)
	return out
}

// PlanContent is the generated body of a plan before it is attached to a profile
type PlanContent struct {
	Days []PlanDay `json:"days"`
}
