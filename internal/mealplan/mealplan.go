package mealplan

import (
	"encoding/json"

	"recipe-finder/internal/recipe"
)

// Days lists the seven canonical day slots in week order. The slot set of
// a plan is always exactly these names.
var Days = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Every user has a single weekly plan under this fixed identity.
const planID = "weekly_plan"

// IsDay reports whether the name is one of the seven canonical days.
func IsDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// MealPlan assigns at most one recipe to each of the seven days.
type MealPlan struct {
	ID   string                    `json:"id"`
	Plan map[string]*recipe.Recipe `json:"plan"`
}

// New returns a plan with all seven slots empty.
func New() *MealPlan {
	plan := make(map[string]*recipe.Recipe, len(Days))
	for _, day := range Days {
		plan[day] = nil
	}
	return &MealPlan{ID: planID, Plan: plan}
}

// Assign puts the recipe into the named day slot, replacing any prior
// assignment. It reports false and leaves the plan unchanged if the day is
// not one of the seven canonical names.
func (p *MealPlan) Assign(day string, rec recipe.Recipe) bool {
	if _, ok := p.Plan[day]; !ok {
		return false
	}
	r := rec
	p.Plan[day] = &r
	return true
}

// Remove empties the named day slot, with the same day validation as
// Assign.
func (p *MealPlan) Remove(day string) bool {
	if _, ok := p.Plan[day]; !ok {
		return false
	}
	p.Plan[day] = nil
	return true
}

// Recipe returns the assignment for the named day, or nil when the slot is
// empty or the day is unknown.
func (p *MealPlan) Recipe(day string) *recipe.Recipe {
	return p.Plan[day]
}

// ShoppingList aggregates the ingredient lines of every assigned recipe in
// week order.
func (p *MealPlan) ShoppingList() []string {
	var items []string
	for _, day := range Days {
		if rec := p.Plan[day]; rec != nil {
			items = append(items, rec.Ingredients...)
		}
	}
	return items
}

// UnmarshalJSON rebuilds the fixed slot set from a persisted record.
// Unknown day keys are dropped so the seven-slot invariant holds even for
// hand-edited files.
func (p *MealPlan) UnmarshalJSON(data []byte) error {
	var raw struct {
		Plan map[string]*recipe.Recipe `json:"plan"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fresh := New()
	for day, rec := range raw.Plan {
		if _, ok := fresh.Plan[day]; ok {
			fresh.Plan[day] = rec
		}
	}
	*p = *fresh
	return nil
}
