package suggest

import (
	"github.com/blackwell-systems/focuswatch/internal/activity"
	"github.com/blackwell-systems/focuswatch/internal/reminder"
	"github.com/blackwell-systems/focuswatch/internal/session"
)

// DefaultLimit is the number of suggestion titles attached to an event.
const DefaultLimit = 3

// Engine runs all registered rules against a ReminderContext and collects
// the resulting suggestions.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new suggest engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			StretchBreak,
			EyeRest,
			Hydration,
			WalkOutside,
			WrapUp,
			LateNight,
			CloseDistraction,
			FocusBlock,
			RecurringDistraction,
		},
	}
}

// Run executes all registered rules against the given context and returns
// the collected suggestions sorted by impact score (highest first).
func (e *Engine) Run(ctx *ReminderContext) []Suggestion {
	var all []Suggestion
	for _, rule := range e.rules {
		results := rule(ctx)
		all = append(all, results...)
	}
	return RankSuggestions(all)
}

// NewContext builds the rule input for ev from the tracker history.
func NewContext(ev reminder.Event, history []session.Entry) *ReminderContext {
	ctx := &ReminderContext{
		Kind:     ev.Kind,
		Severity: ev.Severity,
		Tier:     ev.Tier,
		Duration: ev.Duration,
		Hour:     ev.FiredAt.Local().Hour(),
	}
	for _, h := range history {
		switch h.Status {
		case activity.Working:
			ctx.RecentWorkMinutes += h.DurationMinutes
		case activity.Entertainment:
			ctx.RecentEntertainmentEpisodes++
		}
	}
	return ctx
}

// Enrich returns ev with the titles of the top limit suggestions attached.
// A non-positive limit uses DefaultLimit.
func (e *Engine) Enrich(ev reminder.Event, history []session.Entry, limit int) reminder.Event {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked := e.Run(NewContext(ev, history))
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	titles := make([]string, 0, len(ranked))
	for _, s := range ranked {
		titles = append(titles, s.Title)
	}
	ev.Suggestions = titles
	return ev
}
