package suggest

import (
	"fmt"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

// StretchBreak suggests a short physical break on every fatigue reminder.
func StretchBreak(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindFatigue {
		return nil
	}
	return []Suggestion{{
		Category: "rest",
		Priority: PriorityHigh,
		Title:    "Stand up and stretch for five minutes",
		Description: fmt.Sprintf(
			"You have been working for %.0f minutes. A few minutes of standing and "+
				"stretching resets posture and circulation.",
			ctx.Duration.Minutes(),
		),
		ImpactScore: ComputeImpact(severityWeight(ctx), 1.0, 20.0, 5.0),
	}}
}

// EyeRest suggests the 20-20-20 routine on fatigue reminders.
func EyeRest(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindFatigue {
		return nil
	}
	return []Suggestion{{
		Category:    "rest",
		Priority:    PriorityMedium,
		Title:       "Rest your eyes: look 20 feet away for 20 seconds",
		Description: "Long screen sessions strain focus muscles. Looking into the distance briefly relaxes them.",
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.8, 5.0, 1.0),
	}}
}

// Hydration suggests a drink from the second fatigue tier on.
func Hydration(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindFatigue || ctx.Tier < 2 {
		return nil
	}
	return []Suggestion{{
		Category:    "rest",
		Priority:    PriorityMedium,
		Title:       "Get a glass of water",
		Description: "Several hours into a session is a good time to refill.",
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.6, 5.0, 2.0),
	}}
}

// WalkOutside suggests a walk for daytime fatigue reminders.
func WalkOutside(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindFatigue || ctx.Hour < 8 || ctx.Hour >= 18 {
		return nil
	}
	return []Suggestion{{
		Category:    "rest",
		Priority:    PriorityMedium,
		Title:       "Take a 15 minute walk outside",
		Description: "Daylight and movement restore attention better than a break at the desk.",
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.7, 30.0, 15.0),
	}}
}

// WrapUp suggests ending the day once the last fatigue tier fires or the
// recent history already holds a full day of work.
func WrapUp(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindFatigue {
		return nil
	}
	if ctx.Tier < 3 && ctx.RecentWorkMinutes+ctx.Duration.Minutes() < 8*60 {
		return nil
	}
	return []Suggestion{{
		Category: "schedule",
		Priority: PriorityCritical,
		Title:    "Wrap up and write down where you stopped",
		Description: fmt.Sprintf(
			"About %.1f hours of work today. Note the next step and stop; tomorrow's first hour will be faster.",
			(ctx.RecentWorkMinutes+ctx.Duration.Minutes())/60,
		),
		ImpactScore: ComputeImpact(severityWeight(ctx), 1.0, 60.0, 5.0),
	}}
}

// LateNight suggests stopping for reminders fired late at night.
func LateNight(ctx *ReminderContext) []Suggestion {
	if ctx.Hour >= 5 && ctx.Hour < 22 {
		return nil
	}
	return []Suggestion{{
		Category:    "schedule",
		Priority:    PriorityHigh,
		Title:       "Call it a night",
		Description: fmt.Sprintf("It is past %02d:00. Sleep does more for tomorrow than another hour now.", ctx.Hour),
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.9, 60.0, 10.0),
	}}
}

// CloseDistraction suggests closing the entertainment source.
func CloseDistraction(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindDistraction {
		return nil
	}
	return []Suggestion{{
		Category: "focus",
		Priority: PriorityHigh,
		Title:    "Close the video or game you have open",
		Description: fmt.Sprintf(
			"This break has lasted %.0f minutes. Closing the window removes the pull to continue.",
			ctx.Duration.Minutes(),
		),
		ImpactScore: ComputeImpact(severityWeight(ctx), 1.0, 15.0, 1.0),
	}}
}

// FocusBlock suggests a timed focus block once a break overruns the
// threshold.
func FocusBlock(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindDistraction || ctx.Severity < reminder.SeverityMedium {
		return nil
	}
	return []Suggestion{{
		Category:    "focus",
		Priority:    PriorityMedium,
		Title:       "Start a 25 minute focus block",
		Description: "Pick one small task and work on it until the timer ends.",
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.8, 25.0, 2.0),
	}}
}

// RecurringDistraction flags repeated entertainment episodes in recent
// history.
func RecurringDistraction(ctx *ReminderContext) []Suggestion {
	if ctx.Kind != reminder.KindDistraction || ctx.RecentEntertainmentEpisodes < 3 {
		return nil
	}
	return []Suggestion{{
		Category: "focus",
		Priority: PriorityMedium,
		Title:    "Block distracting sites for the next hour",
		Description: fmt.Sprintf(
			"%d entertainment episodes in your recent history. A site blocker makes the next one less likely.",
			ctx.RecentEntertainmentEpisodes,
		),
		ImpactScore: ComputeImpact(severityWeight(ctx), 0.5, 30.0, 3.0),
	}}
}
