package suggest

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/focuswatch/internal/reminder"
)

func TestFatigueRules_IgnoreDistraction(t *testing.T) {
	ctx := &ReminderContext{Kind: reminder.KindDistraction, Tier: 3, Hour: 12}
	for name, rule := range map[string]Rule{
		"StretchBreak": StretchBreak,
		"EyeRest":      EyeRest,
		"Hydration":    Hydration,
		"WalkOutside":  WalkOutside,
		"WrapUp":       WrapUp,
	} {
		if got := rule(ctx); len(got) != 0 {
			t.Errorf("%s fired for a distraction reminder: %v", name, got)
		}
	}
}

func TestDistractionRules_IgnoreFatigue(t *testing.T) {
	ctx := &ReminderContext{
		Kind:                        reminder.KindFatigue,
		Severity:                    reminder.SeverityHigh,
		RecentEntertainmentEpisodes: 10,
		Hour:                        12,
	}
	for name, rule := range map[string]Rule{
		"CloseDistraction":     CloseDistraction,
		"FocusBlock":           FocusBlock,
		"RecurringDistraction": RecurringDistraction,
	} {
		if got := rule(ctx); len(got) != 0 {
			t.Errorf("%s fired for a fatigue reminder: %v", name, got)
		}
	}
}

func TestStretchBreak_MentionsDuration(t *testing.T) {
	got := StretchBreak(&ReminderContext{Kind: reminder.KindFatigue, Duration: 5 * time.Hour})
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if !strings.Contains(got[0].Description, "300 minutes") {
		t.Errorf("description should mention duration, got %q", got[0].Description)
	}
	if got[0].ImpactScore <= 0 {
		t.Errorf("expected positive impact score, got %f", got[0].ImpactScore)
	}
}

func TestHydration_FromSecondTier(t *testing.T) {
	if got := Hydration(&ReminderContext{Kind: reminder.KindFatigue, Tier: 1}); len(got) != 0 {
		t.Errorf("tier 1 should not suggest water, got %v", got)
	}
	if got := Hydration(&ReminderContext{Kind: reminder.KindFatigue, Tier: 2}); len(got) != 1 {
		t.Errorf("tier 2 should suggest water, got %v", got)
	}
}

func TestWalkOutside_DaytimeOnly(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{7, 0}, {8, 1}, {17, 1}, {18, 0}, {23, 0},
	}
	for _, tc := range tests {
		got := WalkOutside(&ReminderContext{Kind: reminder.KindFatigue, Hour: tc.hour})
		if len(got) != tc.want {
			t.Errorf("hour %d: got %d suggestions, want %d", tc.hour, len(got), tc.want)
		}
	}
}

func TestWrapUp(t *testing.T) {
	tests := []struct {
		name string
		ctx  ReminderContext
		want int
	}{
		{"first tier short day", ReminderContext{Kind: reminder.KindFatigue, Tier: 1, Duration: 5 * time.Hour}, 0},
		{"last tier", ReminderContext{Kind: reminder.KindFatigue, Tier: 3, Duration: 7 * time.Hour}, 1},
		{"long day from history", ReminderContext{Kind: reminder.KindFatigue, Tier: 1, Duration: 5 * time.Hour, RecentWorkMinutes: 200}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapUp(&tc.ctx)
			if len(got) != tc.want {
				t.Fatalf("got %d suggestions, want %d", len(got), tc.want)
			}
			if tc.want == 1 && got[0].Priority != PriorityCritical {
				t.Errorf("expected critical priority, got %d", got[0].Priority)
			}
		})
	}
}

func TestLateNight(t *testing.T) {
	for _, hour := range []int{22, 23, 0, 4} {
		if got := LateNight(&ReminderContext{Kind: reminder.KindDistraction, Hour: hour}); len(got) != 1 {
			t.Errorf("hour %d: expected a late night suggestion", hour)
		}
	}
	for _, hour := range []int{5, 12, 21} {
		if got := LateNight(&ReminderContext{Kind: reminder.KindFatigue, Hour: hour}); len(got) != 0 {
			t.Errorf("hour %d: unexpected late night suggestion", hour)
		}
	}
}

func TestFocusBlock_NeedsMediumSeverity(t *testing.T) {
	low := FocusBlock(&ReminderContext{Kind: reminder.KindDistraction, Severity: reminder.SeverityLow})
	if len(low) != 0 {
		t.Errorf("low severity should not suggest a focus block, got %v", low)
	}
	med := FocusBlock(&ReminderContext{Kind: reminder.KindDistraction, Severity: reminder.SeverityMedium})
	if len(med) != 1 {
		t.Errorf("medium severity should suggest a focus block, got %v", med)
	}
}

func TestRecurringDistraction_Threshold(t *testing.T) {
	two := RecurringDistraction(&ReminderContext{Kind: reminder.KindDistraction, RecentEntertainmentEpisodes: 2})
	if len(two) != 0 {
		t.Errorf("2 episodes should not trigger, got %v", two)
	}
	three := RecurringDistraction(&ReminderContext{Kind: reminder.KindDistraction, RecentEntertainmentEpisodes: 3})
	if len(three) != 1 {
		t.Fatalf("3 episodes should trigger, got %v", three)
	}
	if !strings.Contains(three[0].Description, "3 entertainment episodes") {
		t.Errorf("description should include the count, got %q", three[0].Description)
	}
}
