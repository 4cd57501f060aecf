package permission

import (
	"testing"

	"github.com/prisonrp/ruleswiki/internal/models"
)

func TestCanManage(t *testing.T) {
	tests := []struct {
		name     string
		actor    Level
		target   Level
		expected bool
	}{
		{"owner manages owner", Owner, Owner, true},
		{"owner manages admin", Owner, Admin, true},
		{"owner manages editor", Owner, Editor, true},
		{"admin manages admin", Admin, Admin, false},
		{"admin manages owner", Admin, Owner, false},
		{"admin manages moderator", Admin, Moderator, true},
		{"admin manages editor", Admin, Editor, true},
		{"moderator manages moderator", Moderator, Moderator, true},
		{"moderator manages admin", Moderator, Admin, false},
		{"editor manages editor", Editor, Editor, true},
		{"editor manages moderator", Editor, Moderator, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManage(tt.actor, tt.target); got != tt.expected {
				t.Errorf("CanManage(%v, %v) = %v, want %v", tt.actor, tt.target, got, tt.expected)
			}
		})
	}
}

func TestStartingStatus(t *testing.T) {
	tests := []struct {
		name     string
		actor    Level
		mode     SubmitMode
		expected string
	}{
		{"editor submit", Editor, ModeSubmit, models.StatusPendingApproval},
		{"moderator submit", Moderator, ModeSubmit, models.StatusApproved},
		{"admin submit", Admin, ModeSubmit, models.StatusApproved},
		{"owner submit", Owner, ModeSubmit, models.StatusApproved},
		{"editor draft", Editor, ModeDraft, models.StatusDraft},
		{"moderator draft", Moderator, ModeDraft, models.StatusDraft},
		{"owner draft", Owner, ModeDraft, models.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StartingStatus(tt.actor, tt.mode); got != tt.expected {
				t.Errorf("StartingStatus(%v, %v) = %q, want %q", tt.actor, tt.mode, got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"editor", "moderator", "admin", "owner"} {
		level, err := ParseLevel(name)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", name, err)
		}
		if level.String() != name {
			t.Errorf("round-trip %q -> %v -> %q", name, level, level.String())
		}
	}

	if _, err := ParseLevel("superadmin"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestCanReview(t *testing.T) {
	if Editor.CanReview() {
		t.Error("editors must not review")
	}
	for _, l := range []Level{Moderator, Admin, Owner} {
		if !l.CanReview() {
			t.Errorf("%v should review", l)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	if !(Editor < Moderator && Moderator < Admin && Admin < Owner) {
		t.Error("levels must form a total order editor < moderator < admin < owner")
	}
}
