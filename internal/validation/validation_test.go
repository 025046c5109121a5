package validation

import (
	"testing"

	"github.com/willdone/timeline-core/internal/constants"
)

func TestValidateAddTaskRejectsEmptyTitle(t *testing.T) {
	if err := ValidateAddTask(AddTaskInput{Title: "", Hours: 1}); err == nil {
		t.Fatal("expected rejection of an empty title")
	}
}

func TestValidateAddTaskRejectsNegativeDuration(t *testing.T) {
	if err := ValidateAddTask(AddTaskInput{Title: "x", Minutes: -5}); err == nil {
		t.Fatal("expected rejection of a negative duration")
	}
}

func TestValidateAddTaskAcceptsValidInput(t *testing.T) {
	if err := ValidateAddTask(AddTaskInput{Title: "x", Hours: 1, Minutes: 30}); err != nil {
		t.Fatalf("ValidateAddTask() failed: %v", err)
	}
}

func TestValidateTransitionActionRejectsUnknown(t *testing.T) {
	if err := ValidateTransitionAction(constants.TransitionAction("BOGUS")); err == nil {
		t.Fatal("expected rejection of an unknown action")
	}
}

func TestValidateTransitionActionAcceptsAllFour(t *testing.T) {
	for _, a := range []constants.TransitionAction{constants.CompleteOnTime, constants.CompleteNow, constants.CompleteAgo, constants.Delay} {
		if err := ValidateTransitionAction(a); err != nil {
			t.Fatalf("ValidateTransitionAction(%v) failed: %v", a, err)
		}
	}
}

func TestValidateExtraMinutesRejectsNegativeForDelay(t *testing.T) {
	if err := ValidateExtraMinutes(constants.Delay, -1); err == nil {
		t.Fatal("expected rejection of a negative delay")
	}
}

func TestValidateExtraMinutesIgnoredForCompletions(t *testing.T) {
	if err := ValidateExtraMinutes(constants.CompleteOnTime, -1); err != nil {
		t.Fatalf("ValidateExtraMinutes() failed for a completion that ignores extra minutes: %v", err)
	}
}

func TestValidateReorderRejectsEmpty(t *testing.T) {
	if err := ValidateReorder(nil); err == nil {
		t.Fatal("expected rejection of an empty reorder list")
	}
}

func TestValidateReorderRejectsDuplicates(t *testing.T) {
	if err := ValidateReorder([]int64{1, 2, 1}); err == nil {
		t.Fatal("expected rejection of a duplicate id")
	}
}

func TestValidateReorderAcceptsDistinctIDs(t *testing.T) {
	if err := ValidateReorder([]int64{3, 1, 2}); err != nil {
		t.Fatalf("ValidateReorder() failed: %v", err)
	}
}
