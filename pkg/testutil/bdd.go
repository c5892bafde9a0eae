package testutil

import "testing"

// Given, When and Then name scenario steps as subtests, so a failing step
// reads as "TestIssueLifecycle/When_the_officer_responds/Then_...".
func Given(t *testing.T, setup string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", setup, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", outcome, fn)
}

// step stops the parent once a step fails; later steps depend on its state.
func step(t *testing.T, keyword, desc string, fn func(t *testing.T)) {
	t.Helper()
	if !t.Run(keyword+" "+desc, fn) {
		t.FailNow()
	}
}
