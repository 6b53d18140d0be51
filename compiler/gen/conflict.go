package gen

import "fmt"

// Prompter is the operator conversation channel. The engine never assumes
// a transport; terminals, scripted tests, and web forms all satisfy it.
type Prompter interface {
	// Ask poses a free-form question and returns the answer, or def when
	// the operator submits nothing.
	Ask(question, def string) (string, error)
	// Choose poses a closed question. The answer is one of options.
	Choose(question string, options []string, def string) (string, error)
	// Confirm poses a yes/no question.
	Confirm(question string, def bool) (bool, error)
}

// Defaults is a Prompter answering every question with its default.
// It backs non-interactive runs.
type Defaults struct{}

// Ask returns the default answer.
func (Defaults) Ask(_, def string) (string, error) { return def, nil }

// Choose returns the default option.
func (Defaults) Choose(_ string, _ []string, def string) (string, error) { return def, nil }

// Confirm returns the default answer.
func (Defaults) Confirm(_ string, def bool) (bool, error) { return def, nil }

// Decision is the outcome of conflict resolution for one candidate write.
type Decision int

const (
	// Skip leaves the existing file untouched.
	Skip Decision = iota
	// Write creates or overwrites the file.
	Write
)

// String returns a printable decision name.
func (d Decision) String() string {
	if d == Write {
		return "write"
	}
	return "skip"
}

// Policy holds the run-scoped blanket decisions. Both flags start false
// and latch on the first "all"/"skip-all" answer; once either is set, no
// further prompt occurs for the remainder of the run. The builder owns the
// policy and passes it by pointer, so state never leaks across runs.
type Policy struct {
	ForceAll bool
	SkipAll  bool
}

// Resolver decides, per candidate file write, whether to write or skip.
type Resolver struct {
	policy *Policy
	prompt Prompter
}

// NewResolver returns a resolver bound to the given run policy and prompt
// provider.
func NewResolver(policy *Policy, prompt Prompter) *Resolver {
	return &Resolver{policy: policy, prompt: prompt}
}

// conflict answer values.
const (
	answerYes     = "yes"
	answerNo      = "no"
	answerAll     = "all"
	answerSkipAll = "skip-all"
)

// Decide runs the conflict state machine for one path. The exists flag is
// supplied by the caller so that decision logic stays free of sink access.
func (r *Resolver) Decide(path string, exists bool) (Decision, error) {
	switch {
	case r.policy.ForceAll:
		return Write, nil
	case r.policy.SkipAll:
		return Skip, nil
	case !exists:
		return Write, nil
	}
	answer, err := r.prompt.Choose(
		fmt.Sprintf("%s already exists. Overwrite?", path),
		[]string{answerYes, answerNo, answerAll, answerSkipAll},
		answerNo,
	)
	if err != nil {
		return Skip, err
	}
	switch answer {
	case answerYes:
		return Write, nil
	case answerAll:
		r.policy.ForceAll = true
		return Write, nil
	case answerSkipAll:
		r.policy.SkipAll = true
		return Skip, nil
	default:
		return Skip, nil
	}
}
