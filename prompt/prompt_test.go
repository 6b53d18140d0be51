package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terminal(input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewTerminal(strings.NewReader(input), out), out
}

func TestTerminalAsk(t *testing.T) {
	term, out := terminal("Alice\n")
	answer, err := term.Ask("Your name", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "Alice", answer)
	assert.Equal(t, "Your name [nobody]: ", out.String())

	term, _ = terminal("\n")
	answer, err = term.Ask("Your name", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", answer, "empty input takes the default")

	term, out = terminal("faber\n")
	answer, err = term.Ask("Project", "")
	require.NoError(t, err)
	assert.Equal(t, "faber", answer)
	assert.Equal(t, "Project: ", out.String(), "no default, no hint")

	term, _ = terminal("faber")
	answer, err = term.Ask("Project", "")
	require.NoError(t, err)
	assert.Equal(t, "faber", answer, "unterminated final line still counts")

	term, _ = terminal("")
	_, err = term.Ask("Project", "")
	require.Error(t, err, "input ran out")
}

func TestTerminalChoose(t *testing.T) {
	term, out := terminal("recreate\n")
	answer, err := term.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "recreate", answer)
	assert.Contains(t, out.String(), "Conflict (skip/recreate) [skip]: ")

	term, _ = terminal("\n")
	answer, err = term.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "skip", answer)

	term, _ = terminal("RECREATE\n")
	answer, err = term.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "recreate", answer, "answers are case-insensitive")

	// An answer outside the option set re-asks until a valid one arrives.
	term, out = terminal("maybe\nskip\n")
	answer, err = term.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "skip", answer)
	assert.Contains(t, out.String(), "pick one of: skip, recreate")
}

func TestTerminalConfirm(t *testing.T) {
	term, out := terminal("y\n")
	ok, err := term.Confirm("Overwrite", false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Overwrite [y/N] ", out.String())

	term, out = terminal("\n")
	ok, err = term.Confirm("Overwrite", true)
	require.NoError(t, err)
	assert.True(t, ok, "empty input takes the default")
	assert.Equal(t, "Overwrite [Y/n] ", out.String())

	term, _ = terminal("NO\n")
	ok, err = term.Confirm("Overwrite", true)
	require.NoError(t, err)
	assert.False(t, ok)

	term, out = terminal("ja\nyes\n")
	ok, err = term.Confirm("Overwrite", false)
	require.NoError(t, err)
	assert.True(t, ok, "re-asks after an unparseable answer")
	assert.Contains(t, out.String(), "answer y or n")
}

func TestScript(t *testing.T) {
	s := NewScript("posts", "recreate", "no")

	answer, err := s.Ask("Table", "users")
	require.NoError(t, err)
	assert.Equal(t, "posts", answer)

	answer, err = s.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "recreate", answer)

	ok, err := s.Confirm("Overwrite", true)
	require.NoError(t, err)
	assert.False(t, ok)

	// Exhausted queue falls back to defaults.
	answer, err = s.Ask("Table", "users")
	require.NoError(t, err)
	assert.Equal(t, "users", answer)

	ok, err = s.Confirm("Overwrite", true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScriptFallbacks(t *testing.T) {
	s := NewScript("", "purge", "huh")

	answer, err := s.Ask("Table", "users")
	require.NoError(t, err)
	assert.Equal(t, "users", answer, "queued empty string means pressing enter")

	answer, err = s.Choose("Conflict", []string{"skip", "recreate"}, "skip")
	require.NoError(t, err)
	assert.Equal(t, "skip", answer, "answers outside the options take the default")

	ok, err := s.Confirm("Overwrite", false)
	require.NoError(t, err)
	assert.False(t, ok, "unparseable answers take the default")
}

func TestStatic(t *testing.T) {
	s := Static{Yes: true}

	answer, err := s.Ask("Table", "users")
	require.NoError(t, err)
	assert.Equal(t, "users", answer)

	answer, err = s.Choose("Conflict", []string{"skip", "recreate"}, "recreate")
	require.NoError(t, err)
	assert.Equal(t, "recreate", answer)

	ok, err := s.Confirm("Overwrite", false)
	require.NoError(t, err)
	assert.True(t, ok, "confirmations pin to Yes")

	ok, err = Static{}.Confirm("Overwrite", true)
	require.NoError(t, err)
	assert.False(t, ok, "zero value declines everything")
}
