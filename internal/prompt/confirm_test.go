package prompt

import (
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRunForm(t *testing.T, fn func(*huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	runFormFunc = fn
	t.Cleanup(func() { runFormFunc = orig })
}

func TestConfirm_RequiresTerminal(t *testing.T) {
	called := false
	withRunForm(t, func(*huh.Form) error {
		called = true
		return nil
	})
	c := &Confirmer{isTerminal: func() bool { return false }}

	ok, err := c.Confirm("Migrate plugin to Capacitor 8?")

	assert.ErrorIs(t, err, ErrRequiresTerminal)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestConfirm_DefaultsToYes(t *testing.T) {
	var got *huh.Form
	withRunForm(t, func(form *huh.Form) error {
		got = form
		return nil
	})
	c := &Confirmer{isTerminal: func() bool { return true }}

	ok, err := c.Confirm("Migrate plugin to Capacitor 8?")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, got)
}

func TestConfirm_AbortMeansNo(t *testing.T) {
	withRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	c := &Confirmer{isTerminal: func() bool { return true }}

	ok, err := c.Confirm("Migrate?")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirm_FormError(t *testing.T) {
	boom := errors.New("tty closed")
	withRunForm(t, func(*huh.Form) error { return boom })
	c := &Confirmer{isTerminal: func() bool { return true }}

	_, err := c.Confirm("Migrate?")

	assert.ErrorIs(t, err, boom)
}
