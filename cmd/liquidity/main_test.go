package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/liquidity/internal/auth"
)

func TestWithSessionPassesGrantedSession(t *testing.T) {
	gate, err := auth.NewGate("hunter2")
	require.NoError(t, err)
	a := &app{gate: gate}

	var got auth.Session
	err = a.withSession(strings.NewReader("hunter2\n"), func(s auth.Session) error {
		got = s
		return nil
	})
	require.NoError(t, err)
	require.False(t, got.Started.IsZero())

	// piped input without a trailing newline still counts
	require.NoError(t, a.withSession(strings.NewReader("hunter2"), func(auth.Session) error { return nil }))
}

func TestWithSessionRejectsWrongPassword(t *testing.T) {
	gate, err := auth.NewGate("hunter2")
	require.NoError(t, err)
	a := &app{gate: gate}

	called := false
	err = a.withSession(strings.NewReader("guess\n"), func(auth.Session) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, auth.ErrDenied)
	require.False(t, called)
}

func TestWithSessionWithoutSecret(t *testing.T) {
	a := &app{gateErr: auth.ErrNoSecret}
	err := a.withSession(strings.NewReader("x\n"), func(auth.Session) error { return nil })
	require.ErrorIs(t, err, auth.ErrNoSecret)
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LIQUIDITY_CONFIG", "")
	t.Setenv("LIQUIDITY_DATABASE_PATH", filepath.Join(dir, "liquidity.db"))
	require.Equal(t, 2, run([]string{"frobnicate"}))
}
