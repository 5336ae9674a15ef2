// Package auth implements the shared-password gate in front of the dashboard.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jask/liquidity/internal/config"
	"github.com/jask/liquidity/internal/secrets"
)

var (
	// ErrNoSecret means no password is configured anywhere.
	ErrNoSecret = errors.New("no gate password configured")
	// ErrDenied is returned for a wrong password.
	ErrDenied = errors.New("access denied")
)

// Session is proof that the gate was passed. Entry points take one instead of
// reading global state.
type Session struct {
	Started time.Time
}

// Gate compares input against a shared secret.
type Gate struct {
	digest [sha256.Size]byte
	now    func() time.Time
}

func NewGate(secret string) (*Gate, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Gate{digest: sha256.Sum256([]byte(secret)), now: time.Now}, nil
}

// Check returns a Session when input matches the secret. Digests are compared
// in constant time so the length of the secret does not leak.
func (g *Gate) Check(input string) (Session, error) {
	in := sha256.Sum256([]byte(input))
	if subtle.ConstantTimeCompare(in[:], g.digest[:]) != 1 {
		return Session{}, ErrDenied
	}
	return Session{Started: g.now()}, nil
}

// ResolveSecret finds the gate password: the env var named in config first,
// then the secrets store, then the config file.
func ResolveSecret(cfg config.AuthConfig) (string, error) {
	if name := strings.TrimSpace(cfg.PasswordEnv); name != "" {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	v, err := secrets.Fetch(secrets.GatePassword)
	switch {
	case err == nil && v != "":
		return v, nil
	case err != nil && !errors.Is(err, secrets.ErrNotFound):
		return "", fmt.Errorf("read secrets store: %w", err)
	}
	if cfg.Password != "" {
		return cfg.Password, nil
	}
	return "", ErrNoSecret
}
