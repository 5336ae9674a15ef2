// Package secrets keeps small per-user values, such as the dashboard password,
// in an AES-GCM encrypted file under the user config directory. The key is
// derived from the user and the file location, so it keeps the value out of
// plain text config but is no substitute for an OS keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

const (
	fileName    = "secrets.json"
	fileVersion = 1
)

// GatePassword is the name the dashboard password is stored under.
const GatePassword = "gate_password"

var (
	// ErrNotFound is returned when no secret is stored under the name.
	ErrNotFound = errors.New("secret not found")
	// ErrCorrupt means the file or an entry could not be read back.
	ErrCorrupt = errors.New("secrets file corrupt")
)

type entry struct {
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

type vaultFile struct {
	Version int              `json:"version"`
	Entries map[string]entry `json:"entries"`
}

// Vault is one secrets file.
type Vault struct {
	path string
	aead cipher.AEAD
}

// Open returns the vault stored in dir, creating dir if needed.
func Open(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir secrets dir: %w", err)
	}
	path := filepath.Join(dir, fileName)
	key := sha256.Sum256([]byte(strings.Join([]string{"liquidity", runtime.GOOS, os.Getenv("USER"), path}, "\x00")))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Vault{path: path, aead: aead}, nil
}

// Default opens the vault under the user config directory.
func Default() (*Vault, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "liquidity"))
}

// Put stores value under name, replacing any previous value.
func (v *Vault) Put(name, value string) error {
	name, err := normName(name)
	if err != nil {
		return err
	}
	f, err := v.read()
	if err != nil {
		return err
	}
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	f.Entries[name] = entry{Nonce: nonce, Data: v.aead.Seal(nil, nonce, []byte(value), []byte(name))}
	return v.write(f)
}

// Get returns the value stored under name.
func (v *Vault) Get(name string) (string, error) {
	name, err := normName(name)
	if err != nil {
		return "", err
	}
	f, err := v.read()
	if err != nil {
		return "", err
	}
	e, ok := f.Entries[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if len(e.Nonce) != v.aead.NonceSize() {
		return "", fmt.Errorf("%s: %w", name, ErrCorrupt)
	}
	// the name is bound as associated data, so a swapped entry fails to open
	plain, err := v.aead.Open(nil, e.Nonce, e.Data, []byte(name))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrCorrupt)
	}
	return string(plain), nil
}

// Remove deletes name. Removing an absent name is not an error.
func (v *Vault) Remove(name string) error {
	name, err := normName(name)
	if err != nil {
		return err
	}
	f, err := v.read()
	if err != nil {
		return err
	}
	if _, ok := f.Entries[name]; !ok {
		return nil
	}
	delete(f.Entries, name)
	return v.write(f)
}

// Names lists stored names in order.
func (v *Vault) Names() ([]string, error) {
	f, err := v.read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(f.Entries))
	for n := range f.Entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (v *Vault) read() (vaultFile, error) {
	f := vaultFile{Version: fileVersion, Entries: map[string]entry{}}
	data, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read secrets: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version != fileVersion {
		return f, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, f.Version)
	}
	if f.Entries == nil {
		f.Entries = map[string]entry{}
	}
	return f, nil
}

// write replaces the file atomically with mode 0600.
func (v *Vault) write(f vaultFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}

func normName(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("secret name required")
	}
	return s, nil
}

// Store saves value under name in the default vault.
func Store(name, value string) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.Put(name, value)
}

// Fetch reads name from the default vault.
func Fetch(name string) (string, error) {
	v, err := Default()
	if err != nil {
		return "", err
	}
	return v.Get(name)
}

// Delete removes name from the default vault.
func Delete(name string) error {
	v, err := Default()
	if err != nil {
		return err
	}
	return v.Remove(name)
}
