package apaleague

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// StateDir is the on-disk layout everything stateful lives under:
//
//	<root>/session.json        login metadata
//	<root>/browser_data/       browser storage state
//	<root>/cache/              extraction cache
//	<root>/logs/               log output
//	<root>/tmp/                scratch space
type StateDir struct {
	Root string
}

func DefaultStateDir() StateDir {
	return StateDir{Root: filepath.Join("var", "apastats")}
}

func (d StateDir) SessionFile() string      { return filepath.Join(d.Root, "session.json") }
func (d StateDir) BrowserDataDir() string   { return filepath.Join(d.Root, "browser_data") }
func (d StateDir) BrowserStateFile() string { return filepath.Join(d.BrowserDataDir(), "storage_state.json") }
func (d StateDir) CacheDir() string         { return filepath.Join(d.Root, "cache") }
func (d StateDir) LogsDir() string          { return filepath.Join(d.Root, "logs") }
func (d StateDir) TmpDir() string           { return filepath.Join(d.Root, "tmp") }

// EnsureLayout creates the directory tree if any of it is missing.
func (d StateDir) EnsureLayout() error {
	for _, dir := range []string{
		d.Root,
		d.BrowserDataDir(),
		d.CacheDir(),
		d.LogsDir(),
		d.TmpDir(),
	} {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return err
		}
	}
	return nil
}

// HasSession reports whether a saved browser state exists. It says
// nothing about whether the portal still accepts it.
func (d StateDir) HasSession() bool {
	_, err := os.Stat(d.BrowserStateFile())
	return err == nil
}

// Clear wipes browser state, cache, logs and scratch, then recreates
// the empty layout.
func (d StateDir) Clear() error {
	for _, path := range []string{
		d.SessionFile(),
		d.BrowserDataDir(),
		d.CacheDir(),
		d.LogsDir(),
		d.TmpDir(),
	} {
		err := os.RemoveAll(path)
		if err != nil {
			return err
		}
	}
	return d.EnsureLayout()
}

// SessionMeta describes when a session was saved. ExpiresAt is only a
// hint for humans, the portal is the real authority.
type SessionMeta struct {
	SavedAt   time.Time `json:"saved_at"`
	ExpiresAt time.Time `json:"expires_at"`
	BaseURL   string    `json:"base_url"`
}

func (d StateDir) WriteSessionMeta(meta SessionMeta) error {
	contents, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.SessionFile(), contents, 0o644)
}

func (d StateDir) ReadSessionMeta() (SessionMeta, error) {
	var meta SessionMeta
	contents, err := os.ReadFile(d.SessionFile())
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(contents, &meta)
	return meta, err
}
