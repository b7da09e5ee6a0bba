package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session holds the credential pair for one authenticated principal. It is
// injected into the Client explicitly; there is no process-global token state.
type Session struct {
	mu           sync.Mutex
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ObtainedAt   time.Time `json:"obtainedAt"`
}

// Update replaces both tokens after a login or refresh.
func (s *Session) Update(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.ObtainedAt = time.Now()
}

// Clear drops both tokens.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessToken = ""
	s.RefreshToken = ""
	s.ObtainedAt = time.Time{}
}

// Tokens returns a consistent snapshot of the pair.
func (s *Session) Tokens() (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AccessToken, s.RefreshToken
}

// Authenticated reports whether the session holds an access token.
func (s *Session) Authenticated() bool {
	access, _ := s.Tokens()
	return access != ""
}

// LoadSessionFile reads a session previously written with SaveSessionFile.
// A missing file yields an empty session.
func LoadSessionFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, err
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveSessionFile persists the session as readable only by the owner.
func SaveSessionFile(path string, session *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	session.mu.Lock()
	data, err := json.MarshalIndent(session, "", "  ")
	session.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
