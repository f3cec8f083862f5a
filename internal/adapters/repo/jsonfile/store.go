package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

const (
	resultsFileMode = 0o600
	resultsDirMode  = 0o700
	tempFilePattern = ".extracted-*.json.tmp"
)

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ResultStore = (*Store)(nil)

// Store keeps the harvested tokens as one JSON array, replaced as a whole on
// every save.
type Store struct {
	path string
	mu   *sync.RWMutex
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("results path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve results path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Save(ctx context.Context, tokens []domain.ExtractedToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tokens == nil {
		tokens = []domain.ExtractedToken{}
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(data)
}

func (s *Store) Load(ctx context.Context) ([]domain.ExtractedToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var tokens []domain.ExtractedToken
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.ExtractedToken{}, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode results file: %w", err)
	}
	for i, token := range tokens {
		if err := token.Validate(); err != nil {
			return nil, fmt.Errorf("results entry %d: %w", i, err)
		}
	}
	if tokens == nil {
		tokens = []domain.ExtractedToken{}
	}

	return tokens, nil
}

func (s *Store) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), resultsDirMode); err != nil {
		return fmt.Errorf("create results directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp results file: %w", err)
	}
	if err := tempFile.Chmod(resultsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp results file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp results file: %w", err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace results file: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
