package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/sso-harvest/internal/domain"
	"github.com/bnema/sso-harvest/internal/ports"
)

var (
	_ ports.ProfileSource = Static(nil)
	_ ports.ProfileSource = (*Discovery)(nil)
)

// Static yields a fixed, configured profile list.
type Static []domain.ProfileID

func (s Static) Profiles(context.Context) ([]domain.ProfileID, error) {
	out := domain.NormalizeProfiles(s)
	if len(out) == 0 {
		return nil, domain.ErrNoProfiles
	}
	return out, nil
}

// Discovery lists the profiles found in a browser user data directory.
type Discovery struct {
	UserDataDir string
}

func (d *Discovery) Profiles(ctx context.Context) ([]domain.ProfileID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.UserDataDir == "" {
		return nil, fmt.Errorf("discover profiles: user data dir is not set")
	}

	found, err := fromLocalState(d.UserDataDir)
	if err != nil || len(found) == 0 {
		found, err = fromDirectory(d.UserDataDir)
		if err != nil {
			return nil, fmt.Errorf("discover profiles in %s: %w", d.UserDataDir, err)
		}
	}

	found = domain.NormalizeProfiles(found)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoProfiles, d.UserDataDir)
	}
	Sort(found)
	return found, nil
}

// New returns the configured list when there is one, discovery otherwise.
func New(configured []domain.ProfileID, userDataDir string) ports.ProfileSource {
	if len(domain.NormalizeProfiles(configured)) > 0 {
		return Static(configured)
	}
	return &Discovery{UserDataDir: userDataDir}
}

func fromLocalState(userDataDir string) ([]domain.ProfileID, error) {
	raw, err := os.ReadFile(filepath.Join(userDataDir, "Local State"))
	if err != nil {
		return nil, err
	}

	var localState struct {
		Profile struct {
			InfoCache map[string]json.RawMessage `json:"info_cache"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(raw, &localState); err != nil {
		return nil, fmt.Errorf("parse Local State: %w", err)
	}

	out := make([]domain.ProfileID, 0, len(localState.Profile.InfoCache))
	for dir := range localState.Profile.InfoCache {
		out = append(out, domain.ProfileID(dir))
	}
	return out, nil
}

func fromDirectory(userDataDir string) ([]domain.ProfileID, error) {
	entries, err := os.ReadDir(userDataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []domain.ProfileID
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == "Default" || strings.HasPrefix(name, "Profile ") {
			out = append(out, domain.ProfileID(name))
		}
	}
	return out, nil
}

// Sort orders Default first, then "Profile N" numerically, then the rest by name.
func Sort(profiles []domain.ProfileID) {
	sort.SliceStable(profiles, func(i, j int) bool {
		ri, ni := rank(profiles[i])
		rj, nj := rank(profiles[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return profiles[i] < profiles[j]
	})
}

func rank(profile domain.ProfileID) (int, int) {
	name := string(profile)
	if name == "Default" {
		return 0, 0
	}
	if suffix, ok := strings.CutPrefix(name, "Profile "); ok {
		if n, err := strconv.Atoi(suffix); err == nil {
			return 1, n
		}
	}
	return 2, 0
}
