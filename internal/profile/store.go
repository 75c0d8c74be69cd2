package profile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
	"github.com/pelletier/go-toml/v2"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	// DefaultProfileName is consulted last during resolution.
	DefaultProfileName = "default"
)

// Store persists profiles as one TOML file each under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	errFactory := errors.New()

	if dir == "" {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "empty profile directory")
	}
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, Slug(name)+".toml")
}

// Slug normalizes a profile name into its file stem.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Get returns the named profile, or ErrProfileNotFound.
func (s *Store) Get(name string) (*Profile, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.WithData(errors.ErrProfileNotFound, name)
		}
		return nil, errFactory.Wrap(errors.ErrProfileDecode, err)
	}

	p := &Profile{}
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, errFactory.Wrap(errors.ErrProfileDecode, err)
	}

	return p, nil
}

// List returns all non-template profiles sorted by name.
func (s *Store) List() ([]*Profile, error) {
	return s.list(func(p *Profile) bool { return !p.IsTemplate })
}

// ListTemplates returns reusable template profiles sorted by name.
func (s *Store) ListTemplates() ([]*Profile, error) {
	return s.list(func(p *Profile) bool { return p.IsTemplate })
}

func (s *Store) list(keep func(*Profile) bool) ([]*Profile, error) {
	errFactory := errors.New()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable profile")
			continue
		}

		p := &Profile{}
		if err := toml.Unmarshal(data, p); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping malformed profile")
			continue
		}

		if keep(p) {
			profiles = append(profiles, p)
		}
	}

	sort.Slice(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})

	return profiles, nil
}

// Put writes the profile, replacing any existing file of the same name.
func (s *Store) Put(p *Profile) error {
	errFactory := errors.New()

	if p.Name == "" {
		return errFactory.WithData(errors.ErrInvalidArgument, "profile name required")
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return errFactory.Wrap(errors.ErrProfileEncode, err)
	}
	if err := os.WriteFile(s.path(p.Name), data, defaultFilePerm); err != nil {
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}

// Delete removes the named profile.
func (s *Store) Delete(name string) error {
	errFactory := errors.New()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return errFactory.WithData(errors.ErrProfileNotFound, name)
		}
		return errFactory.Wrap(errors.ErrOperationFailed, err)
	}

	return nil
}

// ApplyTemplate clones a template into a new profile bound to a game.
func (s *Store) ApplyTemplate(templateName, gameName string) (*Profile, error) {
	errFactory := errors.New()

	tpl, err := s.Get(templateName)
	if err != nil {
		return nil, err
	}
	if !tpl.IsTemplate {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, templateName+" is not a template")
	}

	bound := *tpl
	bound.Name = gameName
	bound.IsTemplate = false
	if err := s.Put(&bound); err != nil {
		return nil, err
	}

	return &bound, nil
}

// Resolve picks the profile for a running game. Precedence: exact store
// identifier, then executable match, then name match, then the global
// default profile. Returns nil when nothing matches.
func (s *Store) Resolve(storeID, executable, name string) (*Profile, error) {
	profiles, err := s.List()
	if err != nil {
		return nil, err
	}

	if storeID != "" {
		for _, p := range profiles {
			if p.StoreID != nil && *p.StoreID == storeID {
				return p, nil
			}
		}
	}
	if executable != "" {
		for _, p := range profiles {
			if p.ExecutableMatch != nil && *p.ExecutableMatch == executable {
				return p, nil
			}
		}
	}
	if name != "" {
		for _, p := range profiles {
			if strings.EqualFold(p.Name, name) {
				return p, nil
			}
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, DefaultProfileName) {
			return p, nil
		}
	}

	return nil, nil
}
