// Package update provides TOML loading of user-defined repository profiles.
package update

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Error variables for profile configuration errors
var (
	// ErrProfilesNotFound is returned when the profiles file does not exist
	ErrProfilesNotFound = errors.New("profiles file not found")
)

// profileEntry is the TOML representation of a single profile section.
// A section declares either the two-stage regex recipe
// (container_pattern/version_pattern) or an HTML recipe (selector/xpath
// with an optional post-processing pattern).
type profileEntry struct {
	Name             string `toml:"name"`
	Domain           string `toml:"domain"`
	ContainerPattern string `toml:"container_pattern,omitempty"`
	ContainerGroup   int    `toml:"container_group,omitempty"`
	VersionPattern   string `toml:"version_pattern,omitempty"`
	VersionGroup     int    `toml:"version_group,omitempty"`
	Selector         string `toml:"selector,omitempty"`
	XPath            string `toml:"xpath,omitempty"`
	Pattern          string `toml:"pattern,omitempty"`
}

// profilesFile is the internal representation matching the TOML structure
// where each [some-key] section is a top-level profile entry.
type profilesFile map[string]profileEntry

// LoadProfiles reads extra repository profiles from a TOML file.
// Adding a new upstream source requires only a new section here, no code
// change. Group indices default to 1 when omitted.
func LoadProfiles(path string) ([]Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrProfilesNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var file profilesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	profiles := make([]Profile, 0, len(file))
	for key, e := range file {
		name := e.Name
		if name == "" {
			name = key
		}

		containerGroup := e.ContainerGroup
		if containerGroup == 0 {
			containerGroup = 1
		}
		versionGroup := e.VersionGroup
		if versionGroup == 0 {
			versionGroup = 1
		}

		p := Profile{
			Name:      name,
			Domain:    e.Domain,
			Container: CapturePattern{Pattern: e.ContainerPattern, Group: containerGroup},
			Version:   CapturePattern{Pattern: e.VersionPattern, Group: versionGroup},
			Selector:  e.Selector,
			XPath:     e.XPath,
			Pattern:   e.Pattern,
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", key, err)
		}

		profiles = append(profiles, p)
	}

	return profiles, nil
}

// NewRegistryWithExtras builds a registry from the built-in profiles plus
// any profiles loaded from the given file. An empty path yields the
// built-in registry only.
func NewRegistryWithExtras(path string) (*Registry, error) {
	profiles := builtinProfiles()

	if path != "" {
		extras, err := LoadProfiles(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, extras...)
	}

	return NewRegistry(profiles...)
}
