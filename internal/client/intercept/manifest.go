package intercept

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest lists the shell assets installed into the static cache.
type Manifest struct {
	Assets []string `yaml:"assets"`
	// OfflinePage is served for navigations that fail without a cached copy.
	// It is installed together with the assets.
	OfflinePage string `yaml:"offline_page"`
}

// DefaultManifest is the built-in shell of the reading service.
func DefaultManifest() *Manifest {
	return &Manifest{
		Assets: []string{
			"/",
			"/reader/",
			"/reader/post",
			"/manifest.json",
		},
		OfflinePage: "/reader/",
	}
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if len(m.Assets) == 0 && m.OfflinePage == "" {
		return nil, fmt.Errorf("invalid manifest: no assets")
	}
	return &m, nil
}

// LoadManifest reads the manifest at path; an empty path selects the
// built-in manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}

// Paths returns the assets plus the offline page, without duplicates.
func (m *Manifest) Paths() []string {
	seen := make(map[string]struct{}, len(m.Assets)+1)
	out := make([]string, 0, len(m.Assets)+1)
	for _, p := range append(append([]string{}, m.Assets...), m.OfflinePage) {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
