package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultPaths are the manifest locations tried in order, relative to the
// repository root.
var DefaultPaths = []string{"package.json", ".github/package.json"}

// DefaultKeys is the allow-list of dependency names surfaced into prompts.
var DefaultKeys = []string{"next", "react", "react-dom", "typescript", "tailwindcss", "eslint"}

// Descriptor is an ordered list of "<name> <bare version>" entries.
type Descriptor []string

// String joins the entries with ", ". An empty descriptor yields "".
func (d Descriptor) String() string {
	return strings.Join(d, ", ")
}

type packageJSON struct {
	Dependencies    map[string]any `json:"dependencies"`
	DevDependencies map[string]any `json:"devDependencies"`
}

// Load tries each path under root in order and returns the descriptor of the
// first manifest that yields at least one entry. Missing or invalid manifests
// are skipped; the result may be empty but Load never fails.
func Load(root string, paths, keys []string, log *slog.Logger) Descriptor {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	if len(keys) == 0 {
		keys = DefaultKeys
	}

	for _, p := range paths {
		full := p
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, p)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			log.Debug("manifest not readable", "path", full, "error", err)
			continue
		}
		d, err := Parse(data, keys)
		if err != nil {
			log.Debug("manifest not parseable", "path", full, "error", err)
			continue
		}
		if len(d) > 0 {
			log.Debug("project stack loaded", "path", full, "stack", d.String())
			return d
		}
	}
	return nil
}

// Parse builds a descriptor from manifest bytes. devDependencies override
// dependencies of the same name; entries follow the order of keys.
func Parse(data []byte, keys []string) (Descriptor, error) {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for _, m := range []map[string]any{pkg.Dependencies, pkg.DevDependencies} {
		for name, v := range m {
			if s, ok := v.(string); ok {
				deps[name] = s
			}
		}
	}

	var d Descriptor
	for _, k := range keys {
		raw, ok := deps[k]
		if !ok || raw == "" {
			continue
		}
		v, ok := BareVersion(raw)
		if !ok {
			continue
		}
		d = append(d, k+" "+v)
	}
	return d, nil
}

// BareVersion strips leading range qualifiers and any pre-release suffix from
// a manifest version string. It reports false when what remains is not a
// version (tags like "latest", workspace or git references).
func BareVersion(raw string) (string, bool) {
	v := strings.TrimLeft(strings.TrimSpace(raw), "^~>=<v ")
	if i := strings.IndexAny(v, " \t|"); i >= 0 {
		v = v[:i]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return "", false
	}
	if _, err := semver.NewVersion(v); err != nil {
		return "", false
	}
	return v, true
}
