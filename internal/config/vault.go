package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/mdvault/internal/atomicfile"
	"github.com/aidanlsb/mdvault/internal/dates"
)

// VaultConfigFile is the name of the per-vault settings file at the vault root.
const VaultConfigFile = "mdvault.yaml"

// DefaultPreviewLines is how many lines past a target's anchor previews show.
const DefaultPreviewLines = 10

// NoMinScore disables the fuzzy score threshold.
const NoMinScore = math.MinInt

// VaultConfig represents vault-level configuration from mdvault.yaml.
type VaultConfig struct {
	// DailyNote is the strftime format daily note filenames use (default: "%Y-%m-%d").
	DailyNote string `yaml:"dailynote,omitempty"`

	// PreviewLines is how many lines after a link target hover and completion
	// previews include (default: 10).
	PreviewLines *int `yaml:"preview_lines,omitempty"`

	// FuzzyMinScore drops completion candidates scoring below it. Unset keeps
	// every candidate that matches at all.
	FuzzyMinScore *int `yaml:"fuzzy_min_score,omitempty"`

	// IndexCache keeps parsed documents in .mdvault/index.db between runs (default: true).
	IndexCache *bool `yaml:"index_cache,omitempty"`

	// Watch reindexes files changed outside the editor (default: true).
	Watch *bool `yaml:"watch,omitempty"`

	// Ignore lists additional directory names or vault-relative directories to skip.
	Ignore []string `yaml:"ignore,omitempty"`
}

// Settings are vault settings with defaults applied.
type Settings struct {
	DailyNoteFormat string
	PreviewLines    int
	MinScore        int
	IndexCache      bool
	Watch           bool
	Ignore          []string
}

// DefaultSettings returns the settings of a vault without mdvault.yaml.
func DefaultSettings() Settings {
	return (&VaultConfig{}).Settings()
}

// Settings resolves the config into concrete values.
func (vc *VaultConfig) Settings() Settings {
	s := Settings{
		DailyNoteFormat: vc.DailyNote,
		PreviewLines:    DefaultPreviewLines,
		MinScore:        NoMinScore,
		IndexCache:      boolOr(vc.IndexCache, true),
		Watch:           boolOr(vc.Watch, true),
		Ignore:          vc.Ignore,
	}
	if s.DailyNoteFormat == "" {
		s.DailyNoteFormat = dates.DefaultFormat
	}
	if vc.PreviewLines != nil && *vc.PreviewLines >= 0 {
		s.PreviewLines = *vc.PreviewLines
	}
	if vc.FuzzyMinScore != nil {
		s.MinScore = *vc.FuzzyMinScore
	}
	return s
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// LoadVaultConfig loads mdvault.yaml from the vault root.
// A missing file yields the defaults.
func LoadVaultConfig(vaultPath string) (*VaultConfig, error) {
	configPath := filepath.Join(vaultPath, VaultConfigFile)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &VaultConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault config %s: %w", configPath, err)
	}

	var config VaultConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse vault config %s: %w", configPath, err)
	}
	if config.DailyNote != "" {
		if err := dates.ValidateFormat(config.DailyNote); err != nil {
			return nil, fmt.Errorf("invalid dailynote format %q in %s: %w", config.DailyNote, configPath, err)
		}
	}

	return &config, nil
}

const defaultVaultConfig = `# mdvault vault configuration

# strftime format of daily note filenames (without .md)
dailynote: "%Y-%m-%d"

# Lines shown after a link target in hover and completion previews
preview_lines: 10

# Drop completion candidates whose fuzzy score is below this value
# fuzzy_min_score: 0

# Cache parsed documents in .mdvault/index.db
index_cache: true

# Reindex files changed outside the editor
watch: true

# Extra directories to skip
# ignore:
#   - templates
#   - archive/2019
`

// CreateDefaultVaultConfig writes a commented mdvault.yaml if none exists.
// It reports whether a file was written.
func CreateDefaultVaultConfig(vaultPath string) (bool, error) {
	configPath := filepath.Join(vaultPath, VaultConfigFile)
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	}
	if err := atomicfile.WriteFile(configPath, []byte(defaultVaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write vault config: %w", err)
	}
	return true, nil
}
