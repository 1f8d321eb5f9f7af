// Package config handles configuration loading and merging for qarun.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--catalogue, --store, --dev, --theme, etc.)
//  2. Environment variables (QARUN_*, NO_COLOR)
//  3. YAML config file (.qarun.yaml in the local directory or ~/.config/qarun/.qarun.yaml)
//  4. Hardcoded defaults
//
// When a higher-priority source sets a value, it overrides any lower-priority values.
//
// # Key Configuration Options
//
//   - Catalogue: path to the test catalogue (JSON or YAML)
//   - CatalogueKey: dotted path selecting one section of the catalogue
//   - Store: where progress is kept between runs (memory, file, sqlite)
//   - OutputDir: where submitted reports are written
//   - DevMode: relaxes required-field checks and enables progress reset
//
// # Environment Variables
//
//   - QARUN_CATALOGUE, QARUN_CATALOGUE_KEY
//   - QARUN_STORE, QARUN_STORE_PATH, QARUN_OUTPUT_DIR
//   - QARUN_THEME, QARUN_DEV_MODE, QARUN_DEBUG
//   - NO_COLOR: any non-empty value selects the mono theme
package config
