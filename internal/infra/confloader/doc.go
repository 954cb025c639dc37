// Package confloader provides the configuration loading mechanism.
//
// It wraps koanf to load configuration from several sources into a typed
// struct, and to write the merged result back as YAML.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (TRAINLY_ prefix, "__" separates nesting levels)
//  3. Configuration file (YAML)
//  4. Default values (fields already set on the unmarshal target)
//
// Watcher reports changes to watched configuration files via fsnotify.
package confloader
