// Package assets embeds files shipped inside the bugsqa binary.
package assets

import (
	_ "embed"
)

// DefaultConfigFile is the file name the embedded defaults are written to.
const DefaultConfigFile = "config.yaml"

// DefaultConfigYAML is written on first run and by `bugsqa config init --force`.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte
