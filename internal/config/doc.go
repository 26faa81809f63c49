// Package config loads ghostwriter engine settings from a TOML file and
// supports live reload: edits to the file are picked up and pushed to
// subscribers without restarting the host editor.
package config
