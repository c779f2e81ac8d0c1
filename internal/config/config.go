package config

import (
	"path/filepath"
	"time"
)

// Config holds the settings shared by every ctfsite subcommand.
type Config struct {
	LogLevel string      `mapstructure:"logLevel"`
	Serve    ServeConfig `mapstructure:"serve"`
	Index    IndexConfig `mapstructure:"index"`
	Hugo     HugoConfig  `mapstructure:"hugo"`
}

type ServeConfig struct {
	Port            int           `mapstructure:"port"`
	Dir             string        `mapstructure:"dir"`
	Watch           bool          `mapstructure:"watch"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type IndexConfig struct {
	Root               string `mapstructure:"root"`
	Output             string `mapstructure:"output"`
	Format             string `mapstructure:"format"`
	DeriveDescriptions bool   `mapstructure:"deriveDescriptions"`
}

// OutputPath returns where the index document is written. An empty Output
// means index.json (or index.yaml) next to the writeups.
func (c IndexConfig) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	name := "index.json"
	if c.Format == "yaml" {
		name = "index.yaml"
	}
	return filepath.Join(c.Root, name)
}

type HugoConfig struct {
	ContentDir      string `mapstructure:"contentDir"`
	Banners         bool   `mapstructure:"banners"`
	SkipEmpty       bool   `mapstructure:"skipEmpty"`
	ReadmeOverrides bool   `mapstructure:"readmeOverrides"`
	RootTitle       string `mapstructure:"rootTitle"`
	RootDescription string `mapstructure:"rootDescription"`
}

// Defaults mirrors the values the tools use when nothing is configured.
var Defaults = map[string]any{
	"logLevel":                 "info",
	"serve.port":               8000,
	"serve.dir":                "ctf_site",
	"serve.watch":              false,
	"serve.shutdownTimeout":    5 * time.Second,
	"index.root":               "external-writeups",
	"index.output":             "",
	"index.format":             "json",
	"index.deriveDescriptions": false,
	"hugo.contentDir":          "content/ctf",
	"hugo.banners":             true,
	"hugo.skipEmpty":           true,
	"hugo.readmeOverrides":     false,
	"hugo.rootTitle":           "CTF Writeups",
	"hugo.rootDescription":     "A collection of solutions and notes from various Capture The Flag competitions.",
}
