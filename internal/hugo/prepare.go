// Package hugo generates the _index.md section files Hugo needs to render
// every folder of the CTF content tree as a browsable page.
package hugo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/ctfsite/internal/config"
	fm "github.com/Bitlatte/ctfsite/internal/frontmatter"
)

const (
	indexFile  = "_index.md"
	readmeFile = "README.md"
)

// BannerFiles are checked in order; the first one present becomes the
// section image.
var BannerFiles = []string{"banner.png", "banner.jpg", "banner.jpeg", "banner.svg", "banner.gif"}

// ErrRootNotFound is returned when the content root is missing or is not a
// directory.
var ErrRootNotFound = errors.New("content root directory not found")

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Preparer writes an _index.md into every qualifying folder under Root.
type Preparer struct {
	Root   string
	Logger *zap.Logger

	// Banners adds an image entry when a banner.* file sits in the folder.
	Banners bool
	// SkipEmpty leaves out folders with neither subfolders nor markdown.
	SkipEmpty bool
	// ReadmeOverrides lets title and description in a README's front matter
	// replace the generated ones.
	ReadmeOverrides bool

	RootTitle       string
	RootDescription string
}

// NewPreparer builds a Preparer from configuration.
func NewPreparer(cfg config.HugoConfig, logger *zap.Logger) *Preparer {
	return &Preparer{
		Root:            cfg.ContentDir,
		Logger:          logger,
		Banners:         cfg.Banners,
		SkipEmpty:       cfg.SkipEmpty,
		ReadmeOverrides: cfg.ReadmeOverrides,
		RootTitle:       cfg.RootTitle,
		RootDescription: cfg.RootDescription,
	}
}

// Result counts what a Prepare run did.
type Result struct {
	Written int
	Skipped int
	Failed  int
}

// Section is the generated content of one _index.md.
type Section struct {
	Title       string
	Description string
	Image       string
	Body        string
}

// Render lays the section out as a front matter block followed by the body.
func (s Section) Render() string {
	lines := []string{
		"---",
		fmt.Sprintf("title: %q", s.Title),
		fmt.Sprintf("description: %q", s.Description),
	}
	if s.Image != "" {
		lines = append(lines, fmt.Sprintf("image: %q", s.Image))
	}
	lines = append(lines, "---")
	return strings.Join(lines, "\n") + "\n\n" + s.Body
}

// Prepare walks Root top-down. Folder-level failures are logged and counted,
// they never stop the walk.
func (p *Preparer) Prepare() (Result, error) {
	var res Result
	logger := p.logger()

	info, err := os.Stat(p.Root)
	if err != nil || !info.IsDir() {
		return res, fmt.Errorf("%w: %s", ErrRootNotFound, p.Root)
	}

	logger.Info("Starting Hugo preparation for CTF content...", zap.String("root", p.Root))
	err = filepath.WalkDir(p.Root, p.visit(&res))
	if err != nil {
		return res, fmt.Errorf("error walking content root '%s': %w", p.Root, err)
	}
	logger.Info("Preparation complete.", zap.Int("written", res.Written), zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res, nil
}

// visit prepares each directory the walk reaches. A directory WalkDir cannot
// list comes back a second time with the listing error; prepareDir already
// counted that failure, so the callback only skips it.
func (p *Preparer) visit(res *Result) fs.WalkDirFunc {
	logger := p.logger()
	return func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			logger.Error("error accessing path", zap.String("path", path), zap.Error(err))
			res.Failed++
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return fs.SkipDir
		}

		written, err := p.prepareDir(path)
		switch {
		case err != nil:
			logger.Error("error creating section index", zap.String("path", filepath.Join(path, indexFile)), zap.Error(err))
			res.Failed++
		case written:
			res.Written++
		default:
			res.Skipped++
		}
		return nil
	}
}

// prepareDir writes the _index.md for one folder. It reports false without
// an error when the folder does not qualify.
func (p *Preparer) prepareDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("failed to list '%s': %w", dir, err)
	}
	if p.SkipEmpty && !hasContent(entries) {
		return false, nil
	}

	section := Section{}
	section.Title, section.Description = p.folderInfo(dir)

	readme := filepath.Join(dir, readmeFile)
	if raw, err := os.ReadFile(readme); err == nil {
		body, meta := p.readmeBody(readme, raw)
		section.Body = body
		if p.ReadmeOverrides {
			if v, ok := meta["title"].(string); ok && v != "" {
				section.Title = v
			}
			if v, ok := meta["description"].(string); ok && v != "" {
				section.Description = v
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read '%s': %w", readme, err)
	}

	if p.Banners {
		section.Image = findBanner(dir)
	}

	out := filepath.Join(dir, indexFile)
	if err := os.WriteFile(out, []byte(section.Render()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write '%s': %w", out, err)
	}
	p.logger().Info("Created index for: "+p.relative(dir), zap.String("path", out))
	return true, nil
}

// readmeBody strips the README's front matter and returns the rest along
// with whatever the front matter held. README front matter that is not
// valid YAML is still stripped, just not read.
func (p *Preparer) readmeBody(path string, raw []byte) (string, map[string]any) {
	content := strings.TrimLeft(string(raw), " \t\r\n\v\f")

	meta := map[string]any{}
	rest, err := frontmatter.Parse(bytes.NewReader([]byte(content)), &meta, yamlFormat)
	if err != nil {
		p.logger().Warn("could not parse README front matter, stripping it as text", zap.String("path", path), zap.Error(err))
		return fm.Strip(content), nil
	}
	return strings.TrimLeft(string(rest), " \t\r\n\v\f"), meta
}

// folderInfo derives a section title and description from where dir sits
// in the tree.
func (p *Preparer) folderInfo(dir string) (string, string) {
	if filepath.Clean(dir) == filepath.Clean(p.Root) {
		return p.RootTitle, p.RootDescription
	}
	title := FolderTitle(filepath.Base(dir))
	parent := filepath.Dir(dir)
	if filepath.Clean(parent) == filepath.Clean(p.Root) {
		return title, fmt.Sprintf("Writeups for challenges from the %s event.", title)
	}
	return title, fmt.Sprintf("%s challenges from the %s event.", title, FolderTitle(filepath.Base(parent)))
}

// FolderTitle turns a folder name like "cyber_apocalypse-2024" into
// "Cyber Apocalypse 2024".
func FolderTitle(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

func hasContent(entries []fs.DirEntry) bool {
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) == ".md" {
			return true
		}
	}
	return false
}

func findBanner(dir string) string {
	for _, name := range BannerFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name
		}
	}
	return ""
}

func (p *Preparer) relative(dir string) string {
	rel, err := filepath.Rel(p.Root, dir)
	if err != nil {
		return dir
	}
	return filepath.ToSlash(rel)
}

func (p *Preparer) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
