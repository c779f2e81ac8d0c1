// Package writeups scans a tree of CTF writeups and builds the index.json
// manifest the site uses to list events and challenges.
//
// The expected layout is <root>/<event>/.../<challenge>/writeup.md. Every
// top-level folder is an event; every writeup.md below it, at any depth, is
// one writeup.
package writeups

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Bitlatte/ctfsite/internal/frontmatter"
	"github.com/Bitlatte/ctfsite/internal/model"
)

const (
	writeupFile = "writeup.md"
	readmeFile  = "README.md"

	// TimestampLayout is the layout of Index.GeneratedAt.
	TimestampLayout = "2006-01-02T15:04:05.000000"
)

// ErrRootNotFound is returned when the writeups root is missing or is not a
// directory.
var ErrRootNotFound = errors.New("writeups root directory not found")

// ErrInvalidEncoding is reported for a writeup.md that is not valid UTF-8.
// The file is skipped.
var ErrInvalidEncoding = errors.New("writeup is not valid UTF-8")

// Builder builds an Index from the writeups under Root.
type Builder struct {
	Root   string
	Logger *zap.Logger

	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time

	// DeriveDescriptions fills an empty description from the first
	// paragraph of the writeup body.
	DeriveDescriptions bool
}

// Build walks Root and returns the index. Unreadable writeups are logged and
// skipped; only a missing root is an error.
func (b *Builder) Build() (*model.Index, error) {
	logger := b.logger()

	info, err := os.Stat(b.Root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, b.Root)
	}

	entries, err := os.ReadDir(b.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list writeups root '%s': %w", b.Root, err)
	}

	byName := map[string]*model.Event{}
	var order []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := EventName(entry.Name())
		ev, ok := byName[name]
		if !ok {
			ev = &model.Event{Name: name, Slug: Slug(name), Writeups: []model.Writeup{}}
			byName[name] = ev
			order = append(order, name)
		} else {
			logger.Warn("event folders share a name, merging", zap.String("event", name), zap.String("folder", entry.Name()))
		}
		b.scanEvent(filepath.Join(b.Root, entry.Name()), ev)
	}

	events := make([]model.Event, 0, len(order))
	total := 0
	for _, name := range order {
		ev := *byName[name]
		if len(ev.Writeups) == 0 {
			continue
		}
		sort.SliceStable(ev.Writeups, func(i, j int) bool {
			a, c := ev.Writeups[i], ev.Writeups[j]
			if a.Category != c.Category {
				return a.Category < c.Category
			}
			return a.Title < c.Title
		})
		total += len(ev.Writeups)
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Name < events[j].Name })

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	return &model.Index{
		GeneratedAt:   now().Format(TimestampLayout),
		Events:        events,
		TotalEvents:   len(events),
		TotalWriteups: total,
	}, nil
}

func (b *Builder) scanEvent(dir string, ev *model.Event) {
	logger := b.logger()

	if ev.ReadmePath == "" {
		if _, err := os.Stat(filepath.Join(dir, readmeFile)); err == nil {
			ev.ReadmePath = b.relative(filepath.Join(dir, readmeFile))
		}
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Error("error accessing path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != writeupFile {
			return nil
		}

		w, date, err := b.readWriteup(dir, path)
		if err != nil {
			logger.Error("error processing writeup", zap.String("path", path), zap.Error(err))
			return nil
		}
		ev.Writeups = append(ev.Writeups, w)
		if date != "" && ev.Date == nil {
			ev.Date = &date
		}
		return nil
	})
	if err != nil {
		logger.Error("error walking event", zap.String("path", dir), zap.Error(err))
	}
}

// readWriteup turns one writeup.md into a Writeup, falling back to the
// file's position in the tree for anything the frontmatter leaves out. The
// frontmatter date is returned separately since it belongs to the event.
func (b *Builder) readWriteup(eventDir, path string) (model.Writeup, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Writeup{}, "", fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(raw) {
		return model.Writeup{}, "", ErrInvalidEncoding
	}
	content := string(raw)
	fm := frontmatter.Parse(content)

	challenge := filepath.Base(filepath.Dir(path))

	w := model.Writeup{
		Title:       fm.GetOr("title", challenge),
		Category:    fm.GetOr("category", categoryFromPath(eventDir, path)),
		Difficulty:  fm.GetOr("difficulty", "Unknown"),
		Description: fm.GetOr("description", ""),
		Path:        b.relative(path),
		Challenge:   challenge,
	}
	if w.Description == "" && b.DeriveDescriptions {
		w.Description = FirstParagraph([]byte(frontmatter.Strip(content)))
	}

	date, _ := fm.Get("date")
	return w, date, nil
}

// categoryFromPath picks the nearest folder above path, inside the event,
// whose name is a known category.
func categoryFromPath(eventDir, path string) string {
	for dir := filepath.Dir(path); dir != eventDir && len(dir) > len(eventDir); dir = filepath.Dir(dir) {
		if name := strings.ToLower(filepath.Base(dir)); model.IsCategory(name) {
			return name
		}
	}
	return model.CategoryMisc
}

func (b *Builder) relative(path string) string {
	rel, err := filepath.Rel(b.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (b *Builder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.NewNop()
	}
	return b.Logger
}

// EventName turns an event folder name into a display name.
func EventName(folder string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(folder)
}

// Slug lowercases name and replaces every character outside [a-z0-9-] with
// a hyphen, then trims hyphens from both ends.
func Slug(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
