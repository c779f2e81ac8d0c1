package hugo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bitlatte/ctfsite/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readIndex(t *testing.T, root, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel), indexFile))
	require.NoError(t, err)
	return string(raw)
}

func defaultPreparer(root string) *Preparer {
	return NewPreparer(config.HugoConfig{
		ContentDir:      root,
		Banners:         true,
		SkipEmpty:       true,
		RootTitle:       "CTF Writeups",
		RootDescription: "A collection of solutions and notes from various Capture The Flag competitions.",
	}, nil)
}

func TestPrepareWritesSectionIndexes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "picoctf_2024/web/cookie-monster/index.md", "# Cookie Monster")
	writeFile(t, root, "picoctf_2024/web/cookie-monster/files/flag.txt", "picoCTF{}")

	res, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)
	assert.Equal(t, 4, res.Written)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Failed)

	assert.Equal(t, "---\ntitle: \"CTF Writeups\"\ndescription: \"A collection of solutions and notes from various Capture The Flag competitions.\"\n---\n\n",
		readIndex(t, root, "."))
	assert.Equal(t, "---\ntitle: \"Picoctf 2024\"\ndescription: \"Writeups for challenges from the Picoctf 2024 event.\"\n---\n\n",
		readIndex(t, root, "picoctf_2024"))
	assert.Equal(t, "---\ntitle: \"Web\"\ndescription: \"Web challenges from the Picoctf 2024 event.\"\n---\n\n",
		readIndex(t, root, "picoctf_2024/web"))
	assert.Equal(t, "---\ntitle: \"Cookie Monster\"\ndescription: \"Cookie Monster challenges from the Web event.\"\n---\n\n",
		readIndex(t, root, "picoctf_2024/web/cookie-monster"))
}

func TestPrepareSkipsEmptyFolders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/assets/logo.png", "png")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "event", "assets", indexFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(root, "event", indexFile))
	assert.NoError(t, err)
}

func TestPrepareWithoutSkipEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/assets/logo.png", "png")

	p := defaultPreparer(root)
	p.SkipEmpty = false
	res, err := p.Prepare()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Written)
	assert.Contains(t, readIndex(t, root, "event/assets"), `title: "Assets"`)
}

func TestPrepareUsesReadmeBody(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/README.md", "---\ntitle: Ignored\n---\n\n# About the event\n\nGreat CTF.\n")
	writeFile(t, root, "other/README.md", "\n# No front matter\n")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)

	got := readIndex(t, root, "event")
	assert.Equal(t, "---\ntitle: \"Event\"\ndescription: \"Writeups for challenges from the Event event.\"\n---\n\n# About the event\n\nGreat CTF.\n", got)
	assert.Contains(t, readIndex(t, root, "other"), "\n\n# No front matter\n")
}

func TestPrepareInvalidReadmeFrontMatterIsStillStripped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/README.md", "---\ntitle: [broken\n  : : :\n---\nBody text\n")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)

	got := readIndex(t, root, "event")
	assert.True(t, len(got) > 0)
	assert.Contains(t, got, "\n\nBody text\n")
	assert.NotContains(t, got, "broken")
}

func TestPrepareReadmeOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/README.md", "---\ntitle: HTB Cyber Apocalypse\ndescription: Spring 2024 edition\n---\nBody\n")

	p := defaultPreparer(root)
	p.ReadmeOverrides = true
	_, err := p.Prepare()
	require.NoError(t, err)

	got := readIndex(t, root, "event")
	assert.Contains(t, got, `title: "HTB Cyber Apocalypse"`)
	assert.Contains(t, got, `description: "Spring 2024 edition"`)
}

func TestPrepareBanner(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/writeup.md", "x")
	writeFile(t, root, "event/banner.gif", "gif")
	writeFile(t, root, "event/banner.jpg", "jpg")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)
	assert.Contains(t, readIndex(t, root, "event"), "image: \"banner.jpg\"\n---\n")

	p := defaultPreparer(root)
	p.Banners = false
	_, err = p.Prepare()
	require.NoError(t, err)
	assert.NotContains(t, readIndex(t, root, "event"), "image:")
}

func TestPrepareSkipsGitDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/refs/heads/main.md", "x")
	writeFile(t, root, "event/writeup.md", "x")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, ".git", indexFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(root, ".git", "refs", indexFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrepareOverwrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/_index.md", "stale")

	_, err := defaultPreparer(root).Prepare()
	require.NoError(t, err)
	assert.NotContains(t, readIndex(t, root, "event"), "stale")
}

func TestPrepareMissingRoot(t *testing.T) {
	_, err := defaultPreparer(filepath.Join(t.TempDir(), "content", "ctf")).Prepare()
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestFolderTitle(t *testing.T) {
	assert.Equal(t, "Cyber Apocalypse 2024", FolderTitle("cyber_apocalypse-2024"))
	assert.Equal(t, "Web", FolderTitle("WEB"))
}

func TestSectionRenderEscapesQuotes(t *testing.T) {
	s := Section{Title: `Say "hi"`, Description: "d", Body: "body"}
	assert.Equal(t, "---\ntitle: \"Say \\\"hi\\\"\"\ndescription: \"d\"\n---\n\nbody", s.Render())
}

func TestVisitCountsUnlistableDirectoryOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "event/writeup.md", "x")
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var res Result
	visit := defaultPreparer(root).visit(&res)
	listErr := errors.New("permission denied")

	assert.Equal(t, fs.SkipDir, visit(filepath.Join(root, "event"), entries[0], listErr))
	assert.Zero(t, res.Failed)

	assert.NoError(t, visit(filepath.Join(root, "gone.md"), nil, listErr))
	assert.Equal(t, 1, res.Failed)
}
