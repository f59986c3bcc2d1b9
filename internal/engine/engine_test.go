package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/romdoctor/internal/config"
	"github.com/xxxsen/romdoctor/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestSession(base string) *Session {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return NewSession(base, opts, nil)
}

func TestScanWithoutBasePath(t *testing.T) {
	res, err := newTestSession("").Scan(context.Background())
	assert.True(t, errors.Is(err, ErrNoBasePath))
	require.NotNil(t, res)
	assert.Empty(t, res.Systems)
	assert.Equal(t, ErrNoBasePath.Error(), res.Error)
}

func TestFixPreconditions(t *testing.T) {
	ctx := context.Background()

	res := newTestSession("").Fix(ctx, "snes", model.ActionSyncGamelist, true)
	assert.False(t, res.Success)
	assert.Contains(t, res.Logs[len(res.Logs)-1], ErrNoBasePath.Error())

	base := t.TempDir()
	s := newTestSession(base)
	for _, id := range []string{"", "..", "../etc", "snes"} {
		res = s.Fix(ctx, id, model.ActionSyncGamelist, true)
		assert.False(t, res.Success, id)
		assert.Contains(t, res.Logs[len(res.Logs)-1], ErrSystemNotFound.Error(), id)
	}

	_, err := s.SystemRoot("snes")
	assert.True(t, errors.Is(err, ErrSystemNotFound))
}

func TestScanFixScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	root := filepath.Join(base, "snes")
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "gamelist.xml"), "<gameList>\n  <game>\n    <path>./Ghost.zip</path>\n  </game>\n</gameList>\n")
	s := newTestSession(base)

	before, err := s.Scan(ctx)
	require.NoError(t, err)
	sys := before.FindSystem("snes")
	require.NotNil(t, sys)
	assert.Equal(t, 1, sys.Stats.EntriesWithoutRom)
	assert.Equal(t, 1, sys.Stats.RomsWithoutEntry)

	res := s.Fix(ctx, "snes", model.ActionSyncGamelist, false)
	require.True(t, res.Success, res.Logs)
	assert.FileExists(t, filepath.Join(root, "gamelist.xml.bak-1700000000"))

	after, err := s.Scan(ctx)
	require.NoError(t, err)
	sys = after.FindSystem("snes")
	require.NotNil(t, sys)
	assert.Equal(t, 0, sys.Stats.EntriesWithoutRom)
	assert.Equal(t, 0, sys.Stats.RomsWithoutEntry)
	require.Len(t, sys.Games, 1)
	assert.True(t, sys.Games[0].InGamelist)
}

func TestFindDuplicatesFromScan(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "megadrive", "Sonic (USA).zip"), "s1")
	writeFile(t, filepath.Join(base, "megadrive", "Sonic (Europe) [v1.1].zip"), "s2")
	s := newTestSession(base)

	scan, err := s.Scan(ctx)
	require.NoError(t, err)
	dups := s.FindDuplicates(scan.Systems)
	require.Len(t, dups["megadrive"], 1)
	assert.Equal(t, "sonic", dups["megadrive"][0].Name)
	assert.Len(t, dups["megadrive"][0].Files, 2)
}

func TestDeleteFilesStaysInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	other := t.TempDir()
	inside := filepath.Join(base, "snes", "Dup.zip")
	outside := filepath.Join(other, "keep.zip")
	gone := filepath.Join(base, "snes", "Gone.zip")
	writeFile(t, inside, "d")
	writeFile(t, outside, "k")

	res := newTestSession(base).DeleteFiles(ctx, []string{inside, outside, gone})
	assert.ElementsMatch(t, []string{inside, gone}, res.Deleted)
	assert.Equal(t, []string{outside}, res.Failed)
	assert.FileExists(t, outside)
	_, err := os.Stat(inside)
	assert.True(t, os.IsNotExist(err))
}

func TestCheckBios(t *testing.T) {
	ctx := context.Background()
	_, err := newTestSession("").CheckBios(ctx)
	assert.True(t, errors.Is(err, ErrNoBasePath))

	base := t.TempDir()
	writeFile(t, filepath.Join(base, "bios", "gba_bios.bin"), "fw")
	results, err := newTestSession(base).CheckBios(ctx)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, r.Definition.Filename == "gba_bios.bin", r.Found, r.Definition.Filename)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.GamelistFile = "games.xml"
	cfg.Concurrency = 8
	cfg.RomExtensions = []string{".zip"}
	cfg.S3.Prefix = "mirror"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "games.xml", opts.GamelistFile)
	assert.Equal(t, 8, opts.Concurrency)
	assert.Equal(t, []string{".zip"}, opts.Walker.RomExts)
	assert.Equal(t, "mirror", opts.MirrorPrefix)
	assert.Equal(t, DefaultOptions().GamelistFile, OptionsFromConfig(nil).GamelistFile)
}
