package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/romdoctor/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func gamelistXML(games ...string) string {
	out := "<?xml version=\"1.0\"?>\n<gameList>\n"
	for _, g := range games {
		out += "  " + g + "\n"
	}
	return out + "</gameList>\n"
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return opts
}

func TestScanSystemUnlistedRom(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "Luigi.zip"), "l")
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(`<game><path>./Mario.zip</path><name>Mario</name></game>`))

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	require.Len(t, sys.Games, 2)

	mario, luigi := sys.Games[0], sys.Games[1]
	assert.Equal(t, "Mario", mario.ID)
	assert.True(t, mario.InGamelist)
	assert.True(t, mario.RomExists)
	assert.Equal(t, "Luigi", luigi.ID)
	assert.Equal(t, "Luigi", luigi.Name)
	assert.False(t, luigi.InGamelist)
	assert.True(t, luigi.RomExists)
	assert.False(t, luigi.ImageExists)

	assert.Equal(t, 1, sys.Stats.RomsWithoutEntry)
	assert.Equal(t, 2, sys.Stats.TotalRoms)
	assert.Equal(t, 1, sys.Stats.TotalGamelistEntries)
	assert.Equal(t, model.GamelistOK, sys.GamelistState)
	assert.Equal(t, "SNES", sys.Name)
	assert.Equal(t, int64(1700000000000), sys.ScanTime)
}

func TestScanSystemEntryWithoutRom(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(`<game><path>./Ghost.zip</path></game>`))

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	require.Len(t, sys.Games, 1)
	assert.False(t, sys.Games[0].RomExists)
	assert.True(t, sys.Games[0].InGamelist)
	assert.Equal(t, "Ghost", sys.Games[0].Name)
	assert.Equal(t, 1, sys.Stats.EntriesWithoutRom)
}

func TestScanSystemPrefixEquivalence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Game.zip"), "g")
	writeFile(t, filepath.Join(root, "Other.zip"), "o")
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(
		`<game><path>Game.zip</path></game>`,
		`<game><path>./Other.zip</path></game>`,
	))

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	require.Len(t, sys.Games, 2)
	for _, g := range sys.Games {
		assert.True(t, g.InGamelist)
		assert.True(t, g.RomExists)
	}
	assert.Equal(t, 0, sys.Stats.RomsWithoutEntry)
}

func TestScanSystemCorrelationCompleteness(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.zip", "B.zip", "sub/C.nes", "D.sfc"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), "x")
	}
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(
		`<game><path>./D.sfc</path></game>`,
		`<game><path>./Missing.zip</path></game>`,
		`<game><path>./sub/C.nes</path></game>`,
	))

	sys, err := ScanSystem(context.Background(), "nes", root, testOptions())
	require.NoError(t, err)

	var order []string
	romSeen := map[string]int{}
	for _, g := range sys.Games {
		order = append(order, g.ID)
		assert.True(t, g.RomExists || g.InGamelist)
		if g.RomExists {
			romSeen[g.RomAbsPath]++
		}
	}
	assert.Equal(t, []string{"D", "Missing", "C", "A", "B"}, order)
	assert.Len(t, romSeen, 4)
	for path, n := range romSeen {
		assert.Equal(t, 1, n, path)
	}
}

func TestScanSystemMediaAndOrphans(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "images", "Mario.png"), "img")
	writeFile(t, filepath.Join(root, "images", "Stale.png"), "img")
	writeFile(t, filepath.Join(root, "videos", "Mario.mp4"), "vid")
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(
		`<game><path>./Mario.zip</path><image>images/Mario.png</image><video>./videos/Mario.mp4</video><marquee>./images/None.png</marquee></game>`,
	))

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	require.Len(t, sys.Games, 1)

	g := sys.Games[0]
	assert.True(t, g.ImageExists)
	assert.True(t, g.VideoExists)
	assert.False(t, g.MarqueeExists)
	assert.Empty(t, g.MarqueePath)
	assert.Equal(t, "images/Mario.png", g.Image)
	assert.Contains(t, g.ImagePath, "file://")
	assert.Equal(t, 1, sys.Stats.OrphanedMedia)
	assert.Equal(t, 0, sys.Stats.MissingImages)
	assert.Equal(t, 0, sys.Stats.MissingVideos)
}

func TestScanSystemMalformedGamelist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "gamelist.xml"), "<gameList><game>&</game>")

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	assert.Equal(t, model.GamelistMalformed, sys.GamelistState)
	assert.NotEmpty(t, sys.GamelistError)
	require.Len(t, sys.Games, 1)
	assert.False(t, sys.Games[0].InGamelist)
	assert.Equal(t, 0, sys.Stats.TotalGamelistEntries)
}

func TestScanSystemMissingGamelist(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	assert.Equal(t, model.GamelistMissing, sys.GamelistState)
	assert.Empty(t, sys.GamelistError)
	assert.Equal(t, filepath.Join(root, "gamelist.xml"), sys.GamelistPath)
}

func TestScanSystemFlagsPathsOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "snes")
	writeFile(t, filepath.Join(base, "elsewhere.zip"), "x")
	writeFile(t, filepath.Join(root, "gamelist.xml"), gamelistXML(`<game><path>../elsewhere.zip</path></game>`))

	sys, err := ScanSystem(context.Background(), "snes", root, testOptions())
	require.NoError(t, err)
	require.Len(t, sys.Games, 1)
	assert.True(t, sys.Games[0].OutsideRoot)
}

func TestScanAllDiscoversSystemsInOrder(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "snes", "Mario.zip"), "m")
	writeFile(t, filepath.Join(base, "gba", "Zelda.gba"), "z")
	writeFile(t, filepath.Join(base, "bios", "gba_bios.bin"), "b")
	writeFile(t, filepath.Join(base, "media", "x.png"), "p")
	writeFile(t, filepath.Join(base, ".git", "HEAD"), "h")
	writeFile(t, filepath.Join(base, "readme.txt"), "r")

	opts := testOptions()
	opts.Concurrency = 1
	res, err := ScanAll(context.Background(), base, opts)
	require.NoError(t, err)
	require.Len(t, res.Systems, 2)
	assert.Equal(t, "gba", res.Systems[0].ID)
	assert.Equal(t, "snes", res.Systems[1].ID)
	assert.NotNil(t, res.FindSystem("snes"))
	assert.Nil(t, res.FindSystem("bios"))
}

func TestScanAllUnreadableBase(t *testing.T) {
	res, err := ScanAll(context.Background(), filepath.Join(t.TempDir(), "nope"), testOptions())
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Systems)
	assert.NotEmpty(t, res.Error)
}
