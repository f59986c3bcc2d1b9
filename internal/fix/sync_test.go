package fix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"github.com/xxxsen/romdoctor/internal/model"
)

const ghostGamelist = `<?xml version="1.0"?>
<gameList>
  <game>
    <path>./Mario.zip</path>
    <name>Mario</name>
    <rating>0.8</rating>
  </game>
  <game>
    <path>./Ghost.zip</path>
    <name>Ghost</name>
  </game>
</gameList>
`

func TestSyncRemovesOrphanEntryWithBackup(t *testing.T) {
	root := t.TempDir()
	gl := filepath.Join(root, "gamelist.xml")
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, gl, ghostGamelist)

	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "[-] Found orphan entry (ROM missing): ./Ghost.zip")
	assert.Contains(t, res.Logs, "Backup created: gamelist.xml.bak-1700000000")
	assert.Contains(t, res.Logs, "Gamelist updated. Added: 0, Removed: 1")

	content := readFile(t, gl)
	assert.NotContains(t, content, "Ghost")
	assert.Contains(t, content, "<rating>0.8</rating>")

	baks := backups(t, gl)
	require.Len(t, baks, 1)
	assert.Equal(t, ghostGamelist, readFile(t, baks[0]))

	again := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, again.Success)
	assert.Contains(t, again.Logs, "No changes needed.")
	assert.Equal(t, content, readFile(t, gl))
	assert.Len(t, backups(t, gl), 1)
}

func TestSyncAddsUnlistedRoms(t *testing.T) {
	root := t.TempDir()
	gl := filepath.Join(root, "gamelist.xml")
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "Luigi.zip"), "l")
	writeFile(t, filepath.Join(root, "sub", "Peach.sfc"), "p")
	writeFile(t, gl, "<gameList>\n  <game>\n    <path>Mario.zip</path>\n    <developer>Nintendo</developer>\n  </game>\n</gameList>\n")

	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "[+] Found unlisted ROM: Luigi.zip")
	assert.Contains(t, res.Logs, "[+] Found unlisted ROM: sub/Peach.sfc")
	assert.NotContains(t, res.Logs, "[+] Found unlisted ROM: Mario.zip")
	assert.Contains(t, res.Logs, "Gamelist updated. Added: 2, Removed: 0")

	doc, exists, err := gamelist.ReadFile(gl)
	require.NoError(t, err)
	require.True(t, exists)
	records := doc.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Mario.zip", records[0].Path())
	assert.Equal(t, "Nintendo", records[0].Get("developer"))
	assert.Equal(t, "./Luigi.zip", records[1].Path())
	assert.Equal(t, "Luigi", records[1].Name())
	assert.Equal(t, "./sub/Peach.sfc", records[2].Path())
	assert.Equal(t, "Peach", records[2].Name())

	again := run(root, model.ActionSyncGamelist, false, testOptions())
	assert.Contains(t, again.Logs, "No changes needed.")
}

func TestSyncDryRunLeavesFilesAlone(t *testing.T) {
	root := t.TempDir()
	gl := filepath.Join(root, "gamelist.xml")
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")
	writeFile(t, filepath.Join(root, "Luigi.zip"), "l")
	writeFile(t, gl, ghostGamelist)
	before, err := os.Stat(gl)
	require.NoError(t, err)

	res := run(root, model.ActionSyncGamelist, true, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "Summary: Would add 1 entries and remove 1 orphan entries.")

	after, err := os.Stat(gl)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, ghostGamelist, readFile(t, gl))
	assert.Empty(t, backups(t, gl))
}

func TestSyncCreatesMissingGamelistWithoutBackup(t *testing.T) {
	root := t.TempDir()
	gl := filepath.Join(root, "gamelist.xml")
	writeFile(t, filepath.Join(root, "Mario.zip"), "m")

	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "No existing gamelist, backup skipped.")
	assert.Empty(t, backups(t, gl))

	doc, exists, err := gamelist.ReadFile(gl)
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, doc.Records(), 1)
	assert.Equal(t, "./Mario.zip", doc.Records()[0].Path())
}

func TestSyncEmptySystemWritesNothing(t *testing.T) {
	root := t.TempDir()
	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "No changes needed.")
	_, err := os.Stat(filepath.Join(root, "gamelist.xml"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncLeavesEntriesOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "snes")
	gl := filepath.Join(root, "gamelist.xml")
	content := "<gameList>\n  <game>\n    <path>../../etc/missing.zip</path>\n  </game>\n</gameList>\n"
	writeFile(t, gl, content)

	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	assert.Contains(t, res.Logs, "[!] Skipping entry outside system root: ../../etc/missing.zip")
	assert.Contains(t, res.Logs, "No changes needed.")
	assert.Equal(t, content, readFile(t, gl))
}

func TestSyncLeavesUntouchedRecordBytesAlone(t *testing.T) {
	root := t.TempDir()
	gl := filepath.Join(root, "gamelist.xml")
	writeFile(t, filepath.Join(root, "Kirby.zip"), "k")
	writeFile(t, filepath.Join(root, "Luigi.zip"), "l")
	kirby := "  <game>\n    <path>./Kirby.zip</path>\n    <name>Kirby's Dream Land</name>\n    <desc>He said \"hi\" &amp; left</desc>\n  </game>\n"
	writeFile(t, gl, "<gameList>\n"+kirby+"</gameList>\n")

	res := run(root, model.ActionSyncGamelist, false, testOptions())
	require.True(t, res.Success)
	content := readFile(t, gl)
	assert.Contains(t, content, kirby)
	assert.Contains(t, content, "<path>./Luigi.zip</path>")
}
