package bios

import (
	"context"
	"path/filepath"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/model"
	"github.com/xxxsen/romdoctor/internal/pathutil"
	"go.uber.org/zap"
)

// Definitions is the fixed firmware table checked by Check.
var Definitions = []model.BiosDefinition{
	{System: "PlayStation", Filename: "scph1001.bin", Description: "PSX BIOS (USA)"},
	{System: "PlayStation", Filename: "scph5500.bin", Description: "PSX BIOS (JP)", IsOptional: true},
	{System: "PlayStation", Filename: "scph5502.bin", Description: "PSX BIOS (EU)", IsOptional: true},
	{System: "PlayStation 2", Filename: "scph39001.bin", Description: "PS2 BIOS (USA)"},
	{System: "Dreamcast", Filename: "dc_boot.bin", Description: "Dreamcast BIOS"},
	{System: "Dreamcast", Filename: "dc_flash.bin", Description: "Dreamcast Flash"},
	{System: "Sega CD", Filename: "bios_CD_U.bin", Description: "Sega CD BIOS (USA)"},
	{System: "Sega CD", Filename: "bios_CD_E.bin", Description: "Sega CD BIOS (EU)", IsOptional: true},
	{System: "Sega CD", Filename: "bios_CD_J.bin", Description: "Sega CD BIOS (JP)", IsOptional: true},
	{System: "Saturn", Filename: "sega_101.bin", Description: "Saturn BIOS (JP)"},
	{System: "Saturn", Filename: "mpr-17933.bin", Description: "Saturn BIOS (USA/EU)"},
	{System: "GBA", Filename: "gba_bios.bin", Description: "Game Boy Advance BIOS"},
	{System: "Neo Geo", Filename: "neogeo.zip", Description: "Neo Geo BIOS Pack"},
}

// CandidateDirs lists the BIOS directories searched for basePath, in order.
func CandidateDirs(basePath string) []string {
	parent := filepath.Dir(basePath)
	return []string{
		filepath.Join(basePath, "bios"),
		filepath.Join(basePath, "BIOS"),
		filepath.Join(parent, "bios"),
		filepath.Join(parent, "BIOS"),
		basePath,
	}
}

// ResolveDir returns the first candidate that is a directory, falling back
// to basePath itself.
func ResolveDir(basePath string) string {
	for _, dir := range CandidateDirs(basePath) {
		if pathutil.DirExists(dir) {
			return dir
		}
	}
	return basePath
}

// Check reports, for every definition, whether its exact file name exists in
// the resolved BIOS directory. File contents are not inspected.
func Check(ctx context.Context, basePath string) []model.BiosResult {
	dir := ResolveDir(basePath)
	out := make([]model.BiosResult, 0, len(Definitions))
	found := 0
	for _, def := range Definitions {
		res := model.BiosResult{Definition: def}
		p := filepath.Join(dir, def.Filename)
		if pathutil.FileExists(p) {
			res.Found = true
			res.Path = p
			found++
		}
		out = append(out, res)
	}
	logutil.GetLogger(ctx).Info("bios check finished",
		zap.String("dir", filepath.ToSlash(dir)),
		zap.Int("found", found),
		zap.Int("total", len(Definitions)),
	)
	return out
}
