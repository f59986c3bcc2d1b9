package fix

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/constant"
	"github.com/xxxsen/romdoctor/internal/fileutil"
	"github.com/xxxsen/romdoctor/internal/gamelist"
	"go.uber.org/zap"
)

const maxBackupAttempts = 64

// BackupPath is the backup name used for a gamelist at the given unix time.
func BackupPath(gamelistPath string, unix int64) string {
	return gamelistPath + constant.BackupSuffix + strconv.FormatInt(unix, 10)
}

// createBackup copies the gamelist to a fresh .bak-<unix> file. A name that is
// already taken moves on to the next second so an older backup is never overwritten.
func createBackup(gamelistPath string, unix int64) (string, error) {
	for i := 0; i < maxBackupAttempts; i++ {
		dst := BackupPath(gamelistPath, unix+int64(i))
		err := fileutil.CopyFile(gamelistPath, dst)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free backup name for %s", gamelistPath)
}

// commit backs up the existing gamelist (if any) and rewrites it with doc.
func (r *runner) commit(doc *gamelist.Document, existed bool) error {
	perm := os.FileMode(0o644)
	backup := ""
	if existed {
		if info, err := os.Stat(r.gamelistPath); err == nil {
			perm = info.Mode().Perm()
		}
		dst, err := createBackup(r.gamelistPath, r.opts.Now().Unix())
		if err != nil {
			return fmt.Errorf("backup gamelist %s: %w", r.gamelistPath, err)
		}
		backup = dst
		r.logf("Backup created: %s", filepath.Base(backup))
		r.mirrorBackup(backup)
	} else {
		r.logf("No existing gamelist, backup skipped.")
	}

	data, err := doc.Bytes()
	if err == nil {
		err = fileutil.WriteFileAtomic(r.gamelistPath, data, perm)
	}
	if err != nil {
		if backup != "" {
			r.logf("Write failed, previous gamelist kept at: %s", filepath.ToSlash(backup))
		}
		return fmt.Errorf("write gamelist %s: %w", r.gamelistPath, err)
	}
	return nil
}

func (r *runner) mirrorBackup(backup string) {
	if r.opts.Mirror == nil {
		return
	}
	key := path.Join(r.opts.MirrorPrefix, r.req.SystemID, filepath.Base(backup))
	if err := r.opts.Mirror.UploadFile(r.ctx, key, backup, ""); err != nil {
		logutil.GetLogger(r.ctx).Warn("mirror backup failed",
			zap.String("backup", filepath.ToSlash(backup)),
			zap.String("key", key),
			zap.Error(err),
		)
		r.logf("Backup mirror failed: %v", err)
		return
	}
	r.logf("Backup mirrored: %s", key)
}
