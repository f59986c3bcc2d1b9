package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/model"
	"go.uber.org/zap"
)

// CopyFile copies src to dst, failing if dst already exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create copy %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close copy %s: %w", dst, err)
	}
	return nil
}

// WriteFileAtomic replaces path with data through a temp file in the same directory.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// DeleteFiles removes each path on a best-effort basis. A path that is
// already gone counts as deleted; directories and permission errors fail.
func DeleteFiles(ctx context.Context, paths []string) *model.DeleteResult {
	logger := logutil.GetLogger(ctx)
	res := &model.DeleteResult{Deleted: []string{}, Failed: []string{}}
	for _, p := range paths {
		info, err := os.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			res.Deleted = append(res.Deleted, p)
			continue
		}
		if err == nil && info.IsDir() {
			logger.Warn("refuse to delete directory", zap.String("path", p))
			res.Failed = append(res.Failed, p)
			continue
		}
		if err == nil {
			err = os.Remove(p)
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("delete file failed", zap.String("path", p), zap.Error(err))
			res.Failed = append(res.Failed, p)
			continue
		}
		res.Deleted = append(res.Deleted, p)
	}
	logger.Info("delete files finished",
		zap.Int("deleted", len(res.Deleted)),
		zap.Int("failed", len(res.Failed)),
	)
	return res
}
