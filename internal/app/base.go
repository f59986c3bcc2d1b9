package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/romdoctor/internal/config"
	"github.com/xxxsen/romdoctor/internal/engine"
	"github.com/xxxsen/romdoctor/internal/storage"
	"go.uber.org/zap"
)

// baseCommand holds the flags and session setup shared by every runner.
type baseCommand struct {
	rootDir    string
	configPath string
	output     string

	out     io.Writer
	cfg     *config.Config
	session *engine.Session
}

func (c *baseCommand) initBase(f *pflag.FlagSet) {
	f.StringVar(&c.rootDir, "dir", "", "ROM 根目录（覆盖配置中的 base_path）")
	f.StringVar(&c.configPath, "config", "", "配置文件路径（json 或 toml）")
	f.StringVar(&c.output, "output", "", "额外输出 JSON 结果文件路径")
}

func (c *baseCommand) stdout() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

// prepare loads the configuration and builds the session. --dir always wins
// over base_path.
func (c *baseCommand) prepare(ctx context.Context, name string) error {
	cfg, err := config.Resolve(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Log.File != "" || cfg.Log.Level != "" {
		level := cfg.Log.Level
		if level == "" {
			level = "info"
		}
		logger.Init(cfg.Log.File, level, 0, 0, 0, true)
	}

	base := strings.TrimSpace(c.rootDir)
	if base == "" {
		base = cfg.BasePath
	}
	if base == "" {
		return fmt.Errorf("%s requires --dir or base_path in config: %w", name, engine.ErrNoBasePath)
	}
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}

	var mirror storage.Client
	if cfg.S3.Enabled() {
		mirror, err = storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("init backup mirror: %w", err)
		}
	}

	c.cfg = cfg
	c.session = engine.NewSession(base, engine.OptionsFromConfig(cfg), nil)
	if mirror != nil {
		c.session.Mirror = mirror
	}
	logutil.GetLogger(ctx).Info("session ready",
		zap.String("cmd", name),
		zap.String("dir", filepath.ToSlash(base)),
		zap.Bool("mirror", mirror != nil),
	)
	return nil
}

// writeOutput stores v as indented JSON when --output is set.
func (c *baseCommand) writeOutput(ctx context.Context, v interface{}) error {
	if strings.TrimSpace(c.output) == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", c.output, err)
	}
	logutil.GetLogger(ctx).Info("output written", zap.String("output", c.output))
	return nil
}
