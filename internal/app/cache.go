package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ItzR3NO/R3VIB3-MacOS/internal/config"
)

// cleanupOldTempFiles removes leftover recording temp files from earlier
// runs that crashed or were killed mid-session.
func cleanupOldTempFiles(dir string, log *zap.SugaredLogger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnw("temp cleanup: read dir failed", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "RecordTemp_") {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			log.Warnw("temp cleanup: remove failed", "path", path, "error", err)
		} else {
			log.Debugw("temp cleanup: removed", "path", path)
		}
	}
}

// handleCache archives a finished session's audio and transcript into the
// cache directory, or deletes the intermediates when caching is off. Paths
// may be empty when a stage never produced its file.
func handleCache(cfg config.Config, rawWav, monoWav, text string, log *zap.SugaredLogger) {
	if cfg.KeepCache && cfg.CacheDir != "" {
		base := fmt.Sprintf("audio-%s", time.Now().Format("2006-01-02-15.04.05"))
		archive := func(src, ext string) {
			if src == "" {
				return
			}
			dst := filepath.Join(cfg.CacheDir, base+ext)
			if err := os.Rename(src, dst); err != nil {
				log.Warnw("cache: rename failed, removing", "src", src, "error", err)
				_ = os.Remove(src)
			}
		}
		archive(rawWav, ".wav")
		archive(monoWav, "_16k.wav")
		if text != "" {
			txt := filepath.Join(cfg.CacheDir, base+".txt")
			if err := os.WriteFile(txt, []byte(text), 0644); err != nil {
				log.Warnw("cache: write transcript failed", "path", txt, "error", err)
			}
		}
		return
	}
	if rawWav != "" {
		_ = os.Remove(rawWav)
	}
	if monoWav != "" {
		_ = os.Remove(monoWav)
	}
}
