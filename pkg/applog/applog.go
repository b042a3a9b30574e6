// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	dirName = "afirma-bridge"

	EnvRetentionDays = "AFIRMA_BRIDGE_LOG_RETENTION_DAYS"
	EnvMaxTotalMB    = "AFIRMA_BRIDGE_LOG_MAX_TOTAL_MB"
	EnvLogDir        = "AFIRMA_BRIDGE_LOG_DIR"
)

var (
	mu          sync.Mutex
	currentPath string
	currentFile *os.File
)

// Init sends the standard logger to a dated file in the per-user log
// directory and, when console is not nil, also to console. Calling it again
// replaces the previous file.
func Init(appName string, console io.Writer) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	logDir, err := defaultLogDir()
	if err != nil || strings.TrimSpace(logDir) == "" {
		logDir = fallbackLogDir()
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		logDir = fallbackLogDir()
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return "", fmt.Errorf("creando directorio de logs: %w", err)
		}
	}

	fileName := fmt.Sprintf("%s-%s.log", sanitizeName(appName), time.Now().Format("2006-01-02"))
	path := filepath.Join(logDir, fileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("abriendo %s: %w", path, err)
	}

	var out io.Writer = f
	if console != nil {
		out = io.MultiWriter(console, f)
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC | log.Lshortfile)
	if currentFile != nil {
		_ = currentFile.Close()
	}
	currentFile = f
	currentPath = path

	cleanupOldLogs(logDir, logRetentionDays(), path)
	cleanupLogsByTotalSize(logDir, logMaxTotalBytes(), path)
	return path, nil
}

// Path returns the file opened by the last successful Init.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return currentPath
}

func fallbackLogDir() string {
	return filepath.Join(os.TempDir(), dirName, "logs")
}

func defaultLogDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvLogDir)); dir != "" {
		return dir, nil
	}
	switch runtime.GOOS {
	case "windows":
		base := strings.TrimSpace(os.Getenv("LOCALAPPDATA"))
		if base == "" {
			return "", fmt.Errorf("LOCALAPPDATA no disponible")
		}
		return filepath.Join(base, dirName, "logs"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Logs", dirName), nil
	default:
		base := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(base, dirName, "logs"), nil
	}
}

func sanitizeName(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	var b strings.Builder
	for _, r := range v {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	if name := strings.Trim(b.String(), "-"); name != "" {
		return name
	}
	return dirName
}

type logFile struct {
	path string
	mod  time.Time
	size int64
}

// listLogs returns the .log files of dir, oldest first, excluding keep.
func listLogs(dir, keep string) []logFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".log") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if p == keep {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: p, mod: info.ModTime(), size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })
	return files
}

func cleanupOldLogs(dir string, keepDays int, current string) {
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	for _, f := range listLogs(dir, current) {
		if f.mod.Before(cutoff) {
			_ = os.Remove(f.path)
		}
	}
}

func cleanupLogsByTotalSize(dir string, maxBytes int64, current string) {
	if maxBytes <= 0 {
		return
	}
	files := listLogs(dir, current)
	var total int64
	if fi, err := os.Stat(current); err == nil {
		total = fi.Size()
	}
	for _, f := range files {
		total += f.size
	}
	for _, f := range files {
		if total <= maxBytes {
			break
		}
		_ = os.Remove(f.path)
		total -= f.size
	}
}

func logRetentionDays() int {
	const def = 14
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvRetentionDays)))
	if err != nil || n < 1 {
		return def
	}
	if n > 365 {
		return 365
	}
	return n
}

func logMaxTotalBytes() int64 {
	const defMB int64 = 50
	n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(EnvMaxTotalMB)), 10, 64)
	if err != nil || n < 1 {
		n = defMB
	}
	if n > 2048 {
		n = 2048
	}
	return n * 1024 * 1024
}
