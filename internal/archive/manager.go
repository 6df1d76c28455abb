package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mnemoapp/mnemo/internal/platform/logger"
)

const (
	// DefaultBackupCount is how many timestamped backups are kept per
	// archive when no count is configured.
	DefaultBackupCount = 10

	// backupDirName is the subdirectory of the archive directory holding
	// timestamped backups.
	backupDirName = "backups"

	// backupTimeFormat is the timestamp embedded in backup file names.
	backupTimeFormat = "20060102_150405"

	// maxFilenameLen caps sanitized archive file names, in runes.
	maxFilenameLen = 200
)

// Manager stores deck archives in a single directory and keeps rotating
// backups of files it overwrites or deletes.
type Manager struct {
	dataDir   string
	backupDir string
	backups   int
	logger    *slog.Logger
}

// NewManager creates a Manager rooted at dataDir. Archives live directly
// under dataDir and backups under its backups subdirectory; both are
// created if needed. backupCount limits how many backups are kept per
// archive, with DefaultBackupCount used for values below one.
func NewManager(dataDir string, backupCount int, logger *slog.Logger) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("archive directory is empty: check your configuration")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if backupCount < 1 {
		backupCount = DefaultBackupCount
	}

	backupDir := filepath.Join(dataDir, backupDirName)
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &Manager{
		dataDir:   dataDir,
		backupDir: backupDir,
		backups:   backupCount,
		logger:    logger.With(slog.String("component", "archive")),
	}, nil
}

// Save writes the archive as a compressed .fcz file in the managed
// directory and returns its path. The file name is derived from filename,
// or from the deck name when filename is empty, sanitized either way. An
// existing file under the same name is backed up before being replaced.
func (m *Manager) Save(ctx context.Context, archive *Archive, filename string) (string, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if archive == nil {
		return "", fmt.Errorf("%w: archive is nil", ErrInvalidArchive)
	}
	if err := archive.Validate(); err != nil {
		log.Warn("refusing to save invalid archive", slog.String("error", err.Error()))
		return "", err
	}

	name := filename
	if name == "" {
		name = archive.Deck.Name
	}
	path := filepath.Join(m.dataDir, sanitizeFilename(name)+Ext)

	m.backup(log, path)

	data, err := encode(archive)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Error("failed to write deck archive",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to write deck archive: %w", err)
	}

	log.Info("deck archive saved",
		slog.String("path", path),
		slog.String("deck_id", archive.Deck.ID.String()),
		slog.Int("card_count", len(archive.Cards)))
	return path, nil
}

// Load reads a deck archive from path. Both compressed .fcz files and
// plain JSON exports are accepted.
func (m *Manager) Load(ctx context.Context, path string) (*Archive, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck archive: %w", err)
	}

	archive, err := decode(data)
	if err != nil {
		log.Warn("failed to decode deck archive",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load deck archive %s: %w", path, err)
	}

	log.Debug("deck archive loaded",
		slog.String("path", path),
		slog.Int("card_count", len(archive.Cards)))
	return archive, nil
}

// ExportJSON writes the archive as plain indented JSON to an arbitrary
// path, for interchange with other tools. No backup is made.
func (m *Manager) ExportJSON(ctx context.Context, archive *Archive, path string) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if archive == nil {
		return fmt.Errorf("%w: archive is nil", ErrInvalidArchive)
	}
	if err := archive.Validate(); err != nil {
		log.Warn("refusing to export invalid archive", slog.String("error", err.Error()))
		return err
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Error("failed to write export file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to write export file: %w", err)
	}

	log.Info("deck exported",
		slog.String("path", path),
		slog.String("deck_id", archive.Deck.ID.String()),
		slog.Int("card_count", len(archive.Cards)))
	return nil
}

// Info describes one stored archive file.
type Info struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// List returns the archives in the managed directory, newest first.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	entries, err := os.ReadDir(m.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list deck archives: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			log.Warn("failed to stat deck archive",
				slog.String("name", entry.Name()),
				slog.String("error", err.Error()))
			continue
		}
		infos = append(infos, Info{
			Name:     strings.TrimSuffix(entry.Name(), Ext),
			Path:     filepath.Join(m.dataDir, entry.Name()),
			Size:     fi.Size(),
			Modified: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Modified.After(infos[j].Modified)
	})

	// Return empty slice instead of nil for consistency
	if infos == nil {
		infos = []Info{}
	}

	log.Debug("deck archives listed", slog.Int("count", len(infos)))
	return infos, nil
}

// Delete removes an archive file after backing it up.
func (m *Manager) Delete(ctx context.Context, path string) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	m.backup(log, path)

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete deck archive: %w", err)
	}

	log.Info("deck archive deleted", slog.String("path", path))
	return nil
}

// backup copies an existing file into the backup directory under a
// timestamped name, then prunes old backups. Failures are logged, not
// returned.
func (m *Manager) backup(log *slog.Logger, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	stem := strings.TrimSuffix(filepath.Base(path), Ext)
	timestamp := time.Now().Format(backupTimeFormat)
	backupPath := filepath.Join(m.backupDir, stem+"_"+timestamp+Ext)

	if err := copyFile(path, backupPath); err != nil {
		log.Error("failed to back up deck archive",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	log.Debug("backup created", slog.String("path", backupPath))

	m.cleanupBackups(log, stem)
}

// cleanupBackups removes the oldest backups of one archive beyond the
// configured count.
func (m *Manager) cleanupBackups(log *slog.Logger, stem string) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		log.Error("failed to clean up old backups", slog.String("error", err.Error()))
		return
	}

	type backupFile struct {
		name     string
		modified time.Time
	}
	var backups []backupFile
	for _, entry := range entries {
		if entry.IsDir() || !isBackupOf(entry.Name(), stem) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backupFile{name: entry.Name(), modified: fi.ModTime()})
	}

	if len(backups) <= m.backups {
		return
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modified.After(backups[j].modified)
	})

	for _, old := range backups[m.backups:] {
		if err := os.Remove(filepath.Join(m.backupDir, old.name)); err != nil {
			log.Error("failed to remove old backup",
				slog.String("name", old.name),
				slog.String("error", err.Error()))
			continue
		}
		log.Debug("removed old backup", slog.String("name", old.name))
	}
}

// isBackupOf reports whether name is a timestamped backup of the archive
// with the given stem. The timestamp is parsed so a deck whose name
// extends another deck's name does not match its backups.
func isBackupOf(name, stem string) bool {
	rest, ok := strings.CutPrefix(name, stem+"_")
	if !ok {
		return false
	}
	rest, ok = strings.CutSuffix(rest, Ext)
	if !ok {
		return false
	}
	_, err := time.Parse(backupTimeFormat, rest)
	return err == nil
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// sanitizeFilename reduces a deck name to a safe file name: anything
// outside letters, digits, spaces, hyphens, and underscores is dropped,
// trailing spaces are trimmed, and the result is capped at
// maxFilenameLen runes. An empty result falls back to "unnamed".
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimRight(b.String(), " ")
	if runes := []rune(cleaned); len(runes) > maxFilenameLen {
		cleaned = string(runes[:maxFilenameLen])
	}
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}
