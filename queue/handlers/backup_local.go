package handlers

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pamcare/pamcare/config"
	"github.com/pamcare/pamcare/db"
	"github.com/pamcare/pamcare/db/zombiezen"
)

// BackupLocalHandler writes a compressed copy of the database to a local
// directory using VACUUM INTO, which produces a clean, defragmented snapshot
// without blocking writers for long.
type BackupLocalHandler struct {
	configProvider *config.Provider
	logger         *slog.Logger
}

func NewBackupLocalHandler(provider *config.Provider, logger *slog.Logger) *BackupLocalHandler {
	if provider == nil || logger == nil {
		panic("NewBackupLocalHandler: received nil provider or logger")
	}
	return &BackupLocalHandler{
		configProvider: provider,
		logger:         logger.With("job_handler", "backup_local"),
	}
}

// Handle implements the JobHandler interface for database backups.
func (h *BackupLocalHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()

	sourcePath := cfg.Sqlite.Path
	backupDir := cfg.BackupLocal.BackupDir
	tempBackupPath := filepath.Join(os.TempDir(), fmt.Sprintf("backup-%d.db", time.Now().UnixNano()))

	baseName := filepath.Base(sourcePath)
	fileNameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	finalBackupPath := filepath.Join(backupDir, fmt.Sprintf("%s-%s.bck.gz", fileNameOnly, timestamp))

	h.logger.Info("starting database backup", "source", sourcePath, "destination", finalBackupPath)

	if err := h.vacuumInto(sourcePath, tempBackupPath); err != nil {
		return fmt.Errorf("backup creation failed: %w", err)
	}
	defer func() {
		if err := os.Remove(tempBackupPath); err != nil {
			h.logger.Error("error removing temporary backup file", "error", err)
		}
	}()

	if err := h.compressFile(tempBackupPath, finalBackupPath); err != nil {
		return fmt.Errorf("failed to gzip backup file: %w", err)
	}

	h.logger.Info("database backup completed", "path", finalBackupPath)
	return nil
}

// vacuumInto creates a clean copy of the database at destPath.
func (h *BackupLocalHandler) vacuumInto(sourcePath, destPath string) error {
	sourceConn, err := zombiezen.NewConn(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source db for vacuum: %w", err)
	}
	defer func() {
		if err := sourceConn.Close(); err != nil {
			h.logger.Error("error closing source database connection", "error", err)
		}
	}()

	stmt, err := sourceConn.Prepare(fmt.Sprintf("VACUUM INTO '%s';", destPath))
	if err != nil {
		return fmt.Errorf("failed to prepare vacuum statement: %w", err)
	}
	defer stmt.Finalize()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute vacuum statement: %w", err)
	}
	return nil
}

// compressFile gzips sourcePath into destPath.
func (h *BackupLocalHandler) compressFile(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file for compression: %w", err)
	}
	defer func() {
		if err := sourceFile.Close(); err != nil {
			h.logger.Error("error closing source file", "error", err)
		}
	}()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file for compression: %w", err)
	}
	defer func() {
		if err := destFile.Close(); err != nil {
			h.logger.Error("error closing destination file", "error", err)
		}
	}()

	gzipWriter := gzip.NewWriter(destFile)
	defer func() {
		if err := gzipWriter.Close(); err != nil {
			h.logger.Error("error closing gzip writer", "error", err)
		}
	}()

	if _, err := io.Copy(gzipWriter, sourceFile); err != nil {
		return fmt.Errorf("failed to copy and compress data: %w", err)
	}

	return nil
}
