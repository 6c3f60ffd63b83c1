package tracker

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fileops/attnmon/internal/ledger"
)

// maxDigestSize caps content digesting: files above it get no digest and are
// excluded from duplicate detection.
const maxDigestSize = 100 << 20 // 100 MiB

// Tracker translates file events from the host into ledger mutations.
type Tracker struct {
	ledger *ledger.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Tracker writing to the given ledger.
func New(l *ledger.Ledger, logger *slog.Logger) *Tracker {
	return &Tracker{
		ledger: l,
		logger: logger,
		now:    time.Now,
	}
}

// RecordCreated tracks a newly created file. A path that no longer exists is
// ignored: creation racing deletion is tolerated, not an error.
func (t *Tracker) RecordCreated(ctx context.Context, path string) {
	rec, ok := t.inspect(path, t.now())
	if !ok {
		return
	}
	t.ledger.Put(ctx, rec)
	t.ledger.RecordSwitch(ctx, rec.ParentFolder, t.now())
	t.logger.Debug("tracking new file", "path", path, "size", rec.Size)
}

// RecordAccessed tracks a file open/read. Paths that pre-date tracking get a
// synthesized creation record first, then the access applies as the first.
func (t *Tracker) RecordAccessed(ctx context.Context, path string) {
	at := t.now()
	if !t.ledger.Touch(ctx, path, at) {
		rec, ok := t.inspect(path, at)
		if !ok {
			return
		}
		t.ledger.Put(ctx, rec)
		t.ledger.Touch(ctx, path, at)
	}
	t.ledger.RecordSwitch(ctx, filepath.Dir(path), t.now())
}

// RecordDeleted flags the record as deleted. History stays analyzable until
// retention cleanup.
func (t *Tracker) RecordDeleted(ctx context.Context, path string) {
	t.ledger.MarkDeleted(ctx, path)
}

// RecordFolderSwitch forwards an active-folder change from the host.
func (t *Tracker) RecordFolderSwitch(ctx context.Context, folder string) {
	t.ledger.RecordSwitch(ctx, folder, t.now())
}

// inspect builds a FileRecord from the file on disk. It reports false when
// the path is gone or is not a regular file.
func (t *Tracker) inspect(path string, createdAt time.Time) (ledger.FileRecord, bool) {
	info, err := os.Stat(path)
	if err != nil {
		t.logger.Debug("path vanished before inspection", "path", path, "error", err)
		return ledger.FileRecord{}, false
	}
	if info.IsDir() {
		return ledger.FileRecord{}, false
	}

	rec := ledger.FileRecord{
		Path:         path,
		Size:         info.Size(),
		CreatedAt:    createdAt,
		ParentFolder: filepath.Dir(path),
	}
	if info.Size() <= maxDigestSize {
		digest, err := digestFile(path)
		if err != nil {
			t.logger.Debug("could not digest file", "path", path, "error", err)
		} else {
			rec.Digest = digest
		}
	}
	return rec, true
}

// digestFile computes the content digest used for duplicate detection.
func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
