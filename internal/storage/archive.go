package storage

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
)

// ArchiveLedger writes the given ledger snapshot to a timestamped gzip file
// under the archive directory and returns its path. Called before a sales
// reset so the zeroed counters do not erase history.
func (g *Gateway) ArchiveLedger(names []string, counts []int, now time.Time) (string, error) {
	dir := filepath.Join(g.dir, archiveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(ErrWriteFailed, "create archive dir: %v", err)
	}

	path := filepath.Join(dir, "sales-"+now.Format("20060102-150405")+".csv.gz")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(ErrWriteFailed, "open archive: %v", err)
	}

	gz := pgzip.NewWriter(f)
	w := bufio.NewWriter(gz)
	for i, name := range names {
		_, _ = w.WriteString(g.codec.EncodeLedgerLine(name, counts[i]) + "\n")
	}
	if err := w.Flush(); err == nil {
		err = gz.Close()
	} else {
		_ = gz.Close()
	}
	if err != nil {
		_ = f.Close()
		return "", errors.Wrapf(ErrWriteFailed, "write archive: %v", err)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(ErrWriteFailed, "close archive: %v", err)
	}
	return path, nil
}
