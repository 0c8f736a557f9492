// Package storage reads and writes the durable catalog and ledger files.
//
// The backing store is a directory on removable media. All I/O is synchronous
// and unretried: a failed write is reported once and the service keeps serving
// from memory.
package storage

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/If4x/ShopCalc-Pro/internal/codec"
	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
)

// Device-level failures.
var (
	// ErrUnreachable is returned when the storage directory cannot be accessed.
	ErrUnreachable = errors.New("storage device unreachable")
	// ErrWriteFailed is returned when a resource cannot be opened for writing.
	ErrWriteFailed = errors.New("storage write failed")
)

const (
	catalogFile = "products.csv"
	ledgerFile  = "sales.csv"
	archiveDir  = "archive"
)

// Gateway owns the catalog and ledger resources of one data directory.
type Gateway struct {
	dir   string
	codec codec.Codec
	lg    *zap.Logger
}

// NewGateway returns a Gateway over dir using the given codec.
func NewGateway(dir string, c codec.Codec, lg *zap.Logger) *Gateway {
	return &Gateway{dir: dir, codec: c, lg: lg}
}

// Init verifies the storage device is reachable and seeds both resources with
// a sentinel `0` when they are entirely absent. The caller treats failure as
// non-fatal; subsequent load/save calls will keep failing until the device
// becomes reachable.
func (g *Gateway) Init() error {
	if err := g.Ping(); err != nil {
		return err
	}
	for _, name := range []string{catalogFile, ledgerFile} {
		path := filepath.Join(g.dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(ErrUnreachable, "stat %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("0\n"), 0o644); err != nil {
			return errors.Wrapf(ErrWriteFailed, "seed %s: %v", name, err)
		}
		g.lg.Info("seeded storage resource", zap.String("file", name))
	}
	return nil
}

// Ping reports whether the storage directory is reachable.
func (g *Gateway) Ping() error {
	info, err := os.Stat(g.dir)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "stat %s: %v", g.dir, err)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrUnreachable, "%s is not a directory", g.dir)
	}
	return nil
}

// LoadCatalog reads the catalog resource. An absent, empty, or zero-count
// file yields the built-in default catalog, persisted immediately. A file
// holding fewer records than its header declares loads partially without
// error.
func (g *Gateway) LoadCatalog() ([]product.Product, error) {
	f, err := os.Open(filepath.Join(g.dir, catalogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return g.writeDefaults()
		}
		return nil, errors.Wrapf(ErrUnreachable, "open catalog: %v", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return g.writeDefaults()
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		g.lg.Warn("unreadable catalog header, using defaults", zap.String("header", sc.Text()))
		return g.writeDefaults()
	}
	if n <= 0 {
		return g.writeDefaults()
	}
	if n > product.MaxProducts {
		g.lg.Warn("catalog header exceeds capacity, clamping",
			zap.Int("declared", n),
			zap.Int("capacity", product.MaxProducts),
		)
		n = product.MaxProducts
	}

	products := make([]product.Product, 0, n)
	for len(products) < n && sc.Scan() {
		p, err := g.codec.DecodeCatalogLine(sc.Text())
		if err != nil {
			if g.codec.Strict {
				return nil, errors.Wrap(err, "decode catalog line")
			}
			g.lg.Warn("skipping malformed catalog line", zap.String("line", sc.Text()))
			continue
		}
		products = append(products, p)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrUnreachable, "read catalog: %v", err)
	}
	if len(products) < n {
		g.lg.Warn("catalog truncated",
			zap.Int("declared", n),
			zap.Int("loaded", len(products)),
		)
	}
	return products, nil
}

func (g *Gateway) writeDefaults() ([]product.Product, error) {
	defaults := product.Defaults()
	g.lg.Info("no catalog on storage, persisting defaults", zap.Int("count", len(defaults)))
	if err := g.SaveCatalog(defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

// SaveCatalog overwrites the catalog resource with a count header followed by
// one record per product in slot order. On failure the in-memory state is
// untouched.
func (g *Gateway) SaveCatalog(products []product.Product) error {
	f, err := os.Create(filepath.Join(g.dir, catalogFile))
	if err != nil {
		return errors.Wrapf(ErrWriteFailed, "open catalog: %v", err)
	}

	w := bufio.NewWriter(f)
	_, _ = w.WriteString(strconv.Itoa(len(products)) + "\n")
	for _, p := range products {
		_, _ = w.WriteString(g.codec.EncodeCatalogLine(p) + "\n")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(ErrWriteFailed, "write catalog: %v", err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(ErrWriteFailed, "close catalog: %v", err)
	}
	return nil
}

// LoadLedger reads up to len(names) cumulative counts. An absent resource
// initializes every counter to zero and persists immediately. Malformed lines
// are skipped without advancing the slot index; extra lines are ignored;
// missing trailing lines leave counters at zero.
func (g *Gateway) LoadLedger(names []string) ([]int, error) {
	counts := make([]int, len(names))

	f, err := os.Open(filepath.Join(g.dir, ledgerFile))
	if err != nil {
		if os.IsNotExist(err) {
			g.lg.Info("no ledger on storage, persisting zeros", zap.Int("count", len(names)))
			if err := g.SaveLedger(names, counts); err != nil {
				return nil, err
			}
			return counts, nil
		}
		return nil, errors.Wrapf(ErrUnreachable, "open ledger: %v", err)
	}
	defer func() { _ = f.Close() }()

	idx := 0
	sc := bufio.NewScanner(f)
	for idx < len(counts) && sc.Scan() {
		_, count, err := g.codec.DecodeLedgerLine(sc.Text())
		if err != nil {
			if g.codec.Strict {
				return nil, errors.Wrap(err, "decode ledger line")
			}
			continue
		}
		counts[idx] = count
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrUnreachable, "read ledger: %v", err)
	}
	return counts, nil
}

// SaveLedger overwrites the ledger resource with one name,count line per
// entry, in current slot order.
func (g *Gateway) SaveLedger(names []string, counts []int) error {
	f, err := os.Create(filepath.Join(g.dir, ledgerFile))
	if err != nil {
		return errors.Wrapf(ErrWriteFailed, "open ledger: %v", err)
	}

	w := bufio.NewWriter(f)
	for i, name := range names {
		_, _ = w.WriteString(g.codec.EncodeLedgerLine(name, counts[i]) + "\n")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(ErrWriteFailed, "write ledger: %v", err)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(ErrWriteFailed, "close ledger: %v", err)
	}
	return nil
}
