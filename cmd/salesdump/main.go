// Command salesdump prints the sales ledger from a live sales.csv or an
// archived sales-*.csv.gz snapshot.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/If4x/ShopCalc-Pro/internal/codec"
)

func main() {
	var (
		file   string
		format string
		strict bool
	)

	flag.StringVar(&file, "file", "data/sales.csv", "ledger file, plain .csv or archived .csv.gz")
	flag.StringVar(&format, "format", "table", "output format: table or csv")
	flag.BoolVar(&strict, "strict", false, "fail on records with unparsable counts")
	flag.Parse()

	if format != "table" && format != "csv" {
		slog.Error("unknown format", slog.String("format", format))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, file, format, strict); err != nil {
		slog.Error("sales dump failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, file, format string, strict bool) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "open %s", file)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(file, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", file)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	c := codec.Codec{Strict: strict}
	out := bufio.NewWriter(os.Stdout)
	defer func() { _ = out.Flush() }()

	if format == "csv" {
		fmt.Fprintln(out, "Produkt,Anzahl")
	}

	var total int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		name, count, err := c.DecodeLedgerLine(line)
		if err != nil {
			if strict {
				return errors.Wrapf(err, "decode %q", line)
			}
			slog.Warn("skipping malformed record", slog.String("line", line))
			continue
		}
		total += count
		switch format {
		case "csv":
			fmt.Fprintln(out, c.EncodeLedgerLine(name, count))
		default:
			fmt.Fprintf(out, "%-50s %6d\n", name, count)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", file)
	}

	if format == "table" {
		fmt.Fprintf(out, "%-50s %6d\n", "TOTAL", total)
	}
	return nil
}
