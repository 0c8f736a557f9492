// Package codec implements the line-oriented text encoding for persisted
// catalog and ledger records.
//
// A catalog record is `name,price,hasDeposit,cartQty,sold`; a ledger record is
// `name,count`. The catalog file carries a decimal record-count header line,
// the ledger file has none.
package codec

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/If4x/ShopCalc-Pro/internal/domain/product"
)

// ErrMalformed is returned when a persisted line does not carry the required
// delimiter-separated fields.
var ErrMalformed = errors.New("malformed record")

const (
	delimiter         = ","
	catalogFieldCount = 5
)

// Codec encodes and decodes persisted records.
//
// In lenient mode (the zero value) numeric fields that fail to parse decode as
// zero, matching the historical file format. Strict mode rejects such lines
// as malformed instead.
type Codec struct {
	Strict bool
}

// EncodeCatalogLine renders one catalog record.
func (c Codec) EncodeCatalogLine(p product.Product) string {
	dep := "0"
	if p.HasDeposit {
		dep = "1"
	}
	return strings.Join([]string{
		p.Name,
		p.Price.StringFixed(2),
		dep,
		strconv.Itoa(p.CartQty),
		strconv.Itoa(p.Sold),
	}, delimiter)
}

// DecodeCatalogLine parses one catalog record.
//
// The four numeric fields are taken from the end of the line, so names that
// contain the delimiter (written by older firmware revisions) still decode.
func (c Codec) DecodeCatalogLine(line string) (product.Product, error) {
	parts := strings.Split(line, delimiter)
	if len(parts) < catalogFieldCount {
		return product.Product{}, errors.Wrapf(ErrMalformed, "catalog line has %d fields", len(parts))
	}

	tail := parts[len(parts)-4:]
	name := strings.Join(parts[:len(parts)-4], delimiter)

	price, err := c.decodePrice(tail[0])
	if err != nil {
		return product.Product{}, err
	}
	hasDeposit, err := c.decodeInt(tail[1])
	if err != nil {
		return product.Product{}, err
	}
	cartQty, err := c.decodeInt(tail[2])
	if err != nil {
		return product.Product{}, err
	}
	sold, err := c.decodeInt(tail[3])
	if err != nil {
		return product.Product{}, err
	}

	return product.Product{
		Name:       name,
		Price:      price,
		HasDeposit: hasDeposit != 0,
		CartQty:    cartQty,
		Sold:       sold,
	}, nil
}

// EncodeLedgerLine renders one ledger record.
func (c Codec) EncodeLedgerLine(name string, count int) string {
	return name + delimiter + strconv.Itoa(count)
}

// DecodeLedgerLine parses one ledger record. The count is the field after the
// last delimiter; everything before it is the name snapshot.
func (c Codec) DecodeLedgerLine(line string) (name string, count int, err error) {
	idx := strings.LastIndex(line, delimiter)
	if idx <= 0 {
		return "", 0, errors.Wrap(ErrMalformed, "ledger line has no delimiter")
	}
	count, err = c.decodeInt(line[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return line[:idx], count, nil
}

func (c Codec) decodePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		if c.Strict {
			return decimal.Zero, errors.Wrapf(ErrMalformed, "price %q", s)
		}
		return decimal.Zero, nil
	}
	return d, nil
}

func (c Codec) decodeInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		if c.Strict {
			return 0, errors.Wrapf(ErrMalformed, "number %q", s)
		}
		return 0, nil
	}
	return n, nil
}
