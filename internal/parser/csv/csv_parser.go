// Package csv implements the CSV parser used to turn one source file into a
// records.Table. Rows with the wrong width or broken quoting are skipped and
// counted instead of failing the whole file.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mfonekpo/springer-capital/pkg/records"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys; a lowercase key
	// also matches. Headers without an entry are normalized with
	// NormalizeHeader.
	HeaderMap map[string]string

	// MaxLoggedSkips caps how many skipped rows are logged individually.
	// Zero means 20.
	MaxLoggedSkips int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt Options
	log *zap.Logger
}

// NewParser constructs a Parser with the provided Options. A nil logger
// disables skip logging.
func NewParser(opt Options, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxLoggedSkips == 0 {
		opt.MaxLoggedSkips = 20
	}
	return &Parser{opt: opt, log: log}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ErrNoHeader is returned when the input has no header row.
var ErrNoHeader = errors.New("csv: missing header row")

// Parse consumes CSV records from r and returns them as a table named name,
// along with the number of rows that were skipped due to parse errors or
// field-count mismatches. Empty cells become nil.
func (p *Parser) Parse(name string, r io.Reader) (records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width is enforced below so bad rows are soft-failed
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err == io.EOF {
		return records.Table{Name: name}, 0, ErrNoHeader
	}
	if err != nil {
		return records.Table{Name: name}, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt)

	out := records.Table{Name: name, Columns: headers}
	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.skip(name, line, &skipped, zap.Error(err))
			continue
		}
		if len(row) != len(headers) {
			p.skip(name, line, &skipped, zap.Int("expected", len(headers)), zap.Int("got", len(row)))
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out.Rows = append(out.Rows, rec)
	}

	return out, skipped, nil
}

func (p *Parser) skip(table string, line int, skipped *int, fields ...zap.Field) {
	if *skipped < p.opt.MaxLoggedSkips {
		fields = append([]zap.Field{zap.String("table", table), zap.Int("line", line)}, fields...)
		p.log.Warn("csv: skipping row", fields...)
	}
	*skipped++
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and NormalizeHeader otherwise. It also strips a UTF-8 BOM from the
// first cell if present. Duplicate names get a numeric suffix.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		name, ok := opt.HeaderMap[c]
		if !ok {
			name, ok = opt.HeaderMap[strings.ToLower(c)]
		}
		if !ok {
			name = NormalizeHeader(c)
		}
		if name == "" {
			name = fmt.Sprintf("col_%d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		res[i] = name
	}
	return res
}

// NormalizeHeader lowercases s, strips accents, and turns spaces into
// underscores: "Referral At" -> "referral_at", "Fecha Creación" ->
// "fecha_creacion".
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ReplaceAll(folded, " ", "_")
}
