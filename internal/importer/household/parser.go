package household

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/fynance/internal/encoding"
	"github.com/MrJamesThe3rd/fynance/internal/importer"
	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"02/01/06",
}

var typeWords = map[string]transaction.Type{
	"income":      transaction.TypeIncome,
	"pemasukan":   transaction.TypeIncome,
	"masuk":       transaction.TypeIncome,
	"kredit":      transaction.TypeIncome,
	"cr":          transaction.TypeIncome,
	"expense":     transaction.TypeExpense,
	"pengeluaran": transaction.TypeExpense,
	"keluar":      transaction.TypeExpense,
	"debit":       transaction.TypeExpense,
	"db":          transaction.TypeExpense,
}

// Parser reads household CSV exports. It detects the separator and which
// layout is in use by matching header names against known profiles.
type Parser struct {
	loc *time.Location
}

// NewParser interprets dates in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) ([]importer.Row, error) {
	decoded, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("decoding household csv", "charset", decoded.Charset, "bom", decoded.BOM)

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = detectComma(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching format found: expected date and amount columns (date/tanggal, amount/jumlah or debit/kredit)")
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:]), nil
}

// detectComma picks ';' when the first non-empty line has more of them than commas.
func detectComma(data string) rune {
	for line := range strings.SplitSeq(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}

		return ','
	}

	return ','
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows with an unparseable date or amount; footers and
// balance lines are common in exported statements.
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string) []importer.Row {
	var out []importer.Row

	for _, row := range rows {
		date, ok := p.parseDate(cellValue(row, cols.get(prof.DateCol)))
		if !ok {
			continue
		}

		amount, txType, ok := parseAmount(prof, cols, row)
		if !ok {
			continue
		}

		out = append(out, importer.Row{
			Params: transaction.CreateParams{
				Amount:      amount,
				Type:        txType,
				Description: cellValue(row, cols.get(prof.DescCol)),
				Date:        date,
				AddedBy:     cellValue(row, cols.get(prof.AddedByCol)),
			},
			CategoryName: cellValue(row, cols.get(prof.CatCol)),
		})
	}

	return out
}

func (p *Parser) parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, p.loc)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseAmount(p *Profile, cols colIndex, row []string) (int64, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSigned:
		return parseTypedAmount(cellValue(row, cols.get(p.AmountCol)), cellValue(row, cols.get(p.TypeCol)))
	case amountSplit:
		return parseSplitAmount(row, cols.get(p.DebitCol), cols.get(p.CreditCol))
	}

	return 0, "", false
}

// parseTypedAmount uses the type column when it is recognised and the sign
// of the amount otherwise.
func parseTypedAmount(amountStr, typeStr string) (int64, transaction.Type, bool) {
	if amountStr == "" {
		return 0, "", false
	}

	amount, err := parseSignedAmount(amountStr)
	if err != nil || amount == 0 {
		return 0, "", false
	}

	if t, ok := typeWords[strings.ToLower(typeStr)]; ok {
		return abs(amount), t, true
	}

	if amount < 0 {
		return -amount, transaction.TypeExpense, true
	}

	return amount, transaction.TypeIncome, true
}

func parseSplitAmount(row []string, debitIdx, creditIdx int) (int64, transaction.Type, bool) {
	if s := cellValue(row, debitIdx); s != "" {
		amount, err := parseSignedAmount(s)
		if err == nil && amount != 0 {
			return abs(amount), transaction.TypeExpense, true
		}
	}

	if s := cellValue(row, creditIdx); s != "" {
		amount, err := parseSignedAmount(s)
		if err == nil && amount != 0 {
			return abs(amount), transaction.TypeIncome, true
		}
	}

	return 0, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
