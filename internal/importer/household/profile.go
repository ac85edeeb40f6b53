package household

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned means one amount column; a type column or the sign decides the type.
	amountSigned amountMode = iota
	// amountSplit means separate debit and credit columns, as in bank statements.
	amountSplit
)

// Profile describes the column layout of a supported CSV export.
// Column names are matched case-insensitively.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	TypeCol    string // optional
	CatCol     string // optional
	AddedByCol string // optional
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSigned
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:       "fynance",
		DateCol:    "date",
		DescCol:    "description",
		TypeCol:    "type",
		CatCol:     "category",
		AddedByCol: "added by",
		AmountMode: amountSigned,
		AmountCol:  "amount",
	},
	{
		Name:       "catatan",
		DateCol:    "tanggal",
		DescCol:    "keterangan",
		TypeCol:    "jenis",
		CatCol:     "kategori",
		AddedByCol: "oleh",
		AmountMode: amountSigned,
		AmountCol:  "jumlah",
	},
	{
		Name:       "mutasi",
		DateCol:    "tanggal",
		DescCol:    "keterangan",
		AmountMode: amountSplit,
		DebitCol:   "debit",
		CreditCol:  "kredit",
	},
}
