package importer

import (
	"io"

	"github.com/MrJamesThe3rd/fynance/internal/transaction"
)

type Format string

const (
	FormatHousehold Format = "household"
)

// Row is one parsed line. CategoryName is empty when the file has no category column.
type Row struct {
	Params       transaction.CreateParams
	CategoryName string
}

type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}
