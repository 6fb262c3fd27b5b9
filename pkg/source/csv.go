package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"

	"github.com/kindredtree/kindred/pkg/core/tree"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
)

// DecodeRows parses CSV dataset bytes into raw rows keyed by canonical
// column name. The first record is the header; headers are trimmed,
// lower-cased, and alias-resolved (see [tree.CanonicalColumn]). Records
// shorter than the header are padded with empty values, which tolerates
// trailing-comma omissions in hand-edited exports.
func DecodeRows(data []byte) ([]tree.Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows handled below
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, kerrors.New(kerrors.ErrCodeInvalidDataset, "dataset is empty")
	}
	if err != nil {
		return nil, decodeError(err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = tree.CanonicalColumn(h)
	}

	var rows []tree.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, decodeError(err)
		}

		row := make(tree.Row, len(columns))
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeError maps csv parse errors to coded errors, keeping the line
// number the csv reader reports.
func decodeError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "malformed CSV at line %d", perr.Line)
	}
	return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "malformed CSV")
}
