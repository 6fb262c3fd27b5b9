package source

import (
	_ "embed"

	"github.com/kindredtree/kindred/pkg/core/tree"
)

// demoCSV is the bundled sample dataset: three generations of the Whitfield
// and Hartley families. It ships in the binary so the viewer works offline
// and serves as the fallback when a remote dataset cannot be fetched.
//
//go:embed demo.csv
var demoCSV []byte

// DemoURL is the sentinel location for the bundled sample dataset.
const DemoURL = "demo"

// DemoRows decodes the bundled sample dataset. The data is embedded and
// known-good, so decoding cannot fail at runtime.
func DemoRows() []tree.Row {
	rows, err := DecodeRows(demoCSV)
	if err != nil {
		panic("embedded demo dataset is malformed: " + err.Error())
	}
	return rows
}
