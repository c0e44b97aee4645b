package export

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// CountPages returns the page count of a PDF, or 0 when it cannot be read.
func CountPages(data []byte) (n int) {
	if len(data) == 0 {
		return 0
	}
	// The reader panics on some malformed inputs.
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
