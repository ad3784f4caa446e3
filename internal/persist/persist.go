package persist

import (
	"bufio"
	"fmt"
	"os"

	"github.com/admpjgj/yxip/internal/model"
)

// WriteEndpoints writes one endpoint per line in the order given. The
// file is always produced, so an empty set yields an empty file and
// downstream tooling never special-cases a missing artifact. Non-empty
// output carries a trailing newline.
func WriteEndpoints(path string, eps []model.Endpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for _, e := range eps {
		if _, err := w.WriteString(e.String() + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
