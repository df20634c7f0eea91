package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
)

// NewFromFiles builds a store seeded from optional newline-delimited
// files under base: seed_categories.txt and seed_payees.txt. Missing
// files fall back to a small default taxonomy so the demo backend is
// usable out of the box.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	payees := readLines(filepath.Join(base, "seed_payees.txt"))
	if len(cats) == 0 {
		cats = []string{"Food", "Housing", "Transport", "Entertainment"}
	}

	s := New()
	ctx := context.Background()
	for _, name := range cats {
		_, _ = s.CreateCategory(ctx, name, "")
	}
	for _, name := range payees {
		_, _ = s.CreatePayee(ctx, name)
	}
	return s
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}
