package rasterize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// pageNumberFromName extracts the page number a rasterization tool embedded
// in a generated filename. The first run of digits in the base name is the
// page number; a name without digits violates the rasterizer contract and is
// rejected rather than guessed at.
func pageNumberFromName(path string) (int, error) {
	base := filepath.Base(path)
	digits := digitRun.FindString(base)
	if digits == "" {
		return 0, fmt.Errorf("image filename %q carries no page number", base)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("image filename %q: %w", base, err)
	}
	return n, nil
}

// orderPages sorts generated image files numerically by their embedded page
// number and assigns 0-based indices. The sort must be numeric: a lexical
// sort puts page 10 before page 2.
func orderPages(paths []string) ([]PageImage, error) {
	type numbered struct {
		num  int
		path string
	}
	pages := make([]numbered, 0, len(paths))
	for _, p := range paths {
		n, err := pageNumberFromName(p)
		if err != nil {
			return nil, err
		}
		pages = append(pages, numbered{num: n, path: p})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	ordered := make([]PageImage, len(pages))
	for i, p := range pages {
		ordered[i] = PageImage{Index: i, Path: p.path}
	}
	return ordered, nil
}
