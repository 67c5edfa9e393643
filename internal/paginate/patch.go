package paginate

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
)

const (
	nextLinkStart = "<!-- PAGINATION_NEXT_LINK_START -->"
	nextLinkEnd   = "<!-- PAGINATION_NEXT_LINK_END -->"
)

var lastPageClassPattern = regexp.MustCompile(`(class="page-nav-link next)\s+last-page(")`)

// EnableNextLinkOnPreviousPage strips the "last-page" class from page
// pageNumber's in-place Next link once a following page is discovered
// to exist, so what used to be the final page gains a working forward
// link without a full re-render. It is a no-op (false, nil) when
// pageNumber is not positive, the file does not exist, or the link is
// already visible.
func EnableNextLinkOnPreviousPage(outputDir string, pageNumber int, ext string) (bool, error) {
	if pageNumber <= 0 {
		return false, nil
	}
	path := outputDir + "/" + PageOutputPath(pageNumber, ext)
	contents, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read page %d: %w", pageNumber, err)
	}

	startIdx := bytes.Index(contents, []byte(nextLinkStart))
	endIdx := bytes.Index(contents, []byte(nextLinkEnd))
	if startIdx < 0 || endIdx < 0 || endIdx < startIdx {
		return false, nil
	}

	block := contents[startIdx:endIdx]
	if !lastPageClassPattern.Match(block) {
		return false, nil
	}
	patched := lastPageClassPattern.ReplaceAll(block, []byte("$1$2"))

	out := make([]byte, 0, len(contents))
	out = append(out, contents[:startIdx]...)
	out = append(out, patched...)
	out = append(out, contents[endIdx:]...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("write page %d: %w", pageNumber, err)
	}
	return true, nil
}
