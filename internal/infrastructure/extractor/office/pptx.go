package office

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

const pptxSlidePathPrefix = "ppt/slides/slide"

// atTag matches <a:t>text</a:t> including variants carrying attributes.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX extracts text from .pptx bytes by walking every
// ppt/slides/slideN.xml entry and collecting its <a:t> text nodes.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("pptx: not a zip: %w", err)
	}

	var buf strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("pptx: open %s: %w", f.Name, err)
		}
		var slideBuf bytes.Buffer
		if _, err := slideBuf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return "", fmt.Errorf("pptx: read %s: %w", f.Name, err)
		}
		_ = rc.Close()

		for _, p := range atTag.FindAllStringSubmatch(slideBuf.String(), -1) {
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
