package csvio

import (
	"bufio"
	"io"
)

// skipBOM wraps r so a leading UTF-8 BOM (0xEF 0xBB 0xBF), commonly
// added by Windows tools, is not seen by the CSV decoder.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(3)
	if err == nil && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		br.Discard(3)
	}
	return br
}
