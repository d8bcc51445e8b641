package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
)

// sseReader pulls data events off a server-sent-event stream. Blank lines
// and comment lines are skipped, the data prefix is stripped, and the
// gateway's [DONE] sentinel is reported as io.EOF.
type sseReader struct {
	scanner *bufio.Scanner
}

var (
	dataPrefix   = []byte("data:")
	doneSentinel = []byte("[DONE]")
)

func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	// Tool arguments and raw JSON output can push single events well past
	// the default scanner limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseReader{scanner: scanner}
}

// next returns the payload of the next data event. It returns io.EOF when
// the stream ends, at the [DONE] sentinel or at the end of the body.
func (r *sseReader) next(ctx context.Context) (json.RawMessage, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := bytes.TrimSpace(line[len(dataPrefix):])
		if bytes.Equal(payload, doneSentinel) {
			return nil, io.EOF
		}
		// The scanner reuses its buffer on the next Scan.
		return append(json.RawMessage(nil), payload...), nil
	}
}
