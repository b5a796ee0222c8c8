package scenarios

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/provider"
)

const (
	// RenderPipelineName names the render pipeline.
	RenderPipelineName = "render"
	// DefaultFetchDelay is how long fetch_raw takes by default.
	DefaultFetchDelay = time.Second
)

const glyphs = "abcdefg"

// NewRender builds fetch_raw -> decode -> display. The request is the name
// of the source to fetch; display writes the decoded glyphs to out.
func NewRender(out io.Writer, fetchDelay time.Duration, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	fetch := provider.NewFunc("fetch_raw", func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0x00, 0x01}, nil
	}, provider.WithLatency(fetchDelay))

	return pipeline.New(RenderPipelineName, []pipeline.Stage{
		pipeline.FromProvider[string, []byte](fetch),
		pipeline.NewStage("decode", func(_ context.Context, buf []byte) ([]string, error) {
			return Decode(buf), nil
		}),
		pipeline.NewStage("display", func(_ context.Context, decoded []string) ([]string, error) {
			if _, err := fmt.Fprintln(out, decoded); err != nil {
				return nil, fmt.Errorf("display: %w", err)
			}
			return decoded, nil
		}),
	}, opts...)
}

// Decode maps each byte to the glyph at that index. Bytes past the end of
// the table decode to "".
func Decode(buf []byte) []string {
	decoded := make([]string, len(buf))
	for i, b := range buf {
		if int(b) < len(glyphs) {
			decoded[i] = glyphs[b : b+1]
		}
	}
	return decoded
}
