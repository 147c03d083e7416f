package ai

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
)

// ErrStreamInterrupted reports an upstream connection that closed before the
// sentinel frame arrived. The partial reply must not be committed.
var ErrStreamInterrupted = errors.New("upstream stream interrupted before completion")

const (
	framePrefix   = "data: "
	sentinelFrame = "[DONE]"
)

// completionChunk is the payload of one upstream frame.
type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// frameDecoder incrementally parses the provider's event-stream framing: one
// `data: {json}` frame per line, terminated by the `data: [DONE]` sentinel.
// Frames split across network reads are reassembled by the buffered reader;
// malformed frames are logged and skipped, never escalated.
type frameDecoder struct {
	reader    *bufio.Reader
	done      bool
	truncated bool
	malformed int
}

func newFrameDecoder(r io.Reader) *frameDecoder {
	return &frameDecoder{reader: bufio.NewReader(r)}
}

// Next returns the next non-empty content delta. It returns io.EOF after the
// sentinel frame and ErrStreamInterrupted if the reader ends without one.
func (d *frameDecoder) Next() (string, error) {
	for {
		if d.done {
			return "", io.EOF
		}
		if d.truncated {
			return "", ErrStreamInterrupted
		}

		line, err := d.reader.ReadString('\n')
		if err != nil {
			d.truncated = true
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: %v", ErrStreamInterrupted, err)
			}
		}

		delta, ok := d.decodeFrame(line)
		if d.done {
			return "", io.EOF
		}
		if ok {
			return delta, nil
		}
	}
}

// decodeFrame handles one raw line: blank keep-alives and unknown prefixes are
// ignored, the sentinel flips the decoder into its terminal state, and any
// other payload is parsed for a content delta.
func (d *frameDecoder) decodeFrame(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", false
	}

	payload, found := strings.CutPrefix(line, framePrefix)
	if !found {
		return "", false
	}

	if payload == sentinelFrame {
		d.done = true
		return "", false
	}

	var chunk completionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		d.malformed++
		log.Printf("[upstream] skipping malformed frame: %v", err)
		return "", false
	}

	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}
