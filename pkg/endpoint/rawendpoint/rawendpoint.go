// Package rawendpoint connects the bridge to RAW log files: it replays a
// capture into the CAN adapter frame by frame, and records outbound frames
// back into the same format.
package rawendpoint

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/brutella/can"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/openmarine/nmeabridge/pkg/adapter/canadapter"
)

// FrameHandler receives each frame read from the log.
type FrameHandler interface {
	HandleFrame(can.Frame)
}

// RawEndpoint replays a RAW capture file. The path "-" reads stdin.
type RawEndpoint struct {
	log     *logrus.Logger
	path    string
	handler FrameHandler
}

// NewRawEndpoint creates an endpoint for the given capture file.
func NewRawEndpoint(path string, log *logrus.Logger) *RawEndpoint {
	return &RawEndpoint{log: log, path: path}
}

// SetOutput sets the handler frames are replayed into.
func (r *RawEndpoint) SetOutput(h FrameHandler) {
	r.handler = h
}

// Run reads the capture to the end, handing each frame to the handler.
// Blank lines and lines starting with # are skipped; a malformed line is
// logged and skipped rather than aborting the replay.
func (r *RawEndpoint) Run(ctx context.Context) error {
	var in io.Reader = os.Stdin
	if r.path != "-" {
		file, err := os.Open(r.path)
		if err != nil {
			return errors.Wrap(err, "open raw capture")
		}
		defer file.Close()
		in = file
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		frame, err := canadapter.FrameFromRaw(line)
		if err != nil {
			r.log.WithError(err).Warnf("skipping raw line %q", line)
			continue
		}
		if r.handler != nil {
			r.handler.HandleFrame(*frame)
		}
	}
	return errors.Wrap(scanner.Err(), "read raw capture")
}

// RawWriter records outbound frames as RAW log lines. It satisfies the CAN
// adapter's frame writer.
type RawWriter struct {
	log *logrus.Logger
	out io.Writer
}

// NewRawWriter creates a writer recording to out.
func NewRawWriter(out io.Writer, log *logrus.Logger) *RawWriter {
	return &RawWriter{log: log, out: out}
}

// WriteFrame renders the frame as one RAW line.
func (w *RawWriter) WriteFrame(frame can.Frame) {
	if _, err := io.WriteString(w.out, canadapter.RawFromFrame(frame)); err != nil {
		w.log.WithError(err).Warn("raw frame write failed")
	}
}
