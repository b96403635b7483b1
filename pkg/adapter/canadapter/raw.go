package canadapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brutella/can"
	"github.com/pkg/errors"
)

// RAW log lines as written by Actisense-style logging tools:
// timestamp,priority,pgn,source,destination,length,b0,..,b7 with decimal
// header fields and hex data bytes.

const rawTimeLayout = "2006-01-02T15:04:05Z"

// FrameFromRaw parses one RAW log line into a CAN frame.
func FrameFromRaw(line string) (*can.Frame, error) {
	elems := strings.Split(strings.TrimSpace(line), ",")
	if len(elems) < 6 {
		return nil, errors.Errorf("raw line has %d fields, need at least 6", len(elems))
	}

	priority, err := strconv.ParseUint(elems[1], 10, 8)
	if err != nil {
		return nil, errors.Wrap(err, "raw priority")
	}
	pgnNum, err := strconv.ParseUint(elems[2], 10, 32)
	if err != nil {
		return nil, errors.Wrap(err, "raw pgn")
	}
	source, err := strconv.ParseUint(elems[3], 10, 8)
	if err != nil {
		return nil, errors.Wrap(err, "raw source")
	}
	destination, err := strconv.ParseUint(elems[4], 10, 8)
	if err != nil {
		return nil, errors.Wrap(err, "raw destination")
	}
	length, err := strconv.ParseUint(elems[5], 10, 8)
	if err != nil {
		return nil, errors.Wrap(err, "raw length")
	}
	if length > can.MaxFrameDataLength {
		return nil, errors.Errorf("raw frame length %d exceeds %d", length, can.MaxFrameDataLength)
	}
	if int(length) > len(elems)-6 {
		return nil, errors.Errorf("raw frame announces %d data bytes but carries %d", length, len(elems)-6)
	}

	frame := &can.Frame{
		ID: CANIDFromHeader(FrameHeader{
			Source:      uint8(source),
			PGN:         uint32(pgnNum),
			Priority:    uint8(priority),
			Destination: uint8(destination),
		}),
		Length: uint8(length),
	}
	for i := 0; i < int(length); i++ {
		b, err := strconv.ParseUint(elems[i+6], 16, 8)
		if err != nil {
			return nil, errors.Wrapf(err, "raw data byte %d", i)
		}
		frame.Data[i] = uint8(b)
	}
	return frame, nil
}

// RawFromFrame renders a CAN frame as one RAW log line, newline included.
func RawFromFrame(f can.Frame) string {
	h := DecodeCANID(f.ID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s,%d,%d,%d,%d,%d",
		h.Timestamp.UTC().Format(rawTimeLayout), h.Priority, h.PGN, h.Source, h.Destination, f.Length)
	for i := 0; i < int(f.Length); i++ {
		fmt.Fprintf(&sb, ",%02x", f.Data[i])
	}
	sb.WriteByte('\n')
	return sb.String()
}
