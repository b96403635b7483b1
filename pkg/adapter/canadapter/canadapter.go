// Package canadapter sits between the CAN bus and the conversion engine:
// inbound it turns 8-byte CAN frames into complete PGN payloads, reassembling
// fast packets on the way; outbound it splits PGN payloads back into frames.
package canadapter

import (
	"github.com/brutella/can"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// PGNHandler receives each complete inbound PGN.
type PGNHandler interface {
	HandlePGN(pgn.PGNData)
}

// FrameWriter receives each outbound CAN frame.
type FrameWriter interface {
	WriteFrame(can.Frame)
}

// CANAdapter converts between CAN frames and PGN payloads in both
// directions. It is not safe for concurrent use; the bridge runs one adapter
// per bus.
type CANAdapter struct {
	multi *MultiBuilder
	log   *logrus.Logger

	handler     PGNHandler
	frameWriter FrameWriter
	seqIDs      map[uint8]map[uint32]uint8 // source -> PGN -> last sequence counter
}

// NewCANAdapter creates an adapter with an empty fast-packet reassembler.
func NewCANAdapter(log *logrus.Logger) *CANAdapter {
	return &CANAdapter{
		multi:  NewMultiBuilder(log),
		log:    log,
		seqIDs: make(map[uint8]map[uint32]uint8),
	}
}

// SetOutput assigns the handler for complete inbound PGNs.
func (c *CANAdapter) SetOutput(h PGNHandler) {
	c.handler = h
}

// SetWriter assigns the sink for outbound frames.
func (c *CANAdapter) SetWriter(w FrameWriter) {
	c.frameWriter = w
}

// HandleFrame feeds one inbound frame through the adapter. Single-frame
// PGNs emit immediately; fast-packet PGNs emit once their sequence
// completes.
func (c *CANAdapter) HandleFrame(f can.Frame) {
	h := DecodeCANID(f.ID)

	if pgn.IsFast(h.PGN) {
		payload, done := c.multi.Add(h, f.Data)
		if !done {
			return
		}
		c.emit(h, payload)
		return
	}

	length := int(f.Length)
	if length > len(f.Data) {
		length = len(f.Data)
	}
	c.emit(h, append([]byte(nil), f.Data[:length]...))
}

func (c *CANAdapter) emit(h FrameHeader, payload []byte) {
	if c.handler == nil {
		return
	}
	c.handler.HandlePGN(pgn.PGNData{
		PGN:         h.PGN,
		Source:      h.Source,
		Destination: h.Destination,
		Priority:    h.Priority,
		Data:        payload,
		Timestamp:   h.Timestamp,
	})
}

// WritePGN splits a PGN into frames and hands them to the frame writer.
// Fast-packet PGNs get a fresh sequence counter per sender and PGN.
func (c *CANAdapter) WritePGN(d pgn.PGNData) error {
	if err := d.Validate(); err != nil {
		return err
	}
	id := CANIDFromHeader(FrameHeader{
		Source:      d.Source,
		PGN:         d.PGN,
		Priority:    d.Priority,
		Destination: d.Destination,
	})
	if pgn.IsFast(d.PGN) {
		return c.writeFast(d.Source, d.PGN, id, d.Data)
	}
	return c.writeSingle(id, d.Data)
}

func (c *CANAdapter) writeSingle(id uint32, data []byte) error {
	if len(data) > can.MaxFrameDataLength {
		return errors.Errorf("single-frame PGN carries %d bytes, max is %d", len(data), can.MaxFrameDataLength)
	}
	frame := can.Frame{ID: id, Length: uint8(len(data))}
	copy(frame.Data[:], data)
	for i := len(data); i < can.MaxFrameDataLength; i++ {
		frame.Data[i] = 0xFF
	}
	c.write(frame)
	return nil
}

func (c *CANAdapter) writeFast(source uint8, pgnNum uint32, id uint32, data []byte) error {
	if len(data) > pgn.FastPacketMaxSize {
		return errors.Errorf("fast PGN carries %d bytes, max is %d", len(data), pgn.FastPacketMaxSize)
	}
	seqID := c.nextSeqID(source, pgnNum)

	index := 0
	for frameNum := uint8(0); index < len(data) || frameNum == 0; frameNum++ {
		frame := can.Frame{ID: id, Length: can.MaxFrameDataLength}
		frame.Data[0] = seqID<<5 | frameNum
		offset := 1
		if frameNum == 0 {
			frame.Data[1] = uint8(len(data))
			offset = 2
		}
		for ; offset < can.MaxFrameDataLength; offset++ {
			if index < len(data) {
				frame.Data[offset] = data[index]
				index++
			} else {
				frame.Data[offset] = 0xFF
			}
		}
		c.write(frame)
	}
	return nil
}

// nextSeqID rotates the 3-bit fast-packet sequence counter for one sender
// and PGN.
func (c *CANAdapter) nextSeqID(source uint8, pgnNum uint32) uint8 {
	if _, ok := c.seqIDs[source]; !ok {
		c.seqIDs[source] = make(map[uint32]uint8)
	}
	seqID := c.seqIDs[source][pgnNum]
	c.seqIDs[source][pgnNum] = (seqID + 1) % 8
	return seqID
}

func (c *CANAdapter) write(frame can.Frame) {
	if c.frameWriter != nil {
		c.frameWriter.WriteFrame(frame)
	}
}
