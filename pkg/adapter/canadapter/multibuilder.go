package canadapter

import (
	"github.com/sirupsen/logrus"

	"github.com/openmarine/nmeabridge/pkg/pgn"
)

// sequence tracks one in-flight fast-packet transmission from a single
// sender.
type sequence struct {
	seqID     uint8
	expected  uint8 // next frame number
	remaining int
	data      []byte
}

// MultiBuilder reassembles fast-packet PGNs from their 8-byte CAN frames.
// Frame 0 of a transmission carries the sequence counter, the total payload
// length and the first 6 bytes; consecutive frames carry 7 bytes each.
// Sequences are keyed by sender and PGN, so interleaved transmissions from
// different devices assemble independently.
type MultiBuilder struct {
	log  *logrus.Logger
	seqs map[uint8]map[uint32]*sequence
}

// NewMultiBuilder creates an empty reassembler.
func NewMultiBuilder(log *logrus.Logger) *MultiBuilder {
	return &MultiBuilder{
		log:  log,
		seqs: make(map[uint8]map[uint32]*sequence),
	}
}

// Add feeds one frame into the reassembler. It returns the complete payload
// and true when the frame finishes its sequence. A frame that restarts a
// sequence (new sequence counter, or frame 0 again) discards the old state;
// a gap in frame numbers drops the sequence and waits for the next frame 0.
func (m *MultiBuilder) Add(h FrameHeader, frame [8]byte) ([]byte, bool) {
	seqID := frame[0] >> 5
	frameNum := frame[0] & 0x1F

	byPGN, ok := m.seqs[h.Source]
	if !ok {
		byPGN = make(map[uint32]*sequence)
		m.seqs[h.Source] = byPGN
	}
	seq := byPGN[h.PGN]

	if frameNum == 0 {
		total := int(frame[1])
		if total > pgn.FastPacketMaxSize {
			m.log.WithFields(logrus.Fields{"pgn": h.PGN, "source": h.Source, "length": total}).
				Warn("fast packet announces oversized payload, dropping")
			delete(byPGN, h.PGN)
			return nil, false
		}
		seq = &sequence{
			seqID:     seqID,
			expected:  1,
			remaining: total,
			data:      make([]byte, 0, total),
		}
		byPGN[h.PGN] = seq
		seq.take(frame[2:])
		return m.finish(byPGN, h.PGN, seq)
	}

	if seq == nil || seq.seqID != seqID || seq.expected != frameNum {
		// Missed the start or a middle frame. Nothing to salvage.
		delete(byPGN, h.PGN)
		return nil, false
	}
	seq.expected++
	seq.take(frame[1:])
	return m.finish(byPGN, h.PGN, seq)
}

func (s *sequence) take(chunk []byte) {
	n := len(chunk)
	if n > s.remaining {
		n = s.remaining
	}
	s.data = append(s.data, chunk[:n]...)
	s.remaining -= n
}

func (m *MultiBuilder) finish(byPGN map[uint32]*sequence, p uint32, seq *sequence) ([]byte, bool) {
	if seq.remaining > 0 {
		return nil, false
	}
	delete(byPGN, p)
	return seq.data, true
}
