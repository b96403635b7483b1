// Package nmea0183 implements the NMEA 0183 checksum and sentence envelope.
// A sentence on the wire is "$" + body + "*" + two uppercase hex digits,
// where the checksum is the XOR of every body byte. Line termination (CRLF)
// is left to the transport writing the sentence out.
package nmea0183

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformed reports input that does not match the $<body>*HH structure.
var ErrMalformed = errors.New("malformed nmea 0183 sentence")

// Checksum returns the XOR of every byte in body. The body is the sentence
// contents between "$" and "*", exclusive of both.
func Checksum(body []byte) byte {
	var sum byte
	for _, b := range body {
		sum ^= b
	}
	return sum
}

// Frame wraps body in the $...*HH envelope, rendering the checksum as two
// uppercase, zero-padded hex digits.
func Frame(body string) string {
	return fmt.Sprintf("$%s*%02X", body, Checksum([]byte(body)))
}

// Parse splits a framed sentence into its body and trailing checksum byte.
// It fails with ErrMalformed when the envelope structure is wrong; it does
// not verify that the checksum matches the body.
func Parse(sentence string) (body string, sum byte, err error) {
	// shortest valid sentence is "$*HH"
	if len(sentence) < 4 || sentence[0] != '$' {
		return "", 0, errors.Wrapf(ErrMalformed, "%q", sentence)
	}
	star := strings.LastIndexByte(sentence, '*')
	if star < 1 || len(sentence)-star != 3 {
		return "", 0, errors.Wrapf(ErrMalformed, "%q", sentence)
	}
	v, perr := strconv.ParseUint(sentence[star+1:], 16, 8)
	if perr != nil {
		return "", 0, errors.Wrapf(ErrMalformed, "%q", sentence)
	}
	return sentence[1:star], byte(v), nil
}

// Verify recomputes the checksum over the extracted body and compares it,
// case-insensitively, to the trailing field.
func Verify(sentence string) bool {
	body, sum, err := Parse(sentence)
	if err != nil {
		return false
	}
	return Checksum([]byte(body)) == sum
}

// Fields splits a sentence body on commas. The first element is the combined
// talker and sentence type tag.
func Fields(body string) []string {
	return strings.Split(body, ",")
}
