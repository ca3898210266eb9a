package wire

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// BytesDecoder handles string and byte-array decoding operations
type BytesDecoder struct {
	decoder *Decoder
}

// BytesEncoder handles string and byte-array encoding operations
type BytesEncoder struct {
	encoder *Encoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(d *Decoder) *BytesDecoder {
	return &BytesDecoder{decoder: d}
}

// NewBytesEncoder creates a new bytes encoder
func NewBytesEncoder(e *Encoder) *BytesEncoder {
	return &BytesEncoder{encoder: e}
}

// DECODER METHODS

// DecodeStringRaw returns the bytes of a NUL-terminated string without the
// terminator. The slice shares the decoder's buffer.
func (bd *BytesDecoder) DecodeStringRaw() ([]byte, error) {
	d := bd.decoder
	n := bytes.IndexByte(d.buf[d.pos:d.end], 0)
	if n < 0 {
		return nil, ErrBufferExhausted
	}

	data := d.buf[d.pos : d.pos+n]
	d.pos += n + 1
	return data, nil
}

// DecodeString decodes a NUL-terminated string and fails on invalid UTF-8
func (bd *BytesDecoder) DecodeString() (string, error) {
	start := bd.decoder.pos
	raw, err := bd.DecodeStringRaw()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w at offset %d", ErrInvalidUTF8, start)
	}
	return string(raw), nil
}

// DecodeStringLossy decodes a NUL-terminated string, replacing invalid
// UTF-8 sequences with U+FFFD
func (bd *BytesDecoder) DecodeStringLossy() (string, error) {
	raw, err := bd.DecodeStringRaw()
	if err != nil {
		return "", err
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), nil
}

// SkipString skips over a string without validating it
func (bd *BytesDecoder) SkipString() error {
	_, err := bd.DecodeStringRaw()
	return err
}

// DecodeByteArrayRaw decodes a length-prefixed byte run without copying
// (shares buffer)
func (bd *BytesDecoder) DecodeByteArrayRaw() ([]byte, error) {
	length, err := NewVarintDecoder(bd.decoder).DecodeVarUint()
	if err != nil {
		return nil, err
	}

	d := bd.decoder
	if uint64(length) > uint64(d.end-d.pos) {
		return nil, fmt.Errorf("%w: byte array needs %d bytes, have %d", ErrBufferExhausted, length, d.end-d.pos)
	}

	data := d.buf[d.pos : d.pos+int(length)]
	d.pos += int(length)
	return data, nil
}

// DecodeByteArray decodes a length-prefixed byte run
func (bd *BytesDecoder) DecodeByteArray() ([]byte, error) {
	raw, err := bd.DecodeByteArrayRaw()
	if err != nil {
		return nil, err
	}

	// Copy the data to avoid sharing the underlying buffer
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// SkipByteArray skips over a length-prefixed byte run
func (bd *BytesDecoder) SkipByteArray() error {
	_, err := bd.DecodeByteArrayRaw()
	return err
}

// ENCODER METHODS

// EncodeString writes s followed by a NUL byte. s must not contain NUL;
// this is not checked.
func (be *BytesEncoder) EncodeString(s string) {
	be.encoder.buf = append(be.encoder.buf, s...)
	be.encoder.buf = append(be.encoder.buf, 0)
}

// EncodeByteArray encodes a byte run with a varuint length prefix
func (be *BytesEncoder) EncodeByteArray(data []byte) {
	NewVarintEncoder(be.encoder).EncodeVarUint(uint32(len(data)))
	be.encoder.buf = append(be.encoder.buf, data...)
}

// UTILITY FUNCTIONS

// StringSize returns the encoded size of s
func StringSize(s string) int {
	return len(s) + 1
}

// ByteArraySize returns the encoded size of data
func ByteArraySize(data []byte) int {
	return VarUintSize(uint32(len(data))) + len(data)
}
