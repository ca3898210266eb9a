package wire

import (
	"math"
)

// FloatDecoder handles the variable-length float decoding operations
type FloatDecoder struct {
	decoder *Decoder
}

// FloatEncoder handles the variable-length float encoding operations
type FloatEncoder struct {
	encoder *Encoder
}

// NewFloatDecoder creates a new float decoder
func NewFloatDecoder(d *Decoder) *FloatDecoder {
	return &FloatDecoder{decoder: d}
}

// NewFloatEncoder creates a new float encoder
func NewFloatEncoder(e *Encoder) *FloatEncoder {
	return &FloatEncoder{encoder: e}
}

// DECODER METHODS

// DecodeVarFloat decodes a float32. A leading zero byte is 0.0; anything
// else is the first of four little-endian bytes holding the bit pattern with
// the exponent rotated into the low byte.
func (fd *FloatDecoder) DecodeVarFloat() (float32, error) {
	d := fd.decoder
	if d.pos >= d.end {
		return 0, ErrBufferExhausted
	}

	first := d.buf[d.pos]
	if first == 0 {
		d.pos++
		return 0, nil
	}

	if d.end-d.pos < 4 {
		return 0, ErrBufferExhausted
	}

	bits := uint32(first) |
		uint32(d.buf[d.pos+1])<<8 |
		uint32(d.buf[d.pos+2])<<16 |
		uint32(d.buf[d.pos+3])<<24
	d.pos += 4

	// Move the exponent back into place
	bits = bits<<23 | bits>>9

	return math.Float32frombits(bits), nil
}

// SkipVarFloat skips over a float without decoding it
func (fd *FloatDecoder) SkipVarFloat() error {
	d := fd.decoder
	if d.pos >= d.end {
		return ErrBufferExhausted
	}
	if d.buf[d.pos] == 0 {
		d.pos++
		return nil
	}
	return d.Skip(4)
}

// ENCODER METHODS

// EncodeVarFloat encodes a float32. Zero and denormals (exponent bits all
// zero) take a single byte.
func (fe *FloatEncoder) EncodeVarFloat(v float32) {
	bits := math.Float32bits(v)

	// Move the exponent to the first 8 bits
	bits = bits>>23 | bits<<9

	if bits&0xFF == 0 {
		fe.encoder.buf = append(fe.encoder.buf, 0)
		return
	}

	fe.encoder.buf = append(fe.encoder.buf,
		byte(bits),
		byte(bits>>8),
		byte(bits>>16),
		byte(bits>>24),
	)
}

// UTILITY FUNCTIONS

// VarFloatSize returns the encoded size of v, either 1 or 4 bytes.
func VarFloatSize(v float32) int {
	if math.Float32bits(v)>>23&0xFF == 0 {
		return 1
	}
	return 4
}
