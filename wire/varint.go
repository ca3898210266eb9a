package wire

// MaxVarintLen32 is the longest encoding of a 32-bit varint.
const MaxVarintLen32 = 5

// VarintDecoder handles varint decoding operations
type VarintDecoder struct {
	decoder *Decoder
}

// VarintEncoder handles varint encoding operations
type VarintEncoder struct {
	encoder *Encoder
}

// NewVarintDecoder creates a new varint decoder
func NewVarintDecoder(d *Decoder) *VarintDecoder {
	return &VarintDecoder{decoder: d}
}

// NewVarintEncoder creates a new varint encoder
func NewVarintEncoder(e *Encoder) *VarintEncoder {
	return &VarintEncoder{encoder: e}
}

// DECODER METHODS

// DecodeVarUint decodes an unsigned 32-bit varint. At most five bytes are
// read; the fifth byte ends the value whatever its continuation bit, and bits
// beyond bit 31 are dropped rather than rejected.
func (vd *VarintDecoder) DecodeVarUint() (uint32, error) {
	d := vd.decoder
	var result uint32

	for shift := uint(0); shift < 7*MaxVarintLen32; shift += 7 {
		if d.pos >= d.end {
			return 0, ErrBufferExhausted
		}

		b := d.buf[d.pos]
		d.pos++

		result |= uint32(b&0x7F) << shift

		// If MSB is not set, we're done
		if b&0x80 == 0 {
			break
		}
	}

	return result, nil
}

// DecodeVarInt decodes a zigzag-encoded signed 32-bit varint
func (vd *VarintDecoder) DecodeVarInt() (int32, error) {
	v, err := vd.DecodeVarUint()
	if err != nil {
		return 0, err
	}
	return DecodeZigZag32(v), nil
}

// SkipVarint skips over a varint without decoding it
func (vd *VarintDecoder) SkipVarint() error {
	d := vd.decoder
	for i := 0; i < MaxVarintLen32; i++ {
		if d.pos >= d.end {
			return ErrBufferExhausted
		}

		b := d.buf[d.pos]
		d.pos++

		if b&0x80 == 0 {
			return nil
		}
	}
	return nil
}

// ENCODER METHODS

// EncodeVarUint encodes a uint32 as varint
func (ve *VarintEncoder) EncodeVarUint(v uint32) {
	for v >= 0x80 {
		ve.encoder.buf = append(ve.encoder.buf, byte(v)|0x80)
		v >>= 7
	}
	ve.encoder.buf = append(ve.encoder.buf, byte(v))
}

// EncodeVarInt encodes a signed int32 with zigzag encoding
func (ve *VarintEncoder) EncodeVarInt(v int32) {
	ve.EncodeVarUint(EncodeZigZag32(v))
}

// UTILITY FUNCTIONS

// DecodeZigZag32 decodes a zigzag-encoded 32-bit integer
func DecodeZigZag32(encoded uint32) int32 {
	return int32(encoded>>1) ^ -int32(encoded&1)
}

// EncodeZigZag32 encodes a signed 32-bit integer using zigzag encoding
func EncodeZigZag32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// VarUintSize returns the number of bytes needed to encode the given varint
func VarUintSize(v uint32) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	default:
		return 5
	}
}
