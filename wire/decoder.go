package wire

import "fmt"

// Decoder is a bounds-checked read cursor over an immutable byte slice.
// Every read either advances the cursor or returns an error; nothing panics
// on short input.
type Decoder struct {
	buf []byte
	pos int
	end int // exclusive read limit, lowered temporarily by ReadLen
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
		end: len(data),
	}
}

// Data returns the full underlying slice.
func (d *Decoder) Data() []byte {
	return d.buf
}

// Pos returns the current read offset into Data.
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the number of bytes left before the current limit.
func (d *Decoder) Remaining() int {
	return d.end - d.pos
}

// Done reports whether the cursor has reached the current limit.
func (d *Decoder) Done() bool {
	return d.pos >= d.end
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= d.end {
		return 0, ErrBufferExhausted
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadBool reads a byte that must be exactly 0 or 1.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrInvalidBoolean, b)
	}
}

// ReadBytes returns the next n bytes without copying. The slice aliases the
// decoder's input.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > d.end-d.pos {
		return nil, ErrBufferExhausted
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes.
func (d *Decoder) Skip(n int) error {
	if n < 0 || n > d.end-d.pos {
		return ErrBufferExhausted
	}
	d.pos += n
	return nil
}

// ReadLen runs fn with the readable range clamped to the next n bytes, then
// restores the outer limit. fn must consume the whole range.
func (d *Decoder) ReadLen(n int, fn func(*Decoder) error) error {
	if n < 0 || n > d.end-d.pos {
		return ErrBufferExhausted
	}
	outer := d.end
	d.end = d.pos + n
	err := fn(d)
	consumed := d.pos >= d.end
	d.end = outer
	if err != nil {
		return err
	}
	if !consumed {
		return ErrLengthMismatch
	}
	return nil
}

// ReadVarInt - convenience method for main decoder
func (d *Decoder) ReadVarInt() (int32, error) {
	return NewVarintDecoder(d).DecodeVarInt()
}

// ReadVarUint - convenience method for main decoder
func (d *Decoder) ReadVarUint() (uint32, error) {
	return NewVarintDecoder(d).DecodeVarUint()
}

// ReadVarFloat - convenience method for main decoder
func (d *Decoder) ReadVarFloat() (float32, error) {
	return NewFloatDecoder(d).DecodeVarFloat()
}

// ReadString - convenience method for main decoder
func (d *Decoder) ReadString() (string, error) {
	return NewBytesDecoder(d).DecodeString()
}

// ReadStringLossy - convenience method for main decoder
func (d *Decoder) ReadStringLossy() (string, error) {
	return NewBytesDecoder(d).DecodeStringLossy()
}

// ReadByteArray - convenience method for main decoder
func (d *Decoder) ReadByteArray() ([]byte, error) {
	return NewBytesDecoder(d).DecodeByteArray()
}

// ReadStringRaw returns the string bytes without the terminator or any UTF-8
// check. The slice aliases the decoder's input.
func (d *Decoder) ReadStringRaw() ([]byte, error) {
	return NewBytesDecoder(d).DecodeStringRaw()
}

// ReadByteArrayRaw returns a length-prefixed byte run without copying.
func (d *Decoder) ReadByteArrayRaw() ([]byte, error) {
	return NewBytesDecoder(d).DecodeByteArrayRaw()
}
