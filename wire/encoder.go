package wire

// Encoder is an append-only buffer for the Kiwi wire format. Writes never
// fail; the buffer grows as needed.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// NewEncoderBuffer creates an encoder that appends to buf
func NewEncoderBuffer(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// WriteByte appends a single byte. It always returns nil; the error result
// satisfies io.ByteWriter.
func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

// WriteBool appends 1 for true and 0 for false
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

// WriteBytes appends raw bytes with no length prefix
func (e *Encoder) WriteBytes(data []byte) {
	e.buf = append(e.buf, data...)
}

// WriteLen writes the output of fn prefixed with its varuint length.
func (e *Encoder) WriteLen(fn func(*Encoder)) {
	nested := NewEncoder()
	fn(nested)
	e.WriteVarUint(uint32(nested.Len()))
	e.buf = append(e.buf, nested.buf...)
}

// WriteVarUint - convenience method for main encoder
func (e *Encoder) WriteVarUint(v uint32) {
	NewVarintEncoder(e).EncodeVarUint(v)
}

// WriteVarInt - convenience method for main encoder
func (e *Encoder) WriteVarInt(v int32) {
	NewVarintEncoder(e).EncodeVarInt(v)
}

// WriteVarFloat - convenience method for main encoder
func (e *Encoder) WriteVarFloat(v float32) {
	NewFloatEncoder(e).EncodeVarFloat(v)
}

// WriteString - convenience method for main encoder
func (e *Encoder) WriteString(s string) {
	NewBytesEncoder(e).EncodeString(s)
}

// WriteByteArray - convenience method for main encoder
func (e *Encoder) WriteByteArray(data []byte) {
	NewBytesEncoder(e).EncodeByteArray(data)
}
