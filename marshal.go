package hyperloglog

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Binary layout: a fixed 8-byte header followed by the packed
// registers.
//
//	offset 0: int32, big-endian: precision
//	offset 4: int32, big-endian: register-section byte length
//	offset 8: packed register bytes
//
// The length field is redundant, since the register size follows from
// the precision, but the format has always carried it. It is written
// for compatibility and skipped, never trusted, on read.
const headerSize = 8

// MarshalBinary serializes the sketch into the fixed binary layout
// above. It implements encoding.BinaryMarshaler, so sketches also
// survive encoding/gob as-is.
func (h *HyperLogLog) MarshalBinary() ([]byte, error) {
	reg := h.regs.Bytes()
	buf := make([]byte, headerSize+len(reg))
	binary.BigEndian.PutUint32(buf[0:], uint32(h.p))
	binary.BigEndian.PutUint32(buf[4:], uint32(len(reg)))
	copy(buf[headerSize:], reg)
	return buf, nil
}

// UnmarshalBinary reconstructs a sketch serialized by MarshalBinary,
// replacing h's previous state. The register count is inferred from the
// precision field; a register section of any other length fails with
// ErrMalformedInput. The input is copied, not retained.
func (h *HyperLogLog) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return errors.Wrapf(ErrMalformedInput,
			"sketch data is %d bytes, want at least %d", len(data), headerSize)
	}
	p := binary.BigEndian.Uint32(data[0:])
	if p > MaxPrecision {
		return errors.Wrapf(ErrInvalidPrecision, "serialized precision is %d", p)
	}
	regs, err := NewRegistersFromBytes(uint32(1)<<p, data[headerSize:])
	if err != nil {
		return err
	}
	rebuilt, err := newWithRegisters(uint8(p), regs)
	if err != nil {
		return err
	}
	*h = *rebuilt
	return nil
}

// sketchJSON is the JSON wire form: the precision plus the packed
// registers, snappy-compressed and base64-encoded. Registers are mostly
// zero bytes until the sketch fills up, so the compression pays for
// itself in pipelines that ship sketches around as JSON.
type sketchJSON struct {
	P         uint8  `json:"p"`
	Registers string `json:"registers"`
}

// MarshalJSON implements json.Marshaler.
func (h *HyperLogLog) MarshalJSON() ([]byte, error) {
	packed := snappy.Encode(nil, h.regs.Bytes())
	return json.Marshal(sketchJSON{
		P:         h.p,
		Registers: base64.StdEncoding.EncodeToString(packed),
	})
}

// UnmarshalJSON implements json.Unmarshaler, replacing h's previous
// state.
func (h *HyperLogLog) UnmarshalJSON(data []byte) error {
	var j sketchJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrapf(ErrMalformedInput, "decoding sketch json: %v", err)
	}
	if j.P > MaxPrecision {
		return errors.Wrapf(ErrInvalidPrecision, "serialized precision is %d", j.P)
	}
	packed, err := base64.StdEncoding.DecodeString(j.Registers)
	if err != nil {
		return errors.Wrapf(ErrMalformedInput, "decoding register payload: %v", err)
	}
	raw, err := snappy.Decode(nil, packed)
	if err != nil {
		return errors.Wrapf(ErrMalformedInput, "decompressing register payload: %v", err)
	}
	regs, err := NewRegistersFromBytes(uint32(1)<<j.P, raw)
	if err != nil {
		return err
	}
	rebuilt, err := newWithRegisters(j.P, regs)
	if err != nil {
		return err
	}
	*h = *rebuilt
	return nil
}
