package transport

import "encoding/binary"

// HeaderBytes is the fixed wire size of a Frame's header.
const HeaderBytes = 16

// Flag bits packed into a Frame's single flags byte.
type Flag uint8

const (
	// FlagBigEndian marks the body as big-endian; the default (bit
	// unset) is little-endian, matching the header's own wire layout.
	FlagBigEndian Flag = 1 << 0
	// FlagEncrypted marks the body as AES-ECB encrypted.
	FlagEncrypted Flag = 1 << 1
	// FlagCloseAfterSend tells the sender to close the connection once
	// this frame has been written.
	FlagCloseAfterSend Flag = 1 << 2
)

// Type enumerates the small set of frame purposes this transport carries.
type Type uint8

const (
	TypeMessage Type = iota
	TypeLicenseRequest
	TypeLicenseResponse
	TypeDataRequest
	TypeDataResponse
)

// Frame is one wire message: a fixed 16-byte header plus a body whose
// length is carried in TransmissionBytes (header + body).
type Frame struct {
	ID                [4]byte
	Type              Type
	Version           uint8
	Flags             Flag
	TransmissionBytes int64 // header + body, i.e. HeaderBytes + len(Body)
	Body              []byte
}

// NewFrame builds a Frame with TransmissionBytes computed from body's
// length.
func NewFrame(id string, typ Type, flags Flag, body []byte) Frame {
	var idBytes [4]byte
	copy(idBytes[:], id)
	return Frame{
		ID:                idBytes,
		Type:              typ,
		Flags:             flags,
		TransmissionBytes: int64(HeaderBytes + len(body)),
		Body:              body,
	}
}

// encodeHeader serializes f's 16-byte header, little-endian, with offset 7
// reserved and left zero.
func (f Frame) encodeHeader() []byte {
	buf := make([]byte, HeaderBytes)
	copy(buf[0:4], f.ID[:])
	buf[4] = byte(f.Type)
	buf[5] = f.Version
	buf[6] = byte(f.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(f.TransmissionBytes))
	return buf
}

// decodeHeader parses a 16-byte header.
func decodeHeader(buf []byte) Frame {
	var f Frame
	copy(f.ID[:], buf[0:4])
	f.Type = Type(buf[4])
	f.Version = buf[5]
	f.Flags = Flag(buf[6])
	f.TransmissionBytes = int64(binary.LittleEndian.Uint64(buf[8:16]))
	return f
}
