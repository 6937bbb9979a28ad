// Package wire implements the binary framing used on the connection: a
// one-byte header describing the message type and its compression state,
// an eight-byte big-endian payload length, and the payload itself.
package wire

// Type identifies the kind of message carried on the wire. Requests and
// their replies are adjacent values (a request's reply is Type+1), except
// for the catch-all error reply.
type Type uint8

const (
	TypeEcho          Type = 0
	TypeEchoReply     Type = 1
	TypeDir           Type = 2
	TypeDirReply      Type = 3
	TypeSize          Type = 4
	TypeSizeReply     Type = 5
	TypeFile          Type = 6
	TypeFileReply     Type = 7
	TypeShutdown      Type = 8
	TypeError         Type = 0xF
)

// String returns the type's lowercase name for use as a metrics label,
// falling back to a numeric form for anything outside the known set.
func (t Type) String() string {
	switch t {
	case TypeEcho:
		return "echo"
	case TypeEchoReply:
		return "echo_reply"
	case TypeDir:
		return "dir"
	case TypeDirReply:
		return "dir_reply"
	case TypeSize:
		return "size"
	case TypeSizeReply:
		return "size_reply"
	case TypeFile:
		return "file"
	case TypeFileReply:
		return "file_reply"
	case TypeShutdown:
		return "shutdown"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Header is the one-byte bitfield that opens every message:
//
//	bit:  7 6 5 4 | 3 | 2 | 1 0
//	      type    | C | R | reserved
//
// C is set when the payload that follows is dictionary-compressed. R is set
// by a requester to demand that a reply be compressed; without it the server
// never compresses a reply.
type Header struct {
	Type                Type
	Compressed          bool
	RequiresCompression bool
}

func encodeHeader(h Header) byte {
	var b byte
	b |= byte(h.Type&0xf) << 4
	if h.Compressed {
		b |= 1 << 3
	}
	if h.RequiresCompression {
		b |= 1 << 2
	}
	return b
}

func decodeHeader(b byte) Header {
	return Header{
		Type:                Type(b >> 4 & 0xf),
		Compressed:          b&(1<<3) != 0,
		RequiresCompression: b&(1<<2) != 0,
	}
}
