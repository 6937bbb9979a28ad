package wire

import (
	"bytes"
	"fmt"

	"github.com/calmh/xdr"
)

// FileRequest is the structured body of a type-6 file-retrieval request:
// (session_id u32 be, offset u64 be, length u64 be, filename NUL-terminated).
type FileRequest struct {
	SessionID uint32
	Offset    uint64
	Length    uint64
	Filename  string
}

// Encode writes the fixed-width fields through an xdr.Writer (which, for
// WriteUint32/WriteUint64, is a plain big-endian encode with no padding) and
// the filename as raw bytes followed by a single NUL terminator, since
// xdr.WriteString would add its own length prefix and alignment padding that
// this wire format does not have.
func (r FileRequest) Encode() []byte {
	var buf bytes.Buffer
	xw := xdr.NewWriter(&buf)
	xw.WriteUint32(r.SessionID)
	xw.WriteUint64(r.Offset)
	xw.WriteUint64(r.Length)
	buf.WriteString(r.Filename)
	buf.WriteByte(0)
	return buf.Bytes()
}

// DecodeFileRequest parses a type-6 request body.
func DecodeFileRequest(payload []byte) (FileRequest, error) {
	if len(payload) < 4+8+8+1 {
		return FileRequest{}, fmt.Errorf("wire: file request too short: %d bytes", len(payload))
	}
	buf := bytes.NewReader(payload)
	xr := xdr.NewReader(buf)
	sessionID := xr.ReadUint32()
	offset := xr.ReadUint64()
	length := xr.ReadUint64()
	if err := xr.Error(); err != nil {
		return FileRequest{}, fmt.Errorf("wire: decoding file request header: %w", err)
	}

	rest := payload[4+8+8:]
	nul := bytes.IndexByte(rest, 0)
	if nul < 0 {
		return FileRequest{}, fmt.Errorf("wire: file request filename is not NUL-terminated")
	}
	return FileRequest{
		SessionID: sessionID,
		Offset:    offset,
		Length:    length,
		Filename:  string(rest[:nul]),
	}, nil
}

// FileReply is the structured body of a type-7 file-retrieval reply:
// (session_id u32 be, sub_offset u64 be, sub_length u64 be, file_bytes).
type FileReply struct {
	SessionID uint32
	SubOffset uint64
	SubLength uint64
	Data      []byte
}

// Encode mirrors FileRequest.Encode: fixed-width fields via xdr, then the
// raw file bytes with no further framing (their length is already carried
// by SubLength and, at the message level, by the wire.Message length).
func (r FileReply) Encode() []byte {
	var buf bytes.Buffer
	xw := xdr.NewWriter(&buf)
	xw.WriteUint32(r.SessionID)
	xw.WriteUint64(r.SubOffset)
	xw.WriteUint64(r.SubLength)
	buf.Write(r.Data)
	return buf.Bytes()
}

// DecodeFileReply parses a type-7 reply body.
func DecodeFileReply(payload []byte) (FileReply, error) {
	if len(payload) < 4+8+8 {
		return FileReply{}, fmt.Errorf("wire: file reply too short: %d bytes", len(payload))
	}
	buf := bytes.NewReader(payload)
	xr := xdr.NewReader(buf)
	sessionID := xr.ReadUint32()
	subOffset := xr.ReadUint64()
	subLength := xr.ReadUint64()
	if err := xr.Error(); err != nil {
		return FileReply{}, fmt.Errorf("wire: decoding file reply header: %w", err)
	}
	data := payload[4+8+8:]
	return FileReply{
		SessionID: sessionID,
		SubOffset: subOffset,
		SubLength: subLength,
		Data:      data,
	}, nil
}
