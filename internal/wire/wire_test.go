package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{Type: TypeEcho, Compressed: false, RequiresCompression: false},
		{Type: TypeEchoReply, Compressed: true, RequiresCompression: false},
		{Type: TypeFileReply, Compressed: true, RequiresCompression: true},
		{Type: TypeError, Compressed: false, RequiresCompression: false},
	}
	for _, h := range cases {
		got := decodeHeader(encodeHeader(h))
		assert.Equal(t, h, got)
	}
}

func TestHeaderLiterals(t *testing.T) {
	// Literal byte values the reply handlers are expected to emit.
	assert.Equal(t, byte(0b00011000), encodeHeader(Header{Type: TypeEchoReply, Compressed: true}))
	assert.Equal(t, byte(0b00010000), encodeHeader(Header{Type: TypeEchoReply, Compressed: false}))
	assert.Equal(t, byte(0b01011000), encodeHeader(Header{Type: TypeSizeReply, Compressed: true}))
	assert.Equal(t, byte(0b01010000), encodeHeader(Header{Type: TypeSizeReply, Compressed: false}))
	assert.Equal(t, byte(0b00111000), encodeHeader(Header{Type: TypeDirReply, Compressed: true}))
	assert.Equal(t, byte(0b00110000), encodeHeader(Header{Type: TypeDirReply, Compressed: false}))
	assert.Equal(t, byte(0b01111000), encodeHeader(Header{Type: TypeFileReply, Compressed: true}))
	assert.Equal(t, byte(0b01110000), encodeHeader(Header{Type: TypeFileReply, Compressed: false}))
	assert.Equal(t, byte(0b11110000), encodeHeader(Header{Type: TypeError}))
}

func TestTypeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "file", TypeFile.String())
	assert.Equal(t, "file_reply", TypeFileReply.String())
	assert.Equal(t, "error", TypeError.String())
	assert.Equal(t, "unknown", Type(0xA).String())
}

func TestWriteReadMessageRoundTrip(t *testing.T) {
	msg := Message{
		Header:  Header{Type: TypeDirReply, Compressed: false},
		Payload: []byte("a.txt\x00b.txt\x00"),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestReadMessageEmptyPayload(t *testing.T) {
	msg := Message{Header: Header{Type: TypeError}, Payload: nil}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg))
	assert.Equal(t, []byte{0xF0, 0, 0, 0, 0, 0, 0, 0, 0}, buf.Bytes())

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, TypeError, got.Header.Type)
	assert.Empty(t, got.Payload)
}

func TestReadMessageEOFOnCleanClose(t *testing.T) {
	var buf bytes.Buffer
	_, err := ReadMessage(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadMessageShortLengthIsError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x00, 0, 0, 0})
	_, err := ReadMessage(buf)
	assert.Error(t, err)
}

func TestReadMessageRejectsOversizedLength(t *testing.T) {
	var lenBuf [8]byte
	lenBuf[0] = 0xFF // absurdly large length
	buf := bytes.NewBuffer(append([]byte{0x00}, lenBuf[:]...))
	_, err := ReadMessage(buf)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestFileRequestRoundTrip(t *testing.T) {
	req := FileRequest{SessionID: 42, Offset: 100, Length: 2048, Filename: "movie.mp4"}
	got, err := DecodeFileRequest(req.Encode())
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestFileReplyRoundTrip(t *testing.T) {
	rep := FileReply{SessionID: 7, SubOffset: 10, SubLength: 4, Data: []byte("abcd")}
	got, err := DecodeFileReply(rep.Encode())
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}

func TestDecodeFileRequestRejectsMissingNUL(t *testing.T) {
	req := FileRequest{SessionID: 1, Offset: 0, Length: 1, Filename: "x"}
	enc := req.Encode()
	enc = enc[:len(enc)-1] // drop the trailing NUL
	_, err := DecodeFileRequest(enc)
	assert.Error(t, err)
}
