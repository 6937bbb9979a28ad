package srvconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	data := []byte{127, 0, 0, 1, 0x1F, 0x90} // 127.0.0.1:8080
	data = append(data, []byte("/srv/files")...)

	cfg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr.String())
	assert.EqualValues(t, 8080, cfg.BindPort)
	assert.Equal(t, "/srv/files", cfg.Directory)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeNoDirectory(t *testing.T) {
	data := []byte{10, 0, 0, 1, 0, 80}
	cfg, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Directory)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfsd.conf")
	data := []byte{192, 168, 1, 1, 0, 53}
	data = append(data, []byte("/data")...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.1", cfg.BindAddr.String())
	assert.EqualValues(t, 53, cfg.BindPort)
	assert.Equal(t, "/data", cfg.Directory)
}
