package resp

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadCommandBasic(t *testing.T) {
	r := reader("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n")
	argv, err := ReadCommand(r)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, argv)
}

func TestReadCommandEmptyArray(t *testing.T) {
	r := reader("*0\r\n")
	argv, err := ReadCommand(r)
	require.NoError(t, err)
	assert.Empty(t, argv)
}

func TestReadCommandCleanEOF(t *testing.T) {
	r := reader("")
	_, err := ReadCommand(r)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadCommandBadHeader(t *testing.T) {
	r := reader("GET foo\r\n")
	_, err := ReadCommand(r)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadCommandBadBulkHeader(t *testing.T) {
	r := reader("*1\r\n:3\r\n")
	_, err := ReadCommand(r)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadCommandMissingCRLF(t *testing.T) {
	r := reader("*1\r\n$3\r\nfoo")
	_, err := ReadCommand(r)
	assert.Error(t, err)
}

func TestReadCommandMultipleFrames(t *testing.T) {
	r := reader("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n")
	for i := 0; i < 2; i++ {
		argv, err := ReadCommand(r)
		require.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("PING")}, argv)
	}
}
