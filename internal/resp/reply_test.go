package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleStringEncode(t *testing.T) {
	assert.Equal(t, "+OK\r\n", string(SimpleString("OK").Encode()))
}

func TestErrorEncode(t *testing.T) {
	assert.Equal(t, "-ERR boom\r\n", string(Error("ERR boom").Encode()))
}

func TestIntegerEncode(t *testing.T) {
	assert.Equal(t, ":42\r\n", string(Integer(42).Encode()))
	assert.Equal(t, ":-1\r\n", string(Integer(-1).Encode()))
}

func TestBulkStringEncode(t *testing.T) {
	assert.Equal(t, "$5\r\nhello\r\n", string(NewBulk([]byte("hello")).Encode()))
	assert.Equal(t, "$0\r\n\r\n", string(NewBulk([]byte("")).Encode()))
	assert.Equal(t, "$-1\r\n", string(NilBulk().Encode()))
}

func TestArrayEncode(t *testing.T) {
	arr := NewArray(NewBulk([]byte("a")), Integer(1))
	assert.Equal(t, "*2\r\n$1\r\na\r\n:1\r\n", string(arr.Encode()))
	assert.Equal(t, "*0\r\n", string(NewArray().Encode()))
	assert.Equal(t, "*-1\r\n", string(NilArray().Encode()))
}
