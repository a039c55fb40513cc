package netutil

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestHtons(t *testing.T) {
	v := Htons(0x0806)
	b := (*[2]byte)(unsafe.Pointer(&v))
	assert.Equal(t, []byte{0x08, 0x06}, b[:])
	assert.Equal(t, uint16(0x0806), Ntohs(v))
}

func TestHtonl(t *testing.T) {
	v := Htonl(0xc0a80001)
	b := (*[4]byte)(unsafe.Pointer(&v))
	assert.Equal(t, uint32(0xc0a80001), binary.BigEndian.Uint32(b[:]))
	assert.Equal(t, uint32(0xc0a80001), Ntohl(v))
}
