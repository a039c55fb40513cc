package netutil

import (
	"encoding/binary"
	"unsafe"
)

// Htons and Htonl store v so that its in-memory bytes are in network byte
// order, for writing into struct-overlay headers. They are their own inverse.
func Htons(v uint16) uint16 { return binary.BigEndian.Uint16((*[2]byte)(unsafe.Pointer(&v))[:]) }
func Ntohs(v uint16) uint16 { return Htons(v) }

func Htonl(v uint32) uint32 { return binary.BigEndian.Uint32((*[4]byte)(unsafe.Pointer(&v))[:]) }
func Ntohl(v uint32) uint32 { return Htonl(v) }
