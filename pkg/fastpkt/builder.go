package fastpkt

import "unsafe"

// DataPtr is a helper function to cast a data type to a pointer
func DataPtr[T any](data []byte, off int) *T { return (*T)(unsafe.Pointer(&data[off])) }

// PacketBuilder allocates memory from end to beginning for building network packets,
// so inner layers are complete before the outer lengths and checksums are computed.
type PacketBuilder struct {
	buf      []byte
	writePos int
}

// NewPacketBuilder creates a new packet builder
func NewPacketBuilder(data []byte) *PacketBuilder {
	cap := cap(data)
	return &PacketBuilder{buf: data[:cap], writePos: cap}
}

// Reset reinitializes the builder
func (pb *PacketBuilder) Reset() {
	clear(pb.buf)
	pb.writePos = cap(pb.buf)
}

func (pb *PacketBuilder) Bytes() []byte { return pb.buf[pb.writePos:] }
func (pb *PacketBuilder) Len() int      { return cap(pb.buf) - pb.writePos }

// Remaining is the number of bytes still unallocated at the front of the buffer.
func (pb *PacketBuilder) Remaining() int { return pb.writePos }

func (pb *PacketBuilder) alloc(n int) []byte {
	pb.writePos -= n
	return pb.buf[pb.writePos : pb.writePos+n]
}

func (pb *PacketBuilder) Alloc(n int) []byte       { return pb.alloc(n) }
func (pb *PacketBuilder) AllocEthernet() *Ethernet { return alloc[Ethernet](pb) }
func (pb *PacketBuilder) AllocARP() *ARPEthIPv4    { return alloc[ARPEthIPv4](pb) }
func (pb *PacketBuilder) AllocIPv4() *IPv4         { return alloc[IPv4](pb) }
func (pb *PacketBuilder) AllocICMP() *ICMP         { return alloc[ICMP](pb) }

func alloc[T any](pb *PacketBuilder) *T {
	var v T
	return DataPtr[T](pb.alloc(int(unsafe.Sizeof(v))), 0)
}
