package fastpkt

import (
	"unsafe"

	"github.com/zxhio/wolping/pkg/netaddr"
	"github.com/zxhio/wolping/pkg/netutil"
)

const (
	IPv4Version    = 4
	IPv4DefaultTTL = 64
)

// <linux/ip.h>
//
// struct iphdr {
// #if defined(__LITTLE_ENDIAN_BITFIELD)
//     unsigned int ihl : 4, version : 4;
// #elif defined(__BIG_ENDIAN_BITFIELD)
//     unsigned int version : 4, ihl : 4;
// #else
// #error "Please fix <asm/byteorder.h>"
// #endif
//     __u8 tos;        // Type of Service
//     __be16 tot_len;  // Total Length
//     __be16 id;       // Identification
//     __be16 frag_off; // Fragment Offset and Flags
//     __u8 ttl;        // Time to Live
//     __u8 protocol;   // Protocol (TCP, UDP, etc.)
//     __u16 check;     // Header Checksum
//     __be32 saddr;    // Source IP Address
//     __be32 daddr;    // Destination IP Address
// };

type IPv4 struct {
	VerHdrLen uint8  // 4 bits version, 4 bits header length
	TOS       uint8  // type of service
	Len       uint16 // total length
	ID        uint16 // identification
	FragOff   uint16 // fragment offset
	TTL       uint8  // time to live
	Protocol  uint8  // protocol
	Checksum  uint16 // checksum
	SrcIP     uint32 // source ip
	DstIP     uint32 // destination ip
}

func (ip *IPv4) Version() uint8 {
	return ip.VerHdrLen >> 4
}

func (ip *IPv4) HeaderLen() uint8 {
	return (ip.VerHdrLen & 0x0f) * 4
}

func (ip *IPv4) SetHeaderLen(headerLen uint8) {
	// IPv4 version is 4 in high 4 bit
	ip.VerHdrLen = (IPv4Version << 4) | (headerLen / 4)
}

func (ip *IPv4) TotalLen() uint16 { return netutil.Ntohs(ip.Len) }

func (ip *IPv4) Src() netaddr.IPv4Addr { return netaddr.IPv4Addr(netutil.Ntohl(ip.SrcIP)) }
func (ip *IPv4) Dst() netaddr.IPv4Addr { return netaddr.IPv4Addr(netutil.Ntohl(ip.DstIP)) }

func (ip *IPv4) SetSrc(addr netaddr.IPv4Addr) { ip.SrcIP = netutil.Htonl(uint32(addr)) }
func (ip *IPv4) SetDst(addr netaddr.IPv4Addr) { ip.DstIP = netutil.Htonl(uint32(addr)) }

// SetChecksum must be called after the header is filled, it sets the total
// length to header + l3PayloadLen before computing the checksum.
func (ip *IPv4) SetChecksum(l3PayloadLen uint16) {
	ip.Len = netutil.Htons(uint16(ip.HeaderLen()) + l3PayloadLen)
	ip.Checksum = 0
	ip.Checksum = netutil.Htons(ip.ComputeChecksum())
}

// ComputeChecksum computes the header checksum as if the checksum field were
// zero, the header itself is left untouched.
func (ip *IPv4) ComputeChecksum() uint16 {
	hdr := make([]byte, ip.HeaderLen())
	copy(hdr, unsafe.Slice((*byte)(unsafe.Pointer(ip)), len(hdr)))

	// Clear checksum bytes
	hdr[10] = 0
	hdr[11] = 0
	return Checksum(hdr, 0)
}

// ValidChecksum reports whether the header words, checksum included, sum to 0xffff.
func (ip *IPv4) ValidChecksum() bool {
	data := unsafe.Slice((*byte)(unsafe.Pointer(ip)), ip.HeaderLen())
	return OnesComplementSum(data, 0) == 0xffff
}
