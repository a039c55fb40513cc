package fastpkt

import (
	"unsafe"

	"github.com/zxhio/wolping/pkg/netutil"
)

const (
	ICMPv4TypeEchoReply   = 0x0
	ICMPv4TypeEchoRequest = 0x8
)

// <linux/icmp.h>
//
// struct icmphdr {
//     __u8 type;
//     __u8 code;
//     __sum16 checksum;
//     union {
//         struct {
//             __be16 id;
//             __be16 sequence;
//         } echo;
//         __be32 gateway;
//         struct {
//             __be16 mtu;
//             __u8 void;
//         } frag;
//     };
// };

type ICMP struct {
	Type     uint8
	Code     uint8
	Checksum uint16

	// Echo
	ID  uint16
	Seq uint16
}

func (icmp *ICMP) SetEcho(id, seq uint16) {
	icmp.ID = netutil.Htons(id)
	icmp.Seq = netutil.Htons(seq)
}

func (icmp *ICMP) EchoID() uint16  { return netutil.Ntohs(icmp.ID) }
func (icmp *ICMP) EchoSeq() uint16 { return netutil.Ntohs(icmp.Seq) }

// SetChecksum covers the header and the payloadLen bytes that follow it in
// memory, so the payload must be written before.
func (icmp *ICMP) SetChecksum(payloadLen uint16) {
	icmp.Checksum = 0
	icmp.Checksum = netutil.Htons(icmp.ComputeChecksum(payloadLen))
}

// ComputeChecksum computes the checksum as if the checksum field were zero.
func (icmp *ICMP) ComputeChecksum(payloadLen uint16) uint16 {
	data := make([]byte, SizeofICMP+int(payloadLen))
	copy(data, unsafe.Slice((*byte)(unsafe.Pointer(icmp)), len(data)))

	// Clear checksum bytes
	data[2] = 0
	data[3] = 0
	return Checksum(data, 0)
}
