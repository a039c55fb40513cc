package fastpkt

import (
	"unsafe"

	"github.com/zxhio/wolping/pkg/netaddr"
	"github.com/zxhio/wolping/pkg/netutil"
	"golang.org/x/sys/unix"
)

const (
	ARPHardwareEthernet = 1 // ARPHRD_ETHER

	ARPOperationRequest = 1
	ARPOperationReply   = 2

	arpHwAddrLenEthernet = 6
	arpProtAddrLenIPv4   = 4
)

// <linux/if_arp.h>
//
// struct arphdr {
//     __be16 ar_hrd;        /* format of hardware address	*/
//     __be16 ar_pro;        /* format of protocol address	*/
//     unsigned char ar_hln; /* length of hardware address	*/
//     unsigned char ar_pln; /* length of protocol address	*/
//     __be16 ar_op;         /* ARP opcode (command)		*/
// };

type ARP struct {
	HwAddrType   uint16
	ProtAddrType uint16
	HwAddrLen    uint8
	ProtAddrLen  uint8
	Operation    uint16
}

// ARPEthIPv4 is the arphdr followed by the Ethernet/IPv4 address block,
// the only address family pair in use on an Ethernet segment.
//
//	unsigned char ar_sha[ETH_ALEN]; /* sender hardware address */
//	unsigned char ar_sip[4];        /* sender IP address       */
//	unsigned char ar_tha[ETH_ALEN]; /* target hardware address */
//	unsigned char ar_tip[4];        /* target IP address       */
type ARPEthIPv4 struct {
	ARP
	SrcHwAddr   [6]byte
	SrcProtAddr [4]byte
	DstHwAddr   [6]byte
	DstProtAddr [4]byte
}

// ARPMessage is the host byte order view of an Ethernet/IPv4 ARP packet.
type ARPMessage struct {
	HwAddrType   uint16
	ProtAddrType uint16
	HwAddrLen    uint8
	ProtAddrLen  uint8
	Operation    uint16
	SenderHwAddr netaddr.HwAddr
	SenderIP     netaddr.IPv4Addr
	TargetHwAddr netaddr.HwAddr
	TargetIP     netaddr.IPv4Addr
}

func NewARPRequest(senderHw netaddr.HwAddr, senderIP netaddr.IPv4Addr, targetHw netaddr.HwAddr, targetIP netaddr.IPv4Addr) ARPMessage {
	return ARPMessage{
		HwAddrType:   ARPHardwareEthernet,
		ProtAddrType: unix.ETH_P_IP,
		HwAddrLen:    arpHwAddrLenEthernet,
		ProtAddrLen:  arpProtAddrLenIPv4,
		Operation:    ARPOperationRequest,
		SenderHwAddr: senderHw,
		SenderIP:     senderIP,
		TargetHwAddr: targetHw,
		TargetIP:     targetIP,
	}
}

func (m *ARPMessage) MarshalTo(arp *ARPEthIPv4) {
	arp.HwAddrType = netutil.Htons(m.HwAddrType)
	arp.ProtAddrType = netutil.Htons(m.ProtAddrType)
	arp.HwAddrLen = m.HwAddrLen
	arp.ProtAddrLen = m.ProtAddrLen
	arp.Operation = netutil.Htons(m.Operation)
	arp.SrcHwAddr = m.SenderHwAddr
	arp.SrcProtAddr = m.SenderIP.Bytes()
	arp.DstHwAddr = m.TargetHwAddr
	arp.DstProtAddr = m.TargetIP.Bytes()
}

// ParseARPMessage decodes an Ethernet/IPv4 ARP packet. Address lengths other
// than 6 and 4 are reported as ErrPacketMalformedARP.
func ParseARPMessage(data []byte) (ARPMessage, error) {
	if len(data) < SizeofARP {
		return ARPMessage{}, ErrPacketTooShort
	}

	hdr := (*ARP)(unsafe.Pointer(&data[0]))
	if hdr.HwAddrLen != arpHwAddrLenEthernet || hdr.ProtAddrLen != arpProtAddrLenIPv4 {
		return ARPMessage{}, ErrPacketMalformedARP
	}
	if len(data) < SizeofARPEthIPv4 {
		return ARPMessage{}, ErrPacketTooShort
	}

	arp := (*ARPEthIPv4)(unsafe.Pointer(&data[0]))
	return ARPMessage{
		HwAddrType:   netutil.Ntohs(arp.HwAddrType),
		ProtAddrType: netutil.Ntohs(arp.ProtAddrType),
		HwAddrLen:    arp.HwAddrLen,
		ProtAddrLen:  arp.ProtAddrLen,
		Operation:    netutil.Ntohs(arp.Operation),
		SenderHwAddr: netaddr.HwAddr(arp.SrcHwAddr),
		SenderIP:     netaddr.NewIPv4AddrFromBytes(arp.SrcProtAddr),
		TargetHwAddr: netaddr.HwAddr(arp.DstHwAddr),
		TargetIP:     netaddr.NewIPv4AddrFromBytes(arp.DstProtAddr),
	}, nil
}
