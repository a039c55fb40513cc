package fastpkt

import (
	"errors"
	"unsafe"

	"github.com/zxhio/wolping/pkg/netaddr"
	"github.com/zxhio/wolping/pkg/netutil"
	"golang.org/x/sys/unix"
)

const (
	SizeofEthernet   = int(unsafe.Sizeof(Ethernet{}))   // sizeof(struct ethhdr)
	SizeofVLAN       = int(unsafe.Sizeof(VLAN{}))       // sizeof(struct vlan_hdr)
	SizeofARP        = int(unsafe.Sizeof(ARP{}))        // sizeof(struct arphdr)
	SizeofARPEthIPv4 = int(unsafe.Sizeof(ARPEthIPv4{})) // sizeof(struct arphdr) + 2*(ETH_ALEN+4)
	SizeofIPv4       = int(unsafe.Sizeof(IPv4{}))       // sizeof(struct iphdr)
	SizeofICMP       = int(unsafe.Sizeof(ICMP{}))       // sizeof(struct icmphdr)
)

// Decode errors mean the frame is not one we can interpret. Foreign and
// truncated traffic is expected on a raw socket, so callers should skip the
// frame rather than fail.
var (
	ErrPacketTooShort            = errors.New("packet too short")
	ErrPacketInvalidEthernetType = errors.New("invalid ethernet type")
	ErrPacketInvalidProtocol     = errors.New("invalid protocol")
	ErrPacketMalformedARP        = errors.New("malformed arp")
	ErrPacketMalformedIPv4       = errors.New("malformed ipv4")
)

type Packet struct {
	L3Proto uint16
	L4Proto uint16

	L2Len uint8
	L3Len uint8
	L4Len uint8

	// L2
	SrcMAC netaddr.HwAddr
	DstMAC netaddr.HwAddr
	VLANID uint16

	// L3
	SrcIP netaddr.IPv4Addr
	DstIP netaddr.IPv4Addr
	ARP   ARPMessage

	// L4
	ICMPType uint8
	ICMPCode uint8
	ICMPID   uint16
	ICMPSeq  uint16

	RxData []byte // Raw data received from the network (read only)
}

var emptyPacket = Packet{}

func (pkt *Packet) Clear() {
	*pkt = emptyPacket
}

func (pkt *Packet) DecodeFromData(data []byte) error {
	pkt.Clear()
	if len(data) < SizeofEthernet {
		return ErrPacketTooShort
	}

	pkt.RxData = data
	pkt.L2Len = uint8(SizeofEthernet)

	eth := (*Ethernet)(unsafe.Pointer(&data[0]))
	pkt.SrcMAC = netaddr.HwAddr(eth.HwSource)
	pkt.DstMAC = netaddr.HwAddr(eth.HwDest)
	off := SizeofEthernet

	switch eth.Proto() {
	case unix.ETH_P_8021Q:
		return pkt.DecodePacketVLAN(data[off:])
	case unix.ETH_P_ARP:
		return pkt.DecodePacketARP(data[off:])
	case unix.ETH_P_IP:
		return pkt.DecodePacketIPv4(data[off:])
	default:
		return ErrPacketInvalidEthernetType
	}
}

func (pkt *Packet) DecodePacketVLAN(data []byte) error {
	if len(data) < SizeofVLAN {
		return ErrPacketTooShort
	}

	pkt.L2Len += uint8(SizeofVLAN)

	vlan := (*VLAN)(unsafe.Pointer(&data[0]))
	pkt.VLANID = vlan.VID()
	off := SizeofVLAN

	switch netutil.Ntohs(vlan.EncapsulatedProto) {
	case unix.ETH_P_ARP:
		return pkt.DecodePacketARP(data[off:])
	case unix.ETH_P_IP:
		return pkt.DecodePacketIPv4(data[off:])
	default:
		return ErrPacketInvalidEthernetType
	}
}

func (pkt *Packet) DecodePacketARP(data []byte) error {
	arp, err := ParseARPMessage(data)
	if err != nil {
		return err
	}

	pkt.L3Proto = unix.ETH_P_ARP
	pkt.L3Len = uint8(SizeofARPEthIPv4)
	pkt.ARP = arp
	pkt.SrcIP = arp.SenderIP
	pkt.DstIP = arp.TargetIP
	return nil
}

func (pkt *Packet) DecodePacketIPv4(data []byte) error {
	if len(data) < SizeofIPv4 {
		return ErrPacketTooShort
	}

	ip := (*IPv4)(unsafe.Pointer(&data[0]))
	off := int(ip.HeaderLen())
	if ip.Version() != IPv4Version || off < SizeofIPv4 {
		return ErrPacketMalformedIPv4
	}
	if len(data) < off {
		return ErrPacketTooShort
	}

	// Trim the Ethernet padding of short frames
	totalLen := int(ip.TotalLen())
	if totalLen < off {
		return ErrPacketMalformedIPv4
	}
	if totalLen < len(data) {
		data = data[:totalLen]
	}

	pkt.L3Proto = unix.ETH_P_IP
	pkt.SrcIP = ip.Src()
	pkt.DstIP = ip.Dst()
	pkt.L3Len = uint8(off)

	switch ip.Protocol {
	case unix.IPPROTO_ICMP:
		return pkt.DecodePacketICMP(data[off:])
	default:
		return ErrPacketInvalidProtocol
	}
}

func (pkt *Packet) DecodePacketICMP(data []byte) error {
	if len(data) < SizeofICMP {
		return ErrPacketTooShort
	}

	icmp := (*ICMP)(unsafe.Pointer(&data[0]))
	pkt.L4Proto = unix.IPPROTO_ICMP
	pkt.L4Len = uint8(SizeofICMP)
	pkt.ICMPType = icmp.Type
	pkt.ICMPCode = icmp.Code
	pkt.ICMPID = icmp.EchoID()
	pkt.ICMPSeq = icmp.EchoSeq()
	return nil
}
