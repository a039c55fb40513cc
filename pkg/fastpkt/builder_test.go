package fastpkt

import (
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/zxhio/wolping/pkg/netaddr"
	"golang.org/x/sys/unix"
)

func buildTestICMPFrame(pb *PacketBuilder, payload []byte) {
	copy(pb.Alloc(len(payload)), payload)

	icmp := pb.AllocICMP()
	icmp.Type = ICMPv4TypeEchoRequest
	icmp.SetEcho(1, 2)
	icmp.SetChecksum(uint16(len(payload)))

	ip := pb.AllocIPv4()
	ip.SetHeaderLen(uint8(SizeofIPv4))
	ip.TTL = IPv4DefaultTTL
	ip.Protocol = unix.IPPROTO_ICMP
	ip.SetSrc(testSenderIP)
	ip.SetDst(netaddr.IPv4Broadcast)
	ip.SetChecksum(uint16(SizeofICMP + len(payload)))

	eth := pb.AllocEthernet()
	eth.HwDest = testTargetHw
	eth.HwSource = testSenderHw
	eth.SetProto(unix.ETH_P_IP)
}

func TestPacketBuilderICMP(t *testing.T) {
	payload := []byte("wolping")
	pb := NewPacketBuilder(make([]byte, 128))
	buildTestICMPFrame(pb, payload)

	assert.Equal(t, SizeofEthernet+SizeofIPv4+SizeofICMP+len(payload), pb.Len())
	assert.Equal(t, 128-pb.Len(), pb.Remaining())
	assert.Len(t, pb.Bytes(), pb.Len())

	p := gopacket.NewPacket(pb.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
	assert.Nil(t, p.ErrorLayer())

	ip, ok := p.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, uint8(4), ip.Version)
	assert.Equal(t, uint8(5), ip.IHL)
	assert.Equal(t, uint8(64), ip.TTL)
	assert.Equal(t, uint16(SizeofIPv4+SizeofICMP+len(payload)), ip.Length)

	icmp, ok := p.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, uint16(1), icmp.Id)
	assert.Equal(t, uint16(2), icmp.Seq)
	assert.Equal(t, payload, icmp.Payload)

	// Same checksums as gopacket computes
	icmpRef := layers.ICMPv4{TypeCode: icmp.TypeCode, Id: icmp.Id, Seq: icmp.Seq}
	buf, err := serialize(&icmpRef, gopacket.Payload(payload))
	if assert.NoError(t, err) {
		assert.Equal(t, buf[2:4], pb.Bytes()[SizeofEthernet+SizeofIPv4+2:SizeofEthernet+SizeofIPv4+4])
	}
}

func TestPacketBuilderReset(t *testing.T) {
	pb := NewPacketBuilder(make([]byte, 64))
	pb.AllocARP()
	pb.AllocEthernet()
	assert.Equal(t, SizeofEthernet+SizeofARPEthIPv4, pb.Len())

	pb.Reset()
	assert.Equal(t, 0, pb.Len())
	assert.Equal(t, 64, pb.Remaining())
	assert.Empty(t, pb.Bytes())

	buildTestICMPFrame(pb, nil)
	pkt, err := decodePacket(pb.Bytes())
	if assert.NoError(t, err) {
		assert.Equal(t, uint8(ICMPv4TypeEchoRequest), pkt.ICMPType)
		assert.Equal(t, testSenderHw, pkt.SrcMAC)
		assert.Equal(t, testTargetHw, pkt.DstMAC)
		assert.Equal(t, netaddr.IPv4Broadcast, pkt.DstIP)
	}
}
