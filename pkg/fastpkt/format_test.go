package fastpkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zxhio/wolping/pkg/netaddr"
	"golang.org/x/sys/unix"
)

func buildTestARPFrame(op uint16) []byte {
	pb := NewPacketBuilder(make([]byte, 64))
	msg := NewARPRequest(testSenderHw, testSenderIP, testTargetHw, netaddr.IPv4Broadcast)
	msg.Operation = op
	msg.MarshalTo(pb.AllocARP())

	eth := pb.AllocEthernet()
	eth.HwDest = netaddr.HwAddrBroadcast
	eth.HwSource = testSenderHw
	eth.SetProto(unix.ETH_P_ARP)
	return pb.Bytes()
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "ARP Request who-has 255.255.255.255 tell 172.16.23.2, length 28",
		Format(buildTestARPFrame(ARPOperationRequest)))
	assert.Equal(t, "ARP Reply 172.16.23.2 is-at 56:66:60:0f:eb:3a, length 28",
		Format(buildTestARPFrame(ARPOperationReply)))
	assert.Equal(t, "56:66:60:0f:eb:3a > ff:ff:ff:ff:ff:ff, ethertype ARP (0x0806), length 42: Request who-has 255.255.255.255 tell 172.16.23.2, length 28",
		Format(buildTestARPFrame(ARPOperationRequest), WithFormatEthernet()))

	pb := NewPacketBuilder(make([]byte, 64))
	buildTestICMPFrame(pb, nil)
	assert.Equal(t, "IPv4 172.16.23.2 > 255.255.255.255: ICMP echo request, id 1, seq 2, length 8", Format(pb.Bytes()))
}
