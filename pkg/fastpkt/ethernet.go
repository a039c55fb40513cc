package fastpkt

import "github.com/zxhio/wolping/pkg/netutil"

// <linux/if_ether.h>
//
//	struct ethhdr {
//	    unsigned char h_dest[6];
//	    unsigned char h_source[6];
//	    __be16 h_proto;
//	};

type Ethernet struct {
	HwDest   [6]byte
	HwSource [6]byte
	HwProto  uint16
}

func (eth *Ethernet) Proto() uint16 { return netutil.Ntohs(eth.HwProto) }

func (eth *Ethernet) SetProto(proto uint16) { eth.HwProto = netutil.Htons(proto) }

// <linux/if_vlan.h>
//
//	struct vlan_hdr {
//	    __be16 h_vlan_TCI;
//	    __be16 h_vlan_encapsulated_proto;
//	};

type VLAN struct {
	ID                uint16
	EncapsulatedProto uint16
}

// VID is the 12-bit VLAN identifier of the tag control information.
func (vlan *VLAN) VID() uint16 { return netutil.Ntohs(vlan.ID) & 0x0fff }
