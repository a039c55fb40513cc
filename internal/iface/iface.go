package iface

import (
	"net"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/pkg/netaddr"
	"github.com/zxhio/wolping/pkg/netutil"
)

// Link is a read-only snapshot of a local network interface.
type Link struct {
	Name         string
	Index        int
	MTU          int
	Type         string
	OperState    string
	HardwareAddr net.HardwareAddr
	Flags        net.Flags
	IPv4         []netaddr.IPv4Prefix
	Physical     bool
	Wireless     bool
}

func (l Link) HasIPv4() bool { return len(l.IPv4) > 0 }

func (l Link) IsLoopback() bool { return l.Flags&net.FlagLoopback != 0 }

func (l Link) IsUp() bool { return l.Flags&net.FlagUp != 0 }

// HwAddr returns the 6-byte hardware address. Links without one (tun, ipip)
// or with an all-zero one (loopback) fail with InvalidHardwareAddress.
func (l Link) HwAddr() (netaddr.HwAddr, error) {
	hw, err := netaddr.NewHwAddr(l.HardwareAddr)
	if err != nil {
		return netaddr.HwAddr{}, errcode.Wrap(errcode.InvalidHardwareAddress, err, "link %s", l.Name)
	}
	if hw.IsZero() {
		return netaddr.HwAddr{}, errcode.New(errcode.InvalidHardwareAddress, "link %s has zero hardware address", l.Name)
	}
	return hw, nil
}

// IPv4Addr returns the first assigned IPv4 address.
func (l Link) IPv4Addr() (netaddr.IPv4Addr, bool) {
	if len(l.IPv4) == 0 {
		return 0, false
	}
	return l.IPv4[0].Addr, true
}

// Filter reports whether a link may be selected.
type Filter func(Link) bool

func NotLoopback(l Link) bool { return !l.IsLoopback() }

func IsUp(l Link) bool { return l.IsUp() }

// List enumerates the local links with their IPv4 addresses, ordered by
// interface index.
func List() ([]Link, error) {
	nlLinks, err := netlink.LinkList()
	if err != nil {
		return nil, errcode.Wrap(errcode.IoFailure, err, "netlink.LinkList")
	}

	links := make([]Link, 0, len(nlLinks))
	for _, nl := range nlLinks {
		link, err := newLink(nl)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	slices.SortFunc(links, func(a, b Link) int { return a.Index - b.Index })
	return links, nil
}

func newLink(nl netlink.Link) (Link, error) {
	attrs := nl.Attrs()
	link := Link{
		Name:         attrs.Name,
		Index:        attrs.Index,
		MTU:          attrs.MTU,
		Type:         nl.Type(),
		OperState:    attrs.OperState.String(),
		HardwareAddr: attrs.HardwareAddr,
		Flags:        attrs.Flags,
		Physical:     netutil.IsPhyNic(attrs.Name),
		Wireless:     netutil.IsWireless(attrs.Name),
	}

	addrs, err := netlink.AddrList(nl, netlink.FAMILY_V4)
	if err != nil {
		return Link{}, errcode.Wrap(errcode.IoFailure, err, "netlink.AddrList %s", attrs.Name)
	}
	for _, addr := range addrs {
		prefix, err := netaddr.NewIPv4PrefixFromIPNet(addr.IPNet)
		if err != nil {
			logrus.WithFields(logrus.Fields{"link": attrs.Name, "addr": addr.IPNet}).Debug("Skip address")
			continue
		}
		link.IPv4 = append(link.IPv4, prefix)
	}
	return link, nil
}

// Candidates keeps the links with at least one IPv4 address that pass every
// filter, in the given order.
func Candidates(links []Link, filters ...Filter) []Link {
	var candidates []Link
	for _, l := range links {
		if !l.HasIPv4() {
			continue
		}
		if slices.ContainsFunc(filters, func(f Filter) bool { return !f(l) }) {
			continue
		}
		candidates = append(candidates, l)
	}
	return candidates
}

// Select returns the index-th IPv4-capable link (0 is the first). The
// selected link must carry a 6-byte hardware address.
func Select(links []Link, index int, filters ...Filter) (Link, error) {
	candidates := Candidates(links, filters...)
	if len(candidates) == 0 {
		return Link{}, errcode.New(errcode.NoInterfaceFound, "no link with an ipv4 address")
	}
	if index < 0 || index >= len(candidates) {
		return Link{}, errcode.New(errcode.NoInterfaceFound, "index %d out of range [0, %d)", index, len(candidates))
	}

	link := candidates[index]
	if _, err := link.HwAddr(); err != nil {
		return Link{}, err
	}
	return link, nil
}

// SelectByName returns the named link, which must be IPv4-capable and carry a
// 6-byte hardware address.
func SelectByName(links []Link, name string) (Link, error) {
	idx := slices.IndexFunc(links, func(l Link) bool { return l.Name == name })
	if idx == -1 {
		return Link{}, errcode.New(errcode.NoInterfaceFound, "no such link %s", name)
	}

	link := links[idx]
	if !link.HasIPv4() {
		return Link{}, errcode.New(errcode.NoInterfaceFound, "link %s has no ipv4 address", name)
	}
	if _, err := link.HwAddr(); err != nil {
		return Link{}, err
	}
	return link, nil
}

// Lookup enumerates the local links and selects one, by name when name is
// not empty, otherwise by index among the filtered candidates.
func Lookup(name string, index int, filters ...Filter) (Link, error) {
	links, err := List()
	if err != nil {
		return Link{}, err
	}

	var link Link
	if name != "" {
		link, err = SelectByName(links, name)
	} else {
		link, err = Select(links, index, filters...)
	}
	if err != nil {
		return Link{}, errors.Wrap(err, "select link")
	}

	logrus.WithFields(logrus.Fields{
		"name":    link.Name,
		"index":   link.Index,
		"hw_addr": link.HardwareAddr,
		"ipv4":    link.IPv4,
	}).Debug("Selected link")
	return link, nil
}
