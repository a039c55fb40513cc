package channel

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zxhio/wolping/internal/errcode"
	"github.com/zxhio/wolping/pkg/netutil"
	"golang.org/x/sys/unix"
)

const DefaultPollTimeout = 100 * time.Millisecond

type channelOpts struct {
	pollTimeout time.Duration
}

type Opt func(*channelOpts)

// WithPollTimeout bounds how long ReadFrame blocks before it checks the
// context again.
func WithPollTimeout(d time.Duration) Opt {
	return func(o *channelOpts) { o.pollTimeout = d }
}

// Channel is an AF_PACKET socket bound to one interface, sending and
// receiving whole Ethernet frames.
type Channel struct {
	name string
	fd   int
	addr unix.SockaddrLinklayer
	stat netutil.Statistics
	*channelOpts
}

// Open binds a raw packet socket to the named interface. Failing to create or
// bind the socket, most often for lack of CAP_NET_RAW, is reported as
// UnsupportedChannel.
func Open(name string, opts ...Opt) (*Channel, error) {
	o := channelOpts{pollTimeout: DefaultPollTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pollTimeout <= 0 {
		o.pollTimeout = DefaultPollTimeout
	}

	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnsupportedChannel, err, "net.InterfaceByName")
	}

	proto := netutil.Htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, errcode.Wrap(errcode.UnsupportedChannel, err, "unix.Socket")
	}

	addr := unix.SockaddrLinklayer{
		Protocol: proto,
		Ifindex:  ifi.Index,
		Hatype:   unix.ARPHRD_ETHER,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, errcode.Wrap(errcode.UnsupportedChannel, err, "unix.Bind %s", name)
	}
	logrus.WithFields(logrus.Fields{"fd": fd, "name": name, "index": ifi.Index}).Debug("New AF_PACKET socket")

	return &Channel{name: name, fd: fd, addr: addr, channelOpts: &o}, nil
}

func (c *Channel) Fd() int { return c.fd }

func (c *Channel) Name() string { return c.name }

// Transmit sends one complete frame.
func (c *Channel) Transmit(frame []byte) error {
	c.stat.TxIOs++
	err := unix.Sendto(c.fd, frame, 0, &c.addr)
	if err != nil {
		c.stat.TxErrors++
		return errcode.Wrap(errcode.IoFailure, err, "unix.Sendto %s", c.name)
	}
	c.stat.TxBytes += uint64(len(frame))
	c.stat.TxPackets++
	return nil
}

// ReadFrame blocks until a frame arrives, ctx is done or the socket fails.
// Frames larger than buf are truncated. outgoing reports frames transmitted
// from this host by other sockets, a socket never sees its own transmissions.
func (c *Channel) ReadFrame(ctx context.Context, buf []byte) (int, bool, error) {
	fds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}

		ready, err := c.waitPoll(fds)
		if err != nil {
			c.stat.RxErrors++
			return 0, false, errcode.Wrap(errcode.IoFailure, err, "poll %s", c.name)
		}
		if !ready {
			continue
		}

		c.stat.RxIOs++
		n, from, err := unix.Recvfrom(c.fd, buf, unix.MSG_DONTWAIT)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			c.stat.RxErrors++
			return 0, false, errcode.Wrap(errcode.IoFailure, err, "unix.Recvfrom %s", c.name)
		}

		var outgoing bool
		if ll, ok := from.(*unix.SockaddrLinklayer); ok {
			outgoing = ll.Pkttype == unix.PACKET_OUTGOING
		}
		c.stat.RxPackets++
		c.stat.RxBytes += uint64(n)
		return n, outgoing, nil
	}
}

func (c *Channel) waitPoll(fds []unix.PollFd) (bool, error) {
	n, err := unix.Poll(fds, int(c.pollTimeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, errors.Wrap(err, "unix.Poll")
	}
	if n > 0 && fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, errors.Errorf("poll revents 0x%x", fds[0].Revents)
	}
	return n > 0, nil
}

func (c *Channel) Stats() netutil.Statistics {
	c.stat.Timestamp = time.Now()
	return c.stat
}

func (c *Channel) Close() error {
	return unix.Close(c.fd)
}
