package probe

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zxhio/wolping/cmd/wolping/util"
	"github.com/zxhio/wolping/internal/channel"
	"github.com/zxhio/wolping/internal/iface"
	"github.com/zxhio/wolping/internal/listener"
	"github.com/zxhio/wolping/internal/magic"
	"github.com/zxhio/wolping/internal/probe"
	"github.com/zxhio/wolping/pkg/fastpkt"
	"github.com/zxhio/wolping/pkg/utils"
)

var probeCmd = cobra.Command{
	Use:     "probe <mac>",
	Short:   "Send an ARP or ICMP probe to a hardware address and print the replies",
	Aliases: []string{"p"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runProbe(args[0])
	},
}

var _ pflag.Value = (*probe.Mode)(nil)

var (
	mode         = probe.ModeICMP
	ifaceName    string
	ifaceIndex   int
	loopback     bool
	upOnly       bool
	timeout      time.Duration
	count        int
	onlyTarget   bool
	echoID       uint16
	echoSeq      uint16
	echoPayload  string
	pollInterval time.Duration
)

func init() {
	util.DisableSortFlags(&probeCmd)
	probeCmd.Flags().VarP(&mode, "mode", "m", "Probe mode, arp or icmp")
	probeCmd.Flags().StringVarP(&ifaceName, "interface", "i", "", "Interface name, first ipv4 capable interface if empty")
	probeCmd.Flags().IntVar(&ifaceIndex, "index", 0, "Index among ipv4 capable interfaces, see `wolping ifaces`")
	probeCmd.Flags().BoolVar(&loopback, "loopback", false, "Count loopback interfaces when selecting by index")
	probeCmd.Flags().BoolVar(&upOnly, "up", false, "Only count interfaces that are up when selecting by index")
	probeCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Stop listening after timeout, 0 until interrupted")
	probeCmd.Flags().IntVarP(&count, "count", "c", 0, "Stop after count replies, 0 unlimited")
	probeCmd.Flags().BoolVar(&onlyTarget, "only-target", false, "Only print replies sent from the target")
	probeCmd.Flags().Uint16Var(&echoID, "id", 0, "ICMPv4 echo request id")
	probeCmd.Flags().Uint16Var(&echoSeq, "seq", 0, "ICMPv4 echo request sequence")
	probeCmd.Flags().StringVar(&echoPayload, "payload", "", "ICMPv4 echo request payload")
	probeCmd.Flags().DurationVar(&pollInterval, "poll-interval", channel.DefaultPollTimeout, "Receive poll interval")
}

func runProbe(mac string) {
	target, err := magic.ParseHwAddr(mac)
	utils.CheckErrorAndExit(err, "Invalid mac address %s", mac)
	utils.CheckEqualAndExit(count >= 0, "Invalid count %d", count)
	utils.CheckEqualAndExit(ifaceIndex >= 0, "Invalid index %d", ifaceIndex)
	utils.CheckEqualAndExit(len(echoPayload) <= probe.MaxICMPPayload, "Payload too large, %d > %d bytes", len(echoPayload), probe.MaxICMPPayload)

	var filters []iface.Filter
	if !loopback {
		filters = append(filters, iface.NotLoopback)
	}
	if upOnly {
		filters = append(filters, iface.IsUp)
	}
	link, err := iface.Lookup(ifaceName, ifaceIndex, filters...)
	util.CheckErrorAndExit(err, "Select interface failed")

	src, err := probe.NewSource(link)
	util.CheckErrorAndExit(err, "Invalid interface %s", link.Name)

	ch, err := channel.Open(link.Name, channel.WithPollTimeout(pollInterval))
	util.CheckErrorAndExit(err, "Open channel on %s failed", link.Name)
	defer ch.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx := probe.NewTransmitter(ch, src,
		probe.WithEchoID(echoID),
		probe.WithEchoSeq(echoSeq),
		probe.WithEchoPayload([]byte(echoPayload)),
	)
	frame, err := tx.Send(mode, target)
	util.CheckErrorAndExit(err, "Send %s probe failed", mode)

	fmt.Printf("%s %s probe to %s via %s (%s, %s), %d bytes\n",
		fastpkt.FormatDumpTime(time.Now()), mode, target, link.Name, src.HwAddr, src.IP, len(frame))
	utils.VerboseHexdump(frame, "PACKET hexdump")

	frameSize := max(link.MTU+fastpkt.SizeofEthernet+fastpkt.SizeofVLAN, listener.DefaultFrameSize)
	opts := []listener.Opt{listener.WithFrameSize(frameSize)}
	if onlyTarget {
		opts = append(opts, listener.WithSender(target))
	}

	utils.VerbosePrintln("Listening on %s, timeout %s, count %d", link.Name, timeout, count)

	var replies int
	err = listener.New(ch, opts...).Run(ctx, func(reply listener.Reply) bool {
		replies++
		fmt.Printf("%s %s\n", fastpkt.FormatDumpTime(reply.Time), reply)
		utils.VerboseHexdump(reply.Frame, "REPLY hexdump")
		return count == 0 || replies < count
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	logrus.WithFields(ch.Stats().Fields()).WithField("replies", replies).Info("Probe finished")
	fmt.Printf("%d replies\n", replies)
	util.CheckErrorAndExit(err, "Receive replies failed")
}

func Export(parent *cobra.Command) {
	parent.AddCommand(&probeCmd)
}
