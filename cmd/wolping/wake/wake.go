package wake

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"github.com/zxhio/wolping/cmd/wolping/util"
	"github.com/zxhio/wolping/internal/magic"
	"github.com/zxhio/wolping/pkg/utils"
)

var sendAddr string

var wakeCmd = cobra.Command{
	Use:     "wake <mac>",
	Short:   "Send a Wake-on-LAN magic packet",
	Aliases: []string{"w"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		Run(args[0])
	},
}

func init() {
	util.DisableSortFlags(&wakeCmd)
	AddFlags(&wakeCmd)
}

// AddFlags registers the wake flags on cmd, the root command accepts them
// too so that `wolping <mac>` works.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sendAddr, "addr", magic.DefaultSendAddr.String(), "Broadcast address and port")
}

func Run(mac string) {
	pkt, err := magic.Parse(mac)
	utils.CheckErrorAndExit(err, "Invalid mac address %s", mac)

	addr, err := net.ResolveUDPAddr("udp4", sendAddr)
	utils.CheckErrorAndExit(err, "Invalid address %s", sendAddr)

	fmt.Printf("Sending magic packet for %s\n", mac)
	err = pkt.Send(magic.WithSendAddr(addr))
	utils.CheckErrorAndExit(err, "Send magic packet failed")
	fmt.Println("done")
}

func Export(parent *cobra.Command) {
	parent.AddCommand(&wakeCmd)
}
