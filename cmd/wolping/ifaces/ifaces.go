package ifaces

import (
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/zxhio/wolping/cmd/wolping/util"
	"github.com/zxhio/wolping/internal/iface"
)

var (
	all      bool
	loopback bool
	upOnly   bool
)

var ifacesCmd = cobra.Command{
	Use:     "ifaces",
	Short:   "List interfaces usable for probing",
	Aliases: []string{"i"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		links, err := iface.List()
		util.CheckErrorAndExit(err, "List interfaces failed")

		var filters []iface.Filter
		if !loopback {
			filters = append(filters, iface.NotLoopback)
		}
		if upOnly {
			filters = append(filters, iface.IsUp)
		}
		candidates := iface.Candidates(links, filters...)

		data := [][]any{}
		for idx, link := range candidates {
			data = append(data, row(strconv.Itoa(idx), link))
		}
		if all {
			for _, link := range links {
				if !containsLink(candidates, link) {
					data = append(data, row("-", link))
				}
			}
		}

		table := tablewriter.NewTable(os.Stdout,
			tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
				Borders: tw.BorderNone,
				Settings: tw.Settings{
					Separators: tw.SeparatorsNone,
					Lines:      tw.LinesNone,
				},
			})),
		)
		table.Header("Index", "Name", "Ifindex", "MAC", "IPv4", "Broadcast", "MTU", "State", "Physical")
		table.Bulk(data)
		table.Render()
	},
}

func init() {
	util.DisableSortFlags(&ifacesCmd)
	ifacesCmd.Flags().BoolVarP(&all, "all", "a", false, "Also list interfaces that cannot be selected")
	ifacesCmd.Flags().BoolVar(&loopback, "loopback", false, "Count loopback interfaces as candidates")
	ifacesCmd.Flags().BoolVar(&upOnly, "up", false, "Only count interfaces that are up as candidates")
}

func row(idx string, link iface.Link) []any {
	var addrs, bcasts []string
	for _, prefix := range link.IPv4 {
		addrs = append(addrs, prefix.String())
		bcasts = append(bcasts, prefix.Broadcast().String())
	}

	physical := "no"
	if link.Physical {
		physical = "yes"
		if link.Wireless {
			physical = "wireless"
		}
	}

	return []any{
		idx,
		link.Name,
		link.Index,
		orDash(link.HardwareAddr.String()),
		orDash(strings.Join(addrs, ",")),
		orDash(strings.Join(bcasts, ",")),
		link.MTU,
		link.OperState,
		physical,
	}
}

func containsLink(links []iface.Link, link iface.Link) bool {
	for _, l := range links {
		if l.Index == link.Index {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func Export(parent *cobra.Command) {
	parent.AddCommand(&ifacesCmd)
}
