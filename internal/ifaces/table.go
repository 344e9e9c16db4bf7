package ifaces

import (
	"io"
	"net"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders infos as a NAME/FLAGS/IPv4/IPv6 table, the listing
// the CLI prints when no interface is given, grounded on the teacher's
// internal/output/table.go tablewriter configuration.
func WriteTable(w io.Writer, infos []Info) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "FLAGS", "IPv4", "IPv6"})
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, info := range infos {
		table.Append([]string{
			info.Name,
			info.Flags.String(),
			joinIPs(info.IPv4),
			joinIPs(info.IPv6),
		})
	}

	table.Render()
}

func joinIPs(ips []net.IP) string {
	if len(ips) == 0 {
		return "-"
	}
	parts := make([]string, len(ips))
	for i, ip := range ips {
		parts[i] = ip.String()
	}
	return strings.Join(parts, ", ")
}
