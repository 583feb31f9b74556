package cmd

import (
	"bytes"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListAdapters prints the adapter the platform picks for each power preference.
func ListAdapters(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	summaries := renderer.ListAdapters(ctx.Bool("software"))
	logger.Noticef("available adapters\n%s", adapterTable(summaries))
	return nil
}

func adapterTable(summaries []renderer.AdapterSummary) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Preference", "Name", "Vendor", "Type", "Backend", "Driver"})
	for _, s := range summaries {
		if s.Err != nil {
			table.Append([]string{s.Preference.String(), "unavailable: " + s.Err.Error(), "", "", "", ""})
			continue
		}
		table.Append([]string{
			s.Preference.String(),
			s.Info.Name,
			s.Info.VendorName,
			fmt.Sprintf("%v", s.Info.AdapterType),
			fmt.Sprintf("%v", s.Info.BackendType),
			s.Info.DriverDescription,
		})
	}
	table.Render()
	return buf.String()
}
