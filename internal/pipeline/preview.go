package pipeline

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"sweep_radar/internal/discord"
	"sweep_radar/internal/model"
	"sweep_radar/internal/sites"
)

const previewTitleWidth = 60

func (r *Runner) preview(site sites.Site, entries []model.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("%s (dry run)", site.Name))
	t.AppendHeader(table.Row{"#", "Title", "Ends", "Enter", "Post"})
	for i, e := range entries {
		t.AppendRow(table.Row{
			i + 1,
			discord.Truncate(e.Title, previewTitleWidth),
			discord.FormatDate(e.EndDate, r.loc),
			e.EntryLink,
			e.Source,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d would be sent", len(entries))})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
