package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newTrendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Earned and spent minutes over the last seven days",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "日期\t赚取\t消费\t")
			for _, p := range a.bank.Trend() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t\n", p.Label, p.Earn, p.Spend)
			}
			return tw.Flush()
		}),
	}
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Month view: + marks earning days, - spending days",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			now := a.bank.Now()
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("month must be 1-12, got %d", month)
			}

			cal := a.bank.Month(year, time.Month(month))
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d年%d月\n", cal.Year, cal.Month)
			fmt.Fprintln(w, " 日   一   二   三   四   五   六")

			var b strings.Builder
			col := 0
			for range cal.Leading {
				b.WriteString("     ")
				col++
			}
			for _, d := range cal.Days {
				mark := ' '
				switch {
				case d.HasEarn && d.HasSpend:
					mark = '*'
				case d.HasEarn:
					mark = '+'
				case d.HasSpend:
					mark = '-'
				}
				today := ' '
				if d.IsToday {
					today = '<'
				}
				fmt.Fprintf(&b, "%3d%c%c", d.Day, mark, today)
				col++
				if col == 7 {
					b.WriteByte('\n')
					col = 0
				}
			}
			if col != 0 {
				b.WriteByte('\n')
			}
			fmt.Fprint(w, b.String())
			fmt.Fprintf(w, "本月赚取 %d 分钟, 消费 %d 分钟, 净变动 %+d 分钟\n", cal.Stats.Earn, cal.Stats.Spend, cal.Stats.Net)
			return nil
		}),
	}
	cmd.Flags().Int("year", 0, "Year (default current)")
	cmd.Flags().Int("month", 0, "Month 1-12 (default current)")
	return cmd
}
