package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/model"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			g := a.bank.Gauge()
			fmt.Fprintf(cmd.OutOrStdout(), "余额: %d小时%d分钟 (%d/%d 分钟, %.0f%%, %s)\n",
				g.Hours, g.Minutes, g.Balance, g.MaxMinutes, g.Percent, g.Level)
			if g.Full {
				fmt.Fprintln(cmd.OutOrStdout(), "存折已满")
			}
			return nil
		}),
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			limit, _ := cmd.Flags().GetInt("limit")
			txs := a.bank.History()
			if limit > 0 && len(txs) > limit {
				txs = txs[:limit]
			}
			printTransactions(cmd.OutOrStdout(), txs, a)
			return nil
		}),
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum rows to show (0 for all)")
	return cmd
}

func printTransactions(w io.Writer, txs []model.Transaction, a *app) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "时间\t类型\t项目\t描述\t时长\t变动")
	loc := a.bank.Location()
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%+d\n",
			tx.Time(loc).Format("2006-01-02 15:04"),
			tx.Type.Label(),
			tx.Category,
			tx.Description,
			tx.InputDuration,
			tx.BankImpactMinutes,
		)
	}
	tw.Flush()
}

func printReceipt(w io.Writer, r bank.Receipt) {
	fmt.Fprintf(w, "%s %s: %+d 分钟, 余额 %d 分钟\n",
		r.Transaction.Type.Label(), r.Transaction.Description, r.Transaction.BankImpactMinutes, r.Balance)
	if r.Clamped {
		fmt.Fprintf(w, "(已按存折上下限调整, 原变动 %+d)\n", r.RequestedImpact)
	}
}

func newEarnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "earn ACTIVITY_ID",
		Short: "Credit minutes for an activity",
		Long:  "Credit minutes for an earn activity. Without --minutes the activity's default duration is used.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			minutes, _ := cmd.Flags().GetInt("minutes")
			desc, _ := cmd.Flags().GetString("desc")
			r, err := a.bank.Earn(args[0], minutes, desc)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), r)
			return nil
		}),
	}
	cmd.Flags().IntP("minutes", "m", 0, "Minutes spent on the activity")
	cmd.Flags().StringP("desc", "d", "", "Description (defaults to the activity name)")
	return cmd
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play MINUTES",
		Short: "Spend minutes on free play",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			minutes, err := parseMinutes(args[0])
			if err != nil {
				return err
			}
			desc, _ := cmd.Flags().GetString("desc")
			r, err := a.bank.Play(minutes, desc)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), r)
			return nil
		}),
	}
	cmd.Flags().StringP("desc", "d", "", "What the time was used for")
	return cmd
}

func newCashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cash MINUTES",
		Short: "Redeem minutes for pocket money",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			minutes, err := parseMinutes(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			r, err := a.bank.RedeemCash(minutes, yes)
			if err != nil {
				return confirmHint(err)
			}
			printReceipt(cmd.OutOrStdout(), r)
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm the redemption")
	return cmd
}

func newPenaltyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "penalty",
		Short: "Deduct minutes for a rule break",
		Long:  "Deduct minutes. With --activity the penalty option supplies the category and, without --minutes, the deduction.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			activity, _ := cmd.Flags().GetString("activity")
			minutes, _ := cmd.Flags().GetInt("minutes")
			desc, _ := cmd.Flags().GetString("desc")
			r, err := a.bank.Penalize(activity, minutes, desc)
			if err != nil {
				return err
			}
			printReceipt(cmd.OutOrStdout(), r)
			return nil
		}),
	}
	cmd.Flags().StringP("activity", "a", "", "Penalty option id")
	cmd.Flags().IntP("minutes", "m", 0, "Minutes to deduct")
	cmd.Flags().StringP("desc", "d", "", "Description")
	return cmd
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the balance and all transactions",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if err := a.bank.Clear(yes); err != nil {
				return confirmHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "所有数据已清空")
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm erasing all data")
	return cmd
}
