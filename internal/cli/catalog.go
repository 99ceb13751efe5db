package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomwugdgz/qqtime/internal/catalog"
	"github.com/tomwugdgz/qqtime/internal/model"
)

func parseMinutes(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("minutes must be an integer: %q", s)
	}
	return n, nil
}

func parseKind(s string) (model.TransactionType, error) {
	switch model.TransactionType(strings.ToUpper(s)) {
	case model.TransactionEarn:
		return model.TransactionEarn, nil
	case model.TransactionPenalty:
		return model.TransactionPenalty, nil
	}
	return "", fmt.Errorf("kind must be earn or penalty, got %q", s)
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage earn and penalty options",
	}
	cmd.AddCommand(newCatalogListCmd(), newCatalogAddCmd(), newCatalogDeleteCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [earn|penalty]",
		Short: "List options",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			kinds := []model.TransactionType{model.TransactionEarn, model.TransactionPenalty}
			if len(args) == 1 {
				k, err := parseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []model.TransactionType{k}
			}

			c := a.bank.Catalog()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "类型\tID\t名称\t分类\t默认时长\t比例")
			for _, k := range kinds {
				opts, err := catalog.Options(c, k)
				if err != nil {
					return err
				}
				for _, o := range opts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%g\n", k.Label(), o.ID, o.Name, o.Category, o.DefaultDurationMinutes, o.ExchangeRatio)
				}
			}
			return tw.Flush()
		}),
	}
}

func newCatalogAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add earn|penalty NAME",
		Short: "Add a custom option",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			category, _ := cmd.Flags().GetString("category")
			minutes, _ := cmd.Flags().GetInt("minutes")

			opt := catalog.NewOption(kind, args[1], model.Category(category), minutes)
			if cmd.Flags().Changed("ratio") {
				opt.ExchangeRatio, _ = cmd.Flags().GetFloat64("ratio")
			}
			if d, _ := cmd.Flags().GetString("desc"); d != "" {
				opt.Description = d
			}

			added, err := a.bank.AddOption(kind, opt)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已添加 %s (%s)\n", added.Name, added.ID)
			return nil
		}),
	}
	cmd.Flags().StringP("category", "c", string(model.CategoryStudy), "Category label, e.g. 学习成长 or 品德违规")
	cmd.Flags().IntP("minutes", "m", 0, "Default duration in minutes")
	cmd.Flags().Float64("ratio", 0, "Exchange ratio (earn options only)")
	cmd.Flags().StringP("desc", "d", "", "Hint text")
	return cmd
}

func newCatalogDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete earn|penalty ID",
		Short: "Delete an option; existing transactions are kept",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			if err := a.bank.DeleteOption(kind, args[1], yes); err != nil {
				return confirmHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %s\n", args[1])
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm the deletion")
	return cmd
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			st := a.bank.Settings()
			if g, _ := cmd.Flags().GetString("age-group"); g != "" {
				var err error
				if st, err = a.bank.SetAgeGroup(model.AgeGroup(g)); err != nil {
					return err
				}
			}
			l := a.bank.Limits()
			fmt.Fprintf(cmd.OutOrStdout(), "年龄段: %s\n存折上限: %d 分钟\n单次游玩上限: %d 分钟\n零花钱: %d 分钟 = ¥%d\n",
				st.AgeGroup, l.Ceiling(), l.MaxPlayMinutes(), l.CashRateMinutes, l.CashRateAmount)
			return nil
		}),
	}
	cmd.Flags().String("age-group", "", "Set the age group: 3-6, 7-12 or 13-16")
	return cmd
}
