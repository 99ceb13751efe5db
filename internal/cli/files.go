package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomwugdgz/qqtime/internal/backup"
)

const passphraseEnv = "QQTIME_BACKUP_PASSPHRASE"

func passphrase(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("passphrase"); p != "" {
		return p
	}
	return os.Getenv(passphraseEnv)
}

// output opens path for writing, or stdout for "-".
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history",
	}
	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Write the history as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = backup.CSVFilename(a.bank.Now())
			}
			w, err := output(cmd, path)
			if err != nil {
				return err
			}
			if err := backup.WriteCSV(w, a.bank.History(), a.bank.Location()); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}
			return nil
		}),
	}
	csvCmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default timebank_export_<date>.csv)")
	cmd.AddCommand(csvCmd)
	return cmd
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup (balance, history and options)",
		Long: `Write a full backup. With --passphrase (or $QQTIME_BACKUP_PASSPHRASE)
the file is encrypted with AES-256-GCM under an Argon2id-derived key.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			data, err := backup.Marshal(a.bank.Backup())
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = backup.Filename(a.bank.Now())
			}
			if pass := passphrase(cmd); pass != "" {
				if data, err = backup.Encrypt(data, pass); err != nil {
					return err
				}
				if !cmd.Flags().Changed("output") {
					path += ".enc"
				}
			}

			w, err := output(cmd, path)
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				w.Close()
				return fmt.Errorf("write backup: %w", err)
			}
			if err := w.Close(); err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
			}
			return nil
		}),
	}
	cmd.Flags().StringP("output", "o", "", "Output file, - for stdout (default timebank_backup_<date>.json)")
	cmd.Flags().String("passphrase", "", "Encrypt the backup")
	return cmd
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace balance and history from a backup; options are kept",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			yes, _ := cmd.Flags().GetBool("yes")
			imported, err := a.bank.Import(data, passphrase(cmd), yes)
			if err != nil {
				return confirmHint(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "导入成功: 余额 %d 分钟, %d 条记录\n", imported.Balance, len(imported.Transactions))
			return nil
		}),
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm replacing the current data")
	cmd.Flags().String("passphrase", "", "Passphrase for an encrypted backup")
	return cmd
}
