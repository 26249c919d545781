package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"audittrack-engine/internal/analytics"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/llm"
	"audittrack-engine/internal/requirements"
	"audittrack-engine/internal/secrets"
)

func requirementsCmd() *cobra.Command {
	var typ string
	var lowVolume, asJSON bool
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Print the document checklist for a discharge type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := domain.ParseDischargeType(typ)
			if err != nil {
				return err
			}
			docs := requirements.Resolve(d, lowVolume)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndented(out, docs)
			}
			fmt.Fprintf(out, "%s (%s) low_volume=%t: %d documents\n\n", d, d.Code(), lowVolume, len(docs))
			for _, doc := range docs {
				fmt.Fprintf(out, "%-10s %s\n", doc.ID, doc.Title)
				for _, line := range strings.Split(doc.Description, "\n") {
					fmt.Fprintf(out, "%-10s   %s\n", "", line)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&typ, "type", "", "Discharge type code or value (e.g. DIRECT, INDIRECT_PRE)")
	f.BoolVar(&lowVolume, "low-volume", false, "Facility discharges under 15 m3/day")
	f.BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func analyticsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Print closure-duration statistics from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			_, loadCfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg, dir)
			if err != nil {
				return err
			}
			defer be.close()

			companies, err := be.repo.List(cmd.Context())
			if err != nil {
				return err
			}
			rep := analytics.Summarize(companies, cfg.Location())
			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndented(out, rep)
			}
			printReport(out, rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printReport(out io.Writer, rep analytics.Report) {
	fmt.Fprintf(out, "Closed audits: %d\nAverage business days: %.1f\n", rep.TotalClosed, rep.AverageDays)
	if rep.Fastest != nil {
		fmt.Fprintf(out, "Fastest: %s (%d days)\n", rep.Fastest.Name, rep.Fastest.BusinessDays)
	}
	if rep.Slowest != nil {
		fmt.Fprintf(out, "Slowest: %s (%d days)\n", rep.Slowest.Name, rep.Slowest.BusinessDays)
	}
	if len(rep.Monthly) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MONTH\tAUDITS\tAVG DAYS")
		for _, m := range rep.Monthly {
			fmt.Fprintf(tw, "%s\t%d\t%.1f\n", m.Label, m.Count, m.Average)
		}
		_ = tw.Flush()
	}
	if len(rep.History) > 0 {
		fmt.Fprintln(out)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CLOSED\tCOMPANY\tDAYS")
		for _, h := range rep.History {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", h.ClosedAt.Format("2006-01-02"), h.Name, h.BusinessDays)
		}
		_ = tw.Flush()
	}
}

func secretsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "secrets",
		Short: "Manage credentials in the OS keychain",
	}

	var provider string
	setKey := &cobra.Command{
		Use:   "set-api-key [key]",
		Short: "Store the text-generation API key (reads stdin when no argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProvider(provider)
			if err != nil {
				return err
			}
			key, err := secretArg(cmd, args)
			if err != nil {
				return err
			}
			if err := secrets.SetAPIKey(p, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s api key\n", p)
			return nil
		},
	}
	delKey := &cobra.Command{
		Use:   "delete-api-key",
		Short: "Remove the stored text-generation API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProvider(provider)
			if err != nil {
				return err
			}
			return secrets.DeleteAPIKey(p)
		},
	}
	for _, c := range []*cobra.Command{setKey, delKey} {
		c.Flags().StringVar(&provider, "provider", "", "gemini or anthropic (default: provider of generation.model)")
	}

	setIMAP := &cobra.Command{
		Use:   "set-imap-password [password]",
		Short: "Store the IMAP password for email.username@email.imap_host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			_, loadCfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			pw, err := secretArg(cmd, args)
			if err != nil {
				return err
			}
			account := secrets.IMAPKeyringAccount(cfg.Email)
			if err := secrets.SetIMAPPassword(account, pw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s\n", account)
			return nil
		},
	}

	root.AddCommand(setKey, delKey, setIMAP)
	return root
}

// resolveProvider falls back to the provider of the configured model.
func resolveProvider(flag string) (string, error) {
	if flag != "" {
		_, _, err := llm.ParseModel(flag + ":x")
		return flag, err
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	_, loadCfg, err := loadConfig(dir)
	if err != nil {
		return "", err
	}
	cfg, err := loadCfg()
	if err != nil {
		return "", err
	}
	p, _, err := llm.ParseModel(cfg.Generation.Model)
	return p, err
}

func secretArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
