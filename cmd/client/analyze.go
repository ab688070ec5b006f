package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"whatsapp-chat-analyzer/internal/adapters/exporter"
	"whatsapp-chat-analyzer/internal/adapters/parser"
	"whatsapp-chat-analyzer/internal/adapters/source"
	"whatsapp-chat-analyzer/internal/core/services"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/pkg/config"
	"whatsapp-chat-analyzer/internal/pkg/term"
	"whatsapp-chat-analyzer/internal/ports"
)

func analyzeCmd(configPath *string) *cobra.Command {
	var user, xlsxPath string
	var asJSON bool
	var width int

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Analyze an exported chat locally",
		Long:  `Parses a WhatsApp export (.txt or the .zip produced by "Export chat") and prints statistics. Use --user to restrict the report to one author.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			transcript, err := loadTranscript(args[0])
			if err != nil {
				return err
			}
			warnTranscript(cmd.ErrOrStderr(), transcript, user)

			report := newAnalyzer(cfg).BuildReport(transcript.Records, user)

			if width == 0 {
				width = term.StdoutWidth()
			}
			if err := printReport(cmd.OutOrStdout(), report, asJSON, width); err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := writeXLSX(xlsxPath, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Excel report written to %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", domain.OverallFilter, "Restrict the report to one author")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report to an Excel file")
	cmd.Flags().IntVar(&width, "width", 0, "Table width (0 = terminal width)")

	return cmd
}

// loadTranscript читает и разбирает экспорт чата.
func loadTranscript(path string) (*domain.Transcript, error) {
	data, err := source.NewCliSource(path).Fetch()
	if err != nil {
		return nil, err
	}
	transcript, err := parser.NewTranscriptParser().Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return transcript, nil
}

func newAnalyzer(cfg *config.Config) ports.Analyzer {
	return services.NewAnalysisService(
		services.WithMediaPlaceholder(cfg.Analysis.MediaPlaceholder),
		services.WithTopUsers(cfg.Analysis.TopUsers),
		services.WithTopWords(cfg.Analysis.TopWords),
	)
}

// warnTranscript предупреждает о неразобранных датах и неизвестном авторе.
func warnTranscript(w io.Writer, transcript *domain.Transcript, user string) {
	if transcript.Unresolved > 0 {
		fmt.Fprintf(w, "warning: %d of %d records have an unrecognized date and are left out of the timelines\n",
			transcript.Unresolved, len(transcript.Records))
	}
	if user == "" || user == domain.OverallFilter {
		return
	}
	for _, a := range transcript.Authors() {
		if a == user {
			return
		}
	}
	fmt.Fprintf(w, "warning: author %q not found, the report is empty\n", user)
}

func printReport(w io.Writer, report *domain.Report, asJSON bool, width int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return exporter.NewConsoleExporter(w, width).Export(report)
}

func writeXLSX(path string, report *domain.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.NewExcelExporter(f).Export(report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
