package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"whatsapp-chat-analyzer/internal/apiclient"
	"whatsapp-chat-analyzer/internal/cache"
	"whatsapp-chat-analyzer/internal/pkg/term"
)

func submitCmd() *cobra.Command {
	var serverAddr, user, xlsxPath string
	var poll, timeout time.Duration
	var asJSON, byHash bool

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Analyze a chat on the analysis server",
		Long:  `Uploads the export to the server, waits for the task and prints the report. With --by-hash the server cache is asked first and the file is uploaded only on a miss.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := apiclient.New(serverAddr, 0)
			errOut := cmd.ErrOrStderr()

			status, err := runRemoteTask(ctx, client, args[0], byHash, poll)
			if err != nil {
				return err
			}
			if status.Status == apiclient.StatusFailed {
				return fmt.Errorf("task %s failed (%s): %s", status.TaskID, status.ErrorKind, status.ErrorMessage)
			}
			fmt.Fprintf(errOut, "Task %s completed: %d records, %d with unrecognized date\n",
				status.TaskID, status.Records, status.Unresolved)

			report, err := client.GetReport(ctx, status.TaskID, user)
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), report, asJSON, term.StdoutWidth()); err != nil {
				return err
			}

			if xlsxPath != "" {
				data, err := client.GetReportXLSX(ctx, status.TaskID, user)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(errOut, "Excel report written to %s\n", xlsxPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	cmd.Flags().StringVar(&user, "user", "", "Restrict the report to one author")
	cmd.Flags().DurationVar(&poll, "poll", 2*time.Second, "Task status polling interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&byHash, "by-hash", false, "Try the server cache before uploading")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also download the Excel report")

	return cmd
}

// runRemoteTask запускает задачу на сервере и дожидается ее завершения.
func runRemoteTask(ctx context.Context, client *apiclient.Client, path string, byHash bool, poll time.Duration) (*apiclient.TaskStatusResponse, error) {
	if byHash {
		hash, err := cache.CalculateFileHash(path)
		if err != nil {
			return nil, err
		}
		started, err := client.ProcessByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		status, err := client.WaitForTask(ctx, started.TaskID, poll)
		if err != nil {
			return nil, err
		}
		if status.Status == apiclient.StatusCompleted {
			return status, nil
		}
		// Промах кэша: загружаем файл
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	started, err := client.StartTask(ctx, apiclient.DocumentFile{Name: filepath.Base(path), Content: f})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}
	return client.WaitForTask(ctx, started.TaskID, poll)
}
