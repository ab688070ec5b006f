package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"whatsapp-chat-analyzer/internal/domain"
)

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users FILE",
		Short: "List the filter options of a chat: Overall and every author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript, err := loadTranscript(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, domain.OverallFilter)
			for _, a := range transcript.Authors() {
				fmt.Fprintln(out, a)
			}
			return nil
		},
	}
}
