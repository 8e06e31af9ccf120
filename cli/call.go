package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wayfire-ipc/message"
)

func newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call METHOD [JSON]",
		Short: "Send any method with an optional JSON data payload",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp(cmd)
			var data any
			if len(args) == 2 {
				doc, err := message.ParseDocument([]byte(args[1]))
				if err != nil {
					return fmt.Errorf("data: %w", err)
				}
				data = doc
			}
			resp, err := a.client.Call(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			return a.print(cmd, resp)
		},
	}
}
