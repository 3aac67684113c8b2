package console

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cybercog/ban/publish"
)

// PublishCommand copies the assets declared by service providers.
//
//	vendor:publish [--force] [--tag ban-migrations]
func PublishCommand(k *Kernel) *cobra.Command {
	var (
		force bool
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "vendor:publish",
		Short: "Publish any publishable assets from packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			publisher := k.app.Publisher()
			if len(publisher.Assets()) == 0 {
				fmt.Fprintln(out, "No publishable resources.")
				return nil
			}

			res, err := publisher.Publish(cmd.Context(), publish.Options{Force: force, Tags: tags})
			if err != nil {
				return err
			}
			for _, p := range res.Copied {
				fmt.Fprintf(out, "Copied %s\n", k.display(p))
			}
			for _, p := range res.Skipped {
				fmt.Fprintf(out, "Skipped %s (exists)\n", k.display(p))
			}
			fmt.Fprintln(out, "Publishing complete.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite any existing files")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tags that have assets you want to publish")
	return cmd
}
