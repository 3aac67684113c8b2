package console

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cybercog/ban/version"
)

// AboutCommand prints the application, build and provider information.
func AboutCommand(k *Kernel) *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "Display basic information about the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := k.app
			providers := make([]string, 0, len(app.Providers()))
			for _, p := range app.Providers() {
				providers = append(providers, p.Name())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rows := [][2]string{
				{"Application", app.Name},
				{"Environment", app.Environment},
				{"Version", version.Get().String()},
				{"Base path", app.BasePath()},
				{"Migrations", app.MigrationsPath()},
				{"Providers", strings.Join(providers, ", ")},
				{"Publish tags", strings.Join(app.Publisher().Tags(), ", ")},
			}
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
			}
			return w.Flush()
		},
	}
}
