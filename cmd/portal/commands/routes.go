package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/royalton/portal/internal/handlers"
	"github.com/royalton/portal/internal/store"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes [path...]",
		Short: "List the page table, or show how paths resolve",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog()
			if err != nil {
				return err
			}
			site := handlers.New(handlers.Deps{Store: store.NewMemory(), Catalog: catalog, Logger: log})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if len(args) == 0 {
				for i, p := range site.Pages() {
					fmt.Fprintf(w, "%d\t%s\n", i+1, p)
				}
				return w.Flush()
			}
			for _, target := range args {
				m := site.Resolve(target)
				fmt.Fprintf(w, "%s\t%s\t%s\n", target, m.Kind, m.Path)
			}
			return w.Flush()
		},
	}
}
