package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dwqueries/config"
	"dwqueries/models"
	"dwqueries/queries"
)

func newListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the query files in the queries directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				cfg, err := config.LoadLocal()
				if err != nil {
					return err
				}
				dir = cfg.SQLFilesDir
			}

			files, err := queries.Discover(dir)
			if err != nil {
				return err
			}
			if files == nil {
				files = []models.QueryFile{}
			}

			for i := range files {
				files[i].SQL = ""
			}
			if done, err := printStructured(cmd, files); done {
				return err
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintf(out, "No .sql files found in %s\n", dir)
				return nil
			}
			for i, f := range files {
				fmt.Fprintf(out, "%d) %s - %s%s\n", i+1, f.Name, f.Title, formatParams(f.Params))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Queries directory (default $DW_QUERIES_DIR or ./sql_files)")
	return cmd
}

func formatParams(specs []models.ParamSpec) string {
	if len(specs) == 0 {
		return ""
	}
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = s.Name + ":" + string(s.Type)
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
