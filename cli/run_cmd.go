package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dwqueries/config"
	"dwqueries/models"
	"dwqueries/queries"
	"dwqueries/service"
	"dwqueries/validation"
)

var errRunFailed = errors.New("one or more queries failed")

func newRunCmd() *cobra.Command {
	var (
		rawParams []string
		save      string
	)

	cmd := &cobra.Command{
		Use:   "run [query.sql...]",
		Short: "Run query files and print their results as a transcript",
		Long: "Runs the named query files, or every file in the queries directory when none are named, " +
			"in one session. Each run is printed as a marker line followed by an ASCII table or an error line.",
		Example: `  dwqueries run query1.sql
  dwqueries run query3.sql --param zone=132 --param day=2024-07-01 --save csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validation.IsValidFormat(save) {
				return fmt.Errorf("unsupported save format %q: use 'json' or 'csv'", save)
			}
			params, err := parseParamFlags(rawParams)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			files, err := queries.Discover(cfg.SQLFilesDir)
			if err != nil {
				return err
			}
			selected, err := selectQueries(files, args)
			if err != nil {
				return err
			}

			sess, err := openSession(cmd.Context(), cfg, cmd.OutOrStdout(), logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			opts := service.RunOptions{Save: save != "", Format: save}
			failed := false
			for _, qf := range selected {
				outcome, err := sess.runner.Run(cmd.Context(), qf, params, opts)
				if err != nil {
					// Execution errors are already in the transcript.
					if outcome == nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", qf.Name, err)
					}
					failed = true
					continue
				}
				if outcome.Filename != "" {
					logger.Info("result saved", "query", qf.Name, "file", outcome.Filename)
				}
			}

			if failed {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&rawParams, "param", "p", nil, "Query parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&save, "save", "", "Also save each result to the results directory as json or csv")
	return cmd
}

// parseParamFlags turns name=value pairs into a map. The value may be empty.
func parseParamFlags(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || !validation.IsValidParamName(name) {
			return nil, fmt.Errorf("invalid --param %q: want name=value", kv)
		}
		params[name] = value
	}
	return params, nil
}

// selectQueries returns the named files in argument order, or all files when
// no names are given.
func selectQueries(files []models.QueryFile, names []string) ([]models.QueryFile, error) {
	if len(names) == 0 {
		if len(files) == 0 {
			return nil, errors.New("no .sql files found in the queries directory")
		}
		return files, nil
	}

	selected := make([]models.QueryFile, 0, len(names))
	for _, name := range names {
		qf, err := service.FindQuery(files, name)
		if err != nil {
			return nil, err
		}
		selected = append(selected, qf)
	}
	return selected, nil
}
