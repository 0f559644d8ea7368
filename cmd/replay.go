package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/domports/session"
)

func newReplayCommand(a *app) *cobra.Command {
	var (
		page string
		dump bool
	)
	cmd := &cobra.Command{
		Use:   "replay --page page.html scenario.yaml",
		Short: "Replay a scenario of port commands and DOM events against a page",
		Long: `Each scenario step is either a port command:

  - port: addClass
    payload: ["#menu", "open"]

or a synthetic DOM event:

  - fire: {selector: "#menu", type: click, clientX: 10, clientY: 20}

Use - to read the scenario from stdin. Every emission is written to stdout
as a JSON line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := readScenario(cmd, args[0])
			if err != nil {
				return err
			}

			s, err := session.New(a.cfg, a.logger, session.NewJSONLines(cmd.OutOrStdout(), a.logger))
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Load(cmd.Context(), page); err != nil {
				return err
			}
			if err := s.Replay(cmd.Context(), sc); err != nil {
				return err
			}
			if dump {
				fmt.Fprintln(cmd.OutOrStdout(), s.Markup())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&page, "page", "p", "", "HTML page to load (file path or http(s) URL)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the final document markup after the replay")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func readScenario(cmd *cobra.Command, path string) (*session.Scenario, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(expanded)
		if err != nil {
			return nil, fmt.Errorf("open scenario: %w", err)
		}
		defer f.Close()
		r = f
	}
	return session.LoadScenario(r)
}
