package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/domports/session"
)

func newRunCommand(a *app) *cobra.Command {
	var (
		page    string
		scripts []string
		dump    bool
	)
	cmd := &cobra.Command{
		Use:   "run --page page.html --script app.js",
		Short: "Run a JavaScript application against a page through its ports",
		Long: `Loads the page, binds the application handle (app by default) whose
ports are wired to the page, runs the scripts and drains the event loop.
Every emission is written to stdout as a JSON line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(scripts) == 0 && !a.cfg.Script.PageScripts {
				return fmt.Errorf("at least one --script is required unless page scripts are enabled")
			}
			ctx := cmd.Context()

			s, err := session.New(a.cfg, a.logger, session.NewJSONLines(cmd.OutOrStdout(), a.logger))
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Load(ctx, page); err != nil {
				return err
			}

			var all []session.Script
			if a.cfg.Script.PageScripts {
				pageScripts, err := s.PageScripts(ctx)
				if err != nil {
					return err
				}
				all = append(all, pageScripts...)
			}
			for _, ref := range scripts {
				script, err := s.ReadScript(ctx, ref)
				if err != nil {
					return err
				}
				all = append(all, script)
			}

			rt, err := s.RunApp(ctx, all)
			if err != nil {
				return err
			}
			for _, scriptErr := range rt.Errors() {
				a.logger.Warn("Script error", zap.Error(scriptErr))
			}

			if dump {
				fmt.Fprintln(cmd.OutOrStdout(), s.Markup())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&page, "page", "p", "", "HTML page to load (file path or http(s) URL)")
	flags.StringArrayVarP(&scripts, "script", "s", nil, "application script to run (repeatable)")
	flags.BoolVar(&dump, "dump", false, "print the final document markup after the run")
	flags.Duration("timeout", 0, "how long to drain the event loop (default from config)")
	flags.Bool("page-scripts", false, "run the page's own <script> elements first")
	_ = cmd.MarkFlagRequired("page")
	_ = a.v.BindPFlag("script.timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("script.page_scripts", flags.Lookup("page-scripts"))
	return cmd
}
