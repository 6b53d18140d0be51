package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/faber"
	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/prompt"
	"github.com/syssam/faber/watch"
)

func watchCmd() *cobra.Command {
	s := &runSettings{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever the schema document changes",
		Long: `Watch builds once, then waits for the schema document to change and
rebuilds after every save. The loop never asks questions: existing files
are skipped unless --force or --yes-to-all says otherwise. Stop it with
Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadFileConfig(".")
			if err != nil {
				return err
			}
			s.fill(cmd, cfg)

			opts, err := s.options(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			// A rebuild must never stall on a terminal question.
			opts = append(opts, gen.WithPrompter(prompt.Static{Yes: s.yesToAll}))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			w := watch.New(s.schema, func(context.Context) error {
				report, err := faber.Generate(s.schema, opts...)
				if err != nil {
					return err
				}
				printReport(out, report, false)
				return faber.NewBuildError(report)
			},
				watch.WithDebounce(debounce),
				watch.WithLogger(log.New(cmd.ErrOrStderr(), "faber: ", 0)),
			)
			return w.Run(ctx)
		},
	}

	s.addFlags(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period between a save and the rebuild")

	return cmd
}
