package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"voicecode/diff"
	"voicecode/generator"
	"voicecode/model"
	"voicecode/workspace"
)

var editFlag bool

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Run one generate or edit request against a local workspace",
	Long: `Generate a new app into the workspace directory, or with --edit patch
the files already there. The explanation, any warnings and the resulting
file list are printed to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		agent, err := buildAgent(cfg, logger)
		if err != nil {
			return err
		}
		ws := workspace.Open(cfg.WorkspaceRoot, logger)
		sess := generator.NewSession("cli", ws, agent, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout())
		defer cancel()
		resp, err := sess.Run(ctx, model.Request{
			Prompt: strings.Join(args, " "),
			IsEdit: editFlag,
		})
		if err != nil {
			return err
		}
		printResponse(cmd.OutOrStdout(), cfg.WorkspaceRoot, resp)
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&editFlag, "edit", false, "patch the existing workspace instead of generating from scratch")
	rootCmd.AddCommand(generateCmd)
}

func printResponse(w io.Writer, root string, resp model.Response) {
	if resp.Explain != "" {
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(resp.Explain))
	}
	for _, warn := range resp.Warnings {
		fmt.Fprintf(w, "warning: %s", warn.Kind)
		if warn.File != "" {
			fmt.Fprintf(w, " file=%s", warn.File)
		}
		if warn.Region != "" {
			fmt.Fprintf(w, " region=%s", warn.Region)
		}
		fmt.Fprintf(w, ": %s\n", warn.Message)
	}
	changed := make(map[string]string, len(resp.Changes))
	for _, c := range resp.Changes {
		added, removed := diff.Stats(c.Hunks)
		changed[c.Name] = fmt.Sprintf(" (+%d -%d)", added, removed)
	}
	fmt.Fprintf(w, "Workspace %s:\n", root)
	for _, f := range resp.Files {
		fmt.Fprintf(w, "  %s%s\n", f.Name, changed[f.Name])
	}
	if resp.Run != nil && resp.Run.Command != "" {
		fmt.Fprintf(w, "Run: %s\n", resp.Run.Command)
	}
}
