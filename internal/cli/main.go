package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jianxion/highlightAI/internal/config"
	"github.com/jianxion/highlightAI/internal/logging"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "highlightai",
		Short:        "Turn raw gameplay videos into vertical highlight reels",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			logging.Init(verbose || cfg.Logging.Verbose, cfg.Logging.JSON)
			return nil
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(),
		newConsolidateCmd(),
		newFinalizeCmd(),
		newServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
