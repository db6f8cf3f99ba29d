package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
)

// NewHighScoreCmd prints the stored best score for a difficulty.
func NewHighScoreCmd(configPath *string) *cobra.Command {
	var difficulty string
	cmd := &cobra.Command{
		Use:   "highscore",
		Short: "Print the best completed score for a difficulty",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			difficulty = strings.ToLower(strings.TrimSpace(difficulty))
			if difficulty == "" {
				difficulty = cfg.Quiz.DefaultDifficulty
			}

			backends, err := openBackends(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backends.Close()

			best, err := app.NewHighScores(backends.scoreStore()).Read(cmd.Context(), difficulty)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", difficulty, best)
			return nil
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "difficulty to look up (defaults to quiz.default_difficulty)")
	return cmd
}
