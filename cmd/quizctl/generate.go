package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-trainer/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a five-question set from a passage",
	Long:  "Reads the passage from file (or stdin) and prints the generated questions without saving them.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		midTopic, _ := cmd.Flags().GetString("mid-topic")
		seed, _ := cmd.Flags().GetUint64("seed")
		asJSON, _ := cmd.Flags().GetBool("json")

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		source, err := readInput(cmd, path)
		if err != nil {
			return fmt.Errorf("read passage: %w", err)
		}
		source = strings.TrimSpace(source)
		if err := quizgen.Validate(source, category, midTopic); err != nil {
			return err
		}

		var opts []quizgen.Option
		if seed != 0 {
			opts = append(opts, quizgen.WithRand(rand.New(rand.NewPCG(seed, seed))))
		}
		qs, err := quizgen.New(opts...).Generate(source, category)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(quizgen.Preview(qs))
		}
		for _, it := range quizgen.Preview(qs) {
			q := it.Question
			fmt.Fprintf(out, "問%d [%s] %d点 %s\n", it.Number, it.TypeLabel, q.MaxScore, q.Title)
			fmt.Fprintln(out, q.QuestionText)
			for i, c := range q.Choices {
				fmt.Fprintf(out, "  %d. %s\n", i+1, c)
			}
			fmt.Fprintf(out, "  正解/評価キーワード: %s\n\n", q.CorrectAnswer)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("category", "営業", "question category")
	generateCmd.Flags().String("mid-topic", "未分類", "mid topic label")
	generateCmd.Flags().Uint64("seed", 0, "random seed for reproducible output (0 = random)")
	generateCmd.Flags().Bool("json", false, "print JSON instead of text")
}
