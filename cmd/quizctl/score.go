package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-trainer/internal/feedback"
	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

var scoreCmd = &cobra.Command{
	Use:   "score <question.json>",
	Short: "Score one answer and print the feedback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, _ := cmd.Flags().GetString("answer")
		sourcePath, _ := cmd.Flags().GetString("source")

		raw, err := readInput(cmd, args[0])
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}
		var q quiz.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return &quiz.ParseError{Field: "question", Err: err}
		}
		var source string
		if sourcePath != "" {
			if source, err = readInput(cmd, sourcePath); err != nil {
				return fmt.Errorf("read source: %w", err)
			}
		}

		res, err := grading.NewDefaultGrader().Grade(cmd.Context(), grading.Item{Question: q, AnswerText: answer, SourceText: source})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d / %d点\n\n", res.Score, res.MaxScore)
		fmt.Fprintln(out, feedback.RenderText(res.Feedback, res.MaxScore))
		return nil
	},
}

func init() {
	scoreCmd.Flags().String("answer", "", "answer text (choice: 1-based index)")
	scoreCmd.Flags().String("source", "", "file holding the source passage for essays")
}
