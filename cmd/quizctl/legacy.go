package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
)

var importLegacyCmd = &cobra.Command{
	Use:   "import-legacy",
	Short: "Resolve marker-embedded questions into structured set fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		st, closeDB, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := cmd.Context()
		// collect first: linking changes the list order
		var pending []quiz.Question
		for offset := 0; ; offset += 500 {
			qs, err := st.ListQuestions(ctx, quiz.ListOpts{Limit: 500, Offset: offset})
			if err != nil {
				return fmt.Errorf("list questions: %w", err)
			}
			for _, q := range qs {
				if q.SetID == "" {
					pending = append(pending, q)
				}
			}
			if len(qs) < 500 {
				break
			}
		}

		var linked, skipped int
		for _, q := range pending {
			if _, err := q.Resolve(); err != nil {
				if !errors.Is(err, quiz.ErrMissingMarker) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", q.ID, err)
				}
				skipped++
				continue
			}
			if !dryRun {
				if err := st.LinkQuestion(ctx, q.ID, q.SetID, q.Ordinal, q.MaxScore); err != nil {
					return fmt.Errorf("link %s: %w", q.ID, err)
				}
			}
			linked++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "linked %d, skipped %d\n", linked, skipped)
		return nil
	},
}

var exportLegacyCmd = &cobra.Command{
	Use:   "export-legacy <set-id>",
	Short: "Print a set's questions in the legacy marker format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeDB, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx := cmd.Context()
		set, err := st.GetSet(ctx, args[0])
		if err != nil {
			return err
		}
		qs, err := st.ListQuestions(ctx, quiz.ListOpts{SetID: set.ID})
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, q := range qs {
			fmt.Fprintln(out, legacyTitle(set.ID, q))
			fmt.Fprintln(out, quiz.EncodeExplanation(quiz.Markers{
				SetID:      set.ID,
				Ordinal:    q.Ordinal,
				Total:      len(qs),
				Points:     q.Points(),
				MidTopic:   set.MidTopic,
				SourceText: set.SourceText,
				Body:       q.Explanation,
			}))
			fmt.Fprintln(out)
		}
		return nil
	},
}

// legacyTitle is the title prefix older clients grouped questions by.
func legacyTitle(setID string, q quiz.Question) string {
	short := setID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("[セット%s] 問%d/%d点: %s", short, q.Ordinal, q.Points(), q.Title)
}

func init() {
	importLegacyCmd.Flags().Bool("dry-run", false, "report without writing")
}
