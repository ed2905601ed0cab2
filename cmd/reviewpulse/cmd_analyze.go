package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reviewpulse/internal/app"
	"reviewpulse/internal/classifier"
	"reviewpulse/internal/domain"
)

var inputText string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify the sentiment of a random review",
	Long: `Loads the configured dataset, picks a random review and classifies its
sentiment. With --text the given text is classified and no dataset is loaded.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var nounsCmd = &cobra.Command{
	Use:   "nouns",
	Short: "Estimate the noun level (low/medium/high) of a random review",
	Args:  cobra.NoArgs,
	RunE:  runNouns,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	var res *app.Analysis
	if text := strings.TrimSpace(inputText); text != "" {
		res, err = a.Analyze(ctx, text)
	} else {
		if _, err := a.LoadReviews(ctx); err != nil {
			return fmt.Errorf("%s: %w", a.Status(app.ToolReviews).Message, err)
		}
		res, err = a.AnalyzeRandom(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a.Status(app.ToolSentiment).Message, err)
	}

	printReview(cmd.OutOrStdout(), res.Review)
	printSentiment(cmd.OutOrStdout(), res.Result)
	return nil
}

func runNouns(cmd *cobra.Command, args []string) error {
	a, closeFn, err := buildApp()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	var res *app.NounAnalysis
	if text := strings.TrimSpace(inputText); text != "" {
		res, err = a.CountNouns(ctx, text)
	} else {
		if _, err := a.LoadReviews(ctx); err != nil {
			return fmt.Errorf("%s: %w", a.Status(app.ToolReviews).Message, err)
		}
		res, err = a.CountNounsRandom(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a.Status(app.ToolNouns).Message, err)
	}

	printReview(cmd.OutOrStdout(), res.Review)
	printNouns(cmd.OutOrStdout(), res.Result)
	return nil
}

func printReview(w io.Writer, r domain.Review) {
	fmt.Fprintf(w, "Review: %s\n", r.Text)
}

func printSentiment(w io.Writer, r classifier.Result) {
	if !r.Scored {
		fmt.Fprintf(w, "Sentiment: %s (unrecognized response)\n", r.Sentiment)
		return
	}
	fmt.Fprintf(w, "Sentiment: %s (%.3f)\n", r.Sentiment, r.Score)
}

func printNouns(w io.Writer, r classifier.NounResult) {
	switch {
	case !r.Known:
		fmt.Fprintf(w, "Noun level: %s (unrecognized response)\n", r.Level)
	case r.Count >= 0:
		fmt.Fprintf(w, "Noun level: %s (%d nouns)\n", r.Level, r.Count)
	default:
		fmt.Fprintf(w, "Noun level: %s\n", r.Level)
	}
}
