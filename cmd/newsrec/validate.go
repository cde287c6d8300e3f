package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/news-recommender/internal/schemas"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	schema string
	json   string
}

func newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON file against a JSON Schema",
		Long:  "Validates a JSON file (articles, interactions, recommendations or preferences) against a JSON Schema file.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "Path to JSON Schema file (required)")
	cmd.Flags().StringVarP(&opts.json, "json", "j", "", "Path to JSON file to validate (required)")

	if err := cmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := cmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	err := schemas.ValidateJSON(opts.schema, opts.json)
	if err == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
		return nil
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation failed:")
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("validation failed with %d error(s)", len(validationErr.Errors))
	}
	return err
}
