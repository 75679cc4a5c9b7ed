package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/httpapi"
)

func parseCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Parse a query string and print the resulting filter",
		Example: `  rulesquery parse 'languages=java,py&activation=true&qprofile=sonar-way'
  rulesquery parse --output yaml '?tags=cwe&available_since=2024-01-31'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format (json, yaml)")

	return cmd
}

func runParse(cmd *cobra.Command, rawQuery, output string) error {
	query := rulesquery.ParseQuery(rulesquery.ParseRawQuery(rawQuery))

	return writeOutput(cmd.OutOrStdout(), output, newQueryView(query))
}

func normalizeCmd() *cobra.Command {
	var output string
	var encodedOnly bool

	cmd := &cobra.Command{
		Use:   "normalize <query>",
		Short: "Print the canonical form of a query string",
		Long: `Parses the query and serializes it again. Empty keys disappear, keys that are not
part of the filter (e.g. open, selected) are kept as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args[0], output, encodedOnly)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format (json, yaml)")
	cmd.Flags().BoolVar(&encodedOnly, "encoded", false, "Print only the encoded query string")

	return cmd
}

func runNormalize(cmd *cobra.Command, rawQuery, output string, encodedOnly bool) error {
	raw := rulesquery.ParseRawQuery(rawQuery)
	query := rulesquery.ParseQuery(raw)
	encoded := rulesquery.SerializeQueryWithExtras(query, raw).Encode()

	if encodedOnly {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return err
	}

	return writeOutput(cmd.OutOrStdout(), output, httpapi.NormalizeResponse{
		Query:    rulesquery.SerializeQuery(query),
		Encoded:  encoded,
		Extras:   rulesquery.SplitUnknown(raw),
		Open:     rulesquery.GetOpen(raw),
		Selected: rulesquery.GetSelected(raw),
	})
}

func equalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equal <query> <query>",
		Short: "Tell whether two query strings denote the same filter",
		Long: `Prints true or false. The exit code is 1 if the queries differ,
so the command can be used in scripts.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEqual(cmd, args[0], args[1])
		},
	}
}

func runEqual(cmd *cobra.Command, a, b string) error {
	equal := rulesquery.AreQueriesEqual(rulesquery.ParseRawQuery(a), rulesquery.ParseRawQuery(b))

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(equal)); err != nil {
		return err
	}

	if !equal {
		return errQueriesDiffer
	}

	return nil
}

func facetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "facet <name>...",
		Short: "Print whether facets are counted by the server and their server names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFacet(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format (json, yaml)")

	return cmd
}

func runFacet(cmd *cobra.Command, facets []string, output string) error {
	policies := make([]httpapi.FacetPolicy, 0, len(facets))

	for _, facet := range facets {
		policies = append(policies, httpapi.FacetPolicy{
			Facet:       facet,
			Requestable: rulesquery.ShouldRequestFacet(facet),
			ServerFacet: rulesquery.GetServerFacet(facet),
			Expanded:    rulesquery.ExpandFacets([]string{facet}),
		})
	}

	return writeOutput(cmd.OutOrStdout(), output, httpapi.FacetPolicyResponse{Facets: policies})
}
