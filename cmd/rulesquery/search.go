package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/searchclient"
)

const defaultServerURL = "http://localhost:8080"

type searchFlags struct {
	serverURL string
	page      int
	pageSize  int
	facets    []string
	retryMax  int
	output    string
}

func searchCmd(flags *globalFlags) *cobra.Command {
	search := &searchFlags{}

	cmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search rules on a running rules search API",
		Example: `  rulesquery search --facets languages,tags 'types=BUG&severities=MAJOR,BLOCKER'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags, search, args[0])
		},
	}

	cmd.Flags().StringVar(&search.serverURL, "server", defaultServerURL, "Base URL of the rules search API")
	cmd.Flags().IntVar(&search.page, "page", 1, "Page index, starting at 1")
	cmd.Flags().IntVar(&search.pageSize, "page-size", rulesquery.DefaultPageSize, "Page size")
	cmd.Flags().StringSliceVar(&search.facets, "facets", nil, "Facets to count, comma separated")
	cmd.Flags().IntVar(&search.retryMax, "retries", 3, "Retries on connection errors and 5xx responses")
	cmd.Flags().StringVarP(&search.output, "output", "o", outputJSON, "Output format (json, yaml)")

	return cmd
}

func runSearch(cmd *cobra.Command, flags *globalFlags, search *searchFlags, rawQuery string) error {
	logger, err := flags.logger(cmd, slog.LevelWarn)
	if err != nil {
		return err
	}

	client, err := searchclient.NewClient(
		search.serverURL,
		searchclient.WithLogger(logger),
		searchclient.WithRetryMax(search.retryMax),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	paging := rulesquery.Paging{PageIndex: search.page, PageSize: search.pageSize}
	if err := paging.Validate(); err != nil {
		return err
	}

	result, err := client.Search(cmd.Context(), rulesquery.ParseRawQuery(rawQuery), paging, search.facets...)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), search.output, result)
}
