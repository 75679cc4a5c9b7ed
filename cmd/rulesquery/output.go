package main

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

var errUnsupportedOutput = errors.New("unsupported output format, use json or yaml")

// queryView is the printable form of a rulesquery.Query. Unset fields are omitted.
type queryView struct {
	Activation           *bool    `json:"activation,omitempty" yaml:"activation,omitempty"`
	ActivationSeverities []string `json:"activationSeverities,omitempty" yaml:"activationSeverities,omitempty"`
	AvailableSince       string   `json:"availableSince,omitempty" yaml:"availableSince,omitempty"`
	CompareToProfile     string   `json:"compareToProfile,omitempty" yaml:"compareToProfile,omitempty"`
	CWE                  []string `json:"cwe,omitempty" yaml:"cwe,omitempty"`
	Inheritance          string   `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
	Languages            []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	OwaspTop10           []string `json:"owaspTop10,omitempty" yaml:"owaspTop10,omitempty"`
	OwaspTop10_2021      []string `json:"owaspTop10-2021,omitempty" yaml:"owaspTop10-2021,omitempty"` //nolint:revive
	Profile              string   `json:"profile,omitempty" yaml:"profile,omitempty"`
	Repositories         []string `json:"repositories,omitempty" yaml:"repositories,omitempty"`
	RuleKey              string   `json:"ruleKey,omitempty" yaml:"ruleKey,omitempty"`
	SansTop25            []string `json:"sansTop25,omitempty" yaml:"sansTop25,omitempty"`
	SearchQuery          string   `json:"searchQuery,omitempty" yaml:"searchQuery,omitempty"`
	Severities           []string `json:"severities,omitempty" yaml:"severities,omitempty"`
	SonarsourceSecurity  []string `json:"sonarsourceSecurity,omitempty" yaml:"sonarsourceSecurity,omitempty"`
	Statuses             []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Tags                 []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Template             *bool    `json:"template,omitempty" yaml:"template,omitempty"`
	Types                []string `json:"types,omitempty" yaml:"types,omitempty"`
}

func newQueryView(q rulesquery.Query) queryView {
	availableSince, _ := rulesquery.SerializeDateShort(q.AvailableSince)
	inheritance, _ := rulesquery.SerializeInheritance(q.Inheritance)

	return queryView{
		Activation:           q.Activation,
		ActivationSeverities: q.ActivationSeverities,
		AvailableSince:       availableSince,
		CompareToProfile:     q.CompareToProfile,
		CWE:                  q.CWE,
		Inheritance:          inheritance,
		Languages:            q.Languages,
		OwaspTop10:           q.OwaspTop10,
		OwaspTop10_2021:      q.OwaspTop10_2021,
		Profile:              q.Profile,
		Repositories:         q.Repositories,
		RuleKey:              q.RuleKey,
		SansTop25:            q.SansTop25,
		SearchQuery:          q.SearchQuery,
		Severities:           q.Severities,
		SonarsourceSecurity:  q.SonarsourceSecurity,
		Statuses:             q.Statuses,
		Tags:                 q.Tags,
		Template:             q.Template,
		Types:                q.Types,
	}
}

func writeOutput(w io.Writer, format string, value any) error {
	switch format {
	case outputJSON:
		encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)

	case outputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(value); err != nil {
			return err
		}

		return encoder.Close()

	default:
		return errUnsupportedOutput
	}
}
