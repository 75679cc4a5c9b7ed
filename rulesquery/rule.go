package rulesquery

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// Rule severities, from most to least severe.
const (
	SeverityBlocker  = "BLOCKER"
	SeverityCritical = "CRITICAL"
	SeverityMajor    = "MAJOR"
	SeverityMinor    = "MINOR"
	SeverityInfo     = "INFO"
)

// Rule types.
const (
	RuleTypeBug             = "BUG"
	RuleTypeVulnerability   = "VULNERABILITY"
	RuleTypeCodeSmell       = "CODE_SMELL"
	RuleTypeSecurityHotspot = "SECURITY_HOTSPOT"
)

// Rule statuses.
const (
	RuleStatusReady      = "READY"
	RuleStatusBeta       = "BETA"
	RuleStatusDeprecated = "DEPRECATED"
)

var (
	severities   = [...]string{SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo}
	ruleTypes    = [...]string{RuleTypeBug, RuleTypeVulnerability, RuleTypeCodeSmell, RuleTypeSecurityHotspot}
	ruleStatuses = [...]string{RuleStatusReady, RuleStatusBeta, RuleStatusDeprecated}
)

// Severities returns all rule severities, from most to least severe.
func Severities() []string { return slices.Clone(severities[:]) }

// RuleTypes returns all rule types.
func RuleTypes() []string { return slices.Clone(ruleTypes[:]) }

// RuleStatuses returns all rule statuses.
func RuleStatuses() []string { return slices.Clone(ruleStatuses[:]) }

// RuleInheritance describes whether a rule activation in a quality profile is inherited from a parent profile,
// overrides the parent's settings, or is local to the profile.
type RuleInheritance string

const (
	InheritanceUnset     RuleInheritance = ""
	InheritanceInherited RuleInheritance = "INHERITED"
	InheritanceNone      RuleInheritance = "NONE"
	InheritanceOverrides RuleInheritance = "OVERRIDES"
)

// ParseInheritance accepts only the three literal enum tokens; anything else, including empty, is unset.
func ParseInheritance(value string) RuleInheritance {
	switch inheritance := RuleInheritance(value); inheritance {
	case InheritanceInherited, InheritanceNone, InheritanceOverrides:
		return inheritance
	default:
		return InheritanceUnset
	}
}

// SerializeInheritance is the inverse of ParseInheritance.
// Values ParseInheritance would reject are not emitted.
func SerializeInheritance(value RuleInheritance) (string, bool) {
	if ParseInheritance(string(value)) == InheritanceUnset {
		return "", false
	}

	return string(value), true
}

// Activation is the state of a rule inside one quality profile.
type Activation struct {
	Inherit  RuleInheritance `json:"inherit"`
	Severity string          `json:"severity"`
}

// Actives maps rule key -> quality profile key -> Activation.
type Actives map[string]map[string]Activation

// Rules is an alias type for a slice of Rule.
type Rules = []Rule

// Rule is a DTO used by the rule search engine to store rules and return search results.
//
// While its properties are exported, it should only be constructed with BuildRule.
type Rule struct {
	ID                  uuid.UUID `json:"id"`
	Key                 string    `json:"key"`
	Repository          string    `json:"repo"`
	Name                string    `json:"name"`
	Language            string    `json:"lang"`
	Type                string    `json:"type"`
	Severity            string    `json:"severity"`
	Status              string    `json:"status"`
	IsTemplate          bool      `json:"isTemplate"`
	Tags                []string  `json:"tags"`
	CWE                 []string  `json:"cwe"`
	OwaspTop10          []string  `json:"owaspTop10"`
	OwaspTop10_2021     []string  `json:"owaspTop10-2021"` //nolint:revive
	SansTop25           []string  `json:"sansTop25"`
	SonarsourceSecurity []string  `json:"sonarsourceSecurity"`
	CreatedAt           time.Time `json:"createdAt"`
	ParamsJSON          []byte    `json:"-"`
}

// RuleOption defines a functional option for BuildRule.
type RuleOption func(*Rule) error

// WithStatus sets the rule status, which defaults to RuleStatusReady.
func WithStatus(status string) RuleOption {
	return func(r *Rule) error {
		if !slices.Contains(ruleStatuses[:], status) {
			return ErrInvalidRuleStatus
		}

		r.Status = status

		return nil
	}
}

// WithTags sets the rule tags. Duplicates and empty tags are removed.
func WithTags(tags ...string) RuleOption {
	return func(r *Rule) error {
		r.Tags = sanitizeValues(tags)
		return nil
	}
}

// AsTemplate marks the rule as a template rule.
func AsTemplate() RuleOption {
	return func(r *Rule) error {
		r.IsTemplate = true
		return nil
	}
}

// WithCWE sets the CWE identifiers of the rule.
func WithCWE(cwe ...string) RuleOption {
	return func(r *Rule) error {
		r.CWE = sanitizeValues(cwe)
		return nil
	}
}

// WithOwaspTop10 sets the OWASP Top 10 (2017) categories of the rule.
func WithOwaspTop10(categories ...string) RuleOption {
	return func(r *Rule) error {
		r.OwaspTop10 = sanitizeValues(categories)
		return nil
	}
}

// WithOwaspTop10_2021 sets the OWASP Top 10 (2021) categories of the rule.
func WithOwaspTop10_2021(categories ...string) RuleOption { //nolint:revive
	return func(r *Rule) error {
		r.OwaspTop10_2021 = sanitizeValues(categories)
		return nil
	}
}

// WithSansTop25 sets the SANS Top 25 categories of the rule.
func WithSansTop25(categories ...string) RuleOption {
	return func(r *Rule) error {
		r.SansTop25 = sanitizeValues(categories)
		return nil
	}
}

// WithSonarsourceSecurity sets the SonarSource security categories of the rule.
func WithSonarsourceSecurity(categories ...string) RuleOption {
	return func(r *Rule) error {
		r.SonarsourceSecurity = sanitizeValues(categories)
		return nil
	}
}

// WithParamsJSON sets the rule parameter definitions. Returns ErrInvalidParamsJSON if paramsJSON is not valid JSON.
func WithParamsJSON(paramsJSON []byte) RuleOption {
	return func(r *Rule) error {
		if !jsoniter.Valid(paramsJSON) {
			return ErrInvalidParamsJSON
		}

		r.ParamsJSON = paramsJSON

		return nil
	}
}

// BuildRule is a factory method for Rule.
//
// The repository is derived from the key, which must have the form "<repository>:<rule>".
// Returns an error if any of the scalar inputs is invalid or an option fails.
func BuildRule(
	key string,
	name string,
	language string,
	ruleType string,
	severity string,
	createdAt time.Time,
	options ...RuleOption,
) (Rule, error) {

	repository, ruleKey, found := strings.Cut(key, ":")
	if !found || repository == "" || ruleKey == "" {
		return Rule{}, ErrInvalidRuleKey
	}

	if name == "" {
		return Rule{}, ErrEmptyRuleName
	}

	if language == "" {
		return Rule{}, ErrEmptyRuleLanguage
	}

	if !slices.Contains(ruleTypes[:], ruleType) {
		return Rule{}, ErrInvalidRuleType
	}

	if !slices.Contains(severities[:], severity) {
		return Rule{}, ErrInvalidSeverity
	}

	rule := Rule{
		ID:                  uuid.New(),
		Key:                 key,
		Repository:          repository,
		Name:                name,
		Language:            language,
		Type:                ruleType,
		Severity:            severity,
		Status:              RuleStatusReady,
		Tags:                []string{},
		CWE:                 []string{},
		OwaspTop10:          []string{},
		OwaspTop10_2021:     []string{},
		SansTop25:           []string{},
		SonarsourceSecurity: []string{},
		CreatedAt:           createdAt.UTC(),
		ParamsJSON:          []byte("[]"),
	}

	for _, option := range options {
		if err := option(&rule); err != nil {
			return Rule{}, err
		}
	}

	return rule, nil
}

// ValidateActivation checks the inputs of a rule activation inside a quality profile.
func ValidateActivation(profileKey string, severity string, inheritance RuleInheritance) error {
	if profileKey == "" {
		return ErrEmptyProfileKey
	}

	if !slices.Contains(severities[:], severity) {
		return ErrInvalidSeverity
	}

	if ParseInheritance(string(inheritance)) == InheritanceUnset {
		return ErrInvalidInheritance
	}

	return nil
}

// sanitizeValues removes empty values and duplicates and sorts the rest.
func sanitizeValues(values []string) []string {
	sanitized := slices.DeleteFunc(slices.Clone(values), func(v string) bool { return v == "" })
	if len(sanitized) == 0 {
		return []string{}
	}

	slices.Sort(sanitized)
	sanitized = slices.Compact(sanitized)

	return slices.Clip(sanitized)
}
