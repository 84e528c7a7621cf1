package extractor

// Strategy field labels, matched case-insensitively.
const (
	LabelName            = "name:"
	LabelCategory        = "category:"
	LabelDescription     = "description:"
	LabelRiskLevel       = "risk level:"
	LabelTags            = "tags:"
	LabelSteps           = "steps:"
	LabelRequirements    = "requirements:"
	LabelExpectedReturns = "expected returns:"
	LabelAuthor          = "author:"
	LabelVersion         = "version:"
)

// StrategyDraft raw strategy fields found in a message. Empty values are absent.
type StrategyDraft struct {
	Name            string
	Category        string
	Description     string
	RiskLevel       string
	Author          string
	Version         string
	Tags            []string
	Steps           []string
	Requirements    []string
	ExpectedReturns string
}

// ExtractStrategy reads every strategy field from text.
func ExtractStrategy(text string) StrategyDraft {
	var d StrategyDraft
	d.Name, _ = Field(text, LabelName)
	d.Category, _ = Field(text, LabelCategory)
	d.Description, _ = Field(text, LabelDescription)
	d.RiskLevel, _ = Field(text, LabelRiskLevel)
	d.Author, _ = Field(text, LabelAuthor)
	d.Version, _ = Field(text, LabelVersion)
	d.Tags, _ = List(text, LabelTags)
	d.Steps, _ = List(text, LabelSteps)
	d.Requirements, _ = List(text, LabelRequirements)
	d.ExpectedReturns, _ = JSON(text, LabelExpectedReturns)
	return d
}

// Missing lists the required labels that were not found.
func (d StrategyDraft) Missing() []string {
	var missing []string
	for _, f := range []struct {
		label string
		value string
	}{
		{LabelName, d.Name},
		{LabelCategory, d.Category},
		{LabelDescription, d.Description},
		{LabelRiskLevel, d.RiskLevel},
	} {
		if f.value == "" {
			missing = append(missing, f.label)
		}
	}
	return missing
}

// Complete reports whether all required fields are present.
func (d StrategyDraft) Complete() bool {
	return len(d.Missing()) == 0
}
