package diagfmt

import (
	"encoding/json"
	"io"

	"twfold/internal/diag"
	"twfold/internal/source"
)

// SarifRunMeta provides tool metadata for SARIF output.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
}

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif writes the bag as a SARIF 2.1.0 document suitable for CI upload.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	seenRules := make(map[string]bool)
	var rules []sarifRule
	results := make([]sarifResult, 0, bag.Len())

	for _, d := range bag.Items() {
		ruleID := d.Code.ID()
		if !seenRules[ruleID] {
			seenRules[ruleID] = true
			rules = append(rules, sarifRule{ID: ruleID, Name: d.Code.String()})
		}

		f := fs.Get(d.Primary.File)
		start, end := fs.Resolve(d.Primary)
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
					Region: sarifRegion{
						StartLine:   start.Line,
						StartColumn: start.Col,
						EndLine:     end.Line,
						EndColumn:   end.Col,
					},
				},
			}},
		})
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    meta.ToolName,
				Version: meta.ToolVersion,
				Rules:   rules,
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}
