package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/regmap/internal/model"
)

// Source is a regulatory document to extract from: a URL or a local file
type Source struct {
	Location     string `yaml:"location"`
	RegulationID string `yaml:"regulation_id,omitempty"`
}

// NewSource builds a source, deriving the regulation id from the location
// when none is given.
func NewSource(location, regulationID string) Source {
	if regulationID == "" {
		regulationID = regulationIDFor(location)
	}
	return Source{Location: location, RegulationID: regulationID}
}

// ReadSources reads document locations from a file, one per line.
// Blank lines and lines starting with # are skipped; duplicates are dropped.
// A line may carry an explicit id as "location regulation_id".
func ReadSources(filePath string) ([]Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true

		id := ""
		if len(fields) > 1 {
			id = fields[1]
		}
		sources = append(sources, NewSource(fields[0], id))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// LoadPolicies reads policy records from a YAML or JSON file. The file holds
// either a list or a mapping with a "policies" list.
func LoadPolicies(path string) ([]model.PolicyRecord, error) {
	var doc struct {
		Policies []model.PolicyRecord `yaml:"policies"`
	}
	list, err := loadList(path, &doc)
	if err != nil {
		return nil, err
	}
	if list != nil {
		var policies []model.PolicyRecord
		if err := list.Decode(&policies); err != nil {
			return nil, fmt.Errorf("decode policies: %w", err)
		}
		return policies, nil
	}
	return doc.Policies, nil
}

// LoadObligations reads obligation inputs from a YAML or JSON file. It
// accepts the same shapes as LoadPolicies under an "obligations" key, and
// also the records written by "regmap extract".
func LoadObligations(path string) ([]model.ObligationInput, error) {
	var doc struct {
		Obligations []model.ObligationInput `yaml:"obligations"`
	}
	list, err := loadList(path, &doc)
	if err != nil {
		return nil, err
	}

	inputs := doc.Obligations
	if list != nil {
		if err := list.Decode(&inputs); err != nil {
			return nil, fmt.Errorf("decode obligations: %w", err)
		}
	}

	// Extracted records carry no id
	for i := range inputs {
		if inputs[i].ID == "" {
			inputs[i].ID = fmt.Sprintf("OBL-%04d", i+1)
		}
	}
	return inputs, nil
}

// loadList parses path and returns the root node when it is a sequence;
// otherwise it decodes the mapping into doc and returns nil.
func loadList(path string, doc any) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		return node, nil
	}
	if err := node.Decode(doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return nil, nil
}
