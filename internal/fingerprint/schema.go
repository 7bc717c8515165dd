package fingerprint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaVersion identifies the slot layout below. Changing the order or the
// set of slots requires a new version and rebuilt profiles.
const SchemaVersion = "fp.v1"

// Base slot names, in vector order.
const (
	SlotPageCount     = "page_count"
	SlotAvgWidth      = "avg_width"
	SlotAvgHeight     = "avg_height"
	SlotHeaderDensity = "header_text_density"
	SlotFooterDensity = "footer_text_density"
	SlotBodyDensity   = "body_text_density"
	SlotAvgFontSize   = "avg_font_size"
)

// Keyword slot names of the default schema.
const (
	SlotHotSprings    = "kw_hot_springs"
	SlotRosePetal     = "kw_rose_petal"
	SlotWhitePetal    = "kw_white_petal"
	SlotClinic        = "kw_clinic"
	SlotHospital      = "kw_hospital"
	SlotConsent       = "kw_consent"
	SlotHIPAA         = "kw_hipaa"
	SlotAuthorization = "kw_authorization"
)

var baseSlots = []string{
	SlotPageCount,
	SlotAvgWidth,
	SlotAvgHeight,
	SlotHeaderDensity,
	SlotFooterDensity,
	SlotBodyDensity,
	SlotAvgFontSize,
}

// KeywordGroup feeds one keyword slot: the slot value is the summed number
// of occurrences of every phrase.
type KeywordGroup struct {
	Slot    string   `yaml:"slot" json:"slot"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// DefaultKeywordGroups returns the curated phrase list, in slot order.
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{Slot: SlotHotSprings, Phrases: []string{"HOT SPRINGS GENERAL HOSPITAL", "HOT SPRINGS GENERAL"}},
		{Slot: SlotRosePetal, Phrases: []string{"ROSE PETAL CLINIC", "ROSE PETAL"}},
		{Slot: SlotWhitePetal, Phrases: []string{"WHITE PETAL HOSPITAL", "WHITE PETAL"}},
		{Slot: SlotClinic, Phrases: []string{"clinic"}},
		{Slot: SlotHospital, Phrases: []string{"hospital"}},
		{Slot: SlotConsent, Phrases: []string{"consent", "consent form", "informed consent"}},
		{Slot: SlotHIPAA, Phrases: []string{"hipaa authorization", "hipaa"}},
		{Slot: SlotAuthorization, Phrases: []string{"authorization form", "authorization", "authorize", "authorizes"}},
	}
}

// Schema is the ordered list of vector slot names.
type Schema struct {
	Version string
	Slots   []string
}

// NewSchema builds the slot list for the given keyword groups.
func NewSchema(groups []KeywordGroup) Schema {
	slots := make([]string, 0, len(baseSlots)+len(groups))
	slots = append(slots, baseSlots...)
	for _, g := range groups {
		slots = append(slots, g.Slot)
	}
	return Schema{Version: SchemaVersion, Slots: slots}
}

// DefaultSchema is the schema of DefaultKeywordGroups.
func DefaultSchema() Schema {
	return NewSchema(DefaultKeywordGroups())
}

// Index returns the position of slot, or -1.
func (s Schema) Index(slot string) int {
	for i, name := range s.Slots {
		if name == slot {
			return i
		}
	}
	return -1
}

// Len is the vector length.
func (s Schema) Len() int { return len(s.Slots) }

type keywordFile struct {
	Keywords []KeywordGroup `yaml:"keywords"`
}

// LoadKeywordGroups reads keyword groups from a YAML file of the form
//
//	keywords:
//	  - slot: kw_clinic
//	    phrases: [clinic]
func LoadKeywordGroups(path string) ([]KeywordGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword groups: %w", err)
	}
	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keyword groups: %w", err)
	}
	seen := make(map[string]struct{}, len(baseSlots)+len(kf.Keywords))
	for _, s := range baseSlots {
		seen[s] = struct{}{}
	}
	for _, g := range kf.Keywords {
		if g.Slot == "" {
			return nil, fmt.Errorf("keyword group without slot name")
		}
		if _, dup := seen[g.Slot]; dup {
			return nil, fmt.Errorf("duplicate keyword slot %q", g.Slot)
		}
		seen[g.Slot] = struct{}{}
	}
	return kf.Keywords, nil
}
