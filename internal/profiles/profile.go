// Package profiles builds, stores and persists template profiles: one
// averaged fingerprint per known template.
package profiles

import (
	"slices"
	"sort"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
)

// TopFontCount is the number of font names kept per profile.
const TopFontCount = 3

// Profile is the reference fingerprint of one template.
type Profile struct {
	TemplateID string
	Values     []float64
	TopFonts   []string
}

// Fingerprint views the profile as a fingerprint.
func (p Profile) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{Values: p.Values, TopFonts: p.TopFonts}
}

func (p Profile) clone() Profile {
	fonts := slices.Clone(p.TopFonts)
	if fonts == nil {
		fonts = []string{}
	}
	return Profile{TemplateID: p.TemplateID, Values: slices.Clone(p.Values), TopFonts: fonts}
}

// Build averages exemplar fingerprints into a profile. Every numeric slot is
// the arithmetic mean across exemplars; the fonts are the TopFontCount names
// that appear most often in the exemplars' font lists, ties broken by first
// appearance. Fingerprints whose length differs from the first one are
// ignored. ok is false when there is nothing to average.
func Build(templateID string, fps []fingerprint.Fingerprint) (Profile, bool) {
	if len(fps) == 0 {
		return Profile{}, false
	}
	n := len(fps[0].Values)
	sums := make([]float64, n)
	used := 0
	counts := map[string]int{}
	var order []string
	for _, fp := range fps {
		if len(fp.Values) != n {
			continue
		}
		used++
		for i, v := range fp.Values {
			sums[i] += v
		}
		for _, f := range fp.TopFonts {
			if _, ok := counts[f]; !ok {
				order = append(order, f)
			}
			counts[f]++
		}
	}
	for i := range sums {
		sums[i] /= float64(used)
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > TopFontCount {
		order = order[:TopFontCount]
	}
	if order == nil {
		order = []string{}
	}
	return Profile{TemplateID: templateID, Values: sums, TopFonts: order}, true
}
