package guard

import (
	"regexp"
	"strings"
)

// Citation legitimacy. Canonical refs are underscore-joined segment chains
// like ORDER_21_APPX1_A1a. A reference in prose ("Order 21", "Order 21,
// Rule 3", "Appendix 1") resolves when its normalized segments form a
// contiguous run inside some valid citation, so citing a parent rule of a
// valid citation passes while an invented rule number does not.

var (
	canonicalRefRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]*(?:_[A-Za-z0-9]+)+\b`)
	orderRuleRe    = regexp.MustCompile(`(?i)\border\s+([0-9]+[A-Za-z]?)\s*,?\s*rule\s+([0-9]+[A-Za-z]?)`)
	orderOnlyRe    = regexp.MustCompile(`(?i)\border\s+([0-9]+[A-Za-z]?)\b`)
	appendixRe     = regexp.MustCompile(`(?i)\bappendix\s+([0-9]+[A-Za-z]?)\b`)
)

// checkCitations extracts every rule-reference-like token from the text and
// requires each to resolve against the citations justifying the ground
// truth or the module-wide registry. Anything unresolved is a fabricated
// reference.
func (v *Validator) checkCitations(gt GroundTruth, text string, validCitations []string) (violations []Violation) {
	valid := expandCitations(gt.Citations)
	for key := range expandCitations(validCitations) {
		valid[key] = true
	}
	for key := range v.registry {
		valid[key] = true
	}

	type ref struct {
		token string
		key   string
	}
	refs := []ref{}

	for _, m := range canonicalRefRe.FindAllString(text, -1) {
		refs = append(refs, ref{token: m, key: strings.ToUpper(m)})
	}
	for _, m := range orderRuleRe.FindAllStringSubmatch(text, -1) {
		refs = append(refs, ref{token: m[0], key: "ORDER_" + strings.ToUpper(m[1]) + "_RULE_" + strings.ToUpper(m[2])})
	}
	for _, m := range orderOnlyRe.FindAllStringSubmatch(text, -1) {
		refs = append(refs, ref{token: m[0], key: "ORDER_" + strings.ToUpper(m[1])})
	}
	for _, m := range appendixRe.FindAllStringSubmatch(text, -1) {
		refs = append(refs, ref{token: m[0], key: "APPX" + strings.ToUpper(m[1])})
	}

	flagged := map[string]bool{}
	for _, r := range refs {
		if valid[r.key] {
			continue
		}
		if flagged[r.key] {
			continue
		}
		flagged[r.key] = true
		violations = append(violations, Violation{
			Kind:  UnknownCitation,
			Token: r.token,
		})
	}
	return violations
}

// expandCitations indexes every contiguous segment run of each ref, all
// uppercase, so prefixes ("ORDER_21", "ORDER_21_APPX1") and inner segments
// ("APPX1") of a valid citation resolve.
func expandCitations(refs []string) (index map[string]bool) {
	index = map[string]bool{}
	for _, ref := range refs {
		segments := strings.Split(strings.ToUpper(ref), "_")
		for start := 0; start < len(segments); start++ {
			for end := start + 1; end <= len(segments); end++ {
				index[strings.Join(segments[start:end], "_")] = true
			}
		}
	}
	return index
}
