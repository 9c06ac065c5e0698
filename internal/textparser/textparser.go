// Package textparser extracts budget, item, and recipient signals from
// free-form Korean shopping queries via rule-based pattern matching. Every
// function here is pure: same input always yields the same output, and
// missing signals yield nil/empty rather than an error.
package textparser

import (
	"embed"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/KHY90/cartpilot-backend/internal/domain"
)

//go:embed data/vocab.json
var vocabFS embed.FS

type vocab struct {
	CommonItems     []string            `json:"common_items"`
	RelationMap     map[string]string   `json:"relation_map"`
	MaleKeywords    []string            `json:"male_keywords"`
	FemaleKeywords  []string            `json:"female_keywords"`
	OccasionMap     map[string]string   `json:"occasion_map"`
	SeasonKeywords  map[string][]string `json:"season_keywords"`
}

var loadedVocab = mustLoadVocab()

func mustLoadVocab() vocab {
	raw, err := vocabFS.ReadFile("data/vocab.json")
	if err != nil {
		panic("textparser: embedded vocab.json missing: " + err.Error())
	}
	var v vocab
	if err := json.Unmarshal(raw, &v); err != nil {
		panic("textparser: embedded vocab.json malformed: " + err.Error())
	}
	return v
}

// SeasonKeywords returns the configured keyword list for a season name
// ("spring", "summer", "fall", "winter"), used by the TREND mode agent.
func SeasonKeywords(season string) []string {
	return loadedVocab.SeasonKeywords[season]
}

var (
	koreanNumberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(천|만|백만|억)?\s*원?`)
	rangePattern        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(천|만|백만)?\s*[~\-에서부터]\s*(\d+(?:\.\d+)?)\s*(천|만|백만)?\s*원?`)
	flexibilityPattern  = regexp.MustCompile(`(약|대략|정도|쯤|내외|전후)`)
	splitPattern        = regexp.MustCompile(`[+,]`)
	leadingDigitPattern = regexp.MustCompile(`^\d+`)
	agePattern          = regexp.MustCompile(`(\d{1,2})\s*대`)
)

var unitMultipliers = map[string]float64{
	"천":  1_000,
	"만":  10_000,
	"백만": 1_000_000,
	"억":  100_000_000,
}

// parseKoreanNumber converts a numeric literal plus an optional Korean unit
// suffix into a won amount, falling back to the "bare small number means
// man-won" heuristic when no unit is present.
func parseKoreanNumber(numStr, unit string) (float64, bool) {
	base, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	if mult, ok := unitMultipliers[unit]; ok {
		return base * mult, true
	}
	if base > 10_000 {
		return base, true
	}
	if base > 0 && base <= 1_000 {
		return base * 10_000, true
	}
	return base, true
}

// ExtractBudget recognizes a budget range or single amount in free text.
func ExtractBudget(text string) *domain.BudgetRange {
	isFlexible := flexibilityPattern.MatchString(text)

	if m := rangePattern.FindStringSubmatch(text); m != nil {
		minVal, minOK := parseKoreanNumber(m[1], m[2])
		maxVal, maxOK := parseKoreanNumber(m[3], m[4])
		if minOK && maxOK && minVal != 0 && maxVal != 0 {
			min64 := int64(minVal)
			max64 := int64(maxVal)
			return &domain.BudgetRange{
				MinPrice:   &min64,
				MaxPrice:   &max64,
				IsFlexible: isFlexible,
			}
		}
	}

	matches := koreanNumberPattern.FindAllStringSubmatch(text, -1)
	var amounts []float64
	for _, m := range matches {
		if amount, ok := parseKoreanNumber(m[1], m[2]); ok && amount != 0 {
			amounts = append(amounts, amount)
		}
	}
	if len(amounts) == 0 {
		return nil
	}

	base := amounts[0]
	for _, a := range amounts[1:] {
		if a > base {
			base = a
		}
	}

	minP := int64(base * 0.8)
	maxP := int64(base * 1.2)
	total := int64(base)
	return &domain.BudgetRange{
		MinPrice:    &minP,
		MaxPrice:    &maxP,
		TotalBudget: &total,
		IsFlexible:  isFlexible,
	}
}

var priceTokens = []string{"원", "만원", "천원", "예산"}

// ExtractItems finds item/category nouns: known vocabulary terms that occur
// literally in the text, plus any "+"/","-delimited segments that aren't
// numeric or a price token.
func ExtractItems(text string) []string {
	var found []string
	seen := make(map[string]bool)

	for _, item := range loadedVocab.CommonItems {
		if strings.Contains(text, item) {
			found = append(found, item)
			seen[item] = true
		}
	}

	if strings.ContainsAny(text, "+,") {
		for _, part := range splitPattern.Split(text, -1) {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			if leadingDigitPattern.MatchString(part) {
				continue
			}
			excluded := false
			for _, tok := range priceTokens {
				if strings.Contains(part, tok) {
					excluded = true
					break
				}
			}
			if !excluded {
				found = append(found, part)
				seen[part] = true
			}
		}
	}

	return found
}

// ExtractRecipient finds relation, gender, age-group, and occasion signals,
// returning nil if none were found.
func ExtractRecipient(text string) *domain.RecipientInfo {
	var gender, ageGroup *string

	// Map iteration order is unspecified in Go; matches are resolved
	// deterministically by earliest position in text rather than map order.
	relation := firstMatchByPosition(text, loadedVocab.RelationMap)
	occasion := firstMatchByPosition(text, loadedVocab.OccasionMap)

	if containsAny(text, loadedVocab.MaleKeywords) {
		v := "male"
		gender = &v
	} else if containsAny(text, loadedVocab.FemaleKeywords) {
		v := "female"
		gender = &v
	}

	if m := agePattern.FindStringSubmatch(text); m != nil {
		v := m[1] + "대"
		ageGroup = &v
	}

	if relation == nil && gender == nil && ageGroup == nil && occasion == nil {
		return nil
	}
	return &domain.RecipientInfo{
		Relation: relation,
		Gender:   gender,
		AgeGroup: ageGroup,
		Occasion: occasion,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// firstMatchByPosition scans a korean->canonical map and returns the
// canonical value whose korean key appears earliest in text, or nil.
func firstMatchByPosition(text string, m map[string]string) *string {
	bestIdx := -1
	var best string
	for korean, english := range m {
		idx := strings.Index(text, korean)
		if idx == -1 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			best = english
		}
	}
	if bestIdx == -1 {
		return nil
	}
	return &best
}

// ParseUserInput runs all three extractors over a single utterance.
func ParseUserInput(text string) (*domain.BudgetRange, []string, *domain.RecipientInfo) {
	return ExtractBudget(text), ExtractItems(text), ExtractRecipient(text)
}
