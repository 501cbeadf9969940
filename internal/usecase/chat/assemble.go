package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// assembleContext builds the prompt's context section as an ordered list of
// lines: direct property facts first (most authoritative), then retrieved
// documents capped at k (supporting evidence), then recent conversation
// (recency framing). The output is fully determined by its inputs.
func assembleContext(
	prop *domain.Property,
	docs []domain.ContextDocument,
	conversation []domain.Turn,
	k int,
) []string {
	var lines []string

	if prop != nil {
		lines = append(lines, propertyFacts(prop)...)
	}

	if len(docs) > k {
		docs = docs[:k]
	}
	for i, doc := range docs {
		lines = append(lines, fmt.Sprintf("Context doc %d: %s", i+1, doc.Snippet()))
	}

	for _, turn := range conversation {
		lines = append(lines, turn.Role+": "+turn.Content)
	}

	return lines
}

// propertyFacts renders one line per present field. Absent fields are
// omitted, never emitted as empty or placeholder lines.
func propertyFacts(p *domain.Property) []string {
	var facts []string

	if p.Title != "" {
		facts = append(facts, "Title: "+p.Title)
	}
	if p.Description != "" {
		facts = append(facts, "Description: "+p.Description)
	}
	if p.Price > 0 && p.Currency != "" {
		facts = append(facts, fmt.Sprintf("Price: %s %s", formatNumber(p.Price), p.Currency))
	}
	if loc := formatLocation(p.City, p.District); loc != "" {
		facts = append(facts, "Location: "+loc)
	}
	if p.Bedrooms > 0 {
		facts = append(facts, fmt.Sprintf("Bedrooms: %d", p.Bedrooms))
	}
	if p.Bathrooms > 0 {
		facts = append(facts, fmt.Sprintf("Bathrooms: %d", p.Bathrooms))
	}
	if p.FloorAreaSqm > 0 {
		facts = append(facts, fmt.Sprintf("Floor area: %s sqm", formatNumber(p.FloorAreaSqm)))
	}
	if len(p.Amenities) > 0 {
		facts = append(facts, "Amenities: "+strings.Join(p.Amenities, ", "))
	}
	if p.InvestmentIndex != nil {
		facts = append(facts, "Investment index: "+formatNumber(*p.InvestmentIndex))
	}
	if p.MarketSentiment != nil {
		facts = append(facts, "Market sentiment: "+formatNumber(*p.MarketSentiment))
	}

	return facts
}

func formatLocation(city, district string) string {
	switch {
	case district != "" && city != "":
		return district + ", " + city
	case district != "":
		return district
	default:
		return city
	}
}

// formatNumber renders a float without trailing zeros: 8.4 stays "8.4",
// 120 stays "120".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
