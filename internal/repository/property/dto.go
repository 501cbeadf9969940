package property

import (
	"strconv"
	"strings"

	"github.com/Joeches/eaglesoak-realtor-ai/internal/domain"
)

// Hash field names written by the batch indexer.
const (
	fieldTitle           = "title"
	fieldDescription     = "description"
	fieldPrice           = "price"
	fieldCurrency        = "currency"
	fieldCity            = "city"
	fieldDistrict        = "district"
	fieldBedrooms        = "bedrooms"
	fieldBathrooms       = "bathrooms"
	fieldFloorAreaSqm    = "floor_area_sqm"
	fieldAmenities       = "amenities"
	fieldInvestmentIndex = "investment_index"
	fieldMarketSentiment = "market_sentiment"
)

// propertyFromFields maps a catalog hash onto a domain record. Unparseable
// numeric fields behave as absent: the assistant omits facts it cannot
// trust rather than emitting garbage into the prompt.
func propertyFromFields(id string, fields map[string]string) domain.Property {
	p := domain.Property{
		ID:          id,
		Title:       fields[fieldTitle],
		Description: fields[fieldDescription],
		Currency:    fields[fieldCurrency],
		City:        fields[fieldCity],
		District:    fields[fieldDistrict],
	}

	if v, err := strconv.ParseFloat(fields[fieldPrice], 64); err == nil {
		p.Price = v
	}
	if v, err := strconv.Atoi(fields[fieldBedrooms]); err == nil {
		p.Bedrooms = v
	}
	if v, err := strconv.Atoi(fields[fieldBathrooms]); err == nil {
		p.Bathrooms = v
	}
	if v, err := strconv.ParseFloat(fields[fieldFloorAreaSqm], 64); err == nil {
		p.FloorAreaSqm = v
	}
	if raw := fields[fieldAmenities]; raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				p.Amenities = append(p.Amenities, a)
			}
		}
	}
	if raw, ok := fields[fieldInvestmentIndex]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			p.InvestmentIndex = &v
		}
	}
	if raw, ok := fields[fieldMarketSentiment]; ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			p.MarketSentiment = &v
		}
	}

	return p
}
