package domain

// Property is a catalog record. Owned by the listing catalog; this service
// only reads it. Score fields are pointers because zero is a legitimate
// value — absence means the indexer has not computed them yet.
type Property struct {
	ID           string
	Title        string
	Description  string
	Price        float64
	Currency     string
	City         string
	District     string
	Bedrooms     int
	Bathrooms    int
	FloorAreaSqm float64
	Amenities    []string

	InvestmentIndex *float64
	MarketSentiment *float64
}
