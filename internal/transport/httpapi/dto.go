package httpapi

import "github.com/Joeches/eaglesoak-realtor-ai/internal/domain"

// ErrorCode classifies error responses for clients.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeEmbeddingFailed  ErrorCode = "embedding_failed"
	CodeGenerationFailed ErrorCode = "generation_failed"
	CodePropertyNotFound ErrorCode = "property_not_found"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"error"`
}

// TurnDTO is one prior conversation message.
type TurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequestDTO is the POST /v1/chat body.
type ChatRequestDTO struct {
	Query        string    `json:"query"`
	PropertyID   string    `json:"propertyId,omitempty"`
	Conversation []TurnDTO `json:"conversation,omitempty"`
	MatchK       int       `json:"matchK,omitempty"`
}

// ChatResponseDTO is the POST /v1/chat success body.
type ChatResponseDTO struct {
	Answer         string   `json:"answer"`
	ContextSummary []string `json:"contextSummary"`
	RetrievedCount int      `json:"retrievedCount"`
}

// PropertyDTO is the GET /v1/properties/{id} body.
type PropertyDTO struct {
	ID              string   `json:"id"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	City            string   `json:"city,omitempty"`
	District        string   `json:"district,omitempty"`
	Bedrooms        int      `json:"bedrooms,omitempty"`
	Bathrooms       int      `json:"bathrooms,omitempty"`
	FloorAreaSqm    float64  `json:"floorAreaSqm,omitempty"`
	Amenities       []string `json:"amenities,omitempty"`
	InvestmentIndex *float64 `json:"investmentIndex,omitempty"`
	MarketSentiment *float64 `json:"marketSentiment,omitempty"`
}

// HealthResponseDTO is the GET /health body.
type HealthResponseDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func chatRequestFromDTO(dto ChatRequestDTO) domain.ChatRequest {
	req := domain.ChatRequest{
		Query:      dto.Query,
		PropertyID: dto.PropertyID,
		MatchK:     dto.MatchK,
	}
	for _, t := range dto.Conversation {
		req.Conversation = append(req.Conversation, domain.Turn{Role: t.Role, Content: t.Content})
	}
	return req
}

func chatResponseToDTO(resp domain.ChatResponse) ChatResponseDTO {
	dto := ChatResponseDTO{
		Answer:         resp.Answer,
		ContextSummary: resp.ContextSummary,
		RetrievedCount: resp.RetrievedCount,
	}
	if dto.ContextSummary == nil {
		dto.ContextSummary = []string{}
	}
	return dto
}

func propertyToDTO(p domain.Property) PropertyDTO {
	return PropertyDTO{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		Price:           p.Price,
		Currency:        p.Currency,
		City:            p.City,
		District:        p.District,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		FloorAreaSqm:    p.FloorAreaSqm,
		Amenities:       p.Amenities,
		InvestmentIndex: p.InvestmentIndex,
		MarketSentiment: p.MarketSentiment,
	}
}
