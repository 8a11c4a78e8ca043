package model

// FeaturedRating is the minimum rating for a service to count as featured.
const FeaturedRating = 4.5

// Service is a bookable offering. Cart entries reuse this shape directly.
type Service struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Description  string   `json:"description" yaml:"description"`
	Category     string   `json:"category" yaml:"category" validate:"required"`
	Price        float64  `json:"price" yaml:"price" validate:"gte=0"`
	Rating       float64  `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	Duration     string   `json:"duration" yaml:"duration"`
	ReviewCount  int      `json:"reviewCount" yaml:"reviewCount" validate:"gte=0"`
	ImageURL     string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ProviderID   string   `json:"providerId,omitempty" yaml:"providerId,omitempty"`
	ProviderName string   `json:"providerName,omitempty" yaml:"providerName,omitempty"`
	Available    bool     `json:"available" yaml:"available"`
	Featured     bool     `json:"featured" yaml:"featured"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// IsFeatured reports whether the service rates at or above FeaturedRating.
func (s Service) IsFeatured() bool {
	return s.Rating >= FeaturedRating
}

// MatchesQuery reports whether query occurs, ignoring case, in the name,
// description or category. An empty query matches every service.
func (s Service) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	return ContainsFold(s.Name, query) ||
		ContainsFold(s.Description, query) ||
		ContainsFold(s.Category, query)
}

// InCategory reports whether the service's category equals category,
// ignoring case. An empty category matches every service.
func (s Service) InCategory(category string) bool {
	return category == "" || EqualFold(s.Category, category)
}

// Category pairs a category name with its display description.
type Category struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
