package handler

import (
	"context"
	"encoding/json"

	"asetra-system/internal/database/models"
)

type CreateLocationInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ListLocations returns every location ordered by name ascending, for
// dropdown display. Ordering follows the store's collation.
func (s *AssetHandler) ListLocations(ctx context.Context) ([]LocationResponse, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, LOCATIONS_CACHE_KEY).Result(); err == nil {
			var locations []LocationResponse
			if err := json.Unmarshal([]byte(cached), &locations); err == nil {
				return locations, nil
			}
		}
	}

	var locations []models.Location
	if err := s.db.Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}

	responses := make([]LocationResponse, len(locations))
	for i, location := range locations {
		responses[i] = locationToResponse(location)
	}

	if s.redis != nil {
		if data, err := json.Marshal(responses); err == nil {
			_ = s.redis.Set(ctx, LOCATIONS_CACHE_KEY, data, CACHE_TTL_MEDIUM)
		}
	}

	return responses, nil
}

func (s *AssetHandler) CreateLocation(ctx context.Context, in CreateLocationInput) (*LocationResponse, error) {
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	location := models.Location{
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.db.Create(&location).Error; err != nil {
		return nil, err
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, LOCATIONS_CACHE_KEY)
	}

	resp := locationToResponse(location)
	return &resp, nil
}
