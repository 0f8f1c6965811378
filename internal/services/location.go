package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/google/uuid"
)

// LocationService handles saved addresses
type LocationService struct {
	locations LocationQueries
	geocoder  Geocoder
}

// NewLocationService creates a new location service. geocoder may be nil, in
// which case coordinates are required.
func NewLocationService(locations LocationQueries, geocoder Geocoder) *LocationService {
	return &LocationService{
		locations: locations,
		geocoder:  geocoder,
	}
}

// CreateLocationInput holds the fields of a new saved location
type CreateLocationInput struct {
	Label   string   `json:"label"`
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// CreateLocation saves an address for userID, geocoding it when no
// coordinates are given
func (s *LocationService) CreateLocation(ctx context.Context, userID string, in CreateLocationInput) (*models.Location, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Address = strings.TrimSpace(in.Address)
	if in.Address == "" {
		return nil, invalid("address", "is required")
	}
	if err := checkCoordinates("location", in.Lat, in.Lon); err != nil {
		return nil, err
	}

	loc := &models.Location{
		ID:        uuid.New().String(),
		UserID:    userID,
		Label:     in.Label,
		Address:   in.Address,
		CreatedAt: time.Now(),
	}

	if in.Lat != nil {
		loc.Lat, loc.Lon = *in.Lat, *in.Lon
	} else {
		if s.geocoder == nil {
			return nil, invalid("lat", "is required when geocoding is disabled")
		}
		lat, lon, err := s.geocoder.Geocode(ctx, in.Address)
		if err != nil {
			if errors.Is(err, ErrAddressNotFound) {
				return nil, invalid("address", "could not be located")
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		loc.Lat, loc.Lon = lat, lon
	}

	if err := s.locations.CreateLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}
	return loc, nil
}

// ListLocations lists the saved locations of userID
func (s *LocationService) ListLocations(ctx context.Context, userID string) ([]*models.Location, error) {
	return s.locations.ListLocationsByUser(ctx, userID)
}

// DeleteLocation deletes a saved location of userID
func (s *LocationService) DeleteLocation(ctx context.Context, userID, id string) error {
	loc, err := s.locations.GetLocation(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if loc.UserID != userID {
		return fmt.Errorf("%w: not your location", ErrForbidden)
	}
	return storeErr(s.locations.DeleteLocation(ctx, id))
}
