package services

import (
	"context"
	"sort"

	"imovelBack/internal/geo"
	"imovelBack/internal/models"
	"imovelBack/internal/normalize"
	"imovelBack/internal/repositories"
	"imovelBack/utils"
)

type ListingService struct {
	ListingRepo *repositories.ListingRepository
}

// RankListings produces the ordered list a visitor sees: filter by
// transaction category (case-insensitive), filter by a
// diacritic-insensitive title match, then, when a reference coordinate
// is known, sort ascending by great-circle distance. The sort is
// stable so equal-distance listings keep their input order. With no
// reference coordinate the filtered set is returned unsorted and
// without distances. Pure function; every screen that shows a feed
// goes through it.
func RankListings(ref *geo.Coordinate, listings []models.Listing, category models.Category, searchTerm string) []models.DistanceListing {
	ranked := []models.DistanceListing{}

	for _, l := range listings {
		if !l.Category.Equals(category) {
			continue
		}
		if !normalize.ContainsFold(l.Title, searchTerm) {
			continue
		}

		entry := models.DistanceListing{Listing: l}
		if ref != nil {
			if c, ok := geo.ParseCoordinate(l.Latitude, l.Longitude); ok {
				d := geo.DistanceKm(*ref, c)
				entry.DistanceKm = &d
			}
		}
		ranked = append(ranked, entry)
	}

	if ref != nil {
		sort.SliceStable(ranked, func(i, j int) bool {
			di, dj := ranked[i].DistanceKm, ranked[j].DistanceKm
			// Listings without a usable coordinate sink to the end.
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	}
	return ranked
}

// GetFeed fetches all listings and ranks them for the requesting
// visitor. A missing or malformed lat/lon pair falls back to the
// canonical default coordinate, matching the geolocation-denied
// behavior of the clients.
func (s *ListingService) GetFeed(ctx context.Context, req models.ListingFeedRequest) ([]models.DistanceListing, error) {
	listings, err := s.ListingRepo.GetListings(ctx)
	if err != nil {
		return nil, err
	}

	ref := geo.Resolve(req.Latitude, req.Longitude)
	if ref == nil {
		fallback := geo.Fallback
		ref = &fallback
	}

	ranked := RankListings(ref, listings, req.Category, req.SearchTerm)
	for i := range ranked {
		ranked[i].PriceDisplay = utils.FormatPriceBRL(ranked[i].Price)
	}
	return ranked, nil
}

func (s *ListingService) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	created, err := s.ListingRepo.CreateListing(ctx, listing)
	if err != nil {
		return models.Listing{}, err
	}
	created.PriceDisplay = utils.FormatPriceBRL(created.Price)
	return created, nil
}

func (s *ListingService) GetListingByID(ctx context.Context, id int) (models.Listing, error) {
	listing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	listing.PriceDisplay = utils.FormatPriceBRL(listing.Price)
	return listing, nil
}

func (s *ListingService) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	listings, err := s.ListingRepo.GetListingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].PriceDisplay = utils.FormatPriceBRL(listings[i].Price)
	}
	return listings, nil
}

func (s *ListingService) GetListingsByTeamID(ctx context.Context, teamID int) ([]models.Listing, error) {
	listings, err := s.ListingRepo.GetListingsByTeamID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].PriceDisplay = utils.FormatPriceBRL(listings[i].Price)
	}
	return listings, nil
}

// UpdateListing applies an edit on behalf of callerID. Only the owner
// may edit; removed image paths are deleted from object storage
// best-effort by the handler.
func (s *ListingService) UpdateListing(ctx context.Context, callerID int, listing models.Listing, replaceImages bool) ([]string, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, models.ErrListingNotFound
	}
	listing.UserID = existing.UserID
	return s.ListingRepo.UpdateListing(ctx, listing, replaceImages)
}

func (s *ListingService) DeleteListing(ctx context.Context, callerID int, id int) ([]string, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, models.ErrListingNotFound
	}
	return s.ListingRepo.DeleteListing(ctx, id)
}
