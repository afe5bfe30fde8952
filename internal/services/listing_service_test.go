package services

import (
	"testing"

	"imovelBack/internal/geo"
	"imovelBack/internal/models"
)

func saleListing(id int, title, lat, lon string) models.Listing {
	return models.Listing{ID: id, Title: title, Category: models.CategorySale, Latitude: lat, Longitude: lon}
}

func TestRankListingsCategoryIsExclusive(t *testing.T) {
	listings := []models.Listing{
		{ID: 1, Title: "Casa no centro", Category: models.CategorySale},
		{ID: 2, Title: "Apartamento mobiliado", Category: models.CategoryRent},
		{ID: 3, Title: "Cobertura duplex", Category: "SALE"},
	}

	ranked := RankListings(nil, listings, models.CategorySale, "")
	if len(ranked) != 2 {
		t.Fatalf("expected 2 sale listings, got %d", len(ranked))
	}
	for _, r := range ranked {
		if r.ID == 2 {
			t.Error("rent listing leaked into sale results")
		}
	}

	ranked = RankListings(nil, listings, models.CategoryRent, "")
	if len(ranked) != 1 || ranked[0].ID != 2 {
		t.Fatalf("expected only listing 2 for rent, got %+v", ranked)
	}
}

func TestRankListingsSearchIgnoresDiacriticsAndCase(t *testing.T) {
	listings := []models.Listing{
		saleListing(1, "Residência em São Paulo", "", ""),
		saleListing(2, "Kitnet perto do metrô", "", ""),
	}

	ranked := RankListings(nil, listings, models.CategorySale, "residencia")
	if len(ranked) != 1 || ranked[0].ID != 1 {
		t.Fatalf("expected diacritic-folded match on listing 1, got %+v", ranked)
	}

	ranked = RankListings(nil, listings, models.CategorySale, "METRO")
	if len(ranked) != 1 || ranked[0].ID != 2 {
		t.Fatalf("expected case-folded match on listing 2, got %+v", ranked)
	}

	// Empty search keeps everything.
	if got := len(RankListings(nil, listings, models.CategorySale, "")); got != 2 {
		t.Errorf("empty search dropped listings: got %d, want 2", got)
	}
}

func TestRankListingsOrdersByDistance(t *testing.T) {
	// Reference near São Paulo; listing A in São Paulo, B in Rio.
	ref := geo.Coordinate{Latitude: -23.55, Longitude: -46.63}
	listings := []models.Listing{
		saleListing(2, "B", "-22.9068", "-43.1729"),
		saleListing(1, "A", "-23.5505", "-46.6333"),
	}

	ranked := RankListings(&ref, listings, models.CategorySale, "")
	if len(ranked) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(ranked))
	}
	if ranked[0].ID != 1 || ranked[1].ID != 2 {
		t.Fatalf("expected order [A B], got [%s %s]", ranked[0].Title, ranked[1].Title)
	}
	if ranked[0].DistanceKm == nil || ranked[1].DistanceKm == nil {
		t.Fatal("expected distances on both listings")
	}
	if *ranked[0].DistanceKm >= *ranked[1].DistanceKm {
		t.Errorf("distances not ascending: %f >= %f", *ranked[0].DistanceKm, *ranked[1].DistanceKm)
	}
}

func TestRankListingsStableOnEqualDistance(t *testing.T) {
	ref := geo.Coordinate{Latitude: -23.55, Longitude: -46.63}
	listings := []models.Listing{
		saleListing(10, "first", "-23.5505", "-46.6333"),
		saleListing(20, "second", "-23.5505", "-46.6333"),
		saleListing(30, "third", "-23.5505", "-46.6333"),
	}

	ranked := RankListings(&ref, listings, models.CategorySale, "")
	if ranked[0].ID != 10 || ranked[1].ID != 20 || ranked[2].ID != 30 {
		t.Errorf("equal-distance listings reordered: %d %d %d", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestRankListingsUnlocatableSinkToEnd(t *testing.T) {
	ref := geo.Coordinate{Latitude: -23.55, Longitude: -46.63}
	listings := []models.Listing{
		saleListing(1, "no coords", "", ""),
		saleListing(2, "garbage coords", "abc", "def"),
		saleListing(3, "located", "-23.55", "-46.63"),
	}

	ranked := RankListings(&ref, listings, models.CategorySale, "")
	if ranked[0].ID != 3 {
		t.Fatalf("located listing not first: got %d", ranked[0].ID)
	}
	if ranked[1].DistanceKm != nil || ranked[2].DistanceKm != nil {
		t.Error("unlocatable listings should carry no distance")
	}
	// The two unlocatable listings keep their relative order.
	if ranked[1].ID != 1 || ranked[2].ID != 2 {
		t.Errorf("unlocatable listings reordered: %d %d", ranked[1].ID, ranked[2].ID)
	}
}

func TestRankListingsNoReferenceSkipsSort(t *testing.T) {
	listings := []models.Listing{
		saleListing(2, "far", "-22.9068", "-43.1729"),
		saleListing(1, "near", "-23.5505", "-46.6333"),
	}

	ranked := RankListings(nil, listings, models.CategorySale, "")
	if ranked[0].ID != 2 || ranked[1].ID != 1 {
		t.Errorf("input order not preserved without a reference: %d %d", ranked[0].ID, ranked[1].ID)
	}
	if ranked[0].DistanceKm != nil {
		t.Error("distance annotated without a reference coordinate")
	}
}

func TestRankListingsEmptyInput(t *testing.T) {
	ref := geo.Fallback
	ranked := RankListings(&ref, nil, models.CategorySale, "casa")
	if ranked == nil || len(ranked) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", ranked)
	}
}
