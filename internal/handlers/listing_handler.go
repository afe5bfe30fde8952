package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"imovelBack/internal/models"
	services "imovelBack/internal/services"
	"imovelBack/utils"

	"github.com/google/uuid"
)

type ListingHandler struct {
	Service *services.ListingService
}

// GetListingFeed serves the home feed, list view and map view: the
// same category + search + distance ranking for all three. lat/lon
// are the visitor's resolved position; when they are missing the
// service falls back to the default coordinate.
func (h *ListingHandler) GetListingFeed(w http.ResponseWriter, r *http.Request) {
	category, ok := models.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		http.Error(w, "Invalid category: expected sale or rent", http.StatusBadRequest)
		return
	}

	req := models.ListingFeedRequest{
		Category:   category,
		SearchTerm: r.URL.Query().Get("search"),
		Latitude:   r.URL.Query().Get("lat"),
		Longitude:  r.URL.Query().Get("lon"),
	}

	listings, err := h.Service.GetFeed(r.Context(), req)
	if err != nil {
		http.Error(w, "Failed to retrieve listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	listing, err := h.Service.GetListingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listings, err := h.Service.GetListingsByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to retrieve listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) GetTeamListings(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(r.URL.Query().Get(":team_id"))
	if err != nil || teamID <= 0 {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	listings, err := h.Service.GetListingsByTeamID(r.Context(), teamID)
	if err != nil {
		http.Error(w, "Failed to retrieve listings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	err := r.ParseMultipartForm(32 << 20) // 32MB
	if err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	listing, ok := h.listingFromForm(w, r)
	if !ok {
		return
	}
	listing.UserID = userID

	images, err := uploadFormImages(r, "images")
	if err != nil {
		log.Printf("image upload failed: %v", err)
		http.Error(w, "Failed to upload images", http.StatusInternalServerError)
		return
	}
	listing.Images = images

	created, err := h.Service.CreateListing(r.Context(), listing)
	if err != nil {
		if isForeignKeyConstraintError(err) {
			http.Error(w, "Referenced team does not exist", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to create listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	listing, ok := h.listingFromForm(w, r)
	if !ok {
		return
	}
	listing.ID = id

	images, err := uploadFormImages(r, "images")
	if err != nil {
		log.Printf("image upload failed: %v", err)
		http.Error(w, "Failed to upload images", http.StatusInternalServerError)
		return
	}
	listing.Images = images

	// replace_images swaps the whole image set; the default appends.
	replaceImages := r.FormValue("replace_images") == "true"

	removed, err := h.Service.UpdateListing(r.Context(), userID, listing, replaceImages)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update listing", http.StatusInternalServerError)
		return
	}
	deleteStoredImages(removed)

	updated, err := h.Service.GetListingByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to retrieve listing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid listing ID", http.StatusBadRequest)
		return
	}

	removed, err := h.Service.DeleteListing(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete listing", http.StatusInternalServerError)
		return
	}
	deleteStoredImages(removed)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) listingFromForm(w http.ResponseWriter, r *http.Request) (models.Listing, bool) {
	var listing models.Listing

	listing.Title = r.FormValue("title")
	if listing.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return models.Listing{}, false
	}

	category, ok := models.ParseCategory(r.FormValue("category"))
	if !ok {
		http.Error(w, "Invalid category: expected sale or rent", http.StatusBadRequest)
		return models.Listing{}, false
	}
	listing.Category = category

	listing.Description = r.FormValue("description")
	listing.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	listing.Latitude = r.FormValue("latitude")
	listing.Longitude = r.FormValue("longitude")

	if teamValue := r.FormValue("team_id"); teamValue != "" {
		teamID, err := strconv.Atoi(teamValue)
		if err != nil || teamID <= 0 {
			http.Error(w, "Invalid team ID", http.StatusBadRequest)
			return models.Listing{}, false
		}
		listing.TeamID = &teamID
	}

	return listing, true
}

// uploadFormImages stores every uploaded file under a fresh object
// name and returns the image records to persist.
func uploadFormImages(r *http.Request, key string) ([]models.ListingImage, error) {
	images := []models.ListingImage{}
	if r.MultipartForm == nil {
		return images, nil
	}

	for _, fileHeader := range r.MultipartForm.File[key] {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}

		filename := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))
		url, err := utils.UploadFileToS3(data, filename, "listings")
		if err != nil {
			return nil, err
		}

		images = append(images, models.ListingImage{
			Name: fileHeader.Filename,
			Path: url,
		})
	}
	return images, nil
}

// deleteStoredImages is best-effort cleanup; a failure is logged and
// the request still succeeds.
func deleteStoredImages(paths []string) {
	for _, path := range paths {
		if err := utils.DeleteFileFromS3(path); err != nil {
			log.Printf("failed to delete stored image %s: %v", path, err)
		}
	}
}
