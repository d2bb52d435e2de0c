package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"smartwaste-backend/internal/services"
	"smartwaste-backend/pkg/utils"
)

// ReverseGeocodeRequest represents a request to reverse geocode coordinates
type ReverseGeocodeRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeRequest represents a request to geocode an address
type GeocodeRequest struct {
	Address string `json:"address"`
}

// BatchGeocodeRequest represents a batch request to geocode multiple addresses
type BatchGeocodeRequest struct {
	Addresses []GeocodeRequest `json:"addresses"`
}

// BatchGeocodeResponse represents a batch response with multiple coordinates
type BatchGeocodeResponse struct {
	Addresses []services.Address `json:"addresses"`
	Errors    []string           `json:"errors,omitempty"`
}

// BatchReverseGeocodeRequest represents a batch request to reverse geocode multiple coordinates
type BatchReverseGeocodeRequest struct {
	Coordinates []services.Coordinates `json:"coordinates"`
}

// BatchReverseGeocodeResponse represents a batch response with multiple addresses
type BatchReverseGeocodeResponse struct {
	Addresses []services.Address `json:"addresses"`
	Errors    []string           `json:"errors,omitempty"`
}

// ReverseGeocode handles POST /api/geocoding/reverse
func ReverseGeocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Geocoding is not configured")
			return
		}

		var req ReverseGeocodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			utils.RespondError(w, http.StatusBadRequest, "Coordinates out of range")
			return
		}

		address, err := geocoder.ReverseGeocode(req.Lat, req.Lng)
		if err != nil {
			log.Printf("❌ Reverse geocoding failed: %v", err)
			utils.RespondError(w, http.StatusBadGateway, "Failed to reverse geocode")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}

// BatchReverseGeocode handles POST /api/geocoding/reverse/batch
func BatchReverseGeocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Geocoding is not configured")
			return
		}

		var req BatchReverseGeocodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(req.Coordinates) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No coordinates provided")
			return
		}

		response := BatchReverseGeocodeResponse{
			Addresses: make([]services.Address, 0, len(req.Coordinates)),
			Errors:    make([]string, 0),
		}

		for i, coord := range req.Coordinates {
			address, err := geocoder.ReverseGeocode(coord.Lat, coord.Lng)
			if err != nil {
				log.Printf("❌ Failed to reverse geocode coordinate %d (%.6f, %.6f): %v", i, coord.Lat, coord.Lng, err)
				response.Errors = append(response.Errors, fmt.Sprintf("Index %d: %v", i, err))
				// Empty placeholder keeps the array aligned with the request
				response.Addresses = append(response.Addresses, services.Address{
					FormattedAddress: "",
					Coordinates:      coord,
				})
				continue
			}
			response.Addresses = append(response.Addresses, *address)
		}

		utils.RespondJSON(w, http.StatusOK, response)
	}
}

// Geocode handles POST /api/geocoding/forward
func Geocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Geocoding is not configured")
			return
		}

		var req GeocodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Address == "" {
			utils.RespondError(w, http.StatusBadRequest, "Address is required")
			return
		}

		address, err := geocoder.Geocode(req.Address)
		if err != nil {
			log.Printf("❌ Geocoding failed for address '%s': %v", req.Address, err)
			utils.RespondError(w, http.StatusBadGateway, "Failed to geocode")
			return
		}

		utils.RespondJSON(w, http.StatusOK, address)
	}
}

// BatchGeocode handles POST /api/geocoding/forward/batch
func BatchGeocode(geocoder *services.GeocodingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if geocoder == nil {
			utils.RespondError(w, http.StatusServiceUnavailable, "Geocoding is not configured")
			return
		}

		var req BatchGeocodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if len(req.Addresses) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No addresses provided")
			return
		}

		response := BatchGeocodeResponse{
			Addresses: make([]services.Address, 0, len(req.Addresses)),
			Errors:    make([]string, 0),
		}

		for i, addrReq := range req.Addresses {
			if addrReq.Address == "" {
				response.Errors = append(response.Errors, fmt.Sprintf("Index %d: empty address", i))
				response.Addresses = append(response.Addresses, services.Address{})
				continue
			}

			address, err := geocoder.Geocode(addrReq.Address)
			if err != nil {
				log.Printf("❌ Failed to geocode address %d ('%s'): %v", i, addrReq.Address, err)
				response.Errors = append(response.Errors, fmt.Sprintf("Index %d: %v", i, err))
				// Empty placeholder keeps the array aligned with the request
				response.Addresses = append(response.Addresses, services.Address{
					FormattedAddress: addrReq.Address,
				})
				continue
			}
			response.Addresses = append(response.Addresses, *address)
		}

		utils.RespondJSON(w, http.StatusOK, response)
	}
}
