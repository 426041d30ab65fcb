package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asetra-system/internal/services/assets/handler"
)

type LocationHTTPHandler struct {
	service *handler.AssetHandler
}

func NewLocationHTTPHandler(service *handler.AssetHandler) *LocationHTTPHandler {
	return &LocationHTTPHandler{
		service: service,
	}
}

func (s *LocationHTTPHandler) ListLocations(c *gin.Context) {
	locations, err := s.service.ListLocations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, locations)
}

func (s *LocationHTTPHandler) CreateLocation(c *gin.Context) {
	var input handler.CreateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	location, err := s.service.CreateLocation(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    location,
	})
}
