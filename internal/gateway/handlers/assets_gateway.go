package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"asetra-system/internal/services/assets/handler"
)

type AssetHTTPHandler struct {
	service *handler.AssetHandler
}

func NewAssetHTTPHandler(service *handler.AssetHandler) *AssetHTTPHandler {
	return &AssetHTTPHandler{
		service: service,
	}
}

// Helper functions
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondError maps the service's domain errors onto HTTP statuses; anything
// else is an infrastructure failure.
func respondError(c *gin.Context, err error) {
	var notFound *handler.NotFoundError
	var conflict *handler.ConflictError
	var invalid *handler.ValidationError

	switch {
	case errors.As(err, &notFound):
		fail(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		fail(c, http.StatusConflict, conflict.Error())
	case errors.As(err, &invalid):
		fail(c, http.StatusBadRequest, invalid.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

func parseIDParam(c *gin.Context, param string) (int64, error) {
	return strconv.ParseInt(c.Param(param), 10, 64)
}

func parseInt64Query(c *gin.Context, param string) *int64 {
	str := c.Query(param)
	if str == "" {
		return nil
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return nil
	}
	return &val
}

func parseStringQuery(c *gin.Context, param string) *string {
	str := c.Query(param)
	if str == "" {
		return nil
	}
	return &str
}

func parseBoolQuery(c *gin.Context, param string) *bool {
	str := c.Query(param)
	if str == "" {
		return nil
	}
	val, err := strconv.ParseBool(str)
	if err != nil {
		return nil
	}
	return &val
}

// Asset endpoints

func (s *AssetHTTPHandler) ListAssets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	query := handler.ListAssetsQuery{
		Category:   parseStringQuery(c, "category"),
		LocationID: parseInt64Query(c, "location_id"),
		Status:     parseStringQuery(c, "status"),
		Search:     parseStringQuery(c, "search"),
		Page:       page,
		Limit:      limit,
		SortBy:     c.DefaultQuery("sort_by", "created_at"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	}

	resp, err := s.service.ListAssets(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, resp)
}

func (s *AssetHTTPHandler) GetAsset(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid asset ID")
		return
	}

	asset, err := s.service.GetAssetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if asset == nil {
		fail(c, http.StatusNotFound, "Asset not found")
		return
	}

	success(c, asset)
}

func (s *AssetHTTPHandler) GetAssetsByCategory(c *gin.Context) {
	category := c.Param("category")

	assets, err := s.service.GetAssetsByCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, assets)
}

func (s *AssetHTTPHandler) CreateAsset(c *gin.Context) {
	var input handler.CreateAssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	asset, err := s.service.CreateAsset(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    asset,
	})
}

func (s *AssetHTTPHandler) UpdateAsset(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid asset ID")
		return
	}

	var input handler.UpdateAssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	input.ID = id

	asset, err := s.service.UpdateAsset(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, asset)
}

func (s *AssetHTTPHandler) DeleteAsset(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid asset ID")
		return
	}

	deleted, err := s.service.DeleteAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, gin.H{"deleted": deleted})
}

func (s *AssetHTTPHandler) GetAssetSummary(c *gin.Context) {
	summary, err := s.service.GetAssetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, summary)
}

func (s *AssetHTTPHandler) GenerateCode(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid asset ID")
		return
	}

	var input handler.GenerateCodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	input.AssetID = id

	resp, err := s.service.GenerateCode(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, resp)
}

func (s *AssetHTTPHandler) SeedDummyData(c *gin.Context) {
	result, err := s.service.SeedDummyData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, result)
}
