package handler

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"asetra-system/internal/database/models"
)

const (
	ASSET_SUMMARY_CACHE_KEY = "assets:summary"
	LOCATIONS_CACHE_KEY     = "assets:locations"
	CACHE_TTL_SHORT         = 5 * time.Minute
	CACHE_TTL_MEDIUM        = 30 * time.Minute
)

// --- Helpers ---
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- Handler ---

type AssetHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewAssetHandler(db *gorm.DB, redisClient *redis.Client) *AssetHandler {
	return &AssetHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *AssetHandler) invalidateAssetCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, ASSET_SUMMARY_CACHE_KEY)
}

// --- Responses ---

type LocationResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type AssetResponse struct {
	ID             int64             `json:"id"`
	AssetNumber    string            `json:"asset_number"`
	SerialNumber   string            `json:"serial_number"`
	Name           string            `json:"name"`
	Description    *string           `json:"description"`
	Category       string            `json:"category"`
	Brand          *string           `json:"brand"`
	Model          *string           `json:"model"`
	PurchaseDate   *time.Time        `json:"purchase_date"`
	PurchasePrice  *float64          `json:"purchase_price"`
	WarrantyExpiry *time.Time        `json:"warranty_expiry"`
	LocationID     int64             `json:"location_id"`
	Status         string            `json:"status"`
	BarcodeData    *string           `json:"barcode_data"`
	QRCodeData     *string           `json:"qr_code_data"`
	Notes          *string           `json:"notes"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Location       *LocationResponse `json:"location,omitempty"`
}

func locationToResponse(location models.Location) LocationResponse {
	return LocationResponse{
		ID:          location.ID,
		Name:        location.Name,
		Description: location.Description,
		CreatedAt:   location.CreatedAt,
	}
}

func assetToResponse(asset models.Asset) AssetResponse {
	resp := AssetResponse{
		ID:             asset.ID,
		AssetNumber:    asset.AssetNumber,
		SerialNumber:   asset.SerialNumber,
		Name:           asset.Name,
		Description:    asset.Description,
		Category:       asset.Category,
		Brand:          asset.Brand,
		Model:          asset.Model,
		PurchaseDate:   asset.PurchaseDate,
		WarrantyExpiry: asset.WarrantyExpiry,
		LocationID:     asset.LocationID,
		Status:         asset.Status,
		BarcodeData:    asset.BarcodeData,
		QRCodeData:     asset.QRCodeData,
		Notes:          asset.Notes,
		CreatedAt:      asset.CreatedAt,
		UpdatedAt:      asset.UpdatedAt,
	}

	// The price column is fixed-point text; it goes out as a plain number.
	if asset.PurchasePrice != nil {
		if d, err := decimal.NewFromString(*asset.PurchasePrice); err == nil {
			f, _ := d.Float64()
			resp.PurchasePrice = &f
		}
	}

	if asset.Location != nil {
		location := locationToResponse(*asset.Location)
		resp.Location = &location
	}

	return resp
}

// --- Query composition ---

// AssetFilter is the shared predicate set for listing, counting and report
// selection. Absent fields contribute no constraint.
type AssetFilter struct {
	Category   *string
	LocationID *int64
	Status     *string
}

func applyAssetFilter(query *gorm.DB, filter AssetFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("assets.category = ?", *filter.Category)
	}
	if filter.LocationID != nil {
		query = query.Where("assets.location_id = ?", *filter.LocationID)
	}
	if filter.Status != nil {
		query = query.Where("assets.status = ?", *filter.Status)
	}
	return query
}

func (f AssetFilter) validate() error {
	if f.Category != nil && !models.ValidCategory(*f.Category) {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	if f.Status != nil && !models.ValidStatus(*f.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

var sortColumns = map[string]string{
	"name":         "assets.name",
	"asset_number": "assets.asset_number",
	"category":     "assets.category",
	"created_at":   "assets.created_at",
}

// --- List ---

type ListAssetsQuery struct {
	Category   *string
	LocationID *int64
	Status     *string
	Search     *string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

type ListAssetsResponse struct {
	Assets     []AssetResponse `json:"assets"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

func (s *AssetHandler) ListAssets(ctx context.Context, q ListAssetsQuery) (*ListAssetsResponse, error) {
	filter := AssetFilter{Category: q.Category, LocationID: q.LocationID, Status: q.Status}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := applyAssetFilter(s.db.Model(&models.Asset{}), filter)

	if q.Search != nil && *q.Search != "" {
		term := "%" + *q.Search + "%"
		query = query.Where(
			"assets.name LIKE ? OR assets.asset_number LIKE ? OR assets.serial_number LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortColumn, ok := sortColumns[q.SortBy]
	if !ok {
		sortColumn = "assets.created_at"
	}
	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}

	var assets []models.Asset
	offset := (page - 1) * limit
	if err := query.InnerJoins("Location").
		Order(sortColumn + " " + direction).
		Offset(offset).Limit(limit).
		Find(&assets).Error; err != nil {
		return nil, err
	}

	responses := make([]AssetResponse, len(assets))
	for i, asset := range assets {
		responses[i] = assetToResponse(asset)
	}

	return &ListAssetsResponse{
		Assets:     responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// --- Reads ---

// GetAssetByID returns nil without error when no asset holds the id.
func (s *AssetHandler) GetAssetByID(ctx context.Context, id int64) (*AssetResponse, error) {
	var asset models.Asset
	if err := s.db.InnerJoins("Location").Where("assets.id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	resp := assetToResponse(asset)
	return &resp, nil
}

func (s *AssetHandler) GetAssetsByCategory(ctx context.Context, category string) ([]AssetResponse, error) {
	if !models.ValidCategory(category) {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}

	var assets []models.Asset
	if err := s.db.InnerJoins("Location").
		Where("assets.category = ?", category).
		Find(&assets).Error; err != nil {
		return nil, err
	}

	responses := make([]AssetResponse, len(assets))
	for i, asset := range assets {
		responses[i] = assetToResponse(asset)
	}
	return responses, nil
}

// --- Create ---

type CreateAssetInput struct {
	AssetNumber    string     `json:"asset_number"`
	SerialNumber   string     `json:"serial_number"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	Category       string     `json:"category"`
	Brand          *string    `json:"brand"`
	Model          *string    `json:"model"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	PurchasePrice  *float64   `json:"purchase_price"`
	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	LocationID     int64      `json:"location_id"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes"`
}

func validateCreateAssetInput(in CreateAssetInput) error {
	if in.AssetNumber == "" {
		return &ValidationError{Field: "asset_number", Reason: "must not be empty"}
	}
	if in.SerialNumber == "" {
		return &ValidationError{Field: "serial_number", Reason: "must not be empty"}
	}
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !models.ValidCategory(in.Category) {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	if in.Status != "" && !models.ValidStatus(in.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if in.PurchasePrice != nil && !decimal.NewFromFloat(*in.PurchasePrice).IsPositive() {
		return &ValidationError{Field: "purchase_price", Reason: "must be positive"}
	}
	return nil
}

func (s *AssetHandler) CreateAsset(ctx context.Context, in CreateAssetInput) (*AssetResponse, error) {
	if err := validateCreateAssetInput(in); err != nil {
		return nil, err
	}

	var location models.Location
	if err := s.db.First(&location, in.LocationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "location", ID: in.LocationID}
		}
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusActive
	}

	asset := models.Asset{
		AssetNumber:    in.AssetNumber,
		SerialNumber:   in.SerialNumber,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		Brand:          in.Brand,
		Model:          in.Model,
		PurchaseDate:   in.PurchaseDate,
		WarrantyExpiry: in.WarrantyExpiry,
		LocationID:     in.LocationID,
		Status:         status,
		BarcodeData:    strPtr(creationBarcodeData(in.AssetNumber)),
		QRCodeData:     strPtr(creationQRCodeData(in.AssetNumber, in.Name, in.Category)),
		Notes:          in.Notes,
	}

	if in.PurchasePrice != nil {
		price := decimal.NewFromFloat(*in.PurchasePrice).StringFixed(2)
		asset.PurchasePrice = &price
	}

	if err := s.db.Create(&asset).Error; err != nil {
		// The unique constraints are the correctness backstop here; no
		// pre-probe is run because a new row can only collide with others.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Field: "asset_number or serial_number"}
		}
		return nil, err
	}

	s.invalidateAssetCaches(ctx)

	asset.Location = &location
	resp := assetToResponse(asset)
	return &resp, nil
}

// --- Update ---

type UpdateAssetInput struct {
	ID             int64                `json:"id"`
	AssetNumber    *string              `json:"asset_number"`
	SerialNumber   *string              `json:"serial_number"`
	Name           *string              `json:"name"`
	Description    Optional[string]     `json:"description"`
	Category       *string              `json:"category"`
	Brand          Optional[string]     `json:"brand"`
	Model          Optional[string]     `json:"model"`
	PurchaseDate   Optional[time.Time]  `json:"purchase_date"`
	PurchasePrice  Optional[float64]    `json:"purchase_price"`
	WarrantyExpiry Optional[time.Time]  `json:"warranty_expiry"`
	LocationID     *int64               `json:"location_id"`
	Status         *string              `json:"status"`
	Notes          Optional[string]     `json:"notes"`
}

func validateUpdateAssetInput(in UpdateAssetInput) error {
	if in.AssetNumber != nil && *in.AssetNumber == "" {
		return &ValidationError{Field: "asset_number", Reason: "must not be empty"}
	}
	if in.SerialNumber != nil && *in.SerialNumber == "" {
		return &ValidationError{Field: "serial_number", Reason: "must not be empty"}
	}
	if in.Name != nil && *in.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Category != nil && !models.ValidCategory(*in.Category) {
		return &ValidationError{Field: "category", Reason: "unknown category"}
	}
	if in.Status != nil && !models.ValidStatus(*in.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if in.PurchasePrice.Set && in.PurchasePrice.Value != nil &&
		!decimal.NewFromFloat(*in.PurchasePrice.Value).IsPositive() {
		return &ValidationError{Field: "purchase_price", Reason: "must be positive"}
	}
	return nil
}

func (s *AssetHandler) UpdateAsset(ctx context.Context, in UpdateAssetInput) (*AssetResponse, error) {
	if err := validateUpdateAssetInput(in); err != nil {
		return nil, err
	}

	var asset models.Asset
	if err := s.db.First(&asset, in.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "asset", ID: in.ID}
		}
		return nil, err
	}

	if in.LocationID != nil {
		var location models.Location
		if err := s.db.First(&location, *in.LocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Entity: "location", ID: *in.LocationID}
			}
			return nil, err
		}
	}

	// Duplicate probes exclude the row under update so a self-assignment is
	// never a conflict.
	if in.AssetNumber != nil {
		var count int64
		if err := s.db.Model(&models.Asset{}).
			Where("asset_number = ? AND id <> ?", *in.AssetNumber, in.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &ConflictError{Field: "asset_number"}
		}
	}

	if in.SerialNumber != nil {
		var count int64
		if err := s.db.Model(&models.Asset{}).
			Where("serial_number = ? AND id <> ?", *in.SerialNumber, in.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &ConflictError{Field: "serial_number"}
		}
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}

	if in.AssetNumber != nil {
		updates["asset_number"] = *in.AssetNumber
	}
	if in.SerialNumber != nil {
		updates["serial_number"] = *in.SerialNumber
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.LocationID != nil {
		updates["location_id"] = *in.LocationID
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Description.Set {
		updates["description"] = optionalValue(in.Description)
	}
	if in.Brand.Set {
		updates["brand"] = optionalValue(in.Brand)
	}
	if in.Model.Set {
		updates["model"] = optionalValue(in.Model)
	}
	if in.Notes.Set {
		updates["notes"] = optionalValue(in.Notes)
	}
	if in.PurchaseDate.Set {
		updates["purchase_date"] = optionalValue(in.PurchaseDate)
	}
	if in.WarrantyExpiry.Set {
		updates["warranty_expiry"] = optionalValue(in.WarrantyExpiry)
	}
	if in.PurchasePrice.Set {
		if in.PurchasePrice.Value != nil {
			updates["purchase_price"] = decimal.NewFromFloat(*in.PurchasePrice.Value).StringFixed(2)
		} else {
			updates["purchase_price"] = nil
		}
	}

	if err := s.db.Model(&models.Asset{}).Where("id = ?", in.ID).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Field: "asset_number or serial_number"}
		}
		return nil, err
	}

	s.invalidateAssetCaches(ctx)

	var updated models.Asset
	if err := s.db.InnerJoins("Location").Where("assets.id = ?", in.ID).First(&updated).Error; err != nil {
		return nil, err
	}

	resp := assetToResponse(updated)
	return &resp, nil
}

// optionalValue flattens an Optional into the value gorm writes: the concrete
// value, or SQL NULL when the field was explicitly cleared.
func optionalValue[T any](o Optional[T]) interface{} {
	if o.Value == nil {
		return nil
	}
	return *o.Value
}

// --- Delete ---

// DeleteAsset reports whether a row existed and was removed. A missing id is
// not an error.
func (s *AssetHandler) DeleteAsset(ctx context.Context, id int64) (bool, error) {
	result := s.db.Delete(&models.Asset{}, id)
	if result.Error != nil {
		return false, result.Error
	}

	if result.RowsAffected > 0 {
		s.invalidateAssetCaches(ctx)
		return true, nil
	}
	return false, nil
}
