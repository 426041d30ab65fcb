package handler

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"asetra-system/internal/database/models"
)

const (
	CodeTypeBarcode = "barcode"
	CodeTypeQR      = "qr"
)

type GenerateCodeInput struct {
	AssetID int64  `json:"asset_id"`
	Type    string `json:"type"`
}

type GenerateCodeResponse struct {
	Data     string `json:"data"`
	ImageURL string `json:"image_url"`
}

// GenerateCode recomputes the shared identity payload for an existing asset
// and persists it into the field matching the requested code type. The other
// field is left untouched. Image rendering is external; only the reference is
// produced here.
func (s *AssetHandler) GenerateCode(ctx context.Context, in GenerateCodeInput) (*GenerateCodeResponse, error) {
	if in.Type != CodeTypeBarcode && in.Type != CodeTypeQR {
		return nil, &ValidationError{Field: "type", Reason: "must be barcode or qr"}
	}

	var asset models.Asset
	if err := s.db.First(&asset, in.AssetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "asset", ID: in.AssetID}
		}
		return nil, err
	}

	payload := codePayload(asset.AssetNumber, asset.SerialNumber, asset.Name)

	column := "barcode_data"
	if in.Type == CodeTypeQR {
		column = "qr_code_data"
	}

	updates := map[string]interface{}{
		column:       payload,
		"updated_at": time.Now(),
	}
	if err := s.db.Model(&models.Asset{}).Where("id = ?", in.AssetID).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.invalidateAssetCaches(ctx)

	return &GenerateCodeResponse{
		Data:     payload,
		ImageURL: codeImageURL(in.Type, asset.ID),
	}, nil
}
