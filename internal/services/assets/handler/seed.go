package handler

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"asetra-system/internal/database/models"
)

type SeedResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

var seedLocations = []models.Location{
	{Name: "Main Office", Description: strPtr("Head office building")},
	{Name: "Warehouse", Description: strPtr("Central storage warehouse")},
	{Name: "Server Room", Description: strPtr("Primary data center room")},
	{Name: "Branch Office", Description: strPtr("Regional branch office")},
	{Name: "Workshop", Description: strPtr("Repair and maintenance workshop")},
}

// SeedDummyData populates an empty database with 5 locations and 5 assets per
// category. It refuses to run against a database that already holds data.
func (s *AssetHandler) SeedDummyData(ctx context.Context) (*SeedResult, error) {
	var locationCount, assetCount int64
	if err := s.db.Model(&models.Location{}).Count(&locationCount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Asset{}).Count(&assetCount).Error; err != nil {
		return nil, err
	}
	if locationCount > 0 || assetCount > 0 {
		return &SeedResult{Message: "Database already contains data, seeding skipped", Count: 0}, nil
	}

	locations := make([]models.Location, len(seedLocations))
	copy(locations, seedLocations)
	for i := range locations {
		if err := s.db.Create(&locations[i]).Error; err != nil {
			return nil, err
		}
	}

	created := 0
	for ci, category := range models.AssetCategories {
		for i := 0; i < 5; i++ {
			n := ci*5 + i + 1
			price := decimal.NewFromInt(int64(250 + 50*(n%20))).StringFixed(2)

			asset := models.Asset{
				AssetNumber:   fmt.Sprintf("AST-%03d", n),
				SerialNumber:  fmt.Sprintf("SN-%06d", n),
				Name:          fmt.Sprintf("%s Unit %d", category, i+1),
				Category:      category,
				Brand:         strPtr("Generic"),
				PurchasePrice: &price,
				LocationID:    locations[n%len(locations)].ID,
				Status:        models.AssetStatuses[n%len(models.AssetStatuses)],
			}
			asset.BarcodeData = strPtr(creationBarcodeData(asset.AssetNumber))
			asset.QRCodeData = strPtr(creationQRCodeData(asset.AssetNumber, asset.Name, asset.Category))

			if err := s.db.Create(&asset).Error; err != nil {
				return nil, err
			}
			created++
		}
	}

	s.invalidateAssetCaches(ctx)
	if s.redis != nil {
		_ = s.redis.Del(ctx, LOCATIONS_CACHE_KEY)
	}

	return &SeedResult{
		Message: "Dummy data seeded successfully",
		Count:   created,
	}, nil
}
