package handler

import (
	"context"
	"encoding/json"
	"time"

	"asetra-system/internal/database/models"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type AssetSummary struct {
	TotalAssets  int64           `json:"total_assets"`
	Categories   []CategoryCount `json:"categories"`
	StatusCounts []StatusCount   `json:"status_counts"`
	RecentAssets []AssetResponse `json:"recent_assets"`
}

// GetAssetSummary aggregates over the full collection: global total, grouped
// category and status counts (labels with no members never appear), and the 5
// most recently created assets with their locations.
func (s *AssetHandler) GetAssetSummary(ctx context.Context) (*AssetSummary, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, ASSET_SUMMARY_CACHE_KEY).Result(); err == nil {
			var summary AssetSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	var total int64
	if err := s.db.Model(&models.Asset{}).Count(&total).Error; err != nil {
		return nil, err
	}

	categories := make([]CategoryCount, 0)
	if err := s.db.Model(&models.Asset{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&categories).Error; err != nil {
		return nil, err
	}

	statusCounts := make([]StatusCount, 0)
	if err := s.db.Model(&models.Asset{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	var recent []models.Asset
	if err := s.db.InnerJoins("Location").
		Order("assets.created_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	recentResponses := make([]AssetResponse, len(recent))
	for i, asset := range recent {
		recentResponses[i] = assetToResponse(asset)
	}

	summary := &AssetSummary{
		TotalAssets:  total,
		Categories:   categories,
		StatusCounts: statusCounts,
		RecentAssets: recentResponses,
	}

	if s.redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, ASSET_SUMMARY_CACHE_KEY, data, CACHE_TTL_SHORT)
		}
	}

	return summary, nil
}

// --- Report export ---

type ExportReportInput struct {
	Category       *string `json:"category"`
	LocationID     *int64  `json:"location_id"`
	Status         *string `json:"status"`
	Format         string  `json:"format"`
	IncludeSummary *bool   `json:"include_summary"`
}

type ReportSummary struct {
	TotalAssets  int64           `json:"total_assets"`
	Categories   []CategoryCount `json:"categories"`
	StatusCounts []StatusCount   `json:"status_counts"`
}

type ReportData struct {
	Assets  []AssetResponse `json:"assets"`
	Summary *ReportSummary  `json:"summary,omitempty"`
}

type ExportReportResponse struct {
	FileURL  string     `json:"file_url"`
	Filename string     `json:"filename"`
	Format   string     `json:"format"`
	Data     ReportData `json:"-"`
}

// ExportReport selects the export population with the filter predicate subset
// (no search, sort or pagination) and, when requested, computes summary
// counts over that same filtered population. Producing the file bytes is the
// renderer's job; this hands over the resolved data and a unique name.
func (s *AssetHandler) ExportReport(ctx context.Context, in ExportReportInput) (*ExportReportResponse, error) {
	if in.Format != "pdf" && in.Format != "xlsx" {
		return nil, &ValidationError{Field: "format", Reason: "must be pdf or xlsx"}
	}

	filter := AssetFilter{Category: in.Category, LocationID: in.LocationID, Status: in.Status}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	var assets []models.Asset
	if err := applyAssetFilter(s.db.InnerJoins("Location"), filter).
		Order("assets.id").
		Find(&assets).Error; err != nil {
		return nil, err
	}

	responses := make([]AssetResponse, len(assets))
	for i, asset := range assets {
		responses[i] = assetToResponse(asset)
	}

	data := ReportData{Assets: responses}

	includeSummary := true
	if in.IncludeSummary != nil {
		includeSummary = *in.IncludeSummary
	}

	if includeSummary {
		categories := make([]CategoryCount, 0)
		if err := applyAssetFilter(s.db.Model(&models.Asset{}), filter).
			Select("category, COUNT(*) AS count").
			Group("category").
			Scan(&categories).Error; err != nil {
			return nil, err
		}

		statusCounts := make([]StatusCount, 0)
		if err := applyAssetFilter(s.db.Model(&models.Asset{}), filter).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&statusCounts).Error; err != nil {
			return nil, err
		}

		data.Summary = &ReportSummary{
			TotalAssets:  int64(len(responses)),
			Categories:   categories,
			StatusCounts: statusCounts,
		}
	}

	filename := reportFilename(in.Format, time.Now())

	return &ExportReportResponse{
		FileURL:  "/reports/" + filename,
		Filename: filename,
		Format:   in.Format,
		Data:     data,
	}, nil
}
