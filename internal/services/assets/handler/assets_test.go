package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"asetra-system/internal/database/models"
)

func setupTestHandler(t *testing.T) *AssetHandler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	return NewAssetHandler(db, nil)
}

func createTestLocation(t *testing.T, s *AssetHandler, name string) LocationResponse {
	t.Helper()

	location, err := s.CreateLocation(context.Background(), CreateLocationInput{Name: name})
	if err != nil {
		t.Fatalf("Failed to create location %q: %v", name, err)
	}
	return *location
}

func createTestAsset(t *testing.T, s *AssetHandler, in CreateAssetInput) AssetResponse {
	t.Helper()

	asset, err := s.CreateAsset(context.Background(), in)
	if err != nil {
		t.Fatalf("Failed to create asset %q: %v", in.AssetNumber, err)
	}
	return *asset
}

func TestCreateAssetDerivesCodes(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	asset := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Test Computer",
		Category:     "Komputer",
		LocationID:   location.ID,
		Status:       "Active",
	})

	if asset.BarcodeData == nil || *asset.BarcodeData != "ASSET-AST-001" {
		t.Errorf("barcode_data = %v, want ASSET-AST-001", asset.BarcodeData)
	}
	if asset.PurchasePrice != nil {
		t.Errorf("purchase_price = %v, want nil", *asset.PurchasePrice)
	}
	if asset.Status != "Active" {
		t.Errorf("status = %q, want Active", asset.Status)
	}
	if asset.Location == nil || asset.Location.Name != "Main Office" {
		t.Errorf("location not joined: %+v", asset.Location)
	}
	if asset.UpdatedAt.Before(asset.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", asset.UpdatedAt, asset.CreatedAt)
	}

	if asset.QRCodeData == nil {
		t.Fatal("qr_code_data is nil")
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(*asset.QRCodeData), &payload); err != nil {
		t.Fatalf("qr_code_data is not JSON: %v", err)
	}
	if payload["asset_number"] != "AST-001" || payload["name"] != "Test Computer" || payload["category"] != "Komputer" {
		t.Errorf("qr payload = %v", payload)
	}
}

func TestCreateAssetDefaultsStatusToActive(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Warehouse")

	asset := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-002",
		SerialNumber: "SN-002",
		Name:         "Spare Monitor",
		Category:     "Monitor",
		LocationID:   location.ID,
	})

	if asset.Status != models.StatusActive {
		t.Errorf("status = %q, want %q", asset.Status, models.StatusActive)
	}
}

func TestCreateAssetValidation(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	base := CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Printer",
		Category:     "Printer",
		LocationID:   location.ID,
	}

	cases := []struct {
		name   string
		mutate func(in *CreateAssetInput)
		field  string
	}{
		{"empty asset_number", func(in *CreateAssetInput) { in.AssetNumber = "" }, "asset_number"},
		{"empty serial_number", func(in *CreateAssetInput) { in.SerialNumber = "" }, "serial_number"},
		{"empty name", func(in *CreateAssetInput) { in.Name = "" }, "name"},
		{"unknown category", func(in *CreateAssetInput) { in.Category = "Laptop" }, "category"},
		{"unknown status", func(in *CreateAssetInput) { in.Status = "Broken" }, "status"},
		{"zero price", func(in *CreateAssetInput) { zero := 0.0; in.PurchasePrice = &zero }, "purchase_price"},
		{"negative price", func(in *CreateAssetInput) { neg := -10.0; in.PurchasePrice = &neg }, "purchase_price"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)

			_, err := s.CreateAsset(context.Background(), in)
			var invalid *ValidationError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if invalid.Field != tc.field {
				t.Errorf("field = %q, want %q", invalid.Field, tc.field)
			}
		})
	}
}

func TestCreateAssetLocationNotFound(t *testing.T) {
	s := setupTestHandler(t)

	_, err := s.CreateAsset(context.Background(), CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Orphan",
		Category:     "Komputer",
		LocationID:   42,
	})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Entity != "location" {
		t.Errorf("entity = %q, want location", notFound.Entity)
	}
}

func TestCreateAssetDuplicateIsConflict(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "First",
		Category:     "Komputer",
		LocationID:   location.ID,
	})

	_, err := s.CreateAsset(context.Background(), CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-999",
		Name:         "Second",
		Category:     "Komputer",
		LocationID:   location.ID,
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}

func TestPurchasePriceRoundTrip(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")
	price := 1234.56

	asset := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:   "AST-001",
		SerialNumber:  "SN-001",
		Name:          "Priced",
		Category:      "UPS",
		LocationID:    location.ID,
		PurchasePrice: &price,
	})

	if asset.PurchasePrice == nil || *asset.PurchasePrice != 1234.56 {
		t.Fatalf("purchase_price = %v, want 1234.56", asset.PurchasePrice)
	}

	fetched, err := s.GetAssetByID(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if fetched.PurchasePrice == nil || *fetched.PurchasePrice != 1234.56 {
		t.Errorf("re-read purchase_price = %v, want 1234.56", fetched.PurchasePrice)
	}
}

func TestGetAssetByIDMissingReturnsNil(t *testing.T) {
	s := setupTestHandler(t)

	asset, err := s.GetAssetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if asset != nil {
		t.Errorf("asset = %+v, want nil", asset)
	}
}

func TestUpdateAssetPartial(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Old Name",
		Category:     "Komputer",
		LocationID:   location.ID,
	})

	time.Sleep(5 * time.Millisecond)

	newName := "New Name"
	updated, err := s.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:   created.ID,
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}

	if updated.Name != "New Name" {
		t.Errorf("name = %q, want New Name", updated.Name)
	}
	if updated.AssetNumber != "AST-001" || updated.SerialNumber != "SN-001" || updated.Category != "Komputer" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updated_at did not increase: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
}

func TestUpdateAssetClearsNullableField(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	description := "has a description"
	brand := "Acme"
	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Scanner",
		Category:     "Scanner",
		LocationID:   location.ID,
		Description:  &description,
		Brand:        &brand,
	})

	// Clearing one nullable field must not disturb an omitted one.
	updated, err := s.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:          created.ID,
		Description: nullOptional[string](),
	})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}

	if updated.Description != nil {
		t.Errorf("description = %v, want nil", *updated.Description)
	}
	if updated.Brand == nil || *updated.Brand != "Acme" {
		t.Errorf("brand = %v, want Acme", updated.Brand)
	}

	newBrand := "Globex"
	updated, err = s.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:    created.ID,
		Brand: newOptional(newBrand),
	})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if updated.Brand == nil || *updated.Brand != "Globex" {
		t.Errorf("brand = %v, want Globex", updated.Brand)
	}
}

func TestUpdateAssetClearsPrice(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")
	price := 99.99

	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:   "AST-001",
		SerialNumber:  "SN-001",
		Name:          "Priced",
		Category:      "Harddisk",
		LocationID:    location.ID,
		PurchasePrice: &price,
	})

	updated, err := s.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:            created.ID,
		PurchasePrice: nullOptional[float64](),
	})
	if err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}
	if updated.PurchasePrice != nil {
		t.Errorf("purchase_price = %v, want nil", *updated.PurchasePrice)
	}
}

func TestUpdateAssetNotFound(t *testing.T) {
	s := setupTestHandler(t)

	name := "anything"
	_, err := s.UpdateAsset(context.Background(), UpdateAssetInput{ID: 77, Name: &name})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Entity != "asset" {
		t.Errorf("entity = %q, want asset", notFound.Entity)
	}
}

func TestUpdateAssetLocationNotFound(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Mover",
		Category:     "Gadget",
		LocationID:   location.ID,
	})

	missing := int64(404)
	_, err := s.UpdateAsset(context.Background(), UpdateAssetInput{ID: created.ID, LocationID: &missing})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if notFound.Entity != "location" {
		t.Errorf("entity = %q, want location", notFound.Entity)
	}
}

func TestUpdateAssetNumberConflict(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "First",
		Category:     "Komputer",
		LocationID:   location.ID,
	})
	second := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-002",
		SerialNumber: "SN-002",
		Name:         "Second",
		Category:     "Komputer",
		LocationID:   location.ID,
	})

	taken := "AST-001"
	_, err := s.UpdateAsset(context.Background(), UpdateAssetInput{ID: second.ID, AssetNumber: &taken})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Field != "asset_number" {
		t.Errorf("field = %q, want asset_number", conflict.Field)
	}

	// The rejected update must leave the row untouched.
	fetched, err := s.GetAssetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if fetched.AssetNumber != "AST-002" {
		t.Errorf("asset_number = %q, want AST-002", fetched.AssetNumber)
	}
}

func TestUpdateSerialNumberConflict(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "First",
		Category:     "Monitor",
		LocationID:   location.ID,
	})
	second := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-002",
		SerialNumber: "SN-002",
		Name:         "Second",
		Category:     "Monitor",
		LocationID:   location.ID,
	})

	taken := "SN-001"
	_, err := s.UpdateAsset(context.Background(), UpdateAssetInput{ID: second.ID, SerialNumber: &taken})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflict.Field != "serial_number" {
		t.Errorf("field = %q, want serial_number", conflict.Field)
	}
}

func TestUpdateAssetToOwnValueIsNotConflict(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Self",
		Category:     "Mikrotik",
		LocationID:   location.ID,
	})

	own := "AST-001"
	ownSerial := "SN-001"
	updated, err := s.UpdateAsset(context.Background(), UpdateAssetInput{
		ID:           created.ID,
		AssetNumber:  &own,
		SerialNumber: &ownSerial,
	})
	if err != nil {
		t.Fatalf("self-assignment rejected: %v", err)
	}
	if updated.AssetNumber != "AST-001" {
		t.Errorf("asset_number = %q", updated.AssetNumber)
	}
}

func TestDeleteAsset(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	created := createTestAsset(t, s, CreateAssetInput{
		AssetNumber:  "AST-001",
		SerialNumber: "SN-001",
		Name:         "Doomed",
		Category:     "Wireless",
		LocationID:   location.ID,
	})

	deleted, err := s.DeleteAsset(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if !deleted {
		t.Error("deleted = false, want true")
	}

	asset, err := s.GetAssetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetAssetByID: %v", err)
	}
	if asset != nil {
		t.Errorf("asset still present after delete: %+v", asset)
	}

	deleted, err = s.DeleteAsset(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("DeleteAsset: %v", err)
	}
	if deleted {
		t.Error("deleting a missing id reported true")
	}
}

func TestListAssetsPagination(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	for i := 0; i < 25; i++ {
		createTestAsset(t, s, CreateAssetInput{
			AssetNumber:  assetNumber(i),
			SerialNumber: serialNumber(i),
			Name:         "Asset",
			Category:     "Komputer",
			LocationID:   location.ID,
		})
	}

	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}

	if len(resp.Assets) != 10 {
		t.Errorf("len(assets) = %d, want 10", len(resp.Assets))
	}
	if resp.Total != 25 {
		t.Errorf("total = %d, want 25", resp.Total)
	}
	if resp.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", resp.TotalPages)
	}
	if resp.Page != 2 || resp.Limit != 10 {
		t.Errorf("page/limit echo = %d/%d", resp.Page, resp.Limit)
	}

	last, err := s.ListAssets(context.Background(), ListAssetsQuery{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(last.Assets) != 5 {
		t.Errorf("len(last page) = %d, want 5", len(last.Assets))
	}
}

func TestListAssetsEmptyHasZeroPages(t *testing.T) {
	s := setupTestHandler(t)

	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if resp.Total != 0 || resp.TotalPages != 0 {
		t.Errorf("total/totalPages = %d/%d, want 0/0", resp.Total, resp.TotalPages)
	}
}

func TestListAssetsFiltersAreConjunctive(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-001", SerialNumber: "SN-001", Name: "A",
		Category: "Komputer", LocationID: location.ID, Status: "Active",
	})
	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-002", SerialNumber: "SN-002", Name: "B",
		Category: "Komputer", LocationID: location.ID, Status: "Disposed",
	})
	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-003", SerialNumber: "SN-003", Name: "C",
		Category: "Monitor", LocationID: location.ID, Status: "Active",
	})

	category := "Komputer"
	status := "Active"
	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{
		Category: &category,
		Status:   &status,
		Page:     1,
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}

	if resp.Total != 1 || len(resp.Assets) != 1 {
		t.Fatalf("total = %d, len = %d, want 1/1", resp.Total, len(resp.Assets))
	}
	if resp.Assets[0].AssetNumber != "AST-001" {
		t.Errorf("got %q, want AST-001", resp.Assets[0].AssetNumber)
	}
}

func TestListAssetsSearchSpansFields(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-001", SerialNumber: "XJ-47-SECRET", Name: "Router",
		Category: "Mikrotik", LocationID: location.ID,
	})
	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-002", SerialNumber: "SN-002", Name: "Printer",
		Category: "Printer", LocationID: location.ID,
	})

	search := "XJ-47"
	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{Search: &search, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}

	// A term matching only serial_number still hits.
	if resp.Total != 1 || resp.Assets[0].SerialNumber != "XJ-47-SECRET" {
		t.Errorf("search result = %+v", resp.Assets)
	}
}

func TestListAssetsSortByName(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	for i, name := range []string{"Charlie", "Alpha", "Bravo"} {
		createTestAsset(t, s, CreateAssetInput{
			AssetNumber:  assetNumber(i),
			SerialNumber: serialNumber(i),
			Name:         name,
			Category:     "Gadget",
			LocationID:   location.ID,
		})
	}

	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{
		Page: 1, Limit: 10, SortBy: "name", SortOrder: "asc",
	})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}

	got := []string{resp.Assets[0].Name, resp.Assets[1].Name, resp.Assets[2].Name}
	want := []string{"Alpha", "Bravo", "Charlie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted names = %v, want %v", got, want)
		}
	}
}

func TestListAssetsClampsPageAndLimit(t *testing.T) {
	s := setupTestHandler(t)

	resp, err := s.ListAssets(context.Background(), ListAssetsQuery{Page: 0, Limit: 500})
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if resp.Page != 1 {
		t.Errorf("page = %d, want 1", resp.Page)
	}
	if resp.Limit != 100 {
		t.Errorf("limit = %d, want 100", resp.Limit)
	}
}

func TestGetAssetsByCategory(t *testing.T) {
	s := setupTestHandler(t)
	location := createTestLocation(t, s, "Main Office")

	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-001", SerialNumber: "SN-001", Name: "Cam",
		Category: "Camera Digital", LocationID: location.ID,
	})
	createTestAsset(t, s, CreateAssetInput{
		AssetNumber: "AST-002", SerialNumber: "SN-002", Name: "Proj",
		Category: "LCD Projector", LocationID: location.ID,
	})

	assets, err := s.GetAssetsByCategory(context.Background(), "Camera Digital")
	if err != nil {
		t.Fatalf("GetAssetsByCategory: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "Cam" {
		t.Errorf("assets = %+v", assets)
	}
	if assets[0].Location == nil {
		t.Error("location not joined")
	}

	_, err = s.GetAssetsByCategory(context.Background(), "Laptop")
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func assetNumber(i int) string {
	return "AST-" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}

func serialNumber(i int) string {
	return "SN-" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}
