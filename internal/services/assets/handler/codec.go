package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identity codec: derived payloads and artifact names computed from asset
// identity fields. No I/O happens here.

type qrPayload struct {
	AssetNumber string `json:"asset_number"`
	Name        string `json:"name"`
	Category    string `json:"category"`
}

// creationBarcodeData is the barcode payload stamped on a brand-new asset.
func creationBarcodeData(assetNumber string) string {
	return "ASSET-" + assetNumber
}

// creationQRCodeData is the JSON document embedded in a new asset's QR field.
func creationQRCodeData(assetNumber, name, category string) string {
	data, _ := json.Marshal(qrPayload{
		AssetNumber: assetNumber,
		Name:        name,
		Category:    category,
	})
	return string(data)
}

// codePayload is the shared payload for on-demand barcode and QR generation
// against an existing asset. Both code types encode the same string.
func codePayload(assetNumber, serialNumber, name string) string {
	return assetNumber + "-" + serialNumber + "-" + name
}

// codeImageURL names the companion image for a generated code. Repeated calls
// for the same asset must yield distinct names, so the name carries a fresh
// uuid fragment rather than deriving from the payload.
func codeImageURL(codeType string, assetID int64) string {
	return fmt.Sprintf("/assets/codes/%s-%d-%s.png", codeType, assetID, uuid.NewString())
}

// reportFilename names an exported report artifact, unique per call.
func reportFilename(format string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15-04-05")
	return fmt.Sprintf("asset-report-%s-%s.%s", stamp, uuid.NewString()[:8], format)
}
