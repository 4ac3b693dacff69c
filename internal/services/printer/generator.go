package printer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// QRPrefix is prepended to the device id in label QR payloads
const QRPrefix = "FOTA:"

// Label is one device sticker
type Label struct {
	DeviceID string
	Caption  string // printed under the id, e.g. the panchayat
}

// LabelConfig holds the sheet layout
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 3x7 grid on A4
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 8, GapX: 3, GapY: 2}
}

// DeviceQR renders the QR code PNG for a device id
func DeviceQR(deviceID string, size int) ([]byte, error) {
	if deviceID == "" {
		return nil, errors.New("device id is required")
	}
	return qrcode.Encode(QRPrefix+deviceID, qrcode.Medium, size)
}

// GenerateLabelsPDF lays out one QR label per device on A4 pages
func GenerateLabelsPDF(labels []Label, cfg LabelConfig) ([]byte, error) {
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d", cfg.Cols, cfg.Rows)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	pageWidth, pageHeight := 210.0, 297.0
	availW := pageWidth - cfg.MarginLeft*2
	availH := pageHeight - cfg.MarginTop*2
	labelW := (availW - float64(cfg.Cols-1)*cfg.GapX) / float64(cfg.Cols)
	labelH := (availH - float64(cfg.Rows-1)*cfg.GapY) / float64(cfg.Rows)
	perPage := cfg.Cols * cfg.Rows

	if len(labels) == 0 {
		pdf.AddPage()
	}

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	for i, label := range labels {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		x := cfg.MarginLeft + float64(slot%cfg.Cols)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(slot/cfg.Cols)*(labelH+cfg.GapY)

		png, err := DeviceQR(label.DeviceID, 256)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(png))

		// QR centred, 65% of the label height, leaving room for two text lines
		qrSize := labelH * 0.65
		if qrSize > labelW {
			qrSize = labelW * 0.9
		}
		pdf.ImageOptions(imgName, x+(labelW-qrSize)/2, y+1, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetXY(x, y+labelH-9)
		pdf.SetFontSize(8)
		pdf.CellFormat(labelW, 4, label.DeviceID, "", 0, "C", false, 0, "")
		if label.Caption != "" {
			pdf.SetXY(x, y+labelH-5)
			pdf.SetFontSize(6)
			pdf.CellFormat(labelW, 3, label.Caption, "", 0, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
