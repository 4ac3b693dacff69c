package printer

import (
	"bytes"
	"testing"
)

func TestDeviceQR(t *testing.T) {
	png, err := DeviceQR("D-100", 128)
	if err != nil {
		t.Fatalf("DeviceQR failed: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("expected PNG output")
	}

	if _, err := DeviceQR("", 128); err == nil {
		t.Error("expected error for empty device id")
	}
}

func TestGenerateLabelsPDF(t *testing.T) {
	labels := make([]Label, 0, 25)
	for i := 0; i < 25; i++ {
		labels = append(labels, Label{DeviceID: "D" + string(rune('A'+i)), Caption: "Rampur"})
	}

	pdf, err := GenerateLabelsPDF(labels, DefaultLabelConfig())
	if err != nil {
		t.Fatalf("GenerateLabelsPDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected PDF output")
	}

	if _, err := GenerateLabelsPDF(labels, LabelConfig{Cols: 0, Rows: 7}); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestGenerateLabelsPDFEmpty(t *testing.T) {
	pdf, err := GenerateLabelsPDF(nil, DefaultLabelConfig())
	if err != nil {
		t.Fatalf("GenerateLabelsPDF failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("expected a blank page")
	}
}
