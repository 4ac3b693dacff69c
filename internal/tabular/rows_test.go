package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "DeviceId,Vendor,District,Block,Panchayat\n" +
		"D1, Acme ,Pune,Haveli,Wagholi\n" +
		",,,,\n" +
		"D2,Acme,Pune\n"

	rows, err := ReadRows("devices.CSV", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank row skipped)", len(rows))
	}
	if rows[0]["Vendor"] != "Acme" {
		t.Errorf("Vendor = %q, want trimmed Acme", rows[0]["Vendor"])
	}
	if v, ok := rows[1]["Panchayat"]; !ok || v != "" {
		t.Errorf("short row should read empty Panchayat, got %q (present=%v)", v, ok)
	}
}

func TestReadCSVWithBOM(t *testing.T) {
	rows, err := ReadRows("d.csv", strings.NewReader("\ufeffDeviceId,Block\nD1,B\n"))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["DeviceId"] != "D1" {
		t.Errorf("BOM not stripped from header: %v", rows[0])
	}
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"DeviceId", "District", "Block", "Panchayat"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"D1", "Pune", "Haveli", "Wagholi"})
	f.SetSheetRow(sheet, "A3", &[]interface{}{1002, "Pune", "Haveli", "Lohegaon"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	rows, err := ReadRows("devices.xlsx", &buf)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1]["DeviceId"] != "1002" || rows[1]["Panchayat"] != "Lohegaon" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestReadRowsErrors(t *testing.T) {
	if _, err := ReadRows("devices.pdf", strings.NewReader("x")); !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
	if _, err := ReadRows("devices.xlsx", strings.NewReader("not a zip")); err == nil {
		t.Error("expected error for corrupt workbook")
	}
	if _, err := ReadRows("devices.csv", strings.NewReader("a,\"b\nc")); err == nil {
		t.Error("expected error for malformed csv")
	}
}

func TestReadEmptyFile(t *testing.T) {
	rows, err := ReadRows("empty.csv", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows from empty file", len(rows))
	}
}
