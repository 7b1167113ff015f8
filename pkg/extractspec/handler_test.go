package extractspec

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bitechdev/MineSpec/pkg/common/adapters/database"
	"github.com/bitechdev/MineSpec/pkg/minespec"
	"github.com/bitechdev/MineSpec/pkg/modelregistry"
	"github.com/bitechdev/MineSpec/pkg/models"
	"github.com/bitechdev/MineSpec/pkg/schema"
)

func newExportServer(t *testing.T) *httptest.Server {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bdb := bun.NewDB(sqldb, sqlitedialect.New())
	db := database.NewBunAdapter(bdb)

	registry := modelregistry.NewModelRegistry()
	if err := models.RegisterModels(registry); err != nil {
		t.Fatalf("register models: %v", err)
	}

	ctx := context.Background()
	if err := models.CreateSchema(ctx, db); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	companies := []*models.Company{
		{ID: 1, Name: "Initech", Industry: "Software", Status: "active"},
		{ID: 2, Name: "Globex", Industry: "Energy", Status: "active"},
	}
	if _, err := bdb.NewInsert().Model(&companies).Exec(ctx); err != nil {
		t.Fatalf("seed companies: %v", err)
	}

	mining := minespec.NewEngine(db, registry, schema.Default())
	handler := NewHandler(NewEngine(mining))

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestHandleExport(t *testing.T) {
	server := newExportServer(t)

	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"entity":            "companies",
			"include_relations": false,
		},
		"export_options": map[string]interface{}{
			"format": "csv",
		},
	})

	resp, err := http.Post(server.URL+"/search/export", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result["record_count"] != float64(2) {
		t.Errorf("expected 2 records, got %v", result["record_count"])
	}
	fileData, _ := result["file_data"].(string)
	if !strings.Contains(fileData, "Initech") {
		t.Errorf("csv payload should contain the seeded rows, got %q", fileData)
	}
}

func TestHandleExportBadRequests(t *testing.T) {
	server := newExportServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown entity", `{"query":{"entity":"unicorns"},"export_options":{"format":"csv"}}`},
		{"unsupported format", `{"query":{"entity":"companies"},"export_options":{"format":"parquet"}}`},
		{"malformed body", `{broken`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/search/export", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestHandleTemplatesListing(t *testing.T) {
	server := newExportServer(t)

	resp, err := http.Get(server.URL + "/search/export/templates")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var templates map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&templates); err != nil {
		t.Fatal(err)
	}
	if _, ok := templates["student_report"]; !ok {
		t.Errorf("expected built-in templates, got %v", templates)
	}
}

func TestHandleFormatsListing(t *testing.T) {
	server := newExportServer(t)

	resp, err := http.Get(server.URL + "/search/export/formats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	formats, ok := payload["formats"].([]interface{})
	if !ok || len(formats) != 5 {
		t.Errorf("expected 5 formats, got %v", payload["formats"])
	}
}

func TestHandleDownload(t *testing.T) {
	server := newExportServer(t)

	// csv travels base64 through the download round trip
	params := url.Values{}
	params.Set("format", "csv")
	params.Set("file_data", "bmFtZQpJbml0ZWNoCg==")

	resp, err := http.Get(server.URL + "/search/export/download/export.csv?" + params.Encode())
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "text/csv" {
		t.Errorf("expected text/csv, got %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "export.csv") {
		t.Errorf("expected attachment disposition, got %q", got)
	}

	body := make([]byte, 64)
	n, _ := resp.Body.Read(body)
	if !strings.Contains(string(body[:n]), "Initech") {
		t.Errorf("expected decoded payload, got %q", body[:n])
	}
}

func TestHandleDownloadValidation(t *testing.T) {
	server := newExportServer(t)

	resp, err := http.Get(server.URL + "/search/export/download/export.csv?format=csv")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing file_data should 400, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/search/export/download/export.csv?format=csv&file_data=%21%21not-base64")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid base64 should 400, got %d", resp.StatusCode)
	}
}
