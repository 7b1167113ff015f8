package extractspec

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/metrics"
	"github.com/bitechdev/MineSpec/pkg/minespec"
	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Engine runs a search and serializes the resulting page into an export
// format. It owns the template catalogue; serializers come from the
// static format table.
type Engine struct {
	mining    *minespec.Engine
	templates Templates

	// MaxRecords caps how many rows one extract may pull. Zero means
	// the search engine's page bounds apply unchanged.
	MaxRecords int

	// CompressLarge zips payloads over largePayloadBytes even when the
	// request did not ask for compression.
	CompressLarge bool
}

// largePayloadBytes is the CompressLarge threshold.
const largePayloadBytes = 1 << 20

// NewEngine creates an export engine on top of the search engine.
func NewEngine(mining *minespec.Engine) *Engine {
	return &Engine{
		mining:    mining,
		templates: DefaultTemplates(),
	}
}

// Templates returns the template catalogue.
func (e *Engine) Templates() Templates {
	return e.templates
}

// RegisterTemplate adds or replaces a named template.
func (e *Engine) RegisterTemplate(name string, template spectypes.ExportTemplate) {
	e.templates[name] = template
}

// Extract executes the query and exports its result page.
func (e *Engine) Extract(ctx context.Context, query spectypes.SearchQuery, options spectypes.ExportOptions) (result *spectypes.ExportResult, err error) {
	start := time.Now()
	defer func() {
		records := 0
		if result != nil {
			records = result.RecordCount
		}
		metrics.GetProvider().RecordExport(string(options.Format), records, time.Since(start), err)
	}()

	if e.MaxRecords > 0 && query.PageSize > e.MaxRecords {
		query.PageSize = e.MaxRecords
	}

	searchResult, err := e.mining.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	return e.Export(searchResult, query.Entity, options)
}

// Export serializes an already-executed search result. The pipeline is
// fixed: template projection, flattening for tabular formats, filename,
// serialization, optional zip, transport encoding.
func (e *Engine) Export(searchResult *spectypes.SearchResult, entity string, options spectypes.ExportOptions) (*spectypes.ExportResult, error) {
	serializer, err := SerializerFor(options.Format)
	if err != nil {
		return nil, err
	}

	data := searchResult.Data
	if options.TemplateName != "" {
		data = e.templates.Apply(data, options.TemplateName)
	}
	if options.FlattenJSON && options.Format != spectypes.FormatJSON {
		data = flattenData(data)
	}

	// Serialize a shallow copy so the caller's result is untouched
	page := *searchResult
	page.Data = data

	filename := e.generateFilename(entity, options, serializer)

	payload, err := serializer.Serialize(&page, options)
	if err != nil {
		return nil, fmt.Errorf("serializing %s export: %w", options.Format, err)
	}

	binary := serializer.Binary()
	if !options.Compression && e.CompressLarge && len(payload) > largePayloadBytes {
		options.Compression = true
	}
	if options.Compression {
		payload, err = compressPayload(payload, filename)
		if err != nil {
			return nil, fmt.Errorf("compressing export: %w", err)
		}
		filename += ".zip"
		binary = true
	}

	fileData := string(payload)
	if binary {
		fileData = base64.StdEncoding.EncodeToString(payload)
	}

	logger.Info("Exported %d %s records as %s (%d bytes)", len(data), entity, options.Format, len(payload))

	return &spectypes.ExportResult{
		Filename:    filename,
		Format:      options.Format,
		ContentType: serializer.ContentType(),
		SizeBytes:   len(payload),
		RecordCount: len(data),
		FileData:    fileData,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// generateFilename builds "{base}_{timestamp}.{ext}" unless the caller
// supplied an explicit filename.
func (e *Engine) generateFilename(entity string, options spectypes.ExportOptions, serializer Serializer) string {
	if options.CustomFilename != "" {
		return options.CustomFilename
	}

	base := options.TemplateName
	if base == "" {
		base = entity + "_export"
	}

	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", base, timestamp, serializer.Ext())
}
