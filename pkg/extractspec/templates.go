package extractspec

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/bitechdev/MineSpec/pkg/spectypes"
)

// Templates maps template names to their field projections.
type Templates map[string]spectypes.ExportTemplate

// DefaultTemplates returns the built-in export templates.
func DefaultTemplates() Templates {
	return Templates{
		"student_report": {
			Fields: []string{
				"student_id", "first_name", "last_name", "email",
				"program", "specialization", "gpa", "status",
				"enrollment_date", "expected_graduation_date",
			},
			Title:       "Student Report",
			Description: "Comprehensive student information",
		},
		"mentor_directory": {
			Fields: []string{
				"first_name", "last_name", "email", "company_name",
				"job_title", "department", "industry", "years_of_experience",
			},
			Title:       "Mentor Directory",
			Description: "Professional mentor contact directory",
		},
		"project_catalog": {
			Fields: []string{
				"title", "description", "project_type", "difficulty_level",
				"status", "start_date", "end_date", "max_students",
			},
			Title:       "Project Catalog",
			Description: "Available capstone projects",
		},
		"analytics_summary": {
			Fields: []string{
				"entity_type", "total_count", "active_count",
				"last_updated", "completion_rate",
			},
			Title:       "Analytics Summary",
			Description: "Key metrics and analytics",
		},
	}
}

// Apply projects each record onto exactly the template's field list.
// Dotted field names ("user.email") resolve into nested relation maps;
// missing paths fill with null. An unknown template name is a passthrough.
func (t Templates) Apply(data []map[string]interface{}, name string) []map[string]interface{} {
	template, ok := t[name]
	if !ok {
		return data
	}

	projected := make([]map[string]interface{}, 0, len(data))
	for _, record := range data {
		row := make(map[string]interface{}, len(template.Fields))
		var encoded []byte
		for _, field := range template.Fields {
			if value, ok := record[field]; ok {
				row[field] = value
				continue
			}
			// Nested lookup through the record's JSON form
			if encoded == nil {
				encoded, _ = json.Marshal(record)
			}
			if res := gjson.GetBytes(encoded, field); res.Exists() {
				row[field] = res.Value()
			} else {
				row[field] = nil
			}
		}
		projected = append(projected, row)
	}
	return projected
}
