package schema

import "github.com/bitechdev/MineSpec/pkg/spectypes"

// Default returns the registry for the capstone data set: eight entities
// with their searchable fields, free-text fields, and eager-load relations.
func Default() *Registry {
	r := NewRegistry()

	r.Register(Entity{
		Name: "students",
		Fields: map[string]spectypes.DataType{
			"student_id":               spectypes.TypeString,
			"program":                  spectypes.TypeString,
			"specialization":           spectypes.TypeString,
			"gpa":                      spectypes.TypeFloat,
			"status":                   spectypes.TypeString,
			"enrollment_date":          spectypes.TypeDate,
			"expected_graduation_date": spectypes.TypeDate,
			"skills":                   spectypes.TypeJSON,
			"interests":                spectypes.TypeJSON,
			"ai_ranking_score":         spectypes.TypeFloat,
			"created_at":               spectypes.TypeDateTime,
			"updated_at":               spectypes.TypeDateTime,
		},
		FullText:       []string{"resume_text", "career_goals", "first_name", "last_name"},
		Relations:      []string{"User"},
		RelationFields: []string{"user.email", "user.first_name", "user.last_name"},
	})

	r.Register(Entity{
		Name: "mentors",
		Fields: map[string]spectypes.DataType{
			"company_name":        spectypes.TypeString,
			"job_title":           spectypes.TypeString,
			"department":          spectypes.TypeString,
			"industry":            spectypes.TypeString,
			"years_of_experience": spectypes.TypeInteger,
			"expertise_areas":     spectypes.TypeJSON,
			"skills":              spectypes.TypeJSON,
			"status":              spectypes.TypeString,
			"max_students":        spectypes.TypeInteger,
			"current_students":    spectypes.TypeInteger,
			"created_at":          spectypes.TypeDateTime,
		},
		FullText:       []string{"bio", "first_name", "last_name", "job_title"},
		Relations:      []string{"User"},
		RelationFields: []string{"user.email", "user.first_name", "user.last_name", "company.name"},
	})

	r.Register(Entity{
		Name: "projects",
		Fields: map[string]spectypes.DataType{
			"title":             spectypes.TypeString,
			"description":       spectypes.TypeString,
			"project_type":      spectypes.TypeString,
			"difficulty_level":  spectypes.TypeString,
			"status":            spectypes.TypeString,
			"start_date":        spectypes.TypeDate,
			"end_date":          spectypes.TypeDate,
			"duration_weeks":    spectypes.TypeInteger,
			"max_students":      spectypes.TypeInteger,
			"current_students":  spectypes.TypeInteger,
			"required_skills":   spectypes.TypeJSON,
			"preferred_skills":  spectypes.TypeJSON,
			"technologies":      spectypes.TypeJSON,
			"ai_matching_score": spectypes.TypeFloat,
			"created_at":        spectypes.TypeDateTime,
		},
		FullText:       []string{"title", "description", "learning_objectives", "success_criteria"},
		Relations:      []string{"Company", "Mentor"},
		RelationFields: []string{"company.name", "mentor.first_name", "mentor.last_name"},
	})

	r.Register(Entity{
		Name: "companies",
		Fields: map[string]spectypes.DataType{
			"name":              spectypes.TypeString,
			"industry":          spectypes.TypeString,
			"size":              spectypes.TypeString,
			"description":       spectypes.TypeString,
			"status":            spectypes.TypeString,
			"founded_year":      spectypes.TypeInteger,
			"partnership_level": spectypes.TypeString,
			"technologies_used": spectypes.TypeJSON,
			"preferred_skills":  spectypes.TypeJSON,
			"created_at":        spectypes.TypeDateTime,
		},
		FullText: []string{"name", "description", "company_culture"},
	})

	r.Register(Entity{
		Name: "surveys",
		Fields: map[string]spectypes.DataType{
			"title":             spectypes.TypeString,
			"survey_type":       spectypes.TypeString,
			"target_audience":   spectypes.TypeString,
			"status":            spectypes.TypeString,
			"start_date":        spectypes.TypeDate,
			"end_date":          spectypes.TypeDate,
			"is_anonymous":      spectypes.TypeBoolean,
			"is_mandatory":      spectypes.TypeBoolean,
			"max_responses":     spectypes.TypeInteger,
			"current_responses": spectypes.TypeInteger,
			"response_rate":     spectypes.TypeFloat,
			"created_at":        spectypes.TypeDateTime,
		},
		FullText: []string{"title", "description"},
	})

	r.Register(Entity{
		Name: "survey_responses",
		Fields: map[string]spectypes.DataType{
			"survey_id":     spectypes.TypeInteger,
			"user_id":       spectypes.TypeInteger,
			"response_data": spectypes.TypeJSON,
			"is_complete":   spectypes.TypeBoolean,
			"submitted_at":  spectypes.TypeDateTime,
		},
		FullText:       []string{},
		Relations:      []string{"Survey", "User"},
		RelationFields: []string{"survey.title", "user.email"},
	})

	r.Register(Entity{
		Name: "users",
		Fields: map[string]spectypes.DataType{
			"email":          spectypes.TypeString,
			"first_name":     spectypes.TypeString,
			"last_name":      spectypes.TypeString,
			"role":           spectypes.TypeString,
			"is_active":      spectypes.TypeBoolean,
			"email_verified": spectypes.TypeBoolean,
			"created_at":     spectypes.TypeDateTime,
			"last_login":     spectypes.TypeDateTime,
		},
		FullText: []string{"first_name", "last_name", "email"},
	})

	r.Register(Entity{
		Name: "courses",
		Fields: map[string]spectypes.DataType{
			"course_code":          spectypes.TypeString,
			"course_name":          spectypes.TypeString,
			"description":          spectypes.TypeString,
			"credits":              spectypes.TypeInteger,
			"department":           spectypes.TypeString,
			"level":                spectypes.TypeString,
			"skills_covered":       spectypes.TypeJSON,
			"is_capstone_eligible": spectypes.TypeBoolean,
			"status":               spectypes.TypeString,
			"created_at":           spectypes.TypeDateTime,
		},
		FullText: []string{"course_name", "description"},
	})

	return r
}
