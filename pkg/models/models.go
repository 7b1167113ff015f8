// Package models defines the capstone platform row models the default
// schema registry describes. Host applications can register their own
// models instead; nothing in the engines depends on these types directly.
package models

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/uptrace/bun"

	"github.com/bitechdev/MineSpec/pkg/common"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	FirstName     string    `bun:"first_name" json:"first_name"`
	LastName      string    `bun:"last_name" json:"last_name"`
	Role          string    `bun:"role" json:"role"`
	IsActive      bool      `bun:"is_active" json:"is_active"`
	EmailVerified bool      `bun:"email_verified" json:"email_verified"`
	CreatedAt     time.Time `bun:"created_at,nullzero" json:"created_at"`
	LastLogin     time.Time `bun:"last_login,nullzero" json:"last_login"`
}

func (User) TableName() string { return "users" }

type Student struct {
	bun.BaseModel `bun:"table:students"`

	ID                     int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID                 int64     `bun:"user_id" json:"user_id"`
	StudentID              string    `bun:"student_id,unique" json:"student_id"`
	FirstName              string    `bun:"first_name" json:"first_name"`
	LastName               string    `bun:"last_name" json:"last_name"`
	Program                string    `bun:"program" json:"program"`
	Specialization         string    `bun:"specialization" json:"specialization"`
	GPA                    float64   `bun:"gpa" json:"gpa"`
	Status                 string    `bun:"status" json:"status"`
	EnrollmentDate         time.Time `bun:"enrollment_date,nullzero" json:"enrollment_date"`
	ExpectedGraduationDate time.Time `bun:"expected_graduation_date,nullzero" json:"expected_graduation_date"`
	Skills                 []string  `bun:"skills" json:"skills"`
	Interests              []string  `bun:"interests" json:"interests"`
	ResumeText             string    `bun:"resume_text" json:"resume_text"`
	CareerGoals            string    `bun:"career_goals" json:"career_goals"`
	AIRankingScore         float64   `bun:"ai_ranking_score" json:"ai_ranking_score"`
	CreatedAt              time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt              time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

func (Student) TableName() string { return "students" }

type Mentor struct {
	bun.BaseModel `bun:"table:mentors"`

	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID            int64     `bun:"user_id" json:"user_id"`
	FirstName         string    `bun:"first_name" json:"first_name"`
	LastName          string    `bun:"last_name" json:"last_name"`
	CompanyName       string    `bun:"company_name" json:"company_name"`
	JobTitle          string    `bun:"job_title" json:"job_title"`
	Department        string    `bun:"department" json:"department"`
	Industry          string    `bun:"industry" json:"industry"`
	YearsOfExperience int       `bun:"years_of_experience" json:"years_of_experience"`
	ExpertiseAreas    []string  `bun:"expertise_areas" json:"expertise_areas"`
	Skills            []string  `bun:"skills" json:"skills"`
	Bio               string    `bun:"bio" json:"bio"`
	Status            string    `bun:"status" json:"status"`
	MaxStudents       int       `bun:"max_students" json:"max_students"`
	CurrentStudents   int       `bun:"current_students" json:"current_students"`
	CreatedAt         time.Time `bun:"created_at,nullzero" json:"created_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

func (Mentor) TableName() string { return "mentors" }

type Company struct {
	bun.BaseModel `bun:"table:companies"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	Name             string    `bun:"name,notnull" json:"name"`
	Industry         string    `bun:"industry" json:"industry"`
	Size             string    `bun:"size" json:"size"`
	Description      string    `bun:"description" json:"description"`
	CompanyCulture   string    `bun:"company_culture" json:"company_culture"`
	Status           string    `bun:"status" json:"status"`
	FoundedYear      int       `bun:"founded_year" json:"founded_year"`
	PartnershipLevel string    `bun:"partnership_level" json:"partnership_level"`
	TechnologiesUsed []string  `bun:"technologies_used" json:"technologies_used"`
	PreferredSkills  []string  `bun:"preferred_skills" json:"preferred_skills"`
	CreatedAt        time.Time `bun:"created_at,nullzero" json:"created_at"`
}

func (Company) TableName() string { return "companies" }

type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	CompanyID          int64     `bun:"company_id" json:"company_id"`
	MentorID           int64     `bun:"mentor_id" json:"mentor_id"`
	Title              string    `bun:"title,notnull" json:"title"`
	Description        string    `bun:"description" json:"description"`
	ProjectType        string    `bun:"project_type" json:"project_type"`
	DifficultyLevel    string    `bun:"difficulty_level" json:"difficulty_level"`
	Status             string    `bun:"status" json:"status"`
	StartDate          time.Time `bun:"start_date,nullzero" json:"start_date"`
	EndDate            time.Time `bun:"end_date,nullzero" json:"end_date"`
	DurationWeeks      int       `bun:"duration_weeks" json:"duration_weeks"`
	MaxStudents        int       `bun:"max_students" json:"max_students"`
	CurrentStudents    int       `bun:"current_students" json:"current_students"`
	RequiredSkills     []string  `bun:"required_skills" json:"required_skills"`
	PreferredSkills    []string  `bun:"preferred_skills" json:"preferred_skills"`
	Technologies       []string  `bun:"technologies" json:"technologies"`
	LearningObjectives string    `bun:"learning_objectives" json:"learning_objectives"`
	SuccessCriteria    string    `bun:"success_criteria" json:"success_criteria"`
	AIMatchingScore    float64   `bun:"ai_matching_score" json:"ai_matching_score"`
	CreatedAt          time.Time `bun:"created_at,nullzero" json:"created_at"`

	Company *Company `bun:"rel:belongs-to,join:company_id=id" json:"company,omitempty"`
	Mentor  *Mentor  `bun:"rel:belongs-to,join:mentor_id=id" json:"mentor,omitempty"`
}

func (Project) TableName() string { return "projects" }

type Survey struct {
	bun.BaseModel `bun:"table:surveys"`

	ID               int64     `bun:"id,pk,autoincrement" json:"id"`
	Title            string    `bun:"title,notnull" json:"title"`
	Description      string    `bun:"description" json:"description"`
	SurveyType       string    `bun:"survey_type" json:"survey_type"`
	TargetAudience   string    `bun:"target_audience" json:"target_audience"`
	Status           string    `bun:"status" json:"status"`
	StartDate        time.Time `bun:"start_date,nullzero" json:"start_date"`
	EndDate          time.Time `bun:"end_date,nullzero" json:"end_date"`
	IsAnonymous      bool      `bun:"is_anonymous" json:"is_anonymous"`
	IsMandatory      bool      `bun:"is_mandatory" json:"is_mandatory"`
	MaxResponses     int       `bun:"max_responses" json:"max_responses"`
	CurrentResponses int       `bun:"current_responses" json:"current_responses"`
	ResponseRate     float64   `bun:"response_rate" json:"response_rate"`
	CreatedAt        time.Time `bun:"created_at,nullzero" json:"created_at"`
}

func (Survey) TableName() string { return "surveys" }

type SurveyResponse struct {
	bun.BaseModel `bun:"table:survey_responses"`

	ID           int64                  `bun:"id,pk,autoincrement" json:"id"`
	SurveyID     int64                  `bun:"survey_id" json:"survey_id"`
	UserID       int64                  `bun:"user_id" json:"user_id"`
	ResponseData map[string]interface{} `bun:"response_data" json:"response_data"`
	IsComplete   bool                   `bun:"is_complete" json:"is_complete"`
	SubmittedAt  time.Time              `bun:"submitted_at,nullzero" json:"submitted_at"`

	Survey *Survey `bun:"rel:belongs-to,join:survey_id=id" json:"survey,omitempty"`
	User   *User   `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

func (SurveyResponse) TableName() string { return "survey_responses" }

type Course struct {
	bun.BaseModel `bun:"table:courses"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	CourseCode         string    `bun:"course_code,unique" json:"course_code"`
	CourseName         string    `bun:"course_name" json:"course_name"`
	Description        string    `bun:"description" json:"description"`
	Credits            int       `bun:"credits" json:"credits"`
	Department         string    `bun:"department" json:"department"`
	Level              string    `bun:"level" json:"level"`
	SkillsCovered      []string  `bun:"skills_covered" json:"skills_covered"`
	IsCapstoneEligible bool      `bun:"is_capstone_eligible" json:"is_capstone_eligible"`
	Status             string    `bun:"status" json:"status"`
	CreatedAt          time.Time `bun:"created_at,nullzero" json:"created_at"`
}

func (Course) TableName() string { return "courses" }

// All returns the entity-name to model mapping for the default data set.
// Registration order matters for table creation: parents before children.
func All() []struct {
	Name  string
	Model interface{}
} {
	return []struct {
		Name  string
		Model interface{}
	}{
		{"users", User{}},
		{"companies", Company{}},
		{"students", Student{}},
		{"mentors", Mentor{}},
		{"projects", Project{}},
		{"surveys", Survey{}},
		{"survey_responses", SurveyResponse{}},
		{"courses", Course{}},
	}
}

// RegisterModels registers every default model with the given registry.
func RegisterModels(registry common.ModelRegistry) error {
	for _, m := range All() {
		if err := registry.RegisterModel(m.Name, m.Model); err != nil {
			return fmt.Errorf("register %s: %w", m.Name, err)
		}
	}
	return nil
}

// CreateSchema creates the tables for every default model. Used by the
// test server and the test suites against in-memory SQLite.
func CreateSchema(ctx context.Context, db common.Database) error {
	bdb, ok := db.GetUnderlyingDB().(*bun.DB)
	if !ok {
		return fmt.Errorf("schema creation requires a bun.DB, got %T", db.GetUnderlyingDB())
	}

	for _, m := range All() {
		model := reflect.New(reflect.TypeOf(m.Model)).Interface()
		if _, err := bdb.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %s: %w", m.Name, err)
		}
	}
	return nil
}
