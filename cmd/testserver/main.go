package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bitechdev/MineSpec/pkg/common"
	"github.com/bitechdev/MineSpec/pkg/common/adapters/database"
	"github.com/bitechdev/MineSpec/pkg/config"
	"github.com/bitechdev/MineSpec/pkg/errortracking"
	"github.com/bitechdev/MineSpec/pkg/extractspec"
	"github.com/bitechdev/MineSpec/pkg/logger"
	"github.com/bitechdev/MineSpec/pkg/metrics"
	"github.com/bitechdev/MineSpec/pkg/minespec"
	"github.com/bitechdev/MineSpec/pkg/modelregistry"
	"github.com/bitechdev/MineSpec/pkg/models"
	"github.com/bitechdev/MineSpec/pkg/schema"
)

func main() {
	// Load configuration
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg, err := cfgMgr.GetConfig()
	if err != nil {
		log.Fatalf("Failed to get configuration: %v", err)
	}

	// Initialize logger with configuration
	logger.Init(cfg.Logger.Dev)
	if cfg.Logger.Path != "" {
		logger.UpdateLoggerPath(cfg.Logger.Path, cfg.Logger.Dev)
	}
	logger.Info("MineSpec test server starting")

	tracker, err := errortracking.NewProviderFromConfig(cfg.ErrorTracking)
	if err != nil {
		logger.Error("Failed to initialize error tracking: %v", err)
		os.Exit(1)
	}
	logger.InitErrorTracking(tracker)

	ctx := context.Background()
	db, seeded, err := openDatabase(cfg)
	if err != nil {
		logger.Error("Failed to open database: %v", err)
		os.Exit(1)
	}

	if err := models.CreateSchema(ctx, db); err != nil {
		logger.Error("Failed to create schema: %v", err)
		os.Exit(1)
	}
	if seeded {
		if err := seedSampleData(ctx, db); err != nil {
			logger.Error("Failed to seed sample data: %v", err)
			os.Exit(1)
		}
		logger.Info("Seeded in-memory database with sample data")
	}

	registry := modelregistry.NewModelRegistry()
	if err := models.RegisterModels(registry); err != nil {
		logger.Error("Failed to register models: %v", err)
		os.Exit(1)
	}

	engine := minespec.NewEngine(db, registry, schema.Default())
	engine.DefaultPageSize = cfg.Search.DefaultPageSize
	engine.MaxPageSize = cfg.Search.MaxPageSize

	searchHandler := minespec.NewHandler(engine)
	searchHandler.BulkMaxQueries = cfg.Search.BulkMaxQueries

	exporter := extractspec.NewEngine(engine)
	exporter.MaxRecords = cfg.Export.MaxRecords
	exporter.CompressLarge = cfg.Export.CompressLarge
	exportHandler := extractspec.NewHandler(exporter)

	r := mux.NewRouter()
	if cfg.Metrics.Enabled {
		provider := metrics.NewPrometheusProviderWithConfig(&metrics.Config{
			Enabled:   true,
			Namespace: cfg.Metrics.Namespace,
		})
		metrics.SetProvider(provider)
		r.Use(provider.Middleware)
		r.Handle(cfg.Metrics.Path, provider.Handler()).Methods("GET")
		logger.Info("Prometheus metrics enabled on %s", cfg.Metrics.Path)
	}
	searchHandler.SetupRoutes(r)
	exportHandler.SetupRoutes(r)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

// openDatabase opens postgres when database.url is set, otherwise a
// shared in-memory SQLite database. The second return reports whether
// the database is fresh and should be seeded.
func openDatabase(cfg *config.Config) (common.Database, bool, error) {
	var bdb *bun.DB
	seed := false

	if cfg.Database.URL == "" {
		sqldb, err := sql.Open(sqliteshim.ShimName, "file:minespec?mode=memory&cache=shared")
		if err != nil {
			return nil, false, err
		}
		sqldb.SetMaxOpenConns(1)
		bdb = bun.NewDB(sqldb, sqlitedialect.New())
		seed = true
	} else {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.URL)))
		if cfg.Database.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		bdb = bun.NewDB(sqldb, pgdialect.New())
	}

	adapter := database.NewBunAdapter(bdb)
	if cfg.Database.Debug {
		adapter.EnableQueryDebug()
	}
	return adapter, seed, nil
}

// seedSampleData loads a small demo data set so the API answers with
// something useful out of the box.
func seedSampleData(ctx context.Context, db common.Database) error {
	bdb := db.GetUnderlyingDB().(*bun.DB)

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	users := []*models.User{
		{ID: 1, Email: "nomsa.dlamini@example.com", FirstName: "Nomsa", LastName: "Dlamini", Role: "student", IsActive: true, EmailVerified: true},
		{ID: 2, Email: "pieter.vanwyk@example.com", FirstName: "Pieter", LastName: "van Wyk", Role: "student", IsActive: true, EmailVerified: true},
		{ID: 3, Email: "thandi.nkosi@example.com", FirstName: "Thandi", LastName: "Nkosi", Role: "student", IsActive: true},
		{ID: 4, Email: "james.okafor@example.com", FirstName: "James", LastName: "Okafor", Role: "mentor", IsActive: true, EmailVerified: true},
		{ID: 5, Email: "sarah.naidoo@example.com", FirstName: "Sarah", LastName: "Naidoo", Role: "mentor", IsActive: true, EmailVerified: true},
	}
	if _, err := bdb.NewInsert().Model(&users).Exec(ctx); err != nil {
		return err
	}

	companies := []*models.Company{
		{ID: 1, Name: "Bitech Systems", Industry: "Software", Size: "medium", Status: "active", FoundedYear: 2008,
			PartnershipLevel: "gold", TechnologiesUsed: []string{"go", "postgres", "react"},
			PreferredSkills: []string{"golang", "sql"}, Description: "Custom business software"},
		{ID: 2, Name: "Meridian Energy", Industry: "Energy", Size: "large", Status: "active", FoundedYear: 1994,
			PartnershipLevel: "silver", TechnologiesUsed: []string{"python", "spark"},
			PreferredSkills: []string{"python", "data engineering"}, Description: "Grid analytics and forecasting"},
	}
	if _, err := bdb.NewInsert().Model(&companies).Exec(ctx); err != nil {
		return err
	}

	students := []*models.Student{
		{ID: 1, UserID: 1, StudentID: "CS2021-001", FirstName: "Nomsa", LastName: "Dlamini",
			Program: "Computer Science", Specialization: "Software Engineering", GPA: 3.7, Status: "active",
			EnrollmentDate: date(2021, 2, 1), ExpectedGraduationDate: date(2025, 11, 30),
			Skills: []string{"golang", "postgres", "docker"}, Interests: []string{"backend", "devops"},
			ResumeText: "Backend services in Go with Postgres", CareerGoals: "Platform engineering", AIRankingScore: 87.5},
		{ID: 2, UserID: 2, StudentID: "CS2021-002", FirstName: "Pieter", LastName: "van Wyk",
			Program: "Computer Science", Specialization: "Data Science", GPA: 3.4, Status: "active",
			EnrollmentDate: date(2021, 2, 1), ExpectedGraduationDate: date(2025, 11, 30),
			Skills: []string{"python", "pandas", "sql"}, Interests: []string{"machine learning"},
			ResumeText: "Data pipelines and model training", CareerGoals: "ML engineering", AIRankingScore: 82.0},
		{ID: 3, UserID: 3, StudentID: "EE2022-014", FirstName: "Thandi", LastName: "Nkosi",
			Program: "Electrical Engineering", Specialization: "Embedded Systems", GPA: 3.9, Status: "active",
			EnrollmentDate: date(2022, 2, 1), ExpectedGraduationDate: date(2026, 11, 30),
			Skills: []string{"c", "rust", "rtos"}, Interests: []string{"iot"},
			ResumeText: "Firmware for sensor networks", CareerGoals: "Embedded systems", AIRankingScore: 91.2},
	}
	if _, err := bdb.NewInsert().Model(&students).Exec(ctx); err != nil {
		return err
	}

	mentors := []*models.Mentor{
		{ID: 1, UserID: 4, FirstName: "James", LastName: "Okafor", CompanyName: "Bitech Systems",
			JobTitle: "Principal Engineer", Department: "Platform", Industry: "Software", YearsOfExperience: 14,
			ExpertiseAreas: []string{"distributed systems", "databases"}, Skills: []string{"golang", "postgres"},
			Bio: "Builds data platforms", Status: "active", MaxStudents: 3, CurrentStudents: 1},
		{ID: 2, UserID: 5, FirstName: "Sarah", LastName: "Naidoo", CompanyName: "Meridian Energy",
			JobTitle: "Data Science Lead", Department: "Analytics", Industry: "Energy", YearsOfExperience: 9,
			ExpertiseAreas: []string{"forecasting", "mlops"}, Skills: []string{"python", "spark"},
			Bio: "Leads grid analytics", Status: "active", MaxStudents: 2, CurrentStudents: 2},
	}
	if _, err := bdb.NewInsert().Model(&mentors).Exec(ctx); err != nil {
		return err
	}

	projects := []*models.Project{
		{ID: 1, CompanyID: 1, MentorID: 1, Title: "Inventory Service Rewrite",
			Description: "Replace a legacy inventory service with a Go microservice",
			ProjectType: "development", DifficultyLevel: "intermediate", Status: "active",
			StartDate: date(2025, 2, 1), EndDate: date(2025, 6, 30), DurationWeeks: 20,
			MaxStudents: 2, CurrentStudents: 1,
			RequiredSkills: []string{"golang", "sql"}, PreferredSkills: []string{"docker"},
			Technologies:       []string{"go", "postgres", "grpc"},
			LearningObjectives: "Service design, migrations, observability",
			SuccessCriteria:    "Feature parity with the legacy service", AIMatchingScore: 88.0},
		{ID: 2, CompanyID: 2, MentorID: 2, Title: "Load Forecasting Models",
			Description: "Short-term electrical load forecasting for regional grids",
			ProjectType: "research", DifficultyLevel: "advanced", Status: "active",
			StartDate: date(2025, 3, 1), EndDate: date(2025, 8, 31), DurationWeeks: 26,
			MaxStudents: 1, CurrentStudents: 0,
			RequiredSkills: []string{"python", "statistics"}, PreferredSkills: []string{"spark"},
			Technologies:       []string{"python", "spark"},
			LearningObjectives: "Time-series modelling at scale",
			SuccessCriteria:    "Beat the current MAPE baseline", AIMatchingScore: 79.5},
	}
	if _, err := bdb.NewInsert().Model(&projects).Exec(ctx); err != nil {
		return err
	}

	surveys := []*models.Survey{
		{ID: 1, Title: "Mid-Project Check-in", Description: "How is your capstone going?",
			SurveyType: "feedback", TargetAudience: "students", Status: "active",
			StartDate: date(2025, 4, 1), EndDate: date(2025, 4, 30),
			IsAnonymous: true, MaxResponses: 500, CurrentResponses: 2, ResponseRate: 0.4},
	}
	if _, err := bdb.NewInsert().Model(&surveys).Exec(ctx); err != nil {
		return err
	}

	responses := []*models.SurveyResponse{
		{ID: 1, SurveyID: 1, UserID: 1, IsComplete: true, SubmittedAt: date(2025, 4, 5),
			ResponseData: map[string]interface{}{"satisfaction": 4, "workload": "manageable"}},
		{ID: 2, SurveyID: 1, UserID: 2, IsComplete: false, SubmittedAt: date(2025, 4, 7),
			ResponseData: map[string]interface{}{"satisfaction": 3}},
	}
	if _, err := bdb.NewInsert().Model(&responses).Exec(ctx); err != nil {
		return err
	}

	courses := []*models.Course{
		{ID: 1, CourseCode: "CS301", CourseName: "Database Systems", Credits: 15,
			Department: "Computer Science", Level: "undergraduate",
			SkillsCovered: []string{"sql", "schema design"}, IsCapstoneEligible: true, Status: "active",
			Description: "Relational theory and practice"},
		{ID: 2, CourseCode: "CS402", CourseName: "Distributed Systems", Credits: 20,
			Department: "Computer Science", Level: "honours",
			SkillsCovered: []string{"consensus", "rpc"}, IsCapstoneEligible: true, Status: "active",
			Description: "Replication, consistency, fault tolerance"},
	}
	if _, err := bdb.NewInsert().Model(&courses).Exec(ctx); err != nil {
		return err
	}

	return nil
}
