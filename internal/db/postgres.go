package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/logger"
	"github.com/urbanatlas/urban-backend/internal/types"
	"github.com/urbanatlas/urban-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "urbanatlas", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	for _, ext := range []string{"postgis", `"uuid-ossp"`} {
		if err := db.Exec(fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS %s;`, ext)).Error; err != nil {
			log.Error("Failed to enable extension", "extension", ext, "error", err)
			return nil, fmt.Errorf("failed to enable extension %s: %w", ext, err)
		}
	}
	log.Info("Postgres extensions enabled")

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Territory{},
		&types.PhysicalObjectFunction{},
		&types.PhysicalObjectType{},
		&types.UrbanFunction{},
		&types.ServiceType{},
		&types.BufferType{},
		&types.DefaultBufferValue{},
		&types.MeasurementUnit{},
		&types.Indicator{},
		&types.FunctionalZoneType{},
		&types.PhysicalObject{},
		&types.ObjectGeometry{},
		&types.Service{},
		&types.UrbanObject{},
		&types.Buffer{},
		&types.FunctionalZone{},
		&types.Project{},
		&types.ProjectTerritory{},
		&types.Scenario{},
		&types.ScenarioPhysicalObject{},
		&types.ScenarioObjectGeometry{},
		&types.ScenarioService{},
		&types.ScenarioUrbanObject{},
		&types.ScenarioBuffer{},
		&types.ScenarioFunctionalZone{},
		&types.ScenarioIndicatorValue{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring constraints and spatial indexes...")
	// Drop-then-add keeps the statements idempotent across restarts; a
	// failure here means a guard the scenario machinery relies on is
	// missing, so it aborts the start.
	statements := []string{
		// Deleting a scenario must take its branch-local rows with it.
		`ALTER TABLE "scenario_urban_objects"
		 DROP CONSTRAINT IF EXISTS "fk_scenario_urban_objects_scenario_id",
		 ADD CONSTRAINT "fk_scenario_urban_objects_scenario_id"
		 FOREIGN KEY ("scenario_id") REFERENCES "scenarios"("scenario_id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "scenario_functional_zones"
		 DROP CONSTRAINT IF EXISTS "fk_scenario_functional_zones_scenario_id",
		 ADD CONSTRAINT "fk_scenario_functional_zones_scenario_id"
		 FOREIGN KEY ("scenario_id") REFERENCES "scenarios"("scenario_id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "scenario_indicator_values"
		 DROP CONSTRAINT IF EXISTS "fk_scenario_indicator_values_scenario_id",
		 ADD CONSTRAINT "fk_scenario_indicator_values_scenario_id"
		 FOREIGN KEY ("scenario_id") REFERENCES "scenarios"("scenario_id")
		 ON DELETE CASCADE`,
		// Buffers hang off the link row, not the scenario, so they ride
		// the link's deletion.
		`ALTER TABLE "scenario_buffers"
		 DROP CONSTRAINT IF EXISTS "fk_scenario_buffers_urban_object_id",
		 ADD CONSTRAINT "fk_scenario_buffers_urban_object_id"
		 FOREIGN KEY ("urban_object_id") REFERENCES "scenario_urban_objects"("urban_object_id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "scenarios"
		 DROP CONSTRAINT IF EXISTS "fk_scenarios_project_id",
		 ADD CONSTRAINT "fk_scenarios_project_id"
		 FOREIGN KEY ("project_id") REFERENCES "projects"("project_id")
		 ON DELETE CASCADE`,
		`ALTER TABLE "project_territories"
		 DROP CONSTRAINT IF EXISTS "fk_project_territories_project_id",
		 ADD CONSTRAINT "fk_project_territories_project_id"
		 FOREIGN KEY ("project_id") REFERENCES "projects"("project_id")
		 ON DELETE CASCADE`,
		// A territory with children cannot be dropped out from under its
		// subtree.
		`ALTER TABLE "territories"
		 DROP CONSTRAINT IF EXISTS "fk_territories_parent",
		 ADD CONSTRAINT "fk_territories_parent"
		 FOREIGN KEY ("parent_id") REFERENCES "territories"("territory_id")
		 ON DELETE RESTRICT`,
		`CREATE INDEX IF NOT EXISTS "object_geometries_geometry_idx"
		 ON "object_geometries" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "scenario_object_geometries_geometry_idx"
		 ON "scenario_object_geometries" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "project_territories_geometry_idx"
		 ON "project_territories" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "territories_geometry_idx"
		 ON "territories" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "functional_zones_geometry_idx"
		 ON "functional_zones" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "scenario_functional_zones_geometry_idx"
		 ON "scenario_functional_zones" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "buffers_geometry_idx"
		 ON "buffers" USING GIST ("geometry")`,
		`CREATE INDEX IF NOT EXISTS "scenario_buffers_geometry_idx"
		 ON "scenario_buffers" USING GIST ("geometry")`,
	}
	for _, stmt := range statements {
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Constraint statement failed", "error", err)
			return fmt.Errorf("configure constraints: %w", err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
