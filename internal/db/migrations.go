package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'detection_method') THEN
			CREATE TYPE detection_method AS ENUM ('TEXT_LINES', 'REGION');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'compliance_status') THEN
			CREATE TYPE compliance_status AS ENUM ('COMPLIANT', 'VIOLATION', 'UNKNOWN');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS detections (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL,
		plate VARCHAR(32) NOT NULL,
		normalized_plate VARCHAR(32) NOT NULL,
		confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
		method detection_method NOT NULL,
		compliance compliance_status NOT NULL DEFAULT 'UNKNOWN',
		image_key TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_detections_user_id ON detections (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_detections_user_plate ON detections (user_id, normalized_plate, created_at DESC);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $body$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$body$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_detections_updated_at') THEN
			CREATE TRIGGER trg_detections_updated_at
				BEFORE UPDATE ON detections
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
