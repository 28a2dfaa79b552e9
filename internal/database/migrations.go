package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'employee'
			CHECK (role IN ('superadmin', 'admin', 'employee')),
		avatar_url VARCHAR(500),
		password_hash VARCHAR(255) NOT NULL,
		preferences JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_login TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT 'info'
			CHECK (type IN ('info', 'success', 'warning', 'error')),
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE is_read = FALSE`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,

	// Read flag never reverts.
	`CREATE OR REPLACE FUNCTION notifications_keep_read() RETURNS trigger AS $$
	BEGIN
		IF OLD.is_read AND NOT NEW.is_read THEN
			NEW.is_read := TRUE;
		END IF;
		NEW.created_at := OLD.created_at;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,

	`DROP TRIGGER IF EXISTS trg_notifications_keep_read ON notifications`,
	`CREATE TRIGGER trg_notifications_keep_read
		BEFORE UPDATE ON notifications
		FOR EACH ROW EXECUTE FUNCTION notifications_keep_read()`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
