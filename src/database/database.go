package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/cargodocs/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateFilledFieldsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'extracting',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		doc_type TEXT NOT NULL DEFAULT 'UNKNOWN',
		filename TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(batch_id) REFERENCES batches(id)
	);

	CREATE TABLE IF NOT EXISTS filled_fields (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		field_key TEXT NOT NULL,
		value TEXT,
		confidence REAL NOT NULL DEFAULT 0,
		source TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL,
		latest BOOLEAN NOT NULL DEFAULT TRUE,
		page INTEGER,
		bbox TEXT,
		token_refs TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(document_id) REFERENCES documents(id),
		UNIQUE(document_id, field_key, version)
	);

	CREATE INDEX IF NOT EXISTS idx_filled_fields_latest
		ON filled_fields(document_id, field_key) WHERE latest = TRUE;

	CREATE TABLE IF NOT EXISTS validation_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		rule_id TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		refs TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(batch_id) REFERENCES batches(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

func migrateFilledFieldsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='filled_fields'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'filled_fields' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'filled_fields' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'filled_fields' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'filled_fields' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(filled_fields)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'filled_fields'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'filled_fields': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'filled_fields'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'filled_fields': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'filled_fields'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'filled_fields': %v", err)
		}
		return
	}

	// Positional metadata columns were added after the first ledger release.
	if _, ok := columnExists["page"]; !ok {
		_, err := DB.Exec("ALTER TABLE filled_fields ADD COLUMN page INTEGER")
		if err != nil {
			logger.L.Error("Error adding 'page' column to 'filled_fields' table", "error", err)
		} else {
			logger.L.Info("Added 'page' column to 'filled_fields' table")
		}
	}
	if _, ok := columnExists["bbox"]; !ok {
		_, err := DB.Exec("ALTER TABLE filled_fields ADD COLUMN bbox TEXT")
		if err != nil {
			logger.L.Error("Error adding 'bbox' column to 'filled_fields' table", "error", err)
		} else {
			logger.L.Info("Added 'bbox' column to 'filled_fields' table")
		}
	}
	if _, ok := columnExists["token_refs"]; !ok {
		_, err := DB.Exec("ALTER TABLE filled_fields ADD COLUMN token_refs TEXT")
		if err != nil {
			logger.L.Error("Error adding 'token_refs' column to 'filled_fields' table", "error", err)
		} else {
			logger.L.Info("Added 'token_refs' column to 'filled_fields' table")
		}
	}
	if _, ok := columnExists["source"]; !ok {
		_, err := DB.Exec("ALTER TABLE filled_fields ADD COLUMN source TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'source' column to 'filled_fields' table", "error", err)
		} else {
			logger.L.Info("Added 'source' column to 'filled_fields' table")
		}
	}
}
