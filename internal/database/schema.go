package database

type migration struct {
	version string
	sql     string
}

// migrations are applied in order; each version runs exactly once.
var migrations = []migration{
	{
		version: "001_initial",
		sql: `
CREATE TABLE IF NOT EXISTS device_profiles (
	profile_id              TEXT PRIMARY KEY,
	model                   TEXT NOT NULL,
	manufacturer            TEXT NOT NULL,
	os_version              TEXT NOT NULL,
	width                   INTEGER NOT NULL,
	height                  INTEGER NOT NULL,
	dpi                     INTEGER NOT NULL,
	device_serials          TEXT NOT NULL DEFAULT '[]',
	calibrated              INTEGER NOT NULL DEFAULT 0,
	calibration_confidence  REAL NOT NULL DEFAULT 0,
	notes                   TEXT,
	created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_used_at            DATETIME
);

CREATE TABLE IF NOT EXISTS coordinate_configs (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id          TEXT NOT NULL REFERENCES device_profiles(profile_id) ON DELETE CASCADE,
	element_kind        TEXT NOT NULL,
	element_name        TEXT NOT NULL,
	element_description TEXT,
	x                   INTEGER NOT NULL,
	y                   INTEGER NOT NULL,
	confidence          REAL NOT NULL DEFAULT 0.5,
	validated           INTEGER NOT NULL DEFAULT 0,
	calibration_method  TEXT NOT NULL DEFAULT 'default',
	calibrated_by       TEXT,
	calibrated_at       DATETIME,
	touch_radius        INTEGER NOT NULL DEFAULT 20,
	usage_count         INTEGER NOT NULL DEFAULT 0,
	success_count       INTEGER NOT NULL DEFAULT 0,
	fail_count          INTEGER NOT NULL DEFAULT 0,
	notes               TEXT,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_used_at        DATETIME,
	UNIQUE (profile_id, element_kind)
);

CREATE INDEX IF NOT EXISTS idx_coordinate_configs_profile
	ON coordinate_configs(profile_id);
`,
	},
}
