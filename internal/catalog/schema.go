package catalog

// schemaVersion is the compiled-in schema version this binary expects. On
// open, a stored version greater than this refuses to run; lower versions
// are migrated in place inside a single transaction.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY,
	run_type     TEXT NOT NULL,
	config       BLOB,
	started_at   INTEGER NOT NULL,
	completed_at INTEGER,
	status       TEXT NOT NULL DEFAULT 'running',
	error        TEXT
);

CREATE TABLE IF NOT EXISTS files (
	id           INTEGER PRIMARY KEY,
	path         TEXT NOT NULL UNIQUE,
	digest       TEXT NOT NULL,
	size         INTEGER NOT NULL,
	mime_type    TEXT,
	mtime        INTEGER,
	ctime        INTEGER,
	scan_run_id  INTEGER REFERENCES runs(id),
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_digest ON files(digest);
CREATE INDEX IF NOT EXISTS idx_files_scan_run ON files(scan_run_id);

CREATE TABLE IF NOT EXISTS extractions (
	id                 INTEGER PRIMARY KEY,
	file_id            INTEGER NOT NULL REFERENCES files(id),
	method             TEXT NOT NULL,
	status             TEXT NOT NULL,
	sidecar_path       TEXT,
	error              TEXT,
	extraction_run_id  INTEGER REFERENCES runs(id),
	created_at         INTEGER NOT NULL,
	UNIQUE(file_id, extraction_run_id)
);

CREATE INDEX IF NOT EXISTS idx_extractions_file ON extractions(file_id);
CREATE INDEX IF NOT EXISTS idx_extractions_status ON extractions(status);

CREATE TABLE IF NOT EXISTS labels (
	id                 INTEGER PRIMARY KEY,
	file_id            INTEGER NOT NULL REFERENCES files(id),
	doc_type           TEXT NOT NULL,
	title              TEXT,
	canonical_filename TEXT,
	suggested_tags     TEXT,
	target_group_path  TEXT,
	date               TEXT,
	issuer             TEXT,
	source             TEXT,
	confidence         REAL,
	explanation        TEXT,
	model_name         TEXT NOT NULL,
	prompt_version     TEXT NOT NULL,
	labeling_run_id    INTEGER REFERENCES runs(id),
	created_at         INTEGER NOT NULL,
	UNIQUE(file_id, labeling_run_id)
);

CREATE INDEX IF NOT EXISTS idx_labels_file ON labels(file_id);
CREATE INDEX IF NOT EXISTS idx_labels_doc_type ON labels(doc_type);

CREATE TABLE IF NOT EXISTS plans (
	id               INTEGER PRIMARY KEY,
	file_id          INTEGER NOT NULL REFERENCES files(id),
	label_id         INTEGER REFERENCES labels(id),
	operation        TEXT NOT NULL,
	source_path      TEXT NOT NULL,
	target_path      TEXT NOT NULL,
	target_filename  TEXT NOT NULL,
	tags             TEXT,
	needs_review     INTEGER NOT NULL DEFAULT 0,
	plan_run_id      INTEGER REFERENCES runs(id),
	created_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_file ON plans(file_id);
CREATE INDEX IF NOT EXISTS idx_plans_run ON plans(plan_run_id);
`

// migrations maps a "from" schema version to the statements that bring the
// database up to the next version. Empty for now: schemaVersion is 1 and
// schemaDDL already creates a version-1 database from scratch.
var migrations = map[int][]string{}
