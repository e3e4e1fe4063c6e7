package storage

// migrations are applied in order; migrations[i] brings the schema to version i+1.
// Column names are read directly by other tooling and must not change.
var migrations = []string{
	`
-- 'card' is the root identity of a reviewable item. AUTOINCREMENT keeps ids from being reused.
CREATE TABLE IF NOT EXISTS card (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type INTEGER NOT NULL DEFAULT 0,
    createdAt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
    cardId INTEGER PRIMARY KEY,
    textFront TEXT NOT NULL,
    textBack TEXT NOT NULL,

    FOREIGN KEY(cardId) REFERENCES card(id)
);

-- Version tables hold the state of a row before each update or delete.
-- They have no foreign key so history outlives the card.
CREATE TABLE IF NOT EXISTS content_ver (
    versionId INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,
    cardId INTEGER NOT NULL,
    textFront TEXT NOT NULL,
    textBack TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_content_ver_card ON content_ver(cardId, timestamp);

CREATE TABLE IF NOT EXISTS schedule (
    cardId INTEGER PRIMARY KEY,
    updatedAt INTEGER NOT NULL,
    delay TEXT NOT NULL,
    randomFactor REAL NOT NULL,
    nextAccessInMillis INTEGER NOT NULL,
    nextAccessAt INTEGER NOT NULL,

    FOREIGN KEY(cardId) REFERENCES card(id),
    CHECK (nextAccessAt = updatedAt + nextAccessInMillis)
);
CREATE INDEX IF NOT EXISTS idx_schedule_next_access ON schedule(nextAccessAt);

CREATE TABLE IF NOT EXISTS schedule_ver (
    versionId INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,
    cardId INTEGER NOT NULL,
    updatedAt INTEGER NOT NULL,
    delay TEXT NOT NULL,
    randomFactor REAL NOT NULL,
    nextAccessInMillis INTEGER NOT NULL,
    nextAccessAt INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedule_ver_card ON schedule_ver(cardId, timestamp);

-- 'validation_log' is an audit trail of review attempts. Rows are kept after
-- their card is deleted, hence no foreign key.
CREATE TABLE IF NOT EXISTS validation_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,
    cardId INTEGER NOT NULL,
    providedAnswer TEXT NOT NULL,
    matched INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_validation_log_card ON validation_log(cardId, timestamp);
`,
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`
