package graph

// SQLite schema DDL constants

const schemaProfiles = `
CREATE TABLE IF NOT EXISTS Profiles (
    id INTEGER PRIMARY KEY ASC AUTOINCREMENT,
    firstname VARCHAR(100) NOT NULL,
    lastname VARCHAR(100) NOT NULL,
    phone VARCHAR(100),
    dob VARCHAR(100),
    UNIQUE (firstname, lastname)
)`

const schemaBefriend = `
CREATE TABLE IF NOT EXISTS Befriend (
    id_f1 INTEGER NOT NULL REFERENCES Profiles(id) ON DELETE CASCADE,
    id_f2 INTEGER NOT NULL REFERENCES Profiles(id) ON DELETE CASCADE,
    CHECK (id_f1 <> id_f2),
    UNIQUE (id_f1, id_f2)
)`

// One row per unordered pair: (1,2) and (2,1) collide here.
const indexBefriendPair = `CREATE UNIQUE INDEX IF NOT EXISTS idx_befriend_pair ON Befriend(min(id_f1, id_f2), max(id_f1, id_f2))`
const indexBefriendF2 = `CREATE INDEX IF NOT EXISTS idx_befriend_f2 ON Befriend(id_f2)`

// Befriend references Profiles, so it goes first.
const dropBefriend = `DROP TABLE IF EXISTS Befriend`
const dropProfiles = `DROP TABLE IF EXISTS Profiles`

// SQLite pragmas
const pragmaFK = `PRAGMA foreign_keys=ON`
const pragmaBusyTimeout = `PRAGMA busy_timeout=5000`

// allSchemaStatements returns all schema DDL in order
func allSchemaStatements() []string {
	return []string{
		schemaProfiles,
		schemaBefriend,
		indexBefriendPair,
		indexBefriendF2,
	}
}

// allResetStatements returns the DDL that removes both relations
func allResetStatements() []string {
	return []string{
		dropBefriend,
		dropProfiles,
	}
}

// allPragmas returns all pragma statements
func allPragmas() []string {
	return []string{
		pragmaFK,
		pragmaBusyTimeout,
	}
}
