package journal

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	time DATETIME NOT NULL,
	kind TEXT NOT NULL,
	entity TEXT NOT NULL,
	actor TEXT NOT NULL,
	asset TEXT NOT NULL,
	amount TEXT NOT NULL,
	attrs TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
`
