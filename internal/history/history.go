// Package history implements the Session History Store: a best-effort,
// Kùzu-backed audit trail of session lifecycle events, independent of the
// live in-memory Event Buffer that pollEvents drains. A write here runs
// synchronously but never fails an RPC: every Record* method swallows its
// own errors after logging them. Open and RecentSessions return theirs.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/kuzudb/go-kuzu"

	"github.com/lldb-mcp/server/internal/logging"
)

const schema = `
CREATE NODE TABLE IF NOT EXISTS Session(id STRING, createdAt TIMESTAMP, terminatedAt TIMESTAMP, PRIMARY KEY(id));
CREATE NODE TABLE IF NOT EXISTS Target(session STRING, file STRING, triple STRING, createdAt TIMESTAMP, PRIMARY KEY(session));
CREATE NODE TABLE IF NOT EXISTS ProcessRecord(session STRING, pid INT64, kind STRING, at TIMESTAMP, PRIMARY KEY(session));
CREATE NODE TABLE IF NOT EXISTS Breakpoint(id STRING, session STRING, breakpointId INT64, file STRING, line INT64, symbol STRING, setAt TIMESTAMP, PRIMARY KEY(id));
CREATE NODE TABLE IF NOT EXISTS Watchpoint(id STRING, session STRING, watchpointId INT64, addr INT64, size INT64, setAt TIMESTAMP, PRIMARY KEY(id));
CREATE REL TABLE IF NOT EXISTS BOUND_TO(FROM Session TO Target);
CREATE REL TABLE IF NOT EXISTS LAUNCHED(FROM Session TO ProcessRecord);
CREATE REL TABLE IF NOT EXISTS HIT(FROM Session TO Breakpoint);
`

// Store persists session history to an embedded Kùzu graph database. A nil
// *Store is valid and every method on it is a no-op, so callers can hold a
// possibly-nil Store when history is disabled by configuration.
type Store struct {
	db  *kuzu.Database
	log *logging.Logger
}

// Open creates (or attaches to) the Kùzu database at path and ensures the
// session-history schema exists.
func Open(path string, log *logging.Logger) (*Store, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open history connection: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Query(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &Store{db: db, log: log.Component("history")}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.db.Close()
	return nil
}

func (s *Store) exec(query string) {
	if s == nil || s.db == nil {
		return
	}
	conn, err := kuzu.OpenConnection(s.db)
	if err != nil {
		s.log.Warn("history.connect_failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()
	if _, err := conn.Query(query); err != nil {
		s.log.Warn("history.write_failed", map[string]interface{}{"error": err.Error(), "query": query})
	}
}

func (s *Store) RecordSessionCreated(sessionID string) {
	s.exec(fmt.Sprintf(
		`CREATE (s:Session {id: '%s', createdAt: timestamp('%s')});`,
		escape(sessionID), nowRFC3339()))
}

func (s *Store) RecordSessionTerminated(sessionID string) {
	s.exec(fmt.Sprintf(
		`MATCH (s:Session {id: '%s'}) SET s.terminatedAt = timestamp('%s');`,
		escape(sessionID), nowRFC3339()))
}

func (s *Store) RecordTargetCreated(sessionID, file, triple string) {
	s.exec(fmt.Sprintf(
		`MERGE (t:Target {session: '%s'}) SET t.file = '%s', t.triple = '%s', t.createdAt = timestamp('%s')
		 WITH t MATCH (s:Session {id: '%s'}) MERGE (s)-[:BOUND_TO]->(t);`,
		escape(sessionID), escape(file), escape(triple), nowRFC3339(), escape(sessionID)))
}

func (s *Store) RecordLaunch(sessionID string, pid uint64) {
	s.recordProcess(sessionID, pid, "launch")
}

func (s *Store) RecordAttach(sessionID string, pid uint64) {
	s.recordProcess(sessionID, pid, "attach")
}

func (s *Store) recordProcess(sessionID string, pid uint64, kind string) {
	s.exec(fmt.Sprintf(
		`CREATE (p:ProcessRecord {session: '%s', pid: %d, kind: '%s', at: timestamp('%s')})
		 WITH p MATCH (s:Session {id: '%s'}) MERGE (s)-[:LAUNCHED]->(p);`,
		escape(sessionID), pid, kind, nowRFC3339(), escape(sessionID)))
}

func (s *Store) RecordBreakpointSet(sessionID string, breakpointID int, file string, line int, symbol string) {
	id := fmt.Sprintf("%s:%d", sessionID, breakpointID)
	s.exec(fmt.Sprintf(
		`CREATE (b:Breakpoint {id: '%s', session: '%s', breakpointId: %d, file: '%s', line: %d, symbol: '%s', setAt: timestamp('%s')})
		 WITH b MATCH (s:Session {id: '%s'}) MERGE (s)-[:HIT]->(b);`,
		escape(id), escape(sessionID), breakpointID, escape(file), line, escape(symbol), nowRFC3339(), escape(sessionID)))
}

func (s *Store) RecordWatchpointSet(sessionID string, watchpointID int, addr uint64, size int) {
	id := fmt.Sprintf("%s:%d", sessionID, watchpointID)
	s.exec(fmt.Sprintf(
		`CREATE (w:Watchpoint {id: '%s', session: '%s', watchpointId: %d, addr: %d, size: %d, setAt: timestamp('%s')});`,
		escape(id), escape(sessionID), watchpointID, addr, size, nowRFC3339()))
}

// RecentSessions returns the id and creation time of the most recently
// created sessions, newest first, for the `lldbmcpd history` CLI command.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	conn, err := kuzu.OpenConnection(s.db)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	query := fmt.Sprintf(
		`MATCH (s:Session) RETURN s.id, s.createdAt, s.terminatedAt ORDER BY s.createdAt DESC LIMIT %d;`, limit)
	result, err := conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var out []SessionRecord
	for result.HasNext() {
		row, err := result.Next()
		if err != nil {
			return out, err
		}
		values, err := row.GetAsSlice()
		if err != nil {
			return out, err
		}
		rec := SessionRecord{}
		if len(values) > 0 {
			rec.ID, _ = values[0].(string)
		}
		if len(values) > 1 {
			rec.CreatedAt, _ = values[1].(time.Time)
		}
		if len(values) > 2 {
			rec.TerminatedAt, _ = values[2].(time.Time)
		}
		out = append(out, rec)
	}
	return out, nil
}

// SessionRecord is one row of RecentSessions.
type SessionRecord struct {
	ID           string
	CreatedAt    time.Time
	TerminatedAt time.Time
}

func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }
