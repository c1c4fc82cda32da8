package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"netclass-console/internal/model"
)

const defaultQueryTimeout = 10 * time.Second

// PostgreSQL SQLSTATE codes handled by the store
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Unique constraints a procedure can trip when it races a concurrent call
// past its own existence checks, mapped to the message the check reports.
var (
	registerConstraintMessages = map[string]string{
		"pc_pc_name_key":    MsgDuplicatePCName,
		"pc_ip_address_key": MsgDuplicateIPAddress,
	}
	snapshotConstraintMessages = map[string]string{
		"snapshot_pc_id_slot_number_key": MsgSlotInUse,
	}
)

// raceResult turns a unique violation on one of the given constraints into
// the procedure's business failure. Other errors are returned unchanged.
func raceResult(procedure string, err error, constraints map[string]string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		if message, ok := constraints[pqErr.Constraint]; ok {
			return &ProcedureError{Procedure: procedure, Message: message}
		}
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// postgresStore is the PostgreSQL implementation of Store.
type postgresStore struct {
	db      *sql.DB
	q       querier
	timeout time.Duration
}

// NewPostgresStore creates a Store backed by PostgreSQL. A zero timeout
// falls back to ten seconds per call.
func NewPostgresStore(db *sql.DB, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &postgresStore{db: db, q: db, timeout: timeout}
}

func (s *postgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// call invokes a procedure and reads its status from the trailing output slot.
func (s *postgresStore) call(ctx context.Context, procedure string, args ...interface{}) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	placeholders := ""
	for i := range args {
		placeholders += fmt.Sprintf("$%d, ", i+1)
	}
	query := fmt.Sprintf("CALL %s(%sNULL)", procedure, placeholders)

	var message sql.NullString
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&message); err != nil {
		return "", fmt.Errorf("failed to call %s: %w", procedure, err)
	}
	if !message.Valid {
		return "", fmt.Errorf("%s returned no status message", procedure)
	}
	return message.String, nil
}

// ListPCs retrieves every PC with its location and active snapshot.
func (s *postgresStore) ListPCs(ctx context.Context) ([]model.PCInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT pc_id, pc_name, location_id, location_name, floor, ip_address, status, mode,
		       active_snapshot_id, active_slot, active_description, health_score, last_seen
		FROM pc_full_info
		ORDER BY pc_id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query PCs: %w", err)
	}
	defer rows.Close()

	pcs := []model.PCInfo{}
	for rows.Next() {
		pc, err := scanPCInfo(rows)
		if err != nil {
			return nil, err
		}
		pcs = append(pcs, *pc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return pcs, nil
}

// GetPC retrieves one PC in its dashboard projection.
func (s *postgresStore) GetPC(ctx context.Context, pcID int) (*model.PCInfo, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT pc_id, pc_name, location_id, location_name, floor, ip_address, status, mode,
		       active_snapshot_id, active_slot, active_description, health_score, last_seen
		FROM pc_full_info
		WHERE pc_id = $1`

	pc, err := scanPCInfo(s.q.QueryRowContext(ctx, query, pcID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPCNotFound
		}
		return nil, err
	}
	return pc, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPCInfo(row rowScanner) (*model.PCInfo, error) {
	var (
		pc         model.PCInfo
		mode       string
		activeID   sql.NullInt64
		activeSlot sql.NullInt64
		lastSeen   sql.NullTime
	)
	err := row.Scan(&pc.ID, &pc.Name, &pc.LocationID, &pc.LocationName, &pc.Floor, &pc.IPAddress,
		&pc.Status, &mode, &activeID, &activeSlot, &pc.ActiveDescription, &pc.HealthScore, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan PC: %w", err)
	}

	pc.Mode = model.Mode(mode)
	if activeID.Valid {
		id := int(activeID.Int64)
		pc.ActiveSnapshotID = &id
	}
	if activeSlot.Valid {
		slot := int(activeSlot.Int64)
		pc.ActiveSlot = &slot
	}
	if lastSeen.Valid {
		pc.LastSeen = &lastSeen.Time
	}
	return &pc, nil
}

// ListLocations retrieves all locations ordered by floor and name.
func (s *postgresStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.q.QueryContext(ctx, `SELECT location_id, location_name, floor FROM location ORDER BY floor, location_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Floor); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return locations, nil
}

// ListSnapshots retrieves the snapshots of one PC ordered by slot.
func (s *postgresStore) ListSnapshots(ctx context.Context, pcID int) ([]model.Snapshot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT snapshot_id, pc_id, slot_number, description, created_at
		FROM snapshot
		WHERE pc_id = $1
		ORDER BY slot_number`

	rows, err := s.q.QueryContext(ctx, query, pcID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		var sn model.Snapshot
		if err := rows.Scan(&sn.ID, &sn.PCID, &sn.SlotNumber, &sn.Description, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, sn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

// ListSoftware retrieves the programs installed on one PC, newest first.
func (s *postgresStore) ListSoftware(ctx context.Context, pcID int) ([]model.InstalledSoftware, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT software_id, pc_id, software_name, install_date
		FROM installed_software
		WHERE pc_id = $1
		ORDER BY install_date DESC, software_id DESC`

	rows, err := s.q.QueryContext(ctx, query, pcID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installed software: %w", err)
	}
	defer rows.Close()

	software := []model.InstalledSoftware{}
	for rows.Next() {
		var sw model.InstalledSoftware
		if err := rows.Scan(&sw.ID, &sw.PCID, &sw.Name, &sw.InstallDate); err != nil {
			return nil, fmt.Errorf("failed to scan installed software: %w", err)
		}
		software = append(software, sw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return software, nil
}

// GetAdminByUsername retrieves an admin account for login.
func (s *postgresStore) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT admin_id, username, password_hash, name FROM admin WHERE username = $1`

	var a model.Admin
	err := s.q.QueryRowContext(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}

// ListEvents retrieves the latest audit rows, newest first.
func (s *postgresStore) ListEvents(ctx context.Context, limit int) ([]model.EventLogEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT e.log_id, e.event_time, e.event_type, e.pc_id, COALESCE(p.pc_name, ''), e.details
		FROM event_log e
		LEFT JOIN pc p ON p.pc_id = e.pc_id
		ORDER BY e.event_time DESC, e.log_id DESC
		LIMIT $1`

	rows, err := s.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event log: %w", err)
	}
	defer rows.Close()

	events := []model.EventLogEntry{}
	for rows.Next() {
		var (
			e    model.EventLogEntry
			pcID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.EventTime, &e.EventType, &pcID, &e.PCName, &e.Details); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if pcID.Valid {
			id := int(pcID.Int64)
			e.PCID = &id
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// RegisterPC invokes the registration procedure.
func (s *postgresStore) RegisterPC(ctx context.Context, reg model.PCRegistration) error {
	msg, err := s.call(ctx, ProcRegisterPC, reg.Name, reg.LocationID, reg.IPAddress)
	if err != nil {
		return raceResult(ProcRegisterPC, err, registerConstraintMessages)
	}
	return procedureResult(ProcRegisterPC, msg)
}

// ChangeMode invokes the mode transition procedure.
func (s *postgresStore) ChangeMode(ctx context.Context, pcID int, mode model.Mode, adminID int) error {
	msg, err := s.call(ctx, ProcChangePCMode, pcID, string(mode), adminID)
	if err != nil {
		return err
	}
	return procedureResult(ProcChangePCMode, msg)
}

// CreateSnapshot invokes the snapshot creation procedure.
func (s *postgresStore) CreateSnapshot(ctx context.Context, pcID, slot int, description string) error {
	msg, err := s.call(ctx, ProcCreateSnapshot, pcID, slot, description)
	if err != nil {
		return raceResult(ProcCreateSnapshot, err, snapshotConstraintMessages)
	}
	return procedureResult(ProcCreateSnapshot, msg)
}

// Shutdown invokes the shutdown procedure and returns its summary. Every
// message except "PC not found" is a successful outcome.
func (s *postgresStore) Shutdown(ctx context.Context, pcID int) (string, error) {
	msg, err := s.call(ctx, ProcShutdown, pcID)
	if err != nil {
		return "", err
	}
	if msg == MsgPCNotFound {
		return "", &ProcedureError{Procedure: ProcShutdown, Message: msg}
	}
	return msg, nil
}

// CalculateHealthScores invokes the health scoring procedure.
func (s *postgresStore) CalculateHealthScores(ctx context.Context) (string, error) {
	return s.call(ctx, ProcHealthScore)
}

// RunNightlyMaintenance invokes the nightly maintenance procedure.
func (s *postgresStore) RunNightlyMaintenance(ctx context.Context) (string, error) {
	return s.call(ctx, ProcNightlyMaintenance)
}

// SetActiveSnapshot points a PC at one of its own snapshots.
func (s *postgresStore) SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE pc SET active_snapshot_id = $1
		WHERE pc_id = $2
		  AND EXISTS (SELECT 1 FROM snapshot WHERE snapshot_id = $1 AND pc_id = $2)`

	result, err := s.q.ExecContext(ctx, query, snapshotID, pcID)
	if err != nil {
		return fmt.Errorf("failed to set active snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing updated: tell an unknown PC apart from a foreign snapshot.
	var exists bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pc WHERE pc_id = $1)`, pcID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check PC existence: %w", err)
	}
	if !exists {
		return ErrPCNotFound
	}
	return ErrSnapshotNotOwnedBy
}

// MarkOnline records a client check-in.
func (s *postgresStore) MarkOnline(ctx context.Context, pcID int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.q.ExecContext(ctx, `UPDATE pc SET status = 'Online', last_seen = NOW() WHERE pc_id = $1`, pcID)
	if err != nil {
		return fmt.Errorf("failed to mark PC online: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPCNotFound
	}
	return nil
}

// InstallSoftware appends an installed program stamped with the current time.
func (s *postgresStore) InstallSoftware(ctx context.Context, pcID int, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.q.ExecContext(ctx, `INSERT INTO installed_software (pc_id, software_name) VALUES ($1, $2)`, pcID, name)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return ErrPCNotFound
		}
		return fmt.Errorf("failed to record installed software: %w", err)
	}
	return nil
}

// AppendEvent writes one audit row.
func (s *postgresStore) AppendEvent(ctx context.Context, eventType string, pcID *int, details string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var pc interface{}
	if pcID != nil {
		pc = *pcID
	}

	_, err := s.q.ExecContext(ctx, `INSERT INTO event_log (event_type, pc_id, details) VALUES ($1, $2, $3)`, eventType, pc, details)
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", eventType, err)
	}
	return nil
}

// SoftwareRankings ranks PCs by installed program count.
func (s *postgresStore) SoftwareRankings(ctx context.Context) ([]model.SoftwareRanking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT p.pc_name, COUNT(s.software_id) AS cnt,
		       DENSE_RANK() OVER (ORDER BY COUNT(s.software_id) DESC) AS ranking
		FROM pc p
		LEFT JOIN installed_software s ON s.pc_id = p.pc_id
		GROUP BY p.pc_id, p.pc_name
		ORDER BY ranking, p.pc_name`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query software rankings: %w", err)
	}
	defer rows.Close()

	rankings := []model.SoftwareRanking{}
	for rows.Next() {
		var r model.SoftwareRanking
		if err := rows.Scan(&r.PCName, &r.Count, &r.Ranking); err != nil {
			return nil, fmt.Errorf("failed to scan software ranking: %w", err)
		}
		rankings = append(rankings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return rankings, nil
}

// LocationRollup counts PCs per location with floor subtotals and a grand total.
func (s *postgresStore) LocationRollup(ctx context.Context) ([]model.LocationRollupRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT l.floor, l.location_name, COUNT(p.pc_id) AS pc_count
		FROM location l
		LEFT JOIN pc p ON p.location_id = l.location_id
		GROUP BY ROLLUP (l.floor, l.location_name)
		ORDER BY l.floor NULLS LAST, l.location_name NULLS LAST`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query location rollup: %w", err)
	}
	defer rows.Close()

	result := []model.LocationRollupRow{}
	for rows.Next() {
		var (
			r     model.LocationRollupRow
			floor sql.NullInt64
			name  sql.NullString
		)
		if err := rows.Scan(&floor, &name, &r.PCCount); err != nil {
			return nil, fmt.Errorf("failed to scan location rollup: %w", err)
		}
		if floor.Valid {
			f := int(floor.Int64)
			r.Floor = &f
		}
		if name.Valid {
			n := name.String
			r.LocationName = &n
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// SoftwareCounts reports each PC's program count through the scalar function.
func (s *postgresStore) SoftwareCounts(ctx context.Context) ([]model.SoftwareCount, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT pc_name, fn_get_software_count(pc_id) AS sw_count FROM pc ORDER BY pc_id`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query software counts: %w", err)
	}
	defer rows.Close()

	counts := []model.SoftwareCount{}
	for rows.Next() {
		var c model.SoftwareCount
		if err := rows.Scan(&c.PCName, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan software count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}

// WithinTx runs fn inside one database transaction. Nested calls reuse the
// outer transaction.
func (s *postgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&postgresStore{db: s.db, q: tx, timeout: s.timeout}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks database availability.
func (s *postgresStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}
