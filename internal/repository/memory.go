package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"netclass-console/internal/analytics"
	"netclass-console/internal/model"
)

var _ Store = (*MemoryStore)(nil)

// memoryState is the full data set of a MemoryStore.
type memoryState struct {
	locations map[int]model.Location
	admins    map[string]model.Admin
	pcs       map[int]model.PC
	snapshots map[int]model.Snapshot
	software  []model.InstalledSoftware
	events    []model.EventLogEntry

	nextLocationID int
	nextAdminID    int
	nextPCID       int
	nextSnapshotID int
	nextSoftwareID int
	nextEventID    int
}

func newMemoryState() *memoryState {
	return &memoryState{
		locations:      make(map[int]model.Location),
		admins:         make(map[string]model.Admin),
		pcs:            make(map[int]model.PC),
		snapshots:      make(map[int]model.Snapshot),
		nextLocationID: 1,
		nextAdminID:    1,
		nextPCID:       1,
		nextSnapshotID: 1,
		nextSoftwareID: 1,
		nextEventID:    1,
	}
}

func (s *memoryState) clone() *memoryState {
	c := *s
	c.locations = make(map[int]model.Location, len(s.locations))
	for k, v := range s.locations {
		c.locations[k] = v
	}
	c.admins = make(map[string]model.Admin, len(s.admins))
	for k, v := range s.admins {
		c.admins[k] = v
	}
	c.pcs = make(map[int]model.PC, len(s.pcs))
	for k, v := range s.pcs {
		c.pcs[k] = v
	}
	c.snapshots = make(map[int]model.Snapshot, len(s.snapshots))
	for k, v := range s.snapshots {
		c.snapshots[k] = v
	}
	c.software = append([]model.InstalledSoftware(nil), s.software...)
	c.events = append([]model.EventLogEntry(nil), s.events...)
	return &c
}

type memoryShared struct {
	mu    sync.Mutex
	state *memoryState
	now   func() time.Time
}

// MemoryStore is an in-process Store that mirrors the PostgreSQL procedures.
// It backs local development and tests.
type MemoryStore struct {
	shared *memoryShared
	inTx   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{shared: &memoryShared{state: newMemoryState(), now: time.Now}}
}

// SetClock replaces the time source used for timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.lock()
	defer m.unlock()
	m.shared.now = now
}

func (m *MemoryStore) lock() {
	if !m.inTx {
		m.shared.mu.Lock()
	}
}

func (m *MemoryStore) unlock() {
	if !m.inTx {
		m.shared.mu.Unlock()
	}
}

func (m *MemoryStore) st() *memoryState { return m.shared.state }

// AddLocation seeds a location and returns it with its assigned id.
func (m *MemoryStore) AddLocation(name string, floor int) model.Location {
	m.lock()
	defer m.unlock()

	st := m.st()
	l := model.Location{ID: st.nextLocationID, Name: name, Floor: floor}
	st.locations[l.ID] = l
	st.nextLocationID++
	return l
}

// AddAdmin seeds an admin account with an already hashed password.
func (m *MemoryStore) AddAdmin(username, passwordHash, name string) model.Admin {
	m.lock()
	defer m.unlock()

	st := m.st()
	a := model.Admin{ID: st.nextAdminID, Username: username, PasswordHash: passwordHash, Name: name}
	st.admins[username] = a
	st.nextAdminID++
	return a
}

func (m *MemoryStore) pcInfo(pc model.PC) model.PCInfo {
	st := m.st()
	info := model.PCInfo{PC: pc}
	if l, ok := st.locations[pc.LocationID]; ok {
		info.LocationName = l.Name
		info.Floor = l.Floor
	}
	if pc.ActiveSnapshotID != nil {
		if sn, ok := st.snapshots[*pc.ActiveSnapshotID]; ok {
			slot := sn.SlotNumber
			info.ActiveSlot = &slot
			info.ActiveDescription = sn.Description
		}
	}
	return info
}

func (m *MemoryStore) ListPCs(ctx context.Context) ([]model.PCInfo, error) {
	m.lock()
	defer m.unlock()

	ids := make([]int, 0, len(m.st().pcs))
	for id := range m.st().pcs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	pcs := make([]model.PCInfo, 0, len(ids))
	for _, id := range ids {
		pcs = append(pcs, m.pcInfo(m.st().pcs[id]))
	}
	return pcs, nil
}

func (m *MemoryStore) GetPC(ctx context.Context, pcID int) (*model.PCInfo, error) {
	m.lock()
	defer m.unlock()

	pc, ok := m.st().pcs[pcID]
	if !ok {
		return nil, ErrPCNotFound
	}
	info := m.pcInfo(pc)
	return &info, nil
}

func (m *MemoryStore) ListLocations(ctx context.Context) ([]model.Location, error) {
	m.lock()
	defer m.unlock()

	locations := make([]model.Location, 0, len(m.st().locations))
	for _, l := range m.st().locations {
		locations = append(locations, l)
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Floor != locations[j].Floor {
			return locations[i].Floor < locations[j].Floor
		}
		return locations[i].Name < locations[j].Name
	})
	return locations, nil
}

func (m *MemoryStore) ListSnapshots(ctx context.Context, pcID int) ([]model.Snapshot, error) {
	m.lock()
	defer m.unlock()

	snapshots := []model.Snapshot{}
	for _, sn := range m.st().snapshots {
		if sn.PCID == pcID {
			snapshots = append(snapshots, sn)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].SlotNumber < snapshots[j].SlotNumber })
	return snapshots, nil
}

func (m *MemoryStore) ListSoftware(ctx context.Context, pcID int) ([]model.InstalledSoftware, error) {
	m.lock()
	defer m.unlock()

	software := []model.InstalledSoftware{}
	for _, sw := range m.st().software {
		if sw.PCID == pcID {
			software = append(software, sw)
		}
	}
	sort.SliceStable(software, func(i, j int) bool {
		if !software[i].InstallDate.Equal(software[j].InstallDate) {
			return software[i].InstallDate.After(software[j].InstallDate)
		}
		return software[i].ID > software[j].ID
	})
	return software, nil
}

func (m *MemoryStore) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	m.lock()
	defer m.unlock()

	a, ok := m.st().admins[username]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return &a, nil
}

func (m *MemoryStore) ListEvents(ctx context.Context, limit int) ([]model.EventLogEntry, error) {
	m.lock()
	defer m.unlock()

	st := m.st()
	events := make([]model.EventLogEntry, 0, len(st.events))
	for i := len(st.events) - 1; i >= 0; i-- {
		e := st.events[i]
		if e.PCID != nil {
			if pc, ok := st.pcs[*e.PCID]; ok {
				e.PCName = pc.Name
			}
		}
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].EventTime.After(events[j].EventTime) })

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// appendEvent requires the caller to hold the lock.
func (m *MemoryStore) appendEvent(eventType string, pcID *int, details string) {
	st := m.st()
	var ref *int
	if pcID != nil {
		id := *pcID
		ref = &id
	}
	st.events = append(st.events, model.EventLogEntry{
		ID:        st.nextEventID,
		EventTime: m.shared.now(),
		EventType: eventType,
		PCID:      ref,
		Details:   details,
	})
	st.nextEventID++
}

func (m *MemoryStore) RegisterPC(ctx context.Context, reg model.PCRegistration) error {
	m.lock()
	defer m.unlock()

	st := m.st()
	if strings.TrimSpace(reg.Name) == "" {
		return procedureResult(ProcRegisterPC, MsgPCNameRequired)
	}
	if _, ok := st.locations[reg.LocationID]; !ok {
		return procedureResult(ProcRegisterPC, MsgLocationNotFound)
	}
	for _, pc := range st.pcs {
		if pc.Name == reg.Name {
			return procedureResult(ProcRegisterPC, MsgDuplicatePCName)
		}
	}
	for _, pc := range st.pcs {
		if pc.IPAddress == reg.IPAddress {
			return procedureResult(ProcRegisterPC, MsgDuplicateIPAddress)
		}
	}

	pcID := st.nextPCID
	st.nextPCID++
	snapshotID := st.nextSnapshotID
	st.nextSnapshotID++

	st.snapshots[snapshotID] = model.Snapshot{
		ID:          snapshotID,
		PCID:        pcID,
		SlotNumber:  1,
		Description: "Initial state",
		CreatedAt:   m.shared.now(),
	}
	st.pcs[pcID] = model.PC{
		ID:               pcID,
		Name:             reg.Name,
		LocationID:       reg.LocationID,
		IPAddress:        reg.IPAddress,
		Status:           model.StatusOffline,
		Mode:             model.ModeRestore,
		ActiveSnapshotID: &snapshotID,
		HealthScore:      100,
	}
	m.appendEvent(model.EventPCRegistered, &pcID, fmt.Sprintf("Registered %s at %s", reg.Name, reg.IPAddress))
	return nil
}

func (m *MemoryStore) ChangeMode(ctx context.Context, pcID int, mode model.Mode, adminID int) error {
	m.lock()
	defer m.unlock()

	st := m.st()
	pc, ok := st.pcs[pcID]
	if !ok {
		return procedureResult(ProcChangePCMode, MsgPCNotFound)
	}
	if !mode.Valid() {
		return procedureResult(ProcChangePCMode, fmt.Sprintf("Invalid mode: %s", mode))
	}
	if pc.Mode == mode {
		return procedureResult(ProcChangePCMode, fmt.Sprintf("PC is already in %s mode", mode))
	}

	previous := pc.Mode
	pc.Mode = mode
	st.pcs[pcID] = pc
	m.appendEvent(model.EventModeChange, &pcID, fmt.Sprintf("Admin %d changed mode %s -> %s", adminID, previous, mode))
	return nil
}

func (m *MemoryStore) CreateSnapshot(ctx context.Context, pcID, slot int, description string) error {
	m.lock()
	defer m.unlock()

	st := m.st()
	if _, ok := st.pcs[pcID]; !ok {
		return procedureResult(ProcCreateSnapshot, MsgPCNotFound)
	}
	if slot < 1 || slot > model.MaxSnapshotSlots {
		return procedureResult(ProcCreateSnapshot, MsgInvalidSlot)
	}
	for _, sn := range st.snapshots {
		if sn.PCID == pcID && sn.SlotNumber == slot {
			return procedureResult(ProcCreateSnapshot, MsgSlotInUse)
		}
	}

	id := st.nextSnapshotID
	st.nextSnapshotID++
	st.snapshots[id] = model.Snapshot{ID: id, PCID: pcID, SlotNumber: slot, Description: description, CreatedAt: m.shared.now()}
	m.appendEvent(model.EventSnapshotCreated, &pcID, fmt.Sprintf("Snapshot slot %d: %s", slot, description))
	return nil
}

// restoreToSnapshot removes programs installed after the PC's active
// snapshot. The caller holds the lock.
func (m *MemoryStore) restoreToSnapshot(pc model.PC) (model.Snapshot, int, bool) {
	st := m.st()
	if pc.ActiveSnapshotID == nil {
		return model.Snapshot{}, 0, false
	}
	sn, ok := st.snapshots[*pc.ActiveSnapshotID]
	if !ok {
		return model.Snapshot{}, 0, false
	}

	kept := st.software[:0:0]
	removed := 0
	for _, sw := range st.software {
		if sw.PCID == pc.ID && sw.InstallDate.After(sn.CreatedAt) {
			removed++
			continue
		}
		kept = append(kept, sw)
	}
	st.software = kept
	return sn, removed, true
}

func (m *MemoryStore) Shutdown(ctx context.Context, pcID int) (string, error) {
	m.lock()
	defer m.unlock()

	st := m.st()
	pc, ok := st.pcs[pcID]
	if !ok {
		return "", &ProcedureError{Procedure: ProcShutdown, Message: MsgPCNotFound}
	}

	pc.Status = model.StatusOffline
	st.pcs[pcID] = pc

	if pc.Mode == model.ModeRestore {
		if sn, removed, ok := m.restoreToSnapshot(pc); ok {
			return fmt.Sprintf("Restored to snapshot %d (%d programs removed)", sn.SlotNumber, removed), nil
		}
	}
	return "Shutdown complete (changes preserved)", nil
}

// healthScore mirrors sp_calculate_health_score. The caller holds the lock.
func (m *MemoryStore) healthScore(pc model.PC) int {
	st := m.st()
	score := 100

	var since *time.Time
	if pc.ActiveSnapshotID == nil {
		score -= 30
	} else if sn, ok := st.snapshots[*pc.ActiveSnapshotID]; ok {
		since = &sn.CreatedAt
	}

	programs := 0
	for _, sw := range st.software {
		if sw.PCID == pc.ID && (since == nil || sw.InstallDate.After(*since)) {
			programs++
		}
	}
	penalty := 2 * programs
	if penalty > 40 {
		penalty = 40
	}
	score -= penalty

	if pc.Mode == model.ModePersistent {
		score -= 10
	}
	if pc.Status == model.StatusOffline {
		score -= 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (m *MemoryStore) CalculateHealthScores(ctx context.Context) (string, error) {
	m.lock()
	defer m.unlock()

	st := m.st()
	for id, pc := range st.pcs {
		pc.HealthScore = m.healthScore(pc)
		st.pcs[id] = pc
	}

	msg := fmt.Sprintf("Evaluated %d PCs", len(st.pcs))
	m.appendEvent(model.EventHealthCheck, nil, msg)
	return msg, nil
}

func (m *MemoryStore) RunNightlyMaintenance(ctx context.Context) (string, error) {
	m.lock()
	defer m.unlock()

	st := m.st()
	ids := make([]int, 0, len(st.pcs))
	for id := range st.pcs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	restored, total := 0, 0
	for _, id := range ids {
		pc := st.pcs[id]
		if pc.Mode == model.ModeRestore {
			if _, removed, ok := m.restoreToSnapshot(pc); ok {
				restored++
				total += removed
			}
		}
		pc.Status = model.StatusOffline
		st.pcs[id] = pc
	}

	msg := fmt.Sprintf("Restored %d PCs (%d programs removed)", restored, total)
	m.appendEvent(model.EventNightlyMaintenance, nil, msg)
	return msg, nil
}

func (m *MemoryStore) SetActiveSnapshot(ctx context.Context, pcID, snapshotID int) error {
	m.lock()
	defer m.unlock()

	st := m.st()
	pc, ok := st.pcs[pcID]
	if !ok {
		return ErrPCNotFound
	}
	sn, ok := st.snapshots[snapshotID]
	if !ok || sn.PCID != pcID {
		return ErrSnapshotNotOwnedBy
	}

	id := snapshotID
	pc.ActiveSnapshotID = &id
	st.pcs[pcID] = pc
	return nil
}

func (m *MemoryStore) MarkOnline(ctx context.Context, pcID int) error {
	m.lock()
	defer m.unlock()

	pc, ok := m.st().pcs[pcID]
	if !ok {
		return ErrPCNotFound
	}
	now := m.shared.now()
	pc.Status = model.StatusOnline
	pc.LastSeen = &now
	m.st().pcs[pcID] = pc
	return nil
}

func (m *MemoryStore) InstallSoftware(ctx context.Context, pcID int, name string) error {
	m.lock()
	defer m.unlock()

	st := m.st()
	if _, ok := st.pcs[pcID]; !ok {
		return ErrPCNotFound
	}
	st.software = append(st.software, model.InstalledSoftware{
		ID:          st.nextSoftwareID,
		PCID:        pcID,
		Name:        name,
		InstallDate: m.shared.now(),
	})
	st.nextSoftwareID++
	return nil
}

func (m *MemoryStore) AppendEvent(ctx context.Context, eventType string, pcID *int, details string) error {
	m.lock()
	defer m.unlock()

	m.appendEvent(eventType, pcID, details)
	return nil
}

// softwareCounts requires the caller to hold the lock.
func (m *MemoryStore) softwareCounts() []model.SoftwareCount {
	st := m.st()
	perPC := make(map[int]int, len(st.pcs))
	for _, sw := range st.software {
		perPC[sw.PCID]++
	}

	ids := make([]int, 0, len(st.pcs))
	for id := range st.pcs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	counts := make([]model.SoftwareCount, 0, len(ids))
	for _, id := range ids {
		counts = append(counts, model.SoftwareCount{PCName: st.pcs[id].Name, Count: perPC[id]})
	}
	return counts
}

func (m *MemoryStore) SoftwareRankings(ctx context.Context) ([]model.SoftwareRanking, error) {
	m.lock()
	defer m.unlock()
	return analytics.DenseRank(m.softwareCounts()), nil
}

func (m *MemoryStore) LocationRollup(ctx context.Context) ([]model.LocationRollupRow, error) {
	m.lock()
	defer m.unlock()

	st := m.st()
	perLocation := make(map[int]int, len(st.locations))
	for _, pc := range st.pcs {
		perLocation[pc.LocationID]++
	}

	counts := make([]analytics.LocationCount, 0, len(st.locations))
	for id, l := range st.locations {
		counts = append(counts, analytics.LocationCount{Floor: l.Floor, LocationName: l.Name, PCCount: perLocation[id]})
	}
	return analytics.Rollup(counts), nil
}

func (m *MemoryStore) SoftwareCounts(ctx context.Context) ([]model.SoftwareCount, error) {
	m.lock()
	defer m.unlock()
	return m.softwareCounts(), nil
}

// WithinTx holds the store lock for the duration of fn and restores the
// previous state when fn fails.
func (m *MemoryStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()

	saved := m.shared.state.clone()
	if err := fn(&MemoryStore{shared: m.shared, inTx: true}); err != nil {
		m.shared.state = saved
		return err
	}
	if err := ctx.Err(); err != nil {
		m.shared.state = saved
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
