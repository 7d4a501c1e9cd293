package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
)

// Memory keeps everything in process memory. It backs tests and runs without
// a database configured. Records are copied in and out.
type Memory struct {
	mu sync.RWMutex

	initiatives map[string]models.Initiative
	kpis        map[uint]models.KPI
	tiers       []models.Tier
	financials  map[int]models.ThrustFinancial
	audit       []models.AuditLog

	direction  *models.Direction
	objectives map[int]models.Objective
	stories    map[uint]models.SuccessStory

	nextKPI       uint
	nextTier      uint
	nextMilestone uint
	nextAudit     uint
	nextStory     uint
}

func NewMemory() *Memory {
	return &Memory{
		initiatives: make(map[string]models.Initiative),
		kpis:        make(map[uint]models.KPI),
		financials:  make(map[int]models.ThrustFinancial),
		objectives:  make(map[int]models.Objective),
		stories:     make(map[uint]models.SuccessStory),
	}
}

//
// initiatives
//

func (m *Memory) ListInitiatives(_ context.Context) ([]models.Initiative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Initiative, 0, len(m.initiatives))
	for _, in := range m.initiatives {
		out = append(out, in)
	}
	planning.SortInitiatives(out)
	return out, nil
}

func (m *Memory) GetInitiative(_ context.Context, id string) (models.Initiative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.initiatives[id]
	if !ok {
		return models.Initiative{}, fmt.Errorf("initiative %s: %w", id, ErrNotFound)
	}
	return in, nil
}

func (m *Memory) CreateInitiative(_ context.Context, in *models.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.initiatives[in.ID]; ok {
		return fmt.Errorf("initiative %s: %w", in.ID, ErrExists)
	}
	now := time.Now()
	in.CreatedAt, in.UpdatedAt = now, now
	m.initiatives[in.ID] = *in
	return nil
}

func (m *Memory) SaveInitiative(_ context.Context, in *models.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.initiatives[in.ID]
	if !ok {
		return fmt.Errorf("initiative %s: %w", in.ID, ErrNotFound)
	}
	in.CreatedAt = prev.CreatedAt
	in.UpdatedAt = time.Now()
	m.initiatives[in.ID] = *in
	return nil
}

func (m *Memory) SaveInitiatives(_ context.Context, list []models.Initiative) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range list {
		if _, ok := m.initiatives[in.ID]; !ok {
			return fmt.Errorf("initiative %s: %w", in.ID, ErrNotFound)
		}
	}
	now := time.Now()
	for _, in := range list {
		in.CreatedAt = m.initiatives[in.ID].CreatedAt
		in.UpdatedAt = now
		m.initiatives[in.ID] = in
	}
	return nil
}

func (m *Memory) DeleteInitiative(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.initiatives[id]; !ok {
		return fmt.Errorf("initiative %s: %w", id, ErrNotFound)
	}
	delete(m.initiatives, id)
	return nil
}

//
// kpis
//

func cloneKPI(k models.KPI) models.KPI {
	k.History = append([]models.KPIHistoryPoint(nil), k.History...)
	if k.LinkedInitiativeID != nil {
		id := *k.LinkedInitiativeID
		k.LinkedInitiativeID = &id
	}
	return k
}

func (m *Memory) ListKPIs(_ context.Context) ([]models.KPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.KPI, 0, len(m.kpis))
	for _, k := range m.kpis {
		out = append(out, cloneKPI(k))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetKPI(_ context.Context, id uint) (models.KPI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.kpis[id]
	if !ok {
		return models.KPI{}, fmt.Errorf("kpi %d: %w", id, ErrNotFound)
	}
	return cloneKPI(k), nil
}

func (m *Memory) CreateKPI(_ context.Context, k *models.KPI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextKPI++
	k.ID = m.nextKPI
	now := time.Now()
	k.CreatedAt, k.UpdatedAt = now, now
	m.kpis[k.ID] = cloneKPI(*k)
	return nil
}

func (m *Memory) SaveKPI(_ context.Context, k *models.KPI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.kpis[k.ID]
	if !ok {
		return fmt.Errorf("kpi %d: %w", k.ID, ErrNotFound)
	}
	k.CreatedAt = prev.CreatedAt
	k.UpdatedAt = time.Now()
	m.kpis[k.ID] = cloneKPI(*k)
	return nil
}

func (m *Memory) DeleteKPI(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kpis[id]; !ok {
		return fmt.Errorf("kpi %d: %w", id, ErrNotFound)
	}
	delete(m.kpis, id)
	return nil
}

//
// roadmap
//

func cloneTier(t models.Tier) models.Tier {
	t.Milestones = append([]models.Milestone(nil), t.Milestones...)
	return t
}

func (m *Memory) ListTiers(_ context.Context) ([]models.Tier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Tier, 0, len(m.tiers))
	for _, t := range m.tiers {
		out = append(out, cloneTier(t))
	}
	return out, nil
}

func (m *Memory) CreateTier(_ context.Context, t *models.Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tiers {
		if existing.Name == t.Name {
			return fmt.Errorf("tier %q: %w", t.Name, ErrExists)
		}
	}
	m.nextTier++
	t.ID = m.nextTier
	t.Position = len(m.tiers)
	for i := range t.Milestones {
		m.nextMilestone++
		t.Milestones[i].ID = m.nextMilestone
		t.Milestones[i].TierID = t.ID
		t.Milestones[i].Position = i
	}
	m.tiers = append(m.tiers, cloneTier(*t))
	return nil
}

func (m *Memory) AddMilestone(_ context.Context, tierID uint, text string) (models.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tiers {
		if m.tiers[i].ID != tierID {
			continue
		}
		m.nextMilestone++
		ms := models.Milestone{
			ID:       m.nextMilestone,
			TierID:   tierID,
			Text:     text,
			Position: len(m.tiers[i].Milestones),
		}
		m.tiers[i].Milestones = append(m.tiers[i].Milestones, ms)
		return ms, nil
	}
	return models.Milestone{}, fmt.Errorf("tier %d: %w", tierID, ErrNotFound)
}

func (m *Memory) findMilestone(id uint) (tier, idx int, ok bool) {
	for ti := range m.tiers {
		for mi, ms := range m.tiers[ti].Milestones {
			if ms.ID == id {
				return ti, mi, true
			}
		}
	}
	return 0, 0, false
}

func (m *Memory) UpdateMilestone(_ context.Context, id uint, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ti, mi, ok := m.findMilestone(id)
	if !ok {
		return fmt.Errorf("milestone %d: %w", id, ErrNotFound)
	}
	m.tiers[ti].Milestones[mi].Text = text
	return nil
}

func (m *Memory) DeleteMilestone(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ti, mi, ok := m.findMilestone(id)
	if !ok {
		return fmt.Errorf("milestone %d: %w", id, ErrNotFound)
	}
	ms := m.tiers[ti].Milestones
	m.tiers[ti].Milestones = append(ms[:mi:mi], ms[mi+1:]...)
	return nil
}

//
// financials
//

func (m *Memory) ListFinancials(_ context.Context) ([]models.ThrustFinancial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ThrustFinancial, 0, len(m.financials))
	for _, f := range m.financials {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ThrustID < out[j].ThrustID })
	return out, nil
}

func (m *Memory) SaveFinancial(_ context.Context, f models.ThrustFinancial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.financials[f.ThrustID] = f
	return nil
}

//
// audit
//

func (m *Memory) RecordAudit(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAudit++
	entry.ID = m.nextAudit
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.audit = append(m.audit, entry)
	return nil
}

// ListAudit returns the newest entries first.
func (m *Memory) ListAudit(_ context.Context, limit int) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.audit)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.AuditLog, 0, n)
	for i := len(m.audit) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.audit[i])
	}
	return out, nil
}

//
// page content
//

func (m *Memory) GetDirection(_ context.Context) (models.Direction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.direction == nil {
		return models.Direction{}, fmt.Errorf("direction: %w", ErrNotFound)
	}
	return *m.direction, nil
}

func (m *Memory) SaveDirection(_ context.Context, d models.Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = models.DirectionID
	m.direction = &d
	return nil
}

func cloneObjective(o models.Objective) models.Objective {
	o.Thrusts = append([]int(nil), o.Thrusts...)
	return o
}

func (m *Memory) ListObjectives(_ context.Context) ([]models.Objective, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Objective, 0, len(m.objectives))
	for _, o := range m.objectives {
		out = append(out, cloneObjective(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetObjective(_ context.Context, id int) (models.Objective, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objectives[id]
	if !ok {
		return models.Objective{}, fmt.Errorf("objective %d: %w", id, ErrNotFound)
	}
	return cloneObjective(o), nil
}

// SaveObjective inserts or replaces the objective with o.ID.
func (m *Memory) SaveObjective(_ context.Context, o models.Objective) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objectives[o.ID] = cloneObjective(o)
	return nil
}

func (m *Memory) ListStories(_ context.Context) ([]models.SuccessStory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.SuccessStory, 0, len(m.stories))
	for _, s := range m.stories {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetStory(_ context.Context, id uint) (models.SuccessStory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[id]
	if !ok {
		return models.SuccessStory{}, fmt.Errorf("story %d: %w", id, ErrNotFound)
	}
	return s, nil
}

func (m *Memory) CreateStory(_ context.Context, s *models.SuccessStory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextStory++
	s.ID = m.nextStory
	s.CreatedAt = time.Now()
	m.stories[s.ID] = *s
	return nil
}

func (m *Memory) SaveStory(_ context.Context, s *models.SuccessStory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.stories[s.ID]
	if !ok {
		return fmt.Errorf("story %d: %w", s.ID, ErrNotFound)
	}
	s.CreatedAt = prev.CreatedAt
	m.stories[s.ID] = *s
	return nil
}

func (m *Memory) DeleteStory(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stories[id]; !ok {
		return fmt.Errorf("story %d: %w", id, ErrNotFound)
	}
	delete(m.stories, id)
	return nil
}

var _ Store = (*Memory)(nil)
