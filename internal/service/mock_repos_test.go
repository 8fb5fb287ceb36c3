package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"volunteerhub/internal/model"
	"volunteerhub/internal/repository"
	pkgerrors "volunteerhub/pkg/errors"
)

// ── in-memory store shared by the mock repositories ──

type mockStore struct {
	seq      int
	users    map[string]*model.User
	apps     map[string]*model.Application
	shifts   map[string]*model.Shift
	signups  []*model.ShiftSignup
	groups   map[string]*model.Group
	members  map[string]*model.GroupMember // key: groupID + "|" + userID
	checkIns map[string]*model.CheckIn
}

func newMockStore() *mockStore {
	return &mockStore{
		users:    make(map[string]*model.User),
		apps:     make(map[string]*model.Application),
		shifts:   make(map[string]*model.Shift),
		groups:   make(map[string]*model.Group),
		members:  make(map[string]*model.GroupMember),
		checkIns: make(map[string]*model.CheckIn),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepository wires every mock repository onto one store.
func newMockRepository() (*repository.Repository, *mockStore) {
	st := newMockStore()
	return &repository.Repository{
		User:        &mockUserRepo{st},
		Application: &mockApplicationRepo{st},
		Shift:       &mockShiftRepo{st},
		Signup:      &mockSignupRepo{st},
		Group:       &mockGroupRepo{st},
		CheckIn:     &mockCheckInRepo{st},
		Report:      &mockReportRepo{st},
	}, st
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *mockStore }

func (m *mockUserRepo) emailTaken(email, exceptID string) bool {
	for _, u := range m.st.users {
		if u.UserID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.emailTaken(user.Email, "") {
		return pkgerrors.ErrDuplicate
	}
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	user.Version = 1
	cp := *user
	m.st.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) BatchCreate(ctx context.Context, users []model.User) error {
	for i := range users {
		if m.emailTaken(users[i].Email, "") {
			return pkgerrors.ErrDuplicate
		}
	}
	for i := range users {
		if err := m.Create(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.st.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Memberships = nil
	for _, gm := range m.st.members {
		if gm.UserID == id {
			item := *gm
			if g, ok := m.st.groups[gm.GroupID]; ok {
				gc := *g
				item.Group = &gc
			}
			cp.Memberships = append(cp.Memberships, item)
		}
	}
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.st.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if m.emailTaken(user.Email, user.UserID) {
		return pkgerrors.ErrDuplicate
	}
	user.Version++
	cp := *user
	cp.Memberships = nil
	m.st.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.st.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	u.Version++
	return nil
}

func (m *mockUserRepo) TouchLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.st.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserFilter) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.st.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Active != nil && u.IsActive != *f.Active {
			continue
		}
		if f.Keyword != "" && !containsFold(u.Name, f.Keyword) && !containsFold(u.Email, f.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return paginate(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.st.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.users, id)
	return nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct{ st *mockStore }

func (m *mockApplicationRepo) CreateWithApplicant(ctx context.Context, user *model.User, app *model.Application) error {
	if err := (&mockUserRepo{m.st}).Create(ctx, user); err != nil {
		return err
	}
	app.ApplicantID = user.UserID
	app.Audit(user.UserID)
	return m.Create(ctx, app)
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	for _, a := range m.st.apps {
		if a.ApplicantID == app.ApplicantID && a.Status == model.ApplicationPending {
			return pkgerrors.ErrDuplicate
		}
	}
	if app.ApplicationID == "" {
		app.ApplicationID = m.st.nextID("app")
	}
	app.Version = 1
	app.CreatedAt = time.Now()
	cp := *app
	cp.Applicant = nil
	m.st.apps[app.ApplicationID] = &cp
	return nil
}

func (m *mockApplicationRepo) withApplicant(a *model.Application) model.Application {
	cp := *a
	if u, ok := m.st.users[a.ApplicantID]; ok {
		uc := *u
		cp.Applicant = &uc
	}
	return cp
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	a, ok := m.st.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withApplicant(a)
	return &cp, nil
}

func (m *mockApplicationRepo) GetPendingByApplicant(_ context.Context, applicantID string) (*model.Application, error) {
	for _, a := range m.st.apps {
		if a.ApplicantID == applicantID && a.Status == model.ApplicationPending {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) ListByApplicant(_ context.Context, applicantID string) ([]model.Application, error) {
	var result []model.Application
	for _, a := range m.st.apps {
		if a.ApplicantID == applicantID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockApplicationRepo) List(_ context.Context, status string, offset, limit int) ([]model.Application, int64, error) {
	var all []model.Application
	for _, a := range m.st.apps {
		if status == "" || a.Status == status {
			all = append(all, m.withApplicant(a))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ApplicationID < all[j].ApplicationID })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockApplicationRepo) UpdateStatus(_ context.Context, app *model.Application) error {
	stored, ok := m.st.apps[app.ApplicationID]
	if !ok || stored.Version != app.Version || stored.Status != model.ApplicationPending {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version++
	cp := *app
	cp.Applicant = nil
	m.st.apps[app.ApplicationID] = &cp
	return nil
}

func (m *mockApplicationRepo) Approve(ctx context.Context, app *model.Application) error {
	if err := m.UpdateStatus(ctx, app); err != nil {
		return err
	}
	if u, ok := m.st.users[app.ApplicantID]; ok && u.Role == model.RolePending {
		u.Role = model.RoleVolunteer
		u.Version++
	}
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct{ st *mockStore }

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = m.st.nextID("shift")
	}
	shift.Version = 1
	cp := *shift
	cp.Group = nil
	m.st.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) BatchCreate(ctx context.Context, shifts []model.Shift) error {
	for i := range shifts {
		if err := m.Create(ctx, &shifts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) withGroup(s *model.Shift) model.Shift {
	cp := *s
	if s.GroupID != nil {
		if g, ok := m.st.groups[*s.GroupID]; ok {
			gc := *g
			cp.Group = &gc
		}
	}
	return cp
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	s, ok := m.st.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withGroup(s)
	return &cp, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	stored, ok := m.st.shifts[shift.ShiftID]
	if !ok || stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	cp := *shift
	cp.Group = nil
	m.st.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.st.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.shifts, id)
	return nil
}

func matchShift(s *model.Shift, f repository.ShiftFilter) bool {
	if !s.InBucket(f.Bucket, f.Now) {
		return false
	}
	if f.Query != "" && !containsFold(s.Title, f.Query) && !containsFold(s.Description, f.Query) && !containsFold(s.Location, f.Query) {
		return false
	}
	if f.GroupID != "" && (s.GroupID == nil || *s.GroupID != f.GroupID) {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.From != nil && s.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && !s.StartTime.Before(*f.To) {
		return false
	}
	return true
}

func sortShifts(shifts []model.Shift, bucket string) {
	sort.Slice(shifts, func(i, j int) bool {
		if bucket == model.BucketPast {
			return shifts[i].StartTime.After(shifts[j].StartTime)
		}
		return shifts[i].StartTime.Before(shifts[j].StartTime)
	})
}

func (m *mockShiftRepo) List(_ context.Context, f repository.ShiftFilter) ([]model.Shift, int64, error) {
	var all []model.Shift
	for _, s := range m.st.shifts {
		if matchShift(s, f) {
			all = append(all, m.withGroup(s))
		}
	}
	sortShifts(all, f.Bucket)
	return paginate(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (m *mockShiftRepo) CompletePast(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range m.st.shifts {
		if (s.Status == model.ShiftOpen || s.Status == model.ShiftFull) && s.EndTime.Before(now) {
			s.Status = model.ShiftCompleted
			s.Version++
			n++
		}
	}
	return n, nil
}

// ── Mock SignupRepository ──

type mockSignupRepo struct{ st *mockStore }

func (m *mockSignupRepo) confirmed(shiftID, volunteerID string) *model.ShiftSignup {
	for _, su := range m.st.signups {
		if su.ShiftID == shiftID && su.VolunteerID == volunteerID && su.Status == model.SignupConfirmed {
			return su
		}
	}
	return nil
}

func (m *mockSignupRepo) Get(_ context.Context, shiftID, volunteerID string) (*model.ShiftSignup, error) {
	su := m.confirmed(shiftID, volunteerID)
	if su == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *su
	return &cp, nil
}

func (m *mockSignupRepo) ListByShift(_ context.Context, shiftID string) ([]model.ShiftSignup, error) {
	var result []model.ShiftSignup
	for _, su := range m.st.signups {
		if su.ShiftID == shiftID && su.Status == model.SignupConfirmed {
			cp := *su
			if u, ok := m.st.users[su.VolunteerID]; ok {
				uc := *u
				cp.Volunteer = &uc
			}
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockSignupRepo) ListByVolunteer(_ context.Context, volunteerID string, f repository.ShiftFilter) ([]model.ShiftSignup, int64, error) {
	shifts := &mockShiftRepo{m.st}
	var all []model.ShiftSignup
	for _, su := range m.st.signups {
		if su.VolunteerID != volunteerID || su.Status != model.SignupConfirmed {
			continue
		}
		s, ok := m.st.shifts[su.ShiftID]
		if !ok || !matchShift(s, f) {
			continue
		}
		cp := *su
		sc := shifts.withGroup(s)
		cp.Shift = &sc
		all = append(all, cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if f.Bucket == model.BucketPast {
			return all[i].Shift.StartTime.After(all[j].Shift.StartTime)
		}
		return all[i].Shift.StartTime.Before(all[j].Shift.StartTime)
	})
	return paginate(all, f.Offset, f.Limit), int64(len(all)), nil
}

func (m *mockSignupRepo) SignedUpShiftIDs(_ context.Context, volunteerID string, shiftIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	for _, id := range shiftIDs {
		if m.confirmed(id, volunteerID) != nil {
			result[id] = true
		}
	}
	return result, nil
}

func (m *mockSignupRepo) HasOverlap(_ context.Context, volunteerID string, start, end time.Time, excludeShiftID string) (bool, error) {
	for _, su := range m.st.signups {
		if su.VolunteerID != volunteerID || su.Status != model.SignupConfirmed || su.ShiftID == excludeShiftID {
			continue
		}
		if s, ok := m.st.shifts[su.ShiftID]; ok && s.Status != model.ShiftCancelled && s.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

// Create mirrors the conditional capacity update of the real repository.
func (m *mockSignupRepo) Create(_ context.Context, signup *model.ShiftSignup) error {
	s, ok := m.st.shifts[signup.ShiftID]
	if !ok || s.Status != model.ShiftOpen || s.CurrentVolunteers >= s.MaxVolunteers {
		return pkgerrors.ErrShiftFull
	}
	if m.confirmed(signup.ShiftID, signup.VolunteerID) != nil {
		return pkgerrors.ErrDuplicate
	}
	s.CurrentVolunteers++
	s.SyncCapacityStatus()
	s.Version++

	if signup.SignupID == "" {
		signup.SignupID = m.st.nextID("signup")
	}
	cp := *signup
	m.st.signups = append(m.st.signups, &cp)
	return nil
}

func (m *mockSignupRepo) Cancel(_ context.Context, shiftID, volunteerID, cancelledBy string, at time.Time) error {
	su := m.confirmed(shiftID, volunteerID)
	if su == nil {
		return gorm.ErrRecordNotFound
	}
	su.Status = model.SignupCancelled
	su.CancelledAt = &at
	su.CancelledBy = &cancelledBy

	if s, ok := m.st.shifts[shiftID]; ok {
		if s.CurrentVolunteers > 0 {
			s.CurrentVolunteers--
		}
		s.SyncCapacityStatus()
		s.Version++
	}
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct{ st *mockStore }

func memberKey(groupID, userID string) string { return groupID + "|" + userID }

func (m *mockGroupRepo) withCounts(g *model.Group) model.Group {
	cp := *g
	cp.MemberCount, cp.ShiftCount = 0, 0
	for _, gm := range m.st.members {
		if gm.GroupID == g.GroupID {
			cp.MemberCount++
		}
	}
	for _, s := range m.st.shifts {
		if s.GroupID != nil && *s.GroupID == g.GroupID {
			cp.ShiftCount++
		}
	}
	return cp
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	for _, g := range m.st.groups {
		if strings.EqualFold(g.Name, group.Name) {
			return pkgerrors.ErrDuplicate
		}
	}
	if group.GroupID == "" {
		group.GroupID = m.st.nextID("group")
	}
	group.Version = 1
	cp := *group
	m.st.groups[group.GroupID] = &cp
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	g, ok := m.st.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withCounts(g)
	return &cp, nil
}

func (m *mockGroupRepo) GetByName(_ context.Context, name string) (*model.Group, error) {
	for _, g := range m.st.groups {
		if strings.EqualFold(g.Name, name) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Group, int64, error) {
	var all []model.Group
	for _, g := range m.st.groups {
		if keyword == "" || containsFold(g.Name, keyword) {
			all = append(all, m.withCounts(g))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	stored, ok := m.st.groups[group.GroupID]
	if !ok || stored.Version != group.Version {
		return pkgerrors.ErrOptimisticLock
	}
	group.Version++
	cp := *group
	m.st.groups[group.GroupID] = &cp
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.st.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.groups, id)
	for _, s := range m.st.shifts {
		if s.GroupID != nil && *s.GroupID == id {
			s.GroupID = nil
		}
	}
	for k, gm := range m.st.members {
		if gm.GroupID == id {
			delete(m.st.members, k)
		}
	}
	return nil
}

func (m *mockGroupRepo) AddMember(_ context.Context, member *model.GroupMember) error {
	key := memberKey(member.GroupID, member.UserID)
	if _, ok := m.st.members[key]; ok {
		return pkgerrors.ErrDuplicate
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	cp := *member
	m.st.members[key] = &cp
	return nil
}

func (m *mockGroupRepo) GetMember(_ context.Context, groupID, userID string) (*model.GroupMember, error) {
	gm, ok := m.st.members[memberKey(groupID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *gm
	return &cp, nil
}

func (m *mockGroupRepo) ListMembers(_ context.Context, groupID string) ([]model.GroupMember, error) {
	var result []model.GroupMember
	for _, gm := range m.st.members {
		if gm.GroupID != groupID {
			continue
		}
		cp := *gm
		if u, ok := m.st.users[gm.UserID]; ok {
			uc := *u
			cp.User = &uc
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

func (m *mockGroupRepo) ListByUser(_ context.Context, userID string) ([]model.GroupMember, error) {
	var result []model.GroupMember
	for _, gm := range m.st.members {
		if gm.UserID == userID {
			result = append(result, *gm)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) UpdateMemberRole(_ context.Context, groupID, userID, role string) error {
	gm, ok := m.st.members[memberKey(groupID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	gm.Role = role
	return nil
}

func (m *mockGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	key := memberKey(groupID, userID)
	if _, ok := m.st.members[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.st.members, key)
	return nil
}

// ── Mock CheckInRepository ──

type mockCheckInRepo struct{ st *mockStore }

func (m *mockCheckInRepo) Create(_ context.Context, checkIn *model.CheckIn) error {
	for _, c := range m.st.checkIns {
		if c.ShiftID == checkIn.ShiftID && c.VolunteerID == checkIn.VolunteerID {
			return pkgerrors.ErrDuplicate
		}
	}
	if checkIn.CheckInID == "" {
		checkIn.CheckInID = m.st.nextID("checkin")
	}
	cp := *checkIn
	cp.Shift, cp.Volunteer = nil, nil
	m.st.checkIns[checkIn.CheckInID] = &cp
	return nil
}

func (m *mockCheckInRepo) GetByID(_ context.Context, id string) (*model.CheckIn, error) {
	c, ok := m.st.checkIns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCheckInRepo) GetByShiftAndVolunteer(_ context.Context, shiftID, volunteerID string) (*model.CheckIn, error) {
	for _, c := range m.st.checkIns {
		if c.ShiftID == shiftID && c.VolunteerID == volunteerID {
			cp := *c
			if s, ok := m.st.shifts[shiftID]; ok {
				sc := *s
				cp.Shift = &sc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCheckInRepo) Update(_ context.Context, checkIn *model.CheckIn) error {
	if _, ok := m.st.checkIns[checkIn.CheckInID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *checkIn
	cp.Shift, cp.Volunteer = nil, nil
	m.st.checkIns[checkIn.CheckInID] = &cp
	return nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

func (m *mockCheckInRepo) ListByVolunteer(_ context.Context, volunteerID string, from, to *time.Time, offset, limit int) ([]model.CheckIn, int64, error) {
	var all []model.CheckIn
	for _, c := range m.st.checkIns {
		if c.VolunteerID == volunteerID && inRange(c.CheckInTime, from, to) {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckInTime.After(all[j].CheckInTime) })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockCheckInRepo) ListByShift(_ context.Context, shiftID string) ([]model.CheckIn, error) {
	var result []model.CheckIn
	for _, c := range m.st.checkIns {
		if c.ShiftID != shiftID {
			continue
		}
		cp := *c
		if u, ok := m.st.users[c.VolunteerID]; ok {
			uc := *u
			cp.Volunteer = &uc
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CheckInTime.Before(result[j].CheckInTime) })
	return result, nil
}

func (m *mockCheckInRepo) SummarizeVolunteer(_ context.Context, volunteerID string, from, to *time.Time) (int64, int64, error) {
	var minutes, shifts int64
	for _, c := range m.st.checkIns {
		if c.VolunteerID != volunteerID || c.DurationMinutes == nil || !inRange(c.CheckInTime, from, to) {
			continue
		}
		minutes += int64(*c.DurationMinutes)
		shifts++
	}
	return minutes, shifts, nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct{ st *mockStore }

func (m *mockReportRepo) CountActiveVolunteers(_ context.Context) (int64, error) {
	var n int64
	for _, u := range m.st.users {
		if u.IsActive && (u.Role == model.RoleVolunteer || u.Role == model.RoleGroupAdmin) {
			n++
		}
	}
	return n, nil
}

func (m *mockReportRepo) CountPendingApplications(_ context.Context) (int64, error) {
	var n int64
	for _, a := range m.st.apps {
		if a.Status == model.ApplicationPending {
			n++
		}
	}
	return n, nil
}

func (m *mockReportRepo) countBucket(bucket string, now time.Time) int64 {
	var n int64
	for _, s := range m.st.shifts {
		if s.InBucket(bucket, now) {
			n++
		}
	}
	return n
}

func (m *mockReportRepo) CountUpcomingShifts(_ context.Context, now time.Time) (int64, error) {
	return m.countBucket(model.BucketUpcoming, now), nil
}

func (m *mockReportRepo) CountVacantShifts(_ context.Context, now time.Time) (int64, error) {
	return m.countBucket(model.BucketVacant, now), nil
}

func (m *mockReportRepo) SumMinutes(_ context.Context, from, to time.Time) (int64, error) {
	var minutes int64
	for _, c := range m.st.checkIns {
		if c.DurationMinutes != nil && inRange(c.CheckInTime, &from, &to) {
			minutes += int64(*c.DurationMinutes)
		}
	}
	return minutes, nil
}

func (m *mockReportRepo) VolunteerHours(_ context.Context, from, to time.Time, groupID string) ([]repository.VolunteerHoursRow, error) {
	rows := make(map[string]*repository.VolunteerHoursRow)
	for _, c := range m.st.checkIns {
		if c.DurationMinutes == nil || !inRange(c.CheckInTime, &from, &to) {
			continue
		}
		if groupID != "" {
			s, ok := m.st.shifts[c.ShiftID]
			if !ok || s.GroupID == nil || *s.GroupID != groupID {
				continue
			}
		}
		u, ok := m.st.users[c.VolunteerID]
		if !ok {
			continue
		}
		row, ok := rows[u.UserID]
		if !ok {
			row = &repository.VolunteerHoursRow{VolunteerID: u.UserID, Name: u.Name, Email: u.Email}
			rows[u.UserID] = row
		}
		row.TotalMinutes += int64(*c.DurationMinutes)
		row.ShiftsWorked++
	}

	result := make([]repository.VolunteerHoursRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalMinutes != result[j].TotalMinutes {
			return result[i].TotalMinutes > result[j].TotalMinutes
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockReportRepo) GroupHours(_ context.Context, from, to time.Time) ([]repository.GroupHoursRow, error) {
	groups := &mockGroupRepo{m.st}
	var result []repository.GroupHoursRow
	for _, g := range m.st.groups {
		withCounts := groups.withCounts(g)
		row := repository.GroupHoursRow{GroupID: g.GroupID, Name: g.Name, MemberCount: withCounts.MemberCount}
		for _, c := range m.st.checkIns {
			if _, member := m.st.members[memberKey(g.GroupID, c.VolunteerID)]; !member {
				continue
			}
			if c.DurationMinutes != nil && inRange(c.CheckInTime, &from, &to) {
				row.TotalMinutes += int64(*c.DurationMinutes)
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalMinutes != result[j].TotalMinutes {
			return result[i].TotalMinutes > result[j].TotalMinutes
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockReportRepo) ShiftFill(_ context.Context, from, to time.Time, groupID string) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.st.shifts {
		if s.Status == model.ShiftCancelled {
			continue
		}
		if !matchShift(s, repository.ShiftFilter{From: &from, To: &to, GroupID: groupID}) {
			continue
		}
		result = append(result, *s)
	}
	sortShifts(result, "")
	return result, nil
}

// ── fixtures ──

// seedUser stores a user directly; password hashing is skipped unless the
// test sets PasswordHash itself.
func (s *mockStore) seedUser(id, name, role string) *model.User {
	u := &model.User{
		UserID:   id,
		Name:     name,
		Email:    strings.ToLower(id) + "@example.org",
		Role:     role,
		IsActive: true,
	}
	u.Version = 1
	s.users[id] = u
	return u
}

func (s *mockStore) seedGroup(id, name string) *model.Group {
	g := &model.Group{GroupID: id, Name: name}
	g.Version = 1
	s.groups[id] = g
	return g
}

func (s *mockStore) seedMember(groupID, userID, role string) {
	s.members[memberKey(groupID, userID)] = &model.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *mockStore) seedShift(id string, start time.Time, length time.Duration, max int) *model.Shift {
	sh := &model.Shift{
		ShiftID:       id,
		Title:         "Shift " + id,
		StartTime:     start,
		EndTime:       start.Add(length),
		MaxVolunteers: max,
		Status:        model.ShiftOpen,
	}
	sh.Version = 1
	s.shifts[id] = sh
	return sh
}
