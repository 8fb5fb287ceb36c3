package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"volunteerhub/internal/dto"
	"volunteerhub/internal/model"
)

// ── test helpers ──

func setupTestUserService() (UserService, *mockStore) {
	repo, st := newMockRepository()
	return NewUserService(repo, zap.NewNop()), st
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

// ── CreateUser ──

func TestUserService_CreateUser(t *testing.T) {
	svc, st := setupTestUserService()

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:  "Sam Okafor",
		Email: "Sam@Example.org",
		Role:  model.RoleVolunteer,
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if resp.TempPassword == "" {
		t.Fatal("expected a temp password")
	}
	if !isStrongPassword(resp.TempPassword) {
		t.Errorf("temp password %q should satisfy the password policy", resp.TempPassword)
	}

	stored := st.users[resp.User.ID]
	if stored.Email != "sam@example.org" {
		t.Errorf("email not normalized: %s", stored.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("stored hash does not match temp password")
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "Existing", model.RoleVolunteer)

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name: "Dup", Email: "vol-1@example.org", Role: model.RoleVolunteer,
	}, "admin-1")
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

// ── GetByID / List ──

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	if _, err := svc.GetByID(context.Background(), "nonexistent"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_List_Filters(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("alice", "Alice", model.RoleVolunteer)
	st.seedUser("bob", "Bob", model.RoleVolunteer).IsActive = false
	st.seedUser("carol", "Carol", model.RolePending)

	users, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleVolunteer, Active: boolPtr(true)})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].ID != "alice" {
		t.Errorf("expected only alice, got total=%d users=%+v", total, users)
	}

	_, total, _ = svc.List(context.Background(), &dto.UserListRequest{Keyword: "car"})
	if total != 1 {
		t.Errorf("keyword search expected 1 result, got %d", total)
	}
}

// ── Update ──

func TestUserService_Update_Self(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "Old Name", model.RoleVolunteer)

	resp, err := svc.Update(context.Background(), "vol-1", &dto.UpdateUserRequest{
		Name:  strPtr("New Name"),
		Phone: strPtr(" 555-0100 "),
	}, "vol-1", model.RoleVolunteer)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if resp.Name != "New Name" || resp.Phone != "555-0100" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if st.users["vol-1"].Version != 2 {
		t.Errorf("expected version bump, got %d", st.users["vol-1"].Version)
	}
}

func TestUserService_Update_OtherUserForbidden(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RoleVolunteer)

	_, err := svc.Update(context.Background(), "vol-1", &dto.UpdateUserRequest{Name: strPtr("Hijack")}, "vol-2", model.RoleVolunteer)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("expected ErrNoPermission, got %v", err)
	}
}

func TestUserService_Update_EmailTaken(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RoleVolunteer)
	st.seedUser("vol-2", "Two", model.RoleVolunteer)

	_, err := svc.Update(context.Background(), "vol-1", &dto.UpdateUserRequest{Email: strPtr("VOL-2@example.org")}, "admin", model.RoleAdmin)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

// ── SetActive / AssignRole / Delete ──

func TestUserService_SetActive(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RoleVolunteer)

	resp, err := svc.SetActive(context.Background(), "vol-1", &dto.SetActiveRequest{Active: boolPtr(false)}, "admin")
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if resp.IsActive || st.users["vol-1"].IsActive {
		t.Error("user should be inactive")
	}

	if _, err := svc.SetActive(context.Background(), "admin", &dto.SetActiveRequest{Active: boolPtr(false)}, "admin"); !errors.Is(err, ErrUserSelfDeactivate) {
		t.Errorf("expected ErrUserSelfDeactivate, got %v", err)
	}
}

func TestUserService_AssignRole(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RolePending)
	ctx := context.Background()

	if err := svc.AssignRole(ctx, "vol-1", &dto.AssignRoleRequest{Role: model.RoleVolunteer}, "admin"); err != nil {
		t.Fatalf("AssignRole failed: %v", err)
	}
	if st.users["vol-1"].Role != model.RoleVolunteer {
		t.Errorf("expected VOLUNTEER, got %s", st.users["vol-1"].Role)
	}

	if err := svc.AssignRole(ctx, "admin", &dto.AssignRoleRequest{Role: model.RoleVolunteer}, "admin"); !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("expected ErrUserSelfRoleChange, got %v", err)
	}
	if err := svc.AssignRole(ctx, "vol-1", &dto.AssignRoleRequest{Role: "OWNER"}, "admin"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RoleVolunteer)
	ctx := context.Background()

	if err := svc.Delete(ctx, "admin", "admin"); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("expected ErrUserSelfDelete, got %v", err)
	}
	if err := svc.Delete(ctx, "vol-1", "admin"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, "vol-1", "admin"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete expected ErrUserNotFound, got %v", err)
	}
}

// ── ResetPassword ──

func TestUserService_ResetPassword(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("vol-1", "One", model.RoleVolunteer)

	resp, err := svc.ResetPassword(context.Background(), "vol-1", "admin")
	if err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	hash := st.users["vol-1"].PasswordHash
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(resp.TempPassword)) != nil {
		t.Error("stored hash does not match the new temp password")
	}
}

// ── Import ──

func buildImportFile(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cellName, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("Sheet1", cellName, v)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf
}

func TestUserService_ParseImportFile(t *testing.T) {
	svc, _ := setupTestUserService()

	buf := buildImportFile(t, [][]string{
		{"Email", "Full Name", "Phone"},
		{"ana@example.org", "Ana Silva", "555-0101"},
		{"", "", ""},
		{"ben@example.org", "Ben Cho", ""},
	})

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Ana Silva" || rows[0].Email != "ana@example.org" || rows[0].Phone != "555-0101" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Row != 4 {
		t.Errorf("row numbers should match the sheet, got %d", rows[1].Row)
	}
}

func TestUserService_ParseImportFile_BadHeader(t *testing.T) {
	svc, _ := setupTestUserService()

	buf := buildImportFile(t, [][]string{
		{"Nickname", "Phone"},
		{"ana", "555"},
	})
	if _, err := svc.ParseImportFile(buf); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("expected ErrImportBadHeader, got %v", err)
	}
}

func TestUserService_ImportUsers(t *testing.T) {
	svc, st := setupTestUserService()
	st.seedUser("taken", "Taken", model.RoleVolunteer)

	resp, err := svc.ImportUsers(context.Background(), []ImportUserRow{
		{Row: 2, Name: "Ana", Email: "ana@example.org"},
		{Row: 3, Name: "Ana Again", Email: "ANA@example.org"},
		{Row: 4, Name: "Taken", Email: "taken@example.org"},
		{Row: 5, Name: "Broken", Email: "not-an-email"},
		{Row: 6, Name: "", Email: "noname@example.org"},
	}, "admin")
	if err != nil {
		t.Fatalf("ImportUsers failed: %v", err)
	}

	if resp.Total != 5 || resp.Success != 1 || resp.Failed != 4 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if len(resp.Created) != 1 || resp.Created[0].Email != "ana@example.org" || resp.Created[0].TempPassword == "" {
		t.Errorf("unexpected created list: %+v", resp.Created)
	}

	imported, err := (&mockUserRepo{st}).GetByEmail(context.Background(), "ana@example.org")
	if err != nil {
		t.Fatalf("imported user not stored: %v", err)
	}
	if imported.Role != model.RoleVolunteer {
		t.Errorf("imported users should be volunteers, got %s", imported.Role)
	}
}

func TestUserService_ImportUsers_AllInvalid(t *testing.T) {
	svc, st := setupTestUserService()

	resp, err := svc.ImportUsers(context.Background(), []ImportUserRow{
		{Row: 2, Name: "Broken", Email: "nope"},
	}, "admin")
	if err != nil {
		t.Fatalf("ImportUsers failed: %v", err)
	}
	if resp.Success != 0 || resp.Failed != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if len(st.users) != 0 {
		t.Errorf("nothing should be written, got %d users", len(st.users))
	}
}
