package staff

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prisonrp/ruleswiki/internal/audit"
	"github.com/prisonrp/ruleswiki/internal/db"
	"github.com/prisonrp/ruleswiki/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(&models.StaffUser{}, &models.ActivityLog{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	repo := db.NewRepository(gdb)
	return NewService(db.NewStaffUserRepository(repo), audit.NewRecorder(db.NewActivityLogRepository(repo)))
}

func seedUser(t *testing.T, svc *Service, level string, steamID string) *models.StaffUser {
	t.Helper()
	owner := &models.StaffUser{ID: 999, Username: "bootstrap", PermissionLevel: "owner", IsActive: true}
	user, err := svc.Create(context.Background(), Input{
		Username:        level + "-user",
		PermissionLevel: level,
		SteamID:         steamID,
	}, owner)
	if err != nil {
		t.Fatalf("seed %s user: %v", level, err)
	}
	return user
}

func TestCreateIdentityValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := &models.StaffUser{ID: 999, Username: "bootstrap", PermissionLevel: "owner", IsActive: true}

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{"no identity", Input{Username: "ghost", PermissionLevel: "editor"}, ErrIdentityRequired},
		{"short steam id", Input{Username: "x", PermissionLevel: "editor", SteamID: "123"}, ErrInvalidSteamID},
		{"non-numeric steam id", Input{Username: "x", PermissionLevel: "editor", SteamID: "7656119800000000a"}, ErrInvalidSteamID},
		{"discord only is fine", Input{Username: "x", PermissionLevel: "editor", DiscordID: "user#1234"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in, owner)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("create: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuplicateIdentityRefused(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := &models.StaffUser{ID: 999, Username: "bootstrap", PermissionLevel: "owner", IsActive: true}

	seedUser(t, svc, "editor", "76561198000000001")

	_, err := svc.Create(ctx, Input{Username: "clone", PermissionLevel: "editor", SteamID: "76561198000000001"}, owner)
	if !errors.Is(err, ErrIdentityTaken) {
		t.Fatalf("duplicate steam id: err = %v, want ErrIdentityTaken", err)
	}
}

func TestCreatePermissionChecks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, svc, "admin", "76561198000000002")
	moderator := seedUser(t, svc, "moderator", "76561198000000003")

	// Admin may create moderators but not other admins.
	if _, err := svc.Create(ctx, Input{Username: "new-mod", PermissionLevel: "moderator", SteamID: "76561198000000004"}, admin); err != nil {
		t.Fatalf("admin creating moderator: %v", err)
	}
	if _, err := svc.Create(ctx, Input{Username: "new-admin", PermissionLevel: "admin", SteamID: "76561198000000005"}, admin); !errors.Is(err, ErrCannotManage) {
		t.Fatalf("admin creating admin: err = %v, want ErrCannotManage", err)
	}

	// Moderators cannot manage anyone.
	if _, err := svc.Create(ctx, Input{Username: "nope", PermissionLevel: "editor", SteamID: "76561198000000006"}, moderator); !errors.Is(err, ErrCannotManage) {
		t.Fatalf("moderator creating editor: err = %v, want ErrCannotManage", err)
	}
}

func TestUpdatePromotionChecks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	admin := seedUser(t, svc, "admin", "76561198000000002")
	editor := seedUser(t, svc, "editor", "76561198000000007")

	// Admin may promote an editor to moderator, but not to admin.
	if _, err := svc.Update(ctx, editor.ID, Input{PermissionLevel: "moderator"}, admin); err != nil {
		t.Fatalf("promote to moderator: %v", err)
	}
	if _, err := svc.Update(ctx, editor.ID, Input{PermissionLevel: "admin"}, admin); !errors.Is(err, ErrCannotManage) {
		t.Fatalf("promote to admin: err = %v, want ErrCannotManage", err)
	}
}

func TestSelfDeactivationRefused(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	owner := seedUser(t, svc, "owner", "76561198000000008")

	if err := svc.Deactivate(ctx, owner.ID, owner); !errors.Is(err, ErrSelfDeactivation) {
		t.Fatalf("self deactivation: err = %v, want ErrSelfDeactivation", err)
	}

	// The is_active flag path is refused too.
	inactive := false
	if _, err := svc.Update(ctx, owner.ID, Input{IsActive: &inactive}, owner); !errors.Is(err, ErrSelfDeactivation) {
		t.Fatalf("self deactivation via update: err = %v, want ErrSelfDeactivation", err)
	}
}

func TestDeactivate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	owner := seedUser(t, svc, "owner", "76561198000000008")
	admin := seedUser(t, svc, "admin", "76561198000000002")
	moderator := seedUser(t, svc, "moderator", "76561198000000003")

	// Admin cannot deactivate another admin or the owner.
	other, err := svc.Create(ctx, Input{Username: "other-admin", PermissionLevel: "admin", SteamID: "76561198000000009"}, owner)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if err := svc.Deactivate(ctx, other.ID, admin); !errors.Is(err, ErrCannotManage) {
		t.Fatalf("admin deactivating admin: err = %v, want ErrCannotManage", err)
	}
	if err := svc.Deactivate(ctx, owner.ID, admin); !errors.Is(err, ErrCannotManage) {
		t.Fatalf("admin deactivating owner: err = %v, want ErrCannotManage", err)
	}

	if err := svc.Deactivate(ctx, moderator.ID, admin); err != nil {
		t.Fatalf("admin deactivating moderator: %v", err)
	}
	got, err := svc.Get(ctx, moderator.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsActive {
		t.Error("moderator still active after deactivation")
	}
}
