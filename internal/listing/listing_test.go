package listing

import (
	"errors"
	"testing"

	"github.com/zulandar/swapmeet/internal/db"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

func TestCreateItem_AndFind(t *testing.T) {
	gdb := openTestDB(t)

	item, err := CreateItem(gdb, CreateOpts{OwnerID: "bob", Title: "  Tent  ", Category: "camping"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == "" {
		t.Fatal("expected generated id")
	}

	l, err := Find(gdb, models.ItemTarget(item.ID))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if l.OwnerID != "bob" {
		t.Errorf("OwnerID = %q, want bob", l.OwnerID)
	}
	if l.Title != "Tent" {
		t.Errorf("Title = %q, want Tent", l.Title)
	}
	if !l.Available {
		t.Error("new item should be available")
	}
}

func TestCreateSkill_AndFind(t *testing.T) {
	gdb := openTestDB(t)

	skill, err := CreateSkill(gdb, CreateOpts{OwnerID: "alice", Title: "Bread baking", Level: "expert"})
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	l, err := Find(gdb, models.SkillTarget(skill.ID))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if l.OwnerID != "alice" || !l.Available {
		t.Errorf("listing = %+v", l)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts CreateOpts
	}{
		{"missing owner", CreateOpts{Title: "Tent"}},
		{"blank title", CreateOpts{OwnerID: "bob", Title: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateItem(nil, tt.opts); !errors.Is(err, fault.ErrValidation) {
				t.Errorf("CreateItem err = %v, want validation", err)
			}
			if _, err := CreateSkill(nil, tt.opts); !errors.Is(err, fault.ErrValidation) {
				t.Errorf("CreateSkill err = %v, want validation", err)
			}
		})
	}
}

func TestFind_NotFound(t *testing.T) {
	gdb := openTestDB(t)

	_, err := Find(gdb, models.ItemTarget("missing"))
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("item err = %v, want not found", err)
	}
	_, err = Find(gdb, models.SkillTarget("missing"))
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("skill err = %v, want not found", err)
	}
}

func TestFind_InvalidTarget(t *testing.T) {
	_, err := Find(nil, models.Target{Kind: "boat", ID: "x"})
	if !errors.Is(err, fault.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
	_, err = Find(nil, models.ItemTarget(""))
	if !errors.Is(err, fault.ErrValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestSetAvailable(t *testing.T) {
	gdb := openTestDB(t)
	item, _ := CreateItem(gdb, CreateOpts{OwnerID: "bob", Title: "Tent"})
	target := models.ItemTarget(item.ID)

	if err := SetAvailable(gdb, target, false); err != nil {
		t.Fatalf("SetAvailable(false): %v", err)
	}
	l, _ := Find(gdb, target)
	if l.Available {
		t.Error("expected unavailable")
	}

	if err := SetAvailable(gdb, target, true); err != nil {
		t.Fatalf("SetAvailable(true): %v", err)
	}
	l, _ = Find(gdb, target)
	if !l.Available {
		t.Error("expected available")
	}
}

func TestSetAvailable_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	err := SetAvailable(gdb, models.SkillTarget("missing"), false)
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestMarkUnavailable_OnlyOnce(t *testing.T) {
	gdb := openTestDB(t)
	skill, _ := CreateSkill(gdb, CreateOpts{OwnerID: "alice", Title: "Bread baking"})
	target := models.SkillTarget(skill.ID)

	if err := MarkUnavailable(gdb, target); err != nil {
		t.Fatalf("first MarkUnavailable: %v", err)
	}
	if err := MarkUnavailable(gdb, target); !errors.Is(err, ErrUnavailable) {
		t.Errorf("second MarkUnavailable err = %v, want ErrUnavailable", err)
	}
}

func TestMarkUnavailable_UnknownKind(t *testing.T) {
	if err := MarkUnavailable(nil, models.Target{Kind: "boat", ID: "x"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
