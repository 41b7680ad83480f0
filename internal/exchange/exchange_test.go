package exchange

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/swapmeet/internal/db"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/listing"
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

// createItem registers an available item owned by ownerID.
func createItem(t *testing.T, gdb *gorm.DB, ownerID string) models.Target {
	t.Helper()
	item, err := listing.CreateItem(gdb, listing.CreateOpts{OwnerID: ownerID, Title: "Camping tent"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return models.ItemTarget(item.ID)
}

func validOpts(requester string, target models.Target) CreateOpts {
	return CreateOpts{
		RequesterID: requester,
		Target:      target,
		Proposal:    "My bicycle for your tent",
		Note:        "Hi, is the tent still in good shape?",
		ProposedAt:  time.Now().Add(48 * time.Hour),
	}
}

func createPending(t *testing.T, gdb *gorm.DB) (*models.ExchangeRequest, models.Target) {
	t.Helper()
	target := createItem(t, gdb, "bob")
	req, err := Create(gdb, validOpts("alice", target))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return req, target
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want kind %v", err, kind)
	}
}

func statusOf(t *testing.T, gdb *gorm.DB, id string) string {
	t.Helper()
	r, err := Get(gdb, id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return r.Status
}

func available(t *testing.T, gdb *gorm.DB, target models.Target) bool {
	t.Helper()
	l, err := listing.Find(gdb, target)
	if err != nil {
		t.Fatalf("listing.Find: %v", err)
	}
	return l.Available
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	gdb := openTestDB(t)
	req, target := createPending(t, gdb)

	if req.ID == "" || len(req.ID) != 26 {
		t.Errorf("ID = %q, want 26-char ULID", req.ID)
	}
	if req.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", req.Status)
	}
	if req.OwnerID != "bob" {
		t.Errorf("OwnerID = %q, want bob", req.OwnerID)
	}
	if req.Target() != target {
		t.Errorf("Target = %v, want %v", req.Target(), target)
	}
	if req.UpdatedAt.Before(req.CreatedAt) {
		t.Error("UpdatedAt before CreatedAt")
	}
	if !available(t, gdb, target) {
		t.Error("creating a request must not lock the listing")
	}
}

func TestCreate_SkillTarget(t *testing.T) {
	gdb := openTestDB(t)
	skill, err := listing.CreateSkill(gdb, listing.CreateOpts{OwnerID: "bob", Title: "Plumbing"})
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	req, err := Create(gdb, validOpts("alice", models.SkillTarget(skill.ID)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.TargetKind != models.TargetSkill {
		t.Errorf("TargetKind = %q, want skill", req.TargetKind)
	}
}

func TestCreate_Validation(t *testing.T) {
	target := models.ItemTarget("item-1")
	tests := []struct {
		name   string
		mutate func(o *CreateOpts)
		want   string
	}{
		{"missing requester", func(o *CreateOpts) { o.RequesterID = "" }, "requester is required"},
		{"no target", func(o *CreateOpts) { o.Target = models.Target{} }, "invalid target"},
		{"target without id", func(o *CreateOpts) { o.Target = models.SkillTarget("") }, "invalid target"},
		{"blank proposal", func(o *CreateOpts) { o.Proposal = "   " }, "proposal is required"},
		{"long proposal", func(o *CreateOpts) { o.Proposal = strings.Repeat("x", MaxProposalLen+1) }, "proposal exceeds"},
		{"blank message", func(o *CreateOpts) { o.Note = "\t" }, "message is required"},
		{"long message", func(o *CreateOpts) { o.Note = strings.Repeat("x", MaxNoteLen+1) }, "message exceeds"},
		{"missing date", func(o *CreateOpts) { o.ProposedAt = time.Time{} }, "proposed date is required"},
		{"past date", func(o *CreateOpts) { o.ProposedAt = time.Now().Add(-time.Hour) }, "not in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOpts("alice", target)
			tt.mutate(&opts)
			_, err := Create(nil, opts)
			assertKind(t, err, fault.ErrValidation)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestCreate_TargetNotFound(t *testing.T) {
	gdb := openTestDB(t)
	_, err := Create(gdb, validOpts("alice", models.ItemTarget("missing")))
	assertKind(t, err, fault.ErrNotFound)
}

func TestCreate_SelfTargeted(t *testing.T) {
	gdb := openTestDB(t)
	target := createItem(t, gdb, "alice")
	_, err := Create(gdb, validOpts("alice", target))
	assertKind(t, err, fault.ErrInvalidRequest)
}

func TestCreate_TargetUnavailable(t *testing.T) {
	gdb := openTestDB(t)
	target := createItem(t, gdb, "bob")
	if err := listing.SetAvailable(gdb, target, false); err != nil {
		t.Fatalf("SetAvailable: %v", err)
	}
	_, err := Create(gdb, validOpts("alice", target))
	assertKind(t, err, fault.ErrInvalidRequest)

	var n int64
	gdb.Model(&models.ExchangeRequest{}).Count(&n)
	if n != 0 {
		t.Errorf("request count = %d, want 0", n)
	}
}

// --- Accept ---

func TestAccept_Success(t *testing.T) {
	gdb := openTestDB(t)
	req, target := createPending(t, gdb)

	got, err := Accept(gdb, req.ID, "bob")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Status != models.StatusAccepted {
		t.Errorf("Status = %q, want accepted", got.Status)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("UpdatedAt before CreatedAt")
	}
	if statusOf(t, gdb, req.ID) != models.StatusAccepted {
		t.Error("accepted status not persisted")
	}
	if available(t, gdb, target) {
		t.Error("listing should be unavailable after accept")
	}
}

func TestAccept_NotOwner(t *testing.T) {
	gdb := openTestDB(t)
	req, target := createPending(t, gdb)

	for _, actor := range []string{"alice", "mallory"} {
		_, err := Accept(gdb, req.ID, actor)
		assertKind(t, err, fault.ErrUnauthorized)
	}
	if statusOf(t, gdb, req.ID) != models.StatusPending {
		t.Error("status changed after unauthorized accept")
	}
	if !available(t, gdb, target) {
		t.Error("listing locked after unauthorized accept")
	}
}

func TestAccept_Twice(t *testing.T) {
	gdb := openTestDB(t)
	req, _ := createPending(t, gdb)

	if _, err := Accept(gdb, req.ID, "bob"); err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	_, err := Accept(gdb, req.ID, "bob")
	assertKind(t, err, fault.ErrInvalidTransition)
}

func TestAccept_NotFound(t *testing.T) {
	gdb := openTestDB(t)
	_, err := Accept(gdb, "01HZZZZZZZZZZZZZZZZZZZZZZZ", "bob")
	assertKind(t, err, fault.ErrNotFound)
}

func TestAccept_Anonymous(t *testing.T) {
	gdb := openTestDB(t)
	req, _ := createPending(t, gdb)
	_, err := Accept(gdb, req.ID, "")
	assertKind(t, err, fault.ErrUnauthorized)
}

func TestAccept_ListingAlreadyTaken(t *testing.T) {
	gdb := openTestDB(t)
	target := createItem(t, gdb, "bob")
	first, err := Create(gdb, validOpts("alice", target))
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := Create(gdb, validOpts("carol", target))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if _, err := Accept(gdb, first.ID, "bob"); err != nil {
		t.Fatalf("Accept first: %v", err)
	}
	_, err = Accept(gdb, second.ID, "bob")
	assertKind(t, err, fault.ErrInvalidState)

	// The failed accept rolls back its status write.
	if statusOf(t, gdb, second.ID) != models.StatusPending {
		t.Error("second request should still be pending")
	}
}

func TestAccept_ConcurrentRace(t *testing.T) {
	gdb := openTestDB(t)
	req, target := createPending(t, gdb)

	const racers = 8
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Accept(gdb, req.ID, "bob")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, lost int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, fault.ErrInvalidTransition):
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || lost != racers-1 {
		t.Errorf("ok=%d lost=%d, want 1/%d", ok, lost, racers-1)
	}
	if available(t, gdb, target) {
		t.Error("listing should be unavailable")
	}
}

// --- Refuse ---

func TestRefuse_Success(t *testing.T) {
	gdb := openTestDB(t)
	req, target := createPending(t, gdb)

	got, err := Refuse(gdb, req.ID, "bob")
	if err != nil {
		t.Fatalf("Refuse: %v", err)
	}
	if got.Status != models.StatusRefused {
		t.Errorf("Status = %q, want refused", got.Status)
	}
	if !available(t, gdb, target) {
		t.Error("refusing must not touch availability")
	}
}

func TestRefuse_ByRequester(t *testing.T) {
	gdb := openTestDB(t)
	req, _ := createPending(t, gdb)
	_, err := Refuse(gdb, req.ID, "alice")
	assertKind(t, err, fault.ErrUnauthorized)
}

// --- Cancel ---

func TestCancel_Success(t *testing.T) {
	gdb := openTestDB(t)
	req, _ := createPending(t, gdb)

	got, err := Cancel(gdb, req.ID, "alice")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("Status = %q, want cancelled", got.Status)
	}
}

func TestCancel_ByOwner(t *testing.T) {
	gdb := openTestDB(t)
	req, _ := createPending(t, gdb)
	_, err := Cancel(gdb, req.ID, "bob")
	assertKind(t, err, fault.ErrUnauthorized)
}

// --- State machine ---

func TestStateMachine_NoEdgesOutOfTerminalOrAccepted(t *testing.T) {
	type action struct {
		name  string
		actor string
		fn    func(*gorm.DB, string, string) (*models.ExchangeRequest, error)
	}
	accept := action{"accept", "bob", Accept}
	refuse := action{"refuse", "bob", Refuse}
	cancel := action{"cancel", "alice", Cancel}

	tests := []struct {
		name  string
		setup action
	}{
		{"from accepted", accept},
		{"from refused", refuse},
		{"from cancelled", cancel},
	}
	for _, tt := range tests {
		for _, next := range []action{accept, refuse, cancel} {
			t.Run(tt.name+" then "+next.name, func(t *testing.T) {
				gdb := openTestDB(t)
				req, _ := createPending(t, gdb)
				if _, err := tt.setup.fn(gdb, req.ID, tt.setup.actor); err != nil {
					t.Fatalf("%s: %v", tt.setup.name, err)
				}
				before := statusOf(t, gdb, req.ID)
				_, err := next.fn(gdb, req.ID, next.actor)
				assertKind(t, err, fault.ErrInvalidTransition)
				if after := statusOf(t, gdb, req.ID); after != before {
					t.Errorf("status changed from %s to %s", before, after)
				}
			})
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.StatusPending, models.StatusAccepted, true},
		{models.StatusPending, models.StatusRefused, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusCompleted, false},
		{models.StatusAccepted, models.StatusCompleted, true},
		{models.StatusAccepted, models.StatusPending, false},
		{models.StatusAccepted, models.StatusCancelled, false},
		{models.StatusRefused, models.StatusAccepted, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusCompleted, models.StatusAccepted, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransition_MissingID(t *testing.T) {
	_, err := Accept(nil, "", "bob")
	assertKind(t, err, fault.ErrValidation)
}
