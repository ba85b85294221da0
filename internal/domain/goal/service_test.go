package goal

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/validation"
	"github.com/matiasleandrokruk/groundedgrowth/internal/infra/sqlite"
)

func TestService_CreateAndGet(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	ctx := context.Background()

	desc := "  tres veces por semana "
	g, err := svc.Create(ctx, userID, CreateInput{Title: "  Hacer ejercicio ", Description: &desc})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.Title != "Hacer ejercicio" || g.Description == nil || *g.Description != "tres veces por semana" || !g.IsActive {
		t.Errorf("unexpected goal %+v", g)
	}

	got, err := svc.Get(ctx, userID, g.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Errorf("Get() = %+v; want %+v", got, g)
	}
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	long := strings.Repeat("d", 1001)
	tests := []struct {
		name string
		in   CreateInput
		want string
	}{
		{"title too short", CreateInput{Title: " a "}, "al menos 2"},
		{"title too long", CreateInput{Title: strings.Repeat("t", 201)}, "200"},
		{"description too long", CreateInput{Title: "Leer", Description: &long}, "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), userID, tt.in)
			v, ok := validation.As(err)
			if !ok || !strings.Contains(v.Message, tt.want) {
				t.Errorf("Create() error = %v; want validation containing %q", err, tt.want)
			}
		})
	}
}

func TestService_Get_OtherUser_NotFound(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	other := insertUser(t, svc.db, "other@example.com")
	g := mustCreate(t, svc, userID, "Privada")

	if _, err := svc.Get(context.Background(), other, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v; want ErrNotFound", err)
	}
}

func TestService_List_Pagination(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	for _, title := range []string{"uno", "dos", "tres"} {
		mustCreate(t, svc, userID, title)
	}

	page, total, err := svc.List(context.Background(), userID, ListInput{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("List() total=%d len=%d", total, len(page))
	}
	if page[0].Title != "tres" || page[1].Title != "dos" {
		t.Errorf("expected newest first, got %q, %q", page[0].Title, page[1].Title)
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	ctx := context.Background()
	g := mustCreate(t, svc, userID, "Meditar")

	inactive := false
	title := "Meditar diario"
	updated, err := svc.Update(ctx, userID, g.ID, UpdateInput{Title: &title, IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != title || updated.IsActive {
		t.Errorf("unexpected update %+v", updated)
	}

	bad := "x"
	if _, err := svc.Update(ctx, userID, g.ID, UpdateInput{Title: &bad}); err == nil {
		t.Error("Update() should validate title")
	}

	if err := svc.Delete(ctx, userID, g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, userID, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v; want ErrNotFound", err)
	}
}

func TestService_ActiveTitles(t *testing.T) {
	t.Parallel()

	svc, userID := setup(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"g1", "g2", "g3", "g4", "g5", "g6"} {
		ids = append(ids, mustCreate(t, svc, userID, title).ID)
	}
	inactive := false
	if _, err := svc.Update(ctx, userID, ids[1], UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}

	all, err := svc.ActiveTitles(ctx, userID, nil)
	if err != nil {
		t.Fatalf("ActiveTitles() error = %v", err)
	}
	if want := []string{"g1", "g3", "g4", "g5", "g6"}; !reflect.DeepEqual(all, want) {
		t.Errorf("ActiveTitles(nil) = %v; want %v", all, want)
	}

	other := insertUser(t, svc.db, "x@example.com")
	foreign := mustCreate(t, svc, other, "ajena")

	picked, err := svc.ActiveTitles(ctx, userID, []string{ids[0], ids[1], foreign.ID})
	if err != nil {
		t.Fatalf("ActiveTitles(ids) error = %v", err)
	}
	if want := []string{"g1"}; !reflect.DeepEqual(picked, want) {
		t.Errorf("ActiveTitles(ids) = %v; want %v", picked, want)
	}
}

// ===== helpers =====

func setup(t *testing.T) (*Service, string) {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("sqlite.NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := sqlite.MigrateUp(context.Background(), db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}

	svc := NewService(db)
	// Strictly increasing clock so ordering by created_at is deterministic.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc, insertUser(t, db, "owner@example.com")
}

func insertUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	id := "user-" + email
	now := sqlite.FormatTime(time.Now())
	if _, err := db.Exec(`
		INSERT INTO user_account (id, email, password_hash, name, created_at, updated_at)
		VALUES (?, ?, 'x', 'Test', ?, ?)
	`, id, email, now, now); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func mustCreate(t *testing.T, svc *Service, userID, title string) *Goal {
	t.Helper()
	g, err := svc.Create(context.Background(), userID, CreateInput{Title: title})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return g
}
