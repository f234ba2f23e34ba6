package core

import (
	"strings"
	"testing"
	"time"
)

func TestServiceRecordValidate(t *testing.T) {
	good := ServiceRecord{Title: " 100 ", ServiceType: "MONTAGEM", Price: Money{Cents: 500}, UserID: "u1"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	free := good
	free.Price = Money{}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero price must be accepted, got %v", err)
	}

	bads := []struct {
		r    ServiceRecord
		want error
	}{
		{ServiceRecord{Title: "  ", Price: Money{Cents: 1}, UserID: "u"}, ErrEmptyTitle},
		{ServiceRecord{Title: strings.Repeat("9", 101), Price: Money{Cents: 1}, UserID: "u"}, ErrTitleTooLong},
		{ServiceRecord{Title: "1", Price: Money{Cents: -1}, UserID: "u"}, ErrNegativePrice},
		{ServiceRecord{Title: "1", Price: Money{Cents: 1}}, ErrMissingOwner},
	}
	for i, tc := range bads {
		if err := tc.r.Validate(); err != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCreatedAtOrEpoch(t *testing.T) {
	r := ServiceRecord{}
	if !r.CreatedAtOrEpoch().Equal(time.Unix(0, 0)) {
		t.Fatalf("zero timestamp must fall back to epoch")
	}
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	r.CreatedAt = now
	if !r.CreatedAtOrEpoch().Equal(now) {
		t.Fatalf("expected original timestamp")
	}
}

func TestIdentity(t *testing.T) {
	if SignedOut().IsSignedIn() {
		t.Fatalf("signed-out identity reported signed in")
	}
	if (Identity{Status: AuthLoading, User: User{ID: "u"}}).IsAdmin() {
		t.Fatalf("loading identity must not be admin")
	}
	admin := SignedIn(User{ID: "a", Role: RoleAdmin})
	if !admin.IsAdmin() {
		t.Fatalf("expected admin")
	}
	if SignedIn(User{ID: "u", Role: "Admin"}).IsAdmin() {
		t.Fatalf("role comparison must be exact")
	}

	names := []struct {
		u    User
		want string
	}{
		{User{Username: "ana", FirstName: "Ana"}, "ana"},
		{User{FirstName: "Ana"}, "Ana"},
		{User{}, "Unknown"},
	}
	for _, tc := range names {
		if got := tc.u.DisplayName(); got != tc.want {
			t.Fatalf("DisplayName=%q want %q", got, tc.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	if len(c.Entries()) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(c.Entries()))
	}
	p, err := c.Price("BARRA")
	if err != nil || p.Cents != 600 {
		t.Fatalf("BARRA price=%d err=%v", p.Cents, err)
	}
	p, err = c.Price("2ª MONTAGEM")
	if err != nil || p.Cents != 250 {
		t.Fatalf("2ª MONTAGEM price=%d err=%v", p.Cents, err)
	}
	if _, err := c.Price("POLIMENTO"); err != ErrUnknownServiceType {
		t.Fatalf("expected ErrUnknownServiceType, got %v", err)
	}
	def, ok := c.Default()
	if !ok || def.Type != "MONTAGEM" {
		t.Fatalf("unexpected default %+v", def)
	}

	dedup := NewCatalog(CatalogEntry{Type: "A", Price: Money{Cents: 500}}, CatalogEntry{Type: " A "}, CatalogEntry{Type: ""})
	if len(dedup.Entries()) != 1 {
		t.Fatalf("expected dedupe, got %v", dedup.Entries())
	}
}
