package models

import "testing"

func TestHighestRole(t *testing.T) {
	cases := []struct {
		groups []string
		want   Role
	}{
		{nil, RoleGuest},
		{[]string{"band"}, RoleBand},
		{[]string{"band", "manager"}, RoleManager},
		{[]string{"unknown-group"}, RoleGuest},
		{[]string{"Admin"}, RoleAdmin},
		{[]string{"editor", "band", "guest"}, RoleEditor},
	}
	for _, tc := range cases {
		if got := HighestRole(tc.groups); got != tc.want {
			t.Errorf("HighestRole(%v) = %s, want %s", tc.groups, got, tc.want)
		}
	}
}

func TestRoleMeets(t *testing.T) {
	if !RoleManager.Meets(RoleBand) {
		t.Fatalf("manager should meet the band minimum")
	}
	if RoleBand.Meets(RoleEditor) {
		t.Fatalf("band must not meet the editor minimum")
	}
	if !RoleAdmin.Meets(RoleAdmin) {
		t.Fatalf("a role should meet itself")
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("MANAGER"); !ok || role != RoleManager {
		t.Fatalf("parse should be case-insensitive, got %v %v", role, ok)
	}
	if _, ok := ParseRole("roadie"); ok {
		t.Fatalf("unknown role names must not parse")
	}
}

func TestMediaFileIsImage(t *testing.T) {
	if !(MediaFile{ContentType: "image/png"}).IsImage() {
		t.Fatalf("image/png should be an image")
	}
	if (MediaFile{ContentType: "video/mp4"}).IsImage() {
		t.Fatalf("video/mp4 is not an image")
	}
}
