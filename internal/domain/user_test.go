package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserJSON_PasswordHashHidden(t *testing.T) {
	user := User{
		Account:      "alice",
		Name:         "Alice",
		PasswordHash: "$2a$10$examplehash",
		Roles:        []string{"admin"},
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}

	body := string(raw)
	if strings.Contains(body, "password_hash") {
		t.Fatalf("json should not contain password_hash, got: %s", body)
	}
	if strings.Contains(body, "$2a$10$examplehash") {
		t.Fatalf("json should not contain PasswordHash value, got: %s", body)
	}
	for _, want := range []string{`"account":"alice"`, `"name":"Alice"`, `"roles":["admin"]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("json should include %s, got: %s", want, body)
		}
	}
}

func TestUserJSON_UnmarshalIgnoresPasswordHashField(t *testing.T) {
	input := `{"account":"alice","name":"Alice","password_hash":"attacker-controlled"}`

	var user User
	if err := json.Unmarshal([]byte(input), &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}

	if user.Account != "alice" {
		t.Fatalf("Account = %q, want %q", user.Account, "alice")
	}
	if user.PasswordHash != "" {
		t.Fatalf("PasswordHash = %q, want empty", user.PasswordHash)
	}
}

func TestValidProjectStatus(t *testing.T) {
	for _, s := range []string{ProjectPlanning, ProjectActive, ProjectClosed} {
		if !ValidProjectStatus(s) {
			t.Errorf("ValidProjectStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "ACTIVE"} {
		if ValidProjectStatus(s) {
			t.Errorf("ValidProjectStatus(%q) = true, want false", s)
		}
	}
}

func TestSchemas_DefaultsAreSortable(t *testing.T) {
	schemas := []struct {
		name    string
		orderBy string
		ok      bool
	}{
		{"department", DepartmentSchema.DefaultOrderBy, DepartmentSchema.IsSortable(DepartmentSchema.DefaultOrderBy)},
		{"employee", EmployeeSchema.DefaultOrderBy, EmployeeSchema.IsSortable(EmployeeSchema.DefaultOrderBy)},
		{"customer", CustomerSchema.DefaultOrderBy, CustomerSchema.IsSortable(CustomerSchema.DefaultOrderBy)},
		{"project", ProjectSchema.DefaultOrderBy, ProjectSchema.IsSortable(ProjectSchema.DefaultOrderBy)},
		{"material", MaterialSchema.DefaultOrderBy, MaterialSchema.IsSortable(MaterialSchema.DefaultOrderBy)},
		{"user", UserSchema.DefaultOrderBy, UserSchema.IsSortable(UserSchema.DefaultOrderBy)},
		{"role", RoleSchema.DefaultOrderBy, RoleSchema.IsSortable(RoleSchema.DefaultOrderBy)},
	}
	for _, s := range schemas {
		if !s.ok {
			t.Errorf("%s: default order %q is not sortable", s.name, s.orderBy)
		}
	}
}
