package resource

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/session"
)

type fakeFetcher struct {
	body  string
	err   error
	field string
}

func (f *fakeFetcher) FetchCollection(_ context.Context, _, arrayField string) ([]json.RawMessage, error) {
	f.field = arrayField
	if f.err != nil {
		return nil, f.err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(f.body), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func TestFetchInventory(t *testing.T) {
	f := &fakeFetcher{body: `[
		{"inventory_id": 2, "sku": "B-2", "name": "Bolt", "quantity": 10, "unit_price": "0.25"},
		{"inventory_id": 1, "sku": "A-1", "name": "Anchor", "quantity": 3, "unit_price": 12.5}
	]`}
	items, err := Fetch(context.Background(), f, Inventory)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if got := Inventory.Schema.ID(items[0]); got != "2" {
		t.Errorf("ID = %q, want 2", got)
	}
	row := Inventory.Schema.Row(items[1], []string{"sku", "unit_price"})
	if row[0] != "A-1" || row[1] != "12.50" {
		t.Errorf("row = %v", row)
	}
}

func TestFetchOrdersUsesResultsField(t *testing.T) {
	f := &fakeFetcher{body: `[{"order_id": 5, "status": "shipped", "total": "10"}]`}
	orders, err := Fetch(context.Background(), f, Orders)
	if err != nil {
		t.Fatal(err)
	}
	if f.field != "results" {
		t.Errorf("array field = %q, want results", f.field)
	}
	if orders[0].ID != 5 || money(orders[0].Total) != "10.00" {
		t.Errorf("order = %+v", orders[0])
	}
}

func TestFetchDecodeError(t *testing.T) {
	f := &fakeFetcher{body: `[{"user_id": "not-a-number"}]`}
	_, err := Fetch(context.Background(), f, Users)
	var fe *api.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
}

func TestFetchPassesErrorsThrough(t *testing.T) {
	f := &fakeFetcher{err: &api.AuthError{Status: 401}}
	_, err := Fetch(context.Background(), f, Tasks)
	var ae *api.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want AuthError", err)
	}
}

func checkDescriptor[R any](t *testing.T, d Descriptor[R]) {
	t.Helper()
	for _, c := range d.Columns {
		if _, ok := d.Schema.Field(c); !ok {
			t.Errorf("%s: default column %q not in schema", d.Name, c)
		}
	}
	if n := len(d.Schema.Searchable()); n != 2 {
		t.Errorf("%s: %d searchable fields, want 2", d.Name, n)
	}
	var zero R
	if f, ok := d.Schema.Field("id"); !ok {
		t.Errorf("%s: no id column", d.Name)
	} else if got, want := d.Schema.ID(zero), f.Value(zero); got != want {
		t.Errorf("%s: ID() = %q, id column = %q", d.Name, got, want)
	}
}

func TestSchemasAreConsistent(t *testing.T) {
	checkDescriptor(t, Inventory)
	checkDescriptor(t, Users)
	checkDescriptor(t, Tasks)
	checkDescriptor(t, Orders)

	for d := DepartmentAssembly; d <= DepartmentLogistics; d++ {
		for _, c := range TaskColumns(d) {
			if _, ok := Tasks.Schema.Field(c); !ok {
				t.Errorf("department %s: column %q not in schema", d, c)
			}
		}
	}
}

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		in      string
		want    Department
		wantErr bool
	}{
		{"assembly", DepartmentAssembly, false},
		{"Quality", DepartmentQuality, false},
		{" packaging ", DepartmentPackaging, false},
		{"logistics", DepartmentLogistics, false},
		{"", DepartmentNone, false},
		{"marketing", DepartmentNone, true},
	}
	for _, tt := range tests {
		got, err := ParseDepartment(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDepartment(%q) err = %v", tt.in, err)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownDepartment) {
			t.Errorf("ParseDepartment(%q) err = %v, want ErrUnknownDepartment", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDepartment(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTasksFor(t *testing.T) {
	d, err := TasksFor(session.Profile{Role: session.RoleQA, Department: "quality"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(d.Columns, "defect_count") || slices.Contains(d.Columns, "destination") {
		t.Errorf("quality columns = %v", d.Columns)
	}
	if slices.Contains(Tasks.Columns, "defect_count") {
		t.Error("WithColumns must not modify the shared descriptor")
	}

	if _, err := TasksFor(session.Profile{Department: "kitchen"}); !errors.Is(err, ErrUnknownDepartment) {
		t.Errorf("unknown department err = %v", err)
	}
}

func TestScreens(t *testing.T) {
	tests := []struct {
		role session.Role
		want []string
	}{
		{session.RoleAdmin, []string{NameInventory, NameUsers, NameTasks, NameOrders}},
		{session.RoleManager, []string{NameInventory, NameTasks, NameOrders}},
		{session.RoleStaff, []string{NameInventory, NameTasks}},
		{session.RoleQA, []string{NameTasks}},
		{session.RoleUnknown, nil},
	}
	for _, tt := range tests {
		if got := Screens(tt.role); !slices.Equal(got, tt.want) {
			t.Errorf("Screens(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestAllowed(t *testing.T) {
	if err := Allowed(session.RoleAdmin, NameUsers); err != nil {
		t.Errorf("admin users: %v", err)
	}
	if err := Allowed(session.RoleStaff, NameOrders); !errors.Is(err, ErrForbidden) {
		t.Errorf("staff orders err = %v, want ErrForbidden", err)
	}
	if err := Allowed(session.RoleAdmin, "widgets"); err == nil || errors.Is(err, ErrForbidden) {
		t.Errorf("unknown resource err = %v", err)
	}
}

func TestUserColumns(t *testing.T) {
	if !slices.Contains(UserColumns(session.RoleAdmin), "role") {
		t.Error("admin should see role column")
	}
	if slices.Contains(UserColumns(session.RoleManager), "role") {
		t.Error("manager should not see role column")
	}
}
