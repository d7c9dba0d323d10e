package resource

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abelbrown/stockroom/internal/session"
)

// Department selects the manufacturing task columns a user works with.
type Department int

const (
	DepartmentNone Department = iota
	DepartmentAssembly
	DepartmentQuality
	DepartmentPackaging
	DepartmentLogistics
)

var departmentNames = []string{"", "assembly", "quality", "packaging", "logistics"}

// ErrUnknownDepartment is returned for department names outside the enum.
var ErrUnknownDepartment = errors.New("unknown department")

// ErrForbidden is returned when a role may not view a resource.
var ErrForbidden = errors.New("resource not available for role")

// ParseDepartment maps a name to a Department. The empty string is
// DepartmentNone; anything else unrecognised is an error.
func ParseDepartment(s string) (Department, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if i := slices.Index(departmentNames, name); i >= 0 {
		return Department(i), nil
	}
	return DepartmentNone, fmt.Errorf("%w: %q", ErrUnknownDepartment, s)
}

func (d Department) String() string {
	if d < 0 || int(d) >= len(departmentNames) || d == DepartmentNone {
		return "none"
	}
	return departmentNames[d]
}

var departmentColumns = map[Department][]string{
	DepartmentAssembly:  {"id", "product", "status", "assigned_to", "quantity", "due_date"},
	DepartmentQuality:   {"id", "product", "status", "quality_status", "defect_count", "assigned_to"},
	DepartmentPackaging: {"id", "product", "status", "package_type", "quantity"},
	DepartmentLogistics: {"id", "product", "status", "destination", "due_date"},
}

// TaskColumns returns the task columns for d. DepartmentNone gets the default
// overview columns.
func TaskColumns(d Department) []string {
	if cols, ok := departmentColumns[d]; ok {
		return slices.Clone(cols)
	}
	return slices.Clone(Tasks.Columns)
}

// UserColumns returns the user columns shown to role. Only admins see role
// and active flags.
func UserColumns(r session.Role) []string {
	if r == session.RoleAdmin {
		return slices.Clone(Users.Columns)
	}
	return []string{"id", "name", "email", "department"}
}

var roleScreens = map[session.Role][]string{
	session.RoleAdmin:   {NameInventory, NameUsers, NameTasks, NameOrders},
	session.RoleManager: {NameInventory, NameTasks, NameOrders},
	session.RoleStaff:   {NameInventory, NameTasks},
	session.RoleQA:      {NameTasks},
}

// Screens lists the resources role may open, in display order.
func Screens(r session.Role) []string {
	return slices.Clone(roleScreens[r])
}

// Allowed reports whether role may view the named resource.
func Allowed(r session.Role, name string) error {
	if !slices.Contains(Names, name) {
		return fmt.Errorf("unknown resource %q (want one of %s)", name, strings.Join(Names, ", "))
	}
	if !slices.Contains(roleScreens[r], name) {
		return fmt.Errorf("%w: %s cannot view %s", ErrForbidden, r, name)
	}
	return nil
}

// TasksFor returns the task descriptor with the columns for p's department.
func TasksFor(p session.Profile) (Descriptor[ManufacturingTask], error) {
	d, err := ParseDepartment(p.Department)
	if err != nil {
		return Descriptor[ManufacturingTask]{}, err
	}
	return Tasks.WithColumns(TaskColumns(d)), nil
}

// UsersFor returns the user descriptor with the columns for p's role.
func UsersFor(p session.Profile) Descriptor[User] {
	return Users.WithColumns(UserColumns(p.Role))
}
