package console

import (
	"strconv"
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// entity describes one list screen. name is both the collection path under
// the API root and the query cache entity.
type entity[T any] struct {
	name    string
	title   string
	schema  listview.Schema
	columns []listview.Column[T]
	rowID   func(T) string
	// related lists other entities whose rows show this one, e.g. the
	// department name of an employee.
	related []string
}

func idOf(m domain.BaseModel) string {
	return strconv.FormatUint(uint64(m.ID), 10)
}

func idColumn[T any](get func(T) uint) listview.Column[T] {
	return listview.Column[T]{ID: "id", Header: "ID", Width: 6, Sortable: true, Value: func(v T) any { return get(v) }}
}

func formatStock(v any) string {
	return strconv.FormatFloat(v.(float64), 'f', -1, 64)
}

var departments = entity[domain.Department]{
	name:   "departments",
	title:  "Departments",
	schema: domain.DepartmentSchema,
	columns: []listview.Column[domain.Department]{
		idColumn(func(d domain.Department) uint { return d.ID }),
		{ID: "code", Header: "Code", Width: 10, Sortable: true, Value: func(d domain.Department) any { return d.Code }},
		{ID: "name", Header: "Name", Width: 24, Sortable: true, Value: func(d domain.Department) any { return d.Name }},
		{ID: "description", Header: "Description", Width: 32, Value: func(d domain.Department) any { return d.Description }},
		{ID: "created_at", Header: "Created", Width: 10, Sortable: true, Value: func(d domain.Department) any { return d.CreatedAt }},
	},
	rowID:   func(d domain.Department) string { return idOf(d.BaseModel) },
	related: []string{"employees"},
}

var employees = entity[domain.Employee]{
	name:   "employees",
	title:  "Employees",
	schema: domain.EmployeeSchema,
	columns: []listview.Column[domain.Employee]{
		idColumn(func(e domain.Employee) uint { return e.ID }),
		{ID: "number", Header: "Number", Width: 10, Sortable: true, Value: func(e domain.Employee) any { return e.Number }},
		{ID: "name", Header: "Name", Width: 20, Sortable: true, Value: func(e domain.Employee) any { return e.Name }},
		{ID: "department", Header: "Department", Width: 18, Value: func(e domain.Employee) any {
			if e.Department == nil {
				return ""
			}
			return e.Department.Name
		}},
		{ID: "title", Header: "Title", Width: 16, Value: func(e domain.Employee) any { return e.Title }},
		{ID: "hired_at", Header: "Hired", Width: 10, Sortable: true, Value: func(e domain.Employee) any { return e.HiredAt }},
	},
	rowID:   func(e domain.Employee) string { return idOf(e.BaseModel) },
	related: []string{"users"},
}

var customers = entity[domain.Customer]{
	name:   "customers",
	title:  "Customers",
	schema: domain.CustomerSchema,
	columns: []listview.Column[domain.Customer]{
		idColumn(func(c domain.Customer) uint { return c.ID }),
		{ID: "code", Header: "Code", Width: 10, Sortable: true, Value: func(c domain.Customer) any { return c.Code }},
		{ID: "name", Header: "Name", Width: 24, Sortable: true, Value: func(c domain.Customer) any { return c.Name }},
		{ID: "contact_person", Header: "Contact", Width: 16, Value: func(c domain.Customer) any { return c.ContactPerson }},
		{ID: "phone", Header: "Phone", Width: 14, Value: func(c domain.Customer) any { return c.Phone }},
	},
	rowID:   func(c domain.Customer) string { return idOf(c.BaseModel) },
	related: []string{"projects"},
}

var projects = entity[domain.Project]{
	name:   "projects",
	title:  "Projects",
	schema: domain.ProjectSchema,
	columns: []listview.Column[domain.Project]{
		idColumn(func(p domain.Project) uint { return p.ID }),
		{ID: "code", Header: "Code", Width: 10, Sortable: true, Value: func(p domain.Project) any { return p.Code }},
		{ID: "name", Header: "Name", Width: 24, Sortable: true, Value: func(p domain.Project) any { return p.Name }},
		{ID: "customer", Header: "Customer", Width: 18, Value: func(p domain.Project) any {
			if p.Customer == nil {
				return ""
			}
			return p.Customer.Name
		}},
		{ID: "status", Header: "Status", Width: 10, Value: func(p domain.Project) any { return p.Status }},
		{ID: "start_date", Header: "Start", Width: 10, Sortable: true, Value: func(p domain.Project) any { return p.StartDate }},
	},
	rowID: func(p domain.Project) string { return idOf(p.BaseModel) },
}

var materials = entity[domain.Material]{
	name:   "materials",
	title:  "Materials",
	schema: domain.MaterialSchema,
	columns: []listview.Column[domain.Material]{
		idColumn(func(m domain.Material) uint { return m.ID }),
		{ID: "code", Header: "Code", Width: 10, Sortable: true, Value: func(m domain.Material) any { return m.Code }},
		{ID: "name", Header: "Name", Width: 22, Sortable: true, Value: func(m domain.Material) any { return m.Name }},
		{ID: "unit", Header: "Unit", Width: 6, Value: func(m domain.Material) any { return m.Unit }},
		{ID: "stock", Header: "Stock", Width: 10, Sortable: true, Value: func(m domain.Material) any { return m.Stock }, Format: formatStock},
		{ID: "supplier", Header: "Supplier", Width: 18, Value: func(m domain.Material) any { return m.Supplier }},
	},
	rowID: func(m domain.Material) string { return idOf(m.BaseModel) },
}

var users = entity[domain.User]{
	name:   "users",
	title:  "Users",
	schema: domain.UserSchema,
	columns: []listview.Column[domain.User]{
		idColumn(func(u domain.User) uint { return u.ID }),
		{ID: "account", Header: "Account", Width: 16, Sortable: true, Value: func(u domain.User) any { return u.Account }},
		{ID: "name", Header: "Name", Width: 20, Sortable: true, Value: func(u domain.User) any { return u.Name }},
		{ID: "email", Header: "Email", Width: 24, Value: func(u domain.User) any { return u.Email }},
		{ID: "roles", Header: "Roles", Width: 16, Value: func(u domain.User) any { return strings.Join(u.Roles, ",") }},
	},
	rowID: func(u domain.User) string { return idOf(u.BaseModel) },
}

var roles = entity[domain.Role]{
	name:   "roles",
	title:  "Roles",
	schema: domain.RoleSchema,
	columns: []listview.Column[domain.Role]{
		{ID: "id", Header: "ID", Width: 12, Sortable: true, Value: func(r domain.Role) any { return r.ID }},
		{ID: "name", Header: "Name", Width: 20, Sortable: true, Value: func(r domain.Role) any { return r.Name }},
		{ID: "description", Header: "Description", Width: 28, Value: func(r domain.Role) any { return r.Description }},
		{ID: "permissions", Header: "Resources", Width: 9, Value: func(r domain.Role) any { return len(r.Permissions) }},
		{ID: "created_at", Header: "Created", Width: 10, Sortable: true, Value: func(r domain.Role) any { return r.CreatedAt }},
	},
	rowID:   func(r domain.Role) string { return r.ID },
	related: []string{"users"},
}

// screens builds one list screen per entity in menu order.
func screens(e *env) []screen {
	return []screen{
		newListScreen(e, departments),
		newListScreen(e, employees),
		newListScreen(e, customers),
		newListScreen(e, projects),
		newListScreen(e, materials),
		newListScreen(e, users),
		newListScreen(e, roles),
	}
}
