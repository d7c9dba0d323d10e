package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/table"
)

// Resource names, as used on the command line and in preference keys.
const (
	NameInventory = "inventory"
	NameUsers     = "users"
	NameTasks     = "manufacturing-tasks"
	NameOrders    = "orders"
)

// Names lists every resource in screen order.
var Names = []string{NameInventory, NameUsers, NameTasks, NameOrders}

// Descriptor binds a record type to its endpoint and schema.
type Descriptor[R any] struct {
	Name       string
	Title      string
	Endpoint   string
	ArrayField string // for object-wrapped responses
	NeedsCSRF  bool   // batch delete requires a CSRF token
	Schema     table.Schema[R]
	Columns    []string // default visible columns
}

// Fetcher is the part of api.Client that loads collections.
type Fetcher interface {
	FetchCollection(ctx context.Context, endpoint, arrayField string) ([]json.RawMessage, error)
}

var _ Fetcher = (*api.Client)(nil)

// Fetch loads and decodes the whole collection for d.
func Fetch[R any](ctx context.Context, f Fetcher, d Descriptor[R]) ([]R, error) {
	raw, err := f.FetchCollection(ctx, d.Endpoint, d.ArrayField)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.Name, err)
	}
	records, err := api.Decode[R](d.Endpoint, raw)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", d.Name, err)
	}
	return records, nil
}

// WithColumns returns a copy of d showing cols instead of the defaults.
func (d Descriptor[R]) WithColumns(cols []string) Descriptor[R] {
	d.Columns = append([]string(nil), cols...)
	return d
}

// Inventory is the stock list.
var Inventory = Descriptor[InventoryItem]{
	Name:      NameInventory,
	Title:     "Inventory",
	Endpoint:  "/inventory/",
	NeedsCSRF: true,
	Schema: table.Schema[InventoryItem]{
		ID: func(r InventoryItem) string { return itoa(r.ID) },
		Fields: []table.Field[InventoryItem]{
			{Name: "id", Title: "ID", Kind: table.KindNumeric, Sortable: true, Value: func(r InventoryItem) string { return itoa(r.ID) }},
			{Name: "sku", Title: "SKU", Searchable: true, Sortable: true, Value: func(r InventoryItem) string { return r.SKU }},
			{Name: "name", Title: "Name", Searchable: true, Sortable: true, Value: func(r InventoryItem) string { return r.Name }},
			{Name: "category", Title: "Category", Sortable: true, Value: func(r InventoryItem) string { return r.Category }},
			{Name: "quantity", Title: "Qty", Kind: table.KindNumeric, Sortable: true, Value: func(r InventoryItem) string { return itoa(r.Quantity) }},
			{Name: "unit_price", Title: "Unit price", Kind: table.KindNumeric, Sortable: true, Value: func(r InventoryItem) string { return money(r.UnitPrice) }},
			{Name: "location", Title: "Location", Sortable: true, Value: func(r InventoryItem) string { return r.Location }},
			{Name: "last_updated", Title: "Updated", Sortable: true, Value: func(r InventoryItem) string { return r.LastUpdated }},
		},
	},
	Columns: []string{"id", "sku", "name", "category", "quantity", "unit_price", "location"},
}

// Users is the account list. Only admins see it.
var Users = Descriptor[User]{
	Name:     NameUsers,
	Title:    "Users",
	Endpoint: "/users/",
	Schema: table.Schema[User]{
		ID: func(r User) string { return itoa(r.ID) },
		Fields: []table.Field[User]{
			{Name: "id", Title: "ID", Kind: table.KindNumeric, Sortable: true, Value: func(r User) string { return itoa(r.ID) }},
			{Name: "name", Title: "Name", Searchable: true, Sortable: true, Value: func(r User) string { return r.Name }},
			{Name: "email", Title: "Email", Searchable: true, Sortable: true, Value: func(r User) string { return r.Email }},
			{Name: "role", Title: "Role", Sortable: true, Value: func(r User) string { return r.Role }},
			{Name: "department", Title: "Department", Sortable: true, Value: func(r User) string { return r.Department }},
			{Name: "active", Title: "Active", Sortable: true, Value: func(r User) string { return strconv.FormatBool(r.Active) }},
		},
	},
	Columns: []string{"id", "name", "email", "role", "department", "active"},
}

// Tasks is the manufacturing task list. Its visible columns depend on the
// viewer's department; see TaskColumns.
var Tasks = Descriptor[ManufacturingTask]{
	Name:     NameTasks,
	Title:    "Manufacturing tasks",
	Endpoint: "/manufacturing-tasks/",
	Schema: table.Schema[ManufacturingTask]{
		ID: func(r ManufacturingTask) string { return itoa(r.ID) },
		Fields: []table.Field[ManufacturingTask]{
			{Name: "id", Title: "ID", Kind: table.KindNumeric, Sortable: true, Value: func(r ManufacturingTask) string { return itoa(r.ID) }},
			{Name: "product", Title: "Product", Searchable: true, Sortable: true, Value: func(r ManufacturingTask) string { return r.Product }},
			{Name: "status", Title: "Status", Searchable: true, Sortable: true, Value: func(r ManufacturingTask) string { return r.Status }},
			{Name: "department", Title: "Department", Sortable: true, Value: func(r ManufacturingTask) string { return r.Department }},
			{Name: "assigned_to", Title: "Assigned to", Sortable: true, Value: func(r ManufacturingTask) string { return r.AssignedTo }},
			{Name: "quantity", Title: "Qty", Kind: table.KindNumeric, Sortable: true, Value: func(r ManufacturingTask) string { return itoa(r.Quantity) }},
			{Name: "due_date", Title: "Due", Sortable: true, Value: func(r ManufacturingTask) string { return r.DueDate }},
			{Name: "quality_status", Title: "QA status", Sortable: true, Value: func(r ManufacturingTask) string { return r.QualityStatus }},
			{Name: "defect_count", Title: "Defects", Kind: table.KindNumeric, Sortable: true, Value: func(r ManufacturingTask) string { return itoa(r.DefectCount) }},
			{Name: "package_type", Title: "Package", Sortable: true, Value: func(r ManufacturingTask) string { return r.PackageType }},
			{Name: "destination", Title: "Destination", Sortable: true, Value: func(r ManufacturingTask) string { return r.Destination }},
		},
	},
	Columns: []string{"id", "product", "status", "department", "assigned_to", "quantity", "due_date"},
}

// Orders is the order list. The backend wraps it in {"results": [...]}.
var Orders = Descriptor[Order]{
	Name:       NameOrders,
	Title:      "Orders",
	Endpoint:   "/orders/",
	ArrayField: "results",
	Schema: table.Schema[Order]{
		ID: func(r Order) string { return itoa(r.ID) },
		Fields: []table.Field[Order]{
			{Name: "id", Title: "Order", Kind: table.KindNumeric, Searchable: true, Sortable: true, Value: func(r Order) string { return itoa(r.ID) }},
			{Name: "customer", Title: "Customer", Sortable: true, Value: func(r Order) string { return r.Customer }},
			{Name: "status", Title: "Status", Searchable: true, Sortable: true, Value: func(r Order) string { return r.Status }},
			{Name: "item_count", Title: "Items", Kind: table.KindNumeric, Sortable: true, Value: func(r Order) string { return itoa(r.ItemCount) }},
			{Name: "total", Title: "Total", Kind: table.KindNumeric, Sortable: true, Value: func(r Order) string { return money(r.Total) }},
			{Name: "created_at", Title: "Created", Sortable: true, Value: func(r Order) string { return r.CreatedAt }},
		},
	},
	Columns: []string{"id", "customer", "status", "item_count", "total", "created_at"},
}
