// Package resource declares the backend collections stockroom can show: the
// record types as the API returns them, the table schema for each, and which
// screens and columns a role or department gets.
package resource

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// InventoryItem is one stock-keeping unit.
type InventoryItem struct {
	ID          int             `json:"inventory_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Location    string          `json:"location"`
	LastUpdated string          `json:"last_updated"`
}

// User is an account on the backend.
type User struct {
	ID         int    `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Active     bool   `json:"is_active"`
}

// ManufacturingTask is a unit of work on the shop floor. Which fields matter
// depends on the department looking at it.
type ManufacturingTask struct {
	ID            int    `json:"manufacturing_task_id"`
	Product       string `json:"product"`
	Status        string `json:"status"`
	Department    string `json:"department"`
	AssignedTo    string `json:"assigned_to"`
	Quantity      int    `json:"quantity"`
	DueDate       string `json:"due_date"`
	QualityStatus string `json:"quality_status"`
	DefectCount   int    `json:"defect_count"`
	PackageType   string `json:"package_type"`
	Destination   string `json:"destination"`
}

// Order is a customer order.
type Order struct {
	ID        int             `json:"order_id"`
	Customer  string          `json:"customer"`
	Status    string          `json:"status"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"created_at"`
}

func itoa(n int) string { return strconv.Itoa(n) }

func money(d decimal.Decimal) string { return d.StringFixed(2) }
