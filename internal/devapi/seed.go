package devapi

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/abelbrown/stockroom/internal/resource"
)

// toMaps converts typed fixtures to the loose JSON objects the handlers store.
func toMaps[R any](records []R) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			panic(err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			panic(err)
		}
		out = append(out, m)
	}
	return out
}

func seedInventory() []map[string]any {
	categories := []string{"fasteners", "electrical", "hydraulics", "packaging", "tools"}
	names := []string{
		"Hex bolt M8", "Wing nut", "Cable tie 200mm", "Relay 12V", "Fuse 5A",
		"Hose clamp", "O-ring kit", "Pressure gauge", "Stretch film", "Carton 40x30",
		"Torque wrench", "Drill bit set", "Washer M8", "Terminal block", "Solenoid valve",
		"Bubble wrap", "Pallet strap", "Socket set", "Rivet 4mm", "Heat shrink",
		"Ball valve", "Label roll", "Allen key set", "Spring washer",
	}
	items := make([]resource.InventoryItem, len(names))
	for i, n := range names {
		items[i] = resource.InventoryItem{
			ID:          i + 1,
			SKU:         fmt.Sprintf("SKU-%04d", 100+i*7),
			Name:        n,
			Category:    categories[i%len(categories)],
			Quantity:    (i*37 + 5) % 400,
			UnitPrice:   decimal.New(int64(i*113%5000+99), -2),
			Location:    fmt.Sprintf("A%d-%02d", i%4+1, i%12+1),
			LastUpdated: fmt.Sprintf("2024-05-%02dT09:00:00Z", i%28+1),
		}
	}
	return toMaps(items)
}

func seedUsers() []map[string]any {
	return toMaps([]resource.User{
		{ID: 1, Name: "Ada Okafor", Email: "ada@stockroom.test", Role: "admin", Active: true},
		{ID: 2, Name: "Ben Hale", Email: "ben@stockroom.test", Role: "manager", Department: "logistics", Active: true},
		{ID: 3, Name: "Chen Wu", Email: "chen@stockroom.test", Role: "staff", Department: "assembly", Active: true},
		{ID: 4, Name: "Dana Ruiz", Email: "dana@stockroom.test", Role: "qa", Department: "quality", Active: true},
		{ID: 5, Name: "Eli Novak", Email: "eli@stockroom.test", Role: "staff", Department: "packaging", Active: false},
		{ID: 6, Name: "Fay Moreau", Email: "fay@stockroom.test", Role: "staff", Department: "logistics", Active: true},
	})
}

func seedTasks() []map[string]any {
	products := []string{"Control panel", "Pump housing", "Valve block", "Sensor array"}
	statuses := []string{"pending", "in_progress", "completed", "on_hold"}
	depts := []string{"assembly", "quality", "packaging", "logistics"}
	tasks := make([]resource.ManufacturingTask, 12)
	for i := range tasks {
		tasks[i] = resource.ManufacturingTask{
			ID:            i + 1,
			Product:       products[i%len(products)],
			Status:        statuses[(i/2)%len(statuses)],
			Department:    depts[i%len(depts)],
			AssignedTo:    []string{"Chen Wu", "Dana Ruiz", "Eli Novak", "Fay Moreau"}[i%4],
			Quantity:      (i + 1) * 25,
			DueDate:       fmt.Sprintf("2024-06-%02d", i+3),
			QualityStatus: []string{"passed", "failed", "pending"}[i%3],
			DefectCount:   i % 3 * 2,
			PackageType:   []string{"crate", "pallet", "box"}[i%3],
			Destination:   []string{"Rotterdam", "Leeds", "Gdansk"}[i%3],
		}
	}
	return toMaps(tasks)
}

func seedOrders() []map[string]any {
	customers := []string{"Northwind", "Contoso", "Fabrikam", "Tailspin"}
	statuses := []string{"pending", "processing", "shipped", "delivered"}
	orders := make([]resource.Order, 8)
	for i := range orders {
		orders[i] = resource.Order{
			ID:        1000 + i,
			Customer:  customers[i%len(customers)],
			Status:    statuses[i%len(statuses)],
			ItemCount: i%5 + 1,
			Total:     decimal.New(int64((i+1)*12345), -2),
			CreatedAt: fmt.Sprintf("2024-04-%02dT12:00:00Z", i+1),
		}
	}
	return toMaps(orders)
}
