package structs

import (
	"encoding/json"
	"fmt"
	"io"
)

// CostTable maps an instance type to its cost per hour within one region.
type CostTable map[string]float64

// regionCosts mirrors the on-disk cost reference data format: a JSON object
// keyed by region identifier, each entry carrying the region display name and
// its per-instance-type hourly costs.
type regionCosts struct {
	Name         string `json:"name"`
	CostsPerHour map[string]struct {
		CostPerHour float64 `json:"cost-per-hour"`
	} `json:"costs-per-hour"`
}

// ParseCostTable reads the cost reference data and extracts the hourly cost
// table for the named region.
func ParseCostTable(r io.Reader, region string) (CostTable, error) {
	var data map[string]regionCosts

	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("error parsing cost reference data: %v", err)
	}

	for _, regionData := range data {
		if regionData.Name != region {
			continue
		}

		table := make(CostTable, len(regionData.CostsPerHour))
		for instanceType, entry := range regionData.CostsPerHour {
			table[instanceType] = entry.CostPerHour
		}
		return table, nil
	}

	return nil, fmt.Errorf("no cost reference data found for region %v", region)
}
