package structs

import (
	"strings"
	"testing"
)

const costData = `{
  "us-east": {
    "name": "us-east-1",
    "costs-per-hour": {
      "m4.large": {"cost-per-hour": 0.1},
      "m4.xlarge": {"cost-per-hour": 0.2}
    }
  },
  "eu-west": {
    "name": "eu-west-1",
    "costs-per-hour": {
      "m4.large": {"cost-per-hour": 0.111}
    }
  }
}`

func TestParseCostTable(t *testing.T) {
	table, err := ParseCostTable(strings.NewReader(costData), "us-east-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table) != 2 {
		t.Fatalf("expected 2 instance types but got %v", len(table))
	}
	if table["m4.xlarge"] != 0.2 {
		t.Fatalf("expected 0.2 but got %v", table["m4.xlarge"])
	}
}

func TestParseCostTable_UnknownRegion(t *testing.T) {
	if _, err := ParseCostTable(strings.NewReader(costData), "ap-south-1"); err == nil {
		t.Fatal("expected an error for an unknown region")
	}
}

func TestParseCostTable_MalformedData(t *testing.T) {
	if _, err := ParseCostTable(strings.NewReader("not json"), "us-east-1"); err == nil {
		t.Fatal("expected an error for malformed data")
	}
}
