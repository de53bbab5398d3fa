package config_test

import (
	"fmt"

	"github.com/isocell/isocell/pkg/config"
)

func ExampleParse() {
	cfg, err := config.Parse([]byte(`
[partition]
min_cell_nodes = 50
max_cell_nodes = 2000

[storage]
backend = "memory"
`), config.FormatTOML)
	if err != nil {
		panic(err)
	}
	fmt.Println("cells:", cfg.Partition.MinCellNodes, "to", cfg.Partition.MaxCellNodes)
	fmt.Println("split fraction:", cfg.Partition.SplitFraction)
	fmt.Println("backend:", cfg.Storage.Backend)
	// Output:
	// cells: 50 to 2000
	// split fraction: 0.2525
	// backend: memory
}
