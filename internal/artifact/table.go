package artifact

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed distros.yaml
var distrosYAML []byte

type cascadeRow struct {
	Distro  string   `yaml:"distro"`
	Release int      `yaml:"release"`
	Tags    []string `yaml:"tags"`
}

type cascadeTable struct {
	Cascades []cascadeRow `yaml:"cascades"`
}

var compatTable = mustLoadTable()

func mustLoadTable() cascadeTable {
	var t cascadeTable
	if err := yaml.Unmarshal(distrosYAML, &t); err != nil {
		panic(fmt.Sprintf("artifact: bad embedded distro table: %v", err))
	}
	return t
}

// cascadeFor returns the ordered build-tag cascade for a host, or nil
// when the distro is unknown. A row with release 0 matches any release
// of its distro and is consulted only when no exact row matches.
func cascadeFor(distro string, release int) []string {
	var wildcard []string
	for _, row := range compatTable.Cascades {
		if row.Distro != distro {
			continue
		}
		if row.Release == release {
			return row.Tags
		}
		if row.Release == 0 && wildcard == nil {
			wildcard = row.Tags
		}
	}
	return wildcard
}
