// cmd/debpack/main.go
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/arc-language/debpack/internal/cli"
	"github.com/arc-language/debpack/pkg/core"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if md := core.Metadata(err); len(md) > 0 {
			keys := make([]string, 0, len(md))
			for k := range md {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			logger := core.NewLogger(true)
			for _, k := range keys {
				logger.Debug("error context", k, md[k])
			}
		}
		os.Exit(1)
	}
}
