// If you are AI: This file implements `framebusd topics`, a read-only
// summary of a configuration file's topic declarations.
package main

import (
	"fmt"

	"framebus/internal/config"
)

func printTopics(cfg *config.Config) error {
	for _, t := range cfg.Topics {
		fmt.Printf("%-20s shape=%-16v dtype=%-8s ring_length=%-4d ingest=%s\n",
			t.Name, t.Shape, t.DType, t.RingLength, t.Ingest.Kind)
	}
	return nil
}
