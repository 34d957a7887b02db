package main

import (
	"fmt"
	"os"

	"github.com/shamaton/msgpack/v2"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show ARTIFACT",
	Short: "Print a saved counterexample artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	path := args[0]
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	var raw map[string]any
	if err := msgpack.Unmarshal(buf, &raw); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}

	fmt.Printf("id:     %v\n", raw["ID"])
	fmt.Printf("seed:   %v\n", raw["Seed"])
	fmt.Printf("kind:   %v\n", raw["Kind"])
	fmt.Printf("reason: %v\n", raw["Reason"])
	if abort, ok := raw["Abort"]; ok && abort != nil {
		fmt.Printf("abort:  %v\n", abort)
	}
	fmt.Printf("scenario: %v\n", raw["Scenario"])
	fmt.Printf("observed: %v\n", raw["Observed"])
	return nil
}
