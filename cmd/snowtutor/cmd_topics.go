package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
)

func topicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the topic areas the tutor covers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, t := range knowledge.Default().ScopeTopics() {
				fmt.Printf("%d. %s\n", i+1, t)
			}
			return nil
		},
	}
}
