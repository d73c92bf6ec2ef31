// Command web serves the browser client locally or publishes it to S3.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todo-web",
		Short: "Serve or publish the todo browser client",
	}
	rootCmd.AddCommand(newServeCmd(), newPublishCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
