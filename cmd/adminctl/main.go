// adminctl is the operator console for a running classcord server. It talks
// to the loopback admin API; it never touches server memory directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
