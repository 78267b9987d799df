// Command vcproof runs the verification flows offline against request files
// and prints the committed journal.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
