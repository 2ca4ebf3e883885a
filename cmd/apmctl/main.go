// Command apmctl inspects the configuration of the error reporting core.
package main

import "os"

func main() {
	os.Exit(Execute())
}
