// Command steamreqs mirrors the Steam catalog and hardware requirements into
// a local database and exports them as static site data.
package main

import "github.com/reqmirror/steamreqs/cmd"

func main() {
	cmd.Execute()
}
