package main

import "github.com/fathurrohman/library-management/cmd"

func main() {
	cmd.Execute()
}
