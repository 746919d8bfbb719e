package main

import "github.com/fieldops/advance-settlement/cmd"

func main() {
	cmd.Execute()
}
