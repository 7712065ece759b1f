package main

import (
	"calendar-mirror/cmd"

	_ "time/tzdata"
)

func main() {
	cmd.Execute()
}
