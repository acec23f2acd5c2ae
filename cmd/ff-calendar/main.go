package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/ff-calendar/internal/cli"
)

func main() {
	cli.Execute()
}
