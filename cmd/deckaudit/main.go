package main

import "github.com/matthieukhl/deckaudit/internal/cmd"

func main() {
	cmd.Execute()
}
