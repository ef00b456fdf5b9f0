package main

import "github.com/plataforma-eventos/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
