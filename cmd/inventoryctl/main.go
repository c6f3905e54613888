package main

import "go-inventory-api/cmd/inventoryctl/commands"

func main() {
	commands.Execute()
}
