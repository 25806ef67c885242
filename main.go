package main

import "github.com/AzielCF/az-widget/cmd"

func main() {
	cmd.Execute()
}
