/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/decikv/decikv/cmd/decikv/cmd"
)

func main() {
	cmd.Execute()
}
