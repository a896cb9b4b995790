// Package main is the entry point of the Plan Pleno API.
// It sets up and starts the server by calling initialization functions from the internal package.
package main

import (
	"plan-pleno/internal"
)

func main() {
	internal.Init()
}
