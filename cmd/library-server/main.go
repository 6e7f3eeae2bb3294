// @title           Library System API
// @version         1.0
// @description     Books, lenders and circulation served over a raw TCP listener.
// @host            localhost:8080
// @BasePath        /
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(submain(context.Background()))
}
